// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/feestat/pkg/fee"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const listWidth = 32

// viewModel is the Bubble Tea model for the dump browser
type viewModel struct {
	path      string
	frames    []frameItem
	frameList list.Model
	detail    viewport.Model
	stats     *fee.Statistics
	selected  int
	width     int
	height    int
	quitting  bool
}

//////////////////////////////////////////////////////////////
// Styles
//////////////////////////////////////////////////////////////

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialViewModel(path string, frames []frameItem, stats *fee.Statistics) viewModel {
	items := make([]list.Item, len(frames))
	for i, f := range frames {
		items[i] = f
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	frameList := list.New(items, delegate, listWidth, 10)
	frameList.Title = "Telemetry"
	frameList.SetShowStatusBar(false)
	frameList.SetShowHelp(false)
	frameList.SetFilteringEnabled(false)

	m := viewModel{
		path:      path,
		frames:    frames,
		frameList: frameList,
		detail:    viewport.New(40, 10),
		stats:     stats,
		selected:  -1,
		width:     80,
		height:    24,
	}
	m.syncDetail()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "pgup", "pgdown":
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
	}

	m.frameList, cmd = m.frameList.Update(msg)
	m.syncDetail()
	return m, cmd
}

// updateLayout sizes the panes to the terminal
func (m *viewModel) updateLayout() {
	// Title, header, stats box and pane borders
	paneHeight := m.height - 9
	if paneHeight < 5 {
		paneHeight = 5
	}
	m.frameList.SetSize(listWidth, paneHeight)

	detailWidth := m.width - listWidth - 6
	if detailWidth < 20 {
		detailWidth = 20
	}
	m.detail.Width = detailWidth
	m.detail.Height = paneHeight
}

// syncDetail refreshes the detail pane when the selection moves
func (m *viewModel) syncDetail() {
	idx := m.frameList.Index()
	if idx == m.selected || idx < 0 || idx >= len(m.frames) {
		return
	}
	m.selected = idx
	m.detail.SetContent(m.frames[idx].detail())
	m.detail.GotoTop()
}

func (m viewModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("FEESTAT - DUMP VIEWER"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("File: %s | %d frames | Press 'q' to quit", m.path, len(m.frames))))
	s.WriteString("\n\n")

	// Statistics
	var identicalPercent float64
	if m.stats.TotalFrames > 0 {
		identicalPercent = float64(m.stats.IdenticalFrames) * 100.0 / float64(m.stats.TotalFrames)
	}
	failures := statsValueStyle.Render("0")
	if m.stats.Failures() > 0 {
		failures = errorStyle.Render(fmt.Sprintf("%d", m.stats.Failures()))
	}
	statsContent := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		statsLabelStyle.Render("Identical:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.IdenticalFrames, identicalPercent)),
		statsLabelStyle.Render("Failed:"), failures,
		statsLabelStyle.Render("Checksum:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumErrors)),
	)
	s.WriteString(boxStyle.Render(statsContent))
	s.WriteString("\n")

	if len(m.frames) == 0 {
		s.WriteString(headerStyle.Render("  (no frames in dump)"))
		return s.String()
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(m.frameList.View()),
		boxStyle.Render(m.detail.View()),
	))

	return s.String()
}
