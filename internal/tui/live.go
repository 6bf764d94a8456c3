// SPDX-License-Identifier: MIT

// Package tui renders the live strip chart in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stripchart/internal/display"
	applog "stripchart/internal/log"
	"stripchart/internal/plotter"
	"stripchart/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F25D94")).
			Bold(true)
)

const (
	chromeRows = 3 // title, status and help lines
	meterWidth = 12
)

type frameMsg time.Time

type statusMsg string

// LiveModel is the Bubble Tea model for the live strip chart.
type LiveModel struct {
	session  *session.Session
	keys     keyMap
	help     help.Model
	cells    *cellRenderer
	meter    levelMeter
	interval time.Duration
	now      func() time.Time

	width    int
	waveRows int
	specRows int
	ready    bool
	status   string
}

// NewLiveModel creates a live model stepping s at frameRate.
func NewLiveModel(s *session.Session, frameRate int) LiveModel {
	return LiveModel{
		session:  s,
		keys:     defaultKeyMap(),
		help:     help.New(),
		cells:    newCellRenderer(),
		meter:    newLevelMeter(frameRate),
		interval: display.Interval(frameRate),
		now:      time.Now,
	}
}

// Init starts the frame clock.
func (m LiveModel) Init() tea.Cmd {
	return m.tick()
}

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(display.NextFrameDelay(m.now(), m.interval), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// layout splits the rows below the title between the two plots, two
// pixel rows per terminal line.
func layout(height int) (waveRows, specRows int) {
	avail := max(height-chromeRows, 2)
	waveRows = max(avail*2/5, 1)
	return waveRows, avail - waveRows
}

// Update handles frames, resizes and keys.
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 1)
		m.waveRows, m.specRows = layout(msg.Height)
		m.help.Width = m.width
		m.session.Resize(m.width, m.waveRows*2, m.specRows*2)
		m.ready = true

	case frameMsg:
		m.session.Step()
		m.meter.step(m.session.Buffers().Peak())
		return m, m.tick()

	case statusMsg:
		m.status = string(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m LiveModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		s.TogglePause()
	case key.Matches(msg, m.keys.Night):
		s.ToggleNightMode()
	case key.Matches(msg, m.keys.ColourMap):
		s.CycleColourMap()
	case key.Matches(msg, m.keys.LowAmp):
		s.ToggleLowAmplitude()
	case key.Matches(msg, m.keys.Mode):
		s.CycleMode()
	case key.Matches(msg, m.keys.Narrower):
		s.StepDisplayWidth(-1)
	case key.Matches(msg, m.keys.Wider):
		s.StepDisplayWidth(1)
	case key.Matches(msg, m.keys.Export):
		return m, m.save("Exported", s.ExportFile)
	case key.Matches(msg, m.keys.SaveWAV):
		return m, m.save("Saved", s.SaveWAVFile)
	}
	return m, nil
}

// save runs a file write off the update loop and reports the result.
func (m LiveModel) save(verb string, write func(time.Time) (string, error)) tea.Cmd {
	now := m.now()
	return func() tea.Msg {
		path, err := write(now)
		if err != nil {
			applog.Warnf("TUI: %s failed: %v", strings.ToLower(verb), err)
			return statusMsg(fmt.Sprintf("Error: %v", err))
		}
		return statusMsg(fmt.Sprintf("%s %s", verb, path))
	}
}

// View renders the title bar, both plots, status and help.
func (m LiveModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(m.header())
	sb.WriteByte('\n')
	m.session.View(func(waveform, spectrogram *plotter.Surface) {
		m.cells.render(&sb, waveform)
		sb.WriteByte('\n')
		m.cells.render(&sb, spectrogram)
	})
	sb.WriteByte('\n')
	sb.WriteString(infoStyle.Render(m.status))
	sb.WriteByte('\n')
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m LiveModel) header() string {
	st := m.session.Settings()
	info := fmt.Sprintf(" %ds  %d Hz  %s  %s ",
		st.DisplayWidthSeconds, m.session.SampleRate(), st.ColourMap, st.Mode)
	if st.NightMode {
		info += "  night"
	}
	if st.LowAmplitudeScale {
		info += "  low amp"
	}
	line := titleStyle.Render("Strip Chart") + highlightStyle.Render(info) + m.meter.render(meterWidth)
	if st.Paused {
		line += pausedStyle.Render("  PAUSED")
	}
	return line
}

// RunLive runs the source and the live view until the user quits or ctx
// is cancelled.
func RunLive(ctx context.Context, s *session.Session, frameRate int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	p := tea.NewProgram(
		NewLiveModel(s, frameRate),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	cancel()
	if srcErr := <-errc; srcErr != nil && !errors.Is(srcErr, context.Canceled) {
		return errors.Join(err, srcErr)
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
