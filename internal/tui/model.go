package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/emberly-app/emberly-stories/internal/page"
	"github.com/emberly-app/emberly-stories/internal/playback"
	"github.com/emberly-app/emberly-stories/internal/toast"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"go.uber.org/fx"
)

type screen int

const (
	screenCarousel screen = iota
	screenViewer
	screenCreate
)

type createDoneMsg struct{}

type Opts struct {
	fx.In

	Controller *page.Controller
	Engine     *playback.Engine
	Logger     logger.Logger
}

// Model is the bubbletea front end: the carousel screen with its
// loading/empty/error placeholders, the full-screen viewer and the
// create-story prompt. All playback decisions stay in the engine; the
// model only routes keys and renders snapshots.
type Model struct {
	controller *page.Controller
	engine     *playback.Engine
	logger     logger.Logger

	keys    keyMap
	spinner spinner.Model
	input   textinput.Model

	screen screen
	cursor int
	width  int

	snap   playback.Snapshot
	toasts []toast.Toast
}

func New(opts Opts) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "/path/to/photo.jpg"
	ti.CharLimit = 256

	return Model{
		controller: opts.Controller,
		engine:     opts.Engine,
		logger:     opts.Logger,
		keys:       defaultKeyMap(),
		spinner:    sp,
		input:      ti,
		screen:     screenCarousel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		// Single fetch; a failure parks the page behind manual retry.
		_ = controller.Load(context.Background())
		return StoriesMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if phase, _ := m.controller.Phase(); phase == page.PhaseLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case StoriesMsg:
		if n := len(m.controller.Stories()); m.cursor >= n && n > 0 {
			m.cursor = n - 1
		}
		return m, nil

	case PlaybackMsg:
		m.snap = msg.Snap
		if m.snap.State == playback.StatePlaying || m.snap.State == playback.StatePaused {
			m.screen = screenViewer
		}
		return m, nil

	case PlaybackClosedMsg:
		m.screen = screenCarousel
		m.snap = playback.Snapshot{}
		return m, nil

	case ToastsMsg:
		m.toasts = msg.Active
		return m, nil

	case createDoneMsg:
		m.screen = screenCarousel
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case screenViewer:
			return m.updateViewer(msg)
		case screenCreate:
			return m.updateCreate(msg)
		default:
			return m.updateCarousel(msg)
		}
	}

	return m, nil
}

func (m Model) updateCarousel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	phase, _ := m.controller.Phase()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case phase == page.PhaseFailed && key.Matches(msg, m.keys.Retry):
		return m, tea.Batch(m.spinner.Tick, m.loadCmd())

	case phase != page.PhaseReady:
		return m, nil

	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.cursor < len(m.controller.Stories())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if len(m.controller.Stories()) == 0 {
			return m, nil
		}
		controller, index, log := m.controller, m.cursor, m.logger
		return m, func() tea.Msg {
			if err := controller.Open(context.Background(), index); err != nil {
				log.Error("Open story failed", "index", index, "error", err)
			}
			return nil
		}

	case key.Matches(msg, m.keys.Create):
		m.screen = screenCreate
		m.input.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

func (m Model) updateViewer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.engine.Close()
		return m, nil

	case key.Matches(msg, m.keys.Left):
		m.engine.Retreat()
		return m, nil

	case key.Matches(msg, m.keys.Right):
		m.engine.Advance()
		return m, nil

	case key.Matches(msg, m.keys.Hold):
		if m.snap.State == playback.StatePaused {
			m.engine.Resume()
		} else {
			m.engine.Pause()
		}
		return m, nil

	case key.Matches(msg, m.keys.Reactions):
		m.engine.ToggleReactions()
		return m, nil
	}

	if m.snap.ReactionsVisible {
		if r, ok := reactionForKey(msg.String()); ok {
			m.engine.SelectReaction(r)
		}
	}
	return m, nil
}

func (m Model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenCarousel
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Open):
		path := m.input.Value()
		if path == "" {
			return m, nil
		}
		controller := m.controller
		return m, func() tea.Msg {
			// Outcome lands as a toast either way.
			_ = controller.CreateStory(context.Background(), path)
			return createDoneMsg{}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func reactionForKey(k string) (domain.Reaction, bool) {
	panel := domain.Reactions()
	switch k {
	case "1", "2", "3", "4", "5", "6":
		idx := int(k[0] - '1')
		if idx < len(panel) {
			return panel[idx], true
		}
	}
	return "", false
}
