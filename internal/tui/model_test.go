package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/emberly-app/emberly-stories/internal/config"
	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/emberly-app/emberly-stories/internal/page"
	"github.com/emberly-app/emberly-stories/internal/playback"
	"github.com/emberly-app/emberly-stories/internal/stories/mocks"
	"github.com/emberly-app/emberly-stories/internal/toast"
	apperrors "github.com/emberly-app/emberly-stories/pkg/errors"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)      {}
func (nopLogger) Info(string, ...any)       {}
func (nopLogger) Warn(string, ...any)       {}
func (nopLogger) Error(string, ...any)      {}
func (nopLogger) With(...any) logger.Logger { return nopLogger{} }

func newTestModel(t *testing.T) (Model, *playback.Engine) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Playback.TickInterval = 100 * time.Millisecond
	cfg.Playback.ProgressStep = 2
	cfg.Toast.Duration = 2500 * time.Millisecond

	engine := playback.New(playback.Opts{
		Config: cfg,
		Logger: nopLogger{},
		Client: client,
		Clock:  clockwork.NewFakeClock(),
	})
	toasts := toast.NewManager(toast.Opts{
		Config: cfg,
		Logger: nopLogger{},
		Clock:  clockwork.NewFakeClock(),
	})
	controller := page.New(page.Opts{
		Logger: nopLogger{},
		Client: client,
		Engine: engine,
		Toasts: toasts,
	})

	client.EXPECT().FetchStories(gomock.Any()).Return([]*domain.Story{
		{ID: "a", AuthorID: "u1", AuthorName: "Ana", IsViewed: true, Slides: []domain.Slide{{ID: "a1"}, {ID: "a2"}}},
		{ID: "b", AuthorID: "u2", AuthorName: "Ben", IsViewed: true, Slides: []domain.Slide{{ID: "b1"}}},
	}, nil)
	require.NoError(t, controller.Load(context.Background()))

	return New(Opts{
		Controller: controller,
		Engine:     engine,
		Logger:     nopLogger{},
	}), engine
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestViewerKeysDriveEngine(t *testing.T) {
	m, engine := newTestModel(t)
	require.NoError(t, engine.Open(0))
	m.screen = screenViewer
	m.snap = engine.Snapshot()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	require.Equal(t, 1, engine.Snapshot().SlideIndex)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = next.(Model)
	require.Equal(t, 0, engine.Snapshot().SlideIndex)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	require.Equal(t, playback.StatePaused, engine.Snapshot().State)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_ = next
	require.Equal(t, playback.StateClosed, engine.Snapshot().State)
}

func TestReactionPanelKeys(t *testing.T) {
	m, engine := newTestModel(t)
	require.NoError(t, engine.Open(0))
	m.screen = screenViewer
	m.snap = engine.Snapshot()

	next, _ := m.Update(keyRune('r'))
	m = next.(Model)
	require.True(t, engine.Snapshot().ReactionsVisible)
}

func TestCarouselCursorStaysInBounds(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = next.(Model)
	require.Equal(t, 0, m.cursor)

	for i := 0; i < 5; i++ {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
		m = next.(Model)
	}
	require.Equal(t, 1, m.cursor, "cursor must stop at the last ring")
}

func TestReactionForKey(t *testing.T) {
	r, ok := reactionForKey("1")
	require.True(t, ok)
	require.Equal(t, domain.ReactionLike, r)

	r, ok = reactionForKey("6")
	require.True(t, ok)
	require.Equal(t, domain.ReactionFire, r)

	_, ok = reactionForKey("7")
	require.False(t, ok)
	_, ok = reactionForKey("x")
	require.False(t, ok)
}

func TestViewExplainsFetchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Playback.TickInterval = 100 * time.Millisecond
	cfg.Playback.ProgressStep = 2
	cfg.Toast.Duration = 2500 * time.Millisecond

	engine := playback.New(playback.Opts{
		Config: cfg,
		Logger: nopLogger{},
		Client: client,
		Clock:  clockwork.NewFakeClock(),
	})
	toasts := toast.NewManager(toast.Opts{
		Config: cfg,
		Logger: nopLogger{},
		Clock:  clockwork.NewFakeClock(),
	})
	controller := page.New(page.Opts{
		Logger: nopLogger{},
		Client: client,
		Engine: engine,
		Toasts: toasts,
	})

	client.EXPECT().FetchStories(gomock.Any()).Return(nil, apperrors.ErrUnauthorized)
	require.Error(t, controller.Load(context.Background()))

	m := New(Opts{Controller: controller, Engine: engine, Logger: nopLogger{}})
	require.Contains(t, m.View(), "Session expired, sign in again")
}

func TestViewRendersEachScreen(t *testing.T) {
	m, engine := newTestModel(t)

	require.Contains(t, m.View(), "Ana")

	require.NoError(t, engine.Open(0))
	m.screen = screenViewer
	m.snap = engine.Snapshot()
	require.Contains(t, m.View(), "slide 1/2")

	m.screen = screenCreate
	require.Contains(t, m.View(), "Publish a new story")
}
