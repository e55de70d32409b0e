package page

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emberly-app/emberly-stories/internal/config"
	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/emberly-app/emberly-stories/internal/playback"
	"github.com/emberly-app/emberly-stories/internal/stories"
	"github.com/emberly-app/emberly-stories/internal/stories/mocks"
	"github.com/emberly-app/emberly-stories/internal/toast"
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

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Playback.TickInterval = 100 * time.Millisecond
	cfg.Playback.ProgressStep = 2
	cfg.Toast.Duration = 2500 * time.Millisecond
	return cfg
}

func newTestController(t *testing.T) (*Controller, *mocks.MockClient, *playback.Engine, *toast.Manager) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	cfg := testConfig()

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

	c := New(Opts{
		Logger: nopLogger{},
		Client: client,
		Engine: engine,
		Toasts: toasts,
	})
	return c, client, engine, toasts
}

func feed() []*domain.Story {
	return []*domain.Story{
		{ID: "a", AuthorID: "u1", AuthorName: "Ana", Slides: []domain.Slide{{ID: "a1"}}},
		{ID: "empty", AuthorID: "u2", AuthorName: "Ben"},
		{ID: "b", AuthorID: "u3", AuthorName: "Cleo", Slides: []domain.Slide{{ID: "b1"}, {ID: "b2"}}},
	}
}

func TestLoadFiltersSlidelessStories(t *testing.T) {
	c, client, _, _ := newTestController(t)
	client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil)

	require.NoError(t, c.Load(context.Background()))

	phase, err := c.Phase()
	require.Equal(t, PhaseReady, phase)
	require.NoError(t, err)

	list := c.Stories()
	require.Len(t, list, 2)
	require.Equal(t, "a", list[0].ID)
	require.Equal(t, "b", list[1].ID)
}

func TestLoadFailureParksBehindManualRetry(t *testing.T) {
	c, client, _, _ := newTestController(t)
	boom := errors.New("boom")
	gomock.InOrder(
		client.EXPECT().FetchStories(gomock.Any()).Return(nil, boom),
		client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil),
	)

	require.Error(t, c.Load(context.Background()))
	phase, err := c.Phase()
	require.Equal(t, PhaseFailed, phase)
	require.ErrorIs(t, err, boom)

	require.NoError(t, c.Retry(context.Background()))
	phase, _ = c.Phase()
	require.Equal(t, PhaseReady, phase)
}

func TestOpenMarksStoryViewedInList(t *testing.T) {
	c, client, _, _ := newTestController(t)
	client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil)

	dispatched := make(chan string, 4)
	client.EXPECT().MarkViewed(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) error {
			dispatched <- id
			return nil
		},
	).AnyTimes()

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Open(context.Background(), 0))

	// The list mutation is synchronous with Open.
	require.True(t, c.Stories()[0].IsViewed)

	select {
	case id := <-dispatched:
		require.Equal(t, "a", id)
	case <-time.After(2 * time.Second):
		t.Fatal("remote mark-viewed never dispatched")
	}
}

func TestOpenOutOfRangeFails(t *testing.T) {
	c, client, _, _ := newTestController(t)
	client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil)

	require.NoError(t, c.Load(context.Background()))
	require.Error(t, c.Open(context.Background(), 5))
}

func TestCreateStoryRefetchesOnSuccess(t *testing.T) {
	c, client, _, toasts := newTestController(t)

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o600))

	gomock.InOrder(
		client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil),
		client.EXPECT().CreateStory(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, media stories.Upload) error {
				require.Equal(t, "photo.jpg", media.FileName)
				require.Equal(t, []byte("jpeg-bytes"), media.Data)
				return nil
			},
		),
		client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil),
	)

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.CreateStory(context.Background(), path))

	messages := toastMessages(toasts)
	require.Contains(t, messages, "Story published")
}

func TestCreateStoryFailureDoesNotRefetch(t *testing.T) {
	c, client, _, toasts := newTestController(t)

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o600))

	client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil).Times(1)
	client.EXPECT().CreateStory(gomock.Any(), gomock.Any()).Return(errors.New("boom"))

	require.NoError(t, c.Load(context.Background()))
	require.Error(t, c.CreateStory(context.Background(), path))

	messages := toastMessages(toasts)
	require.Contains(t, messages, "Couldn't publish your story")
}

func TestCreateStoryUnreadableFile(t *testing.T) {
	c, client, _, toasts := newTestController(t)
	client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil)

	require.NoError(t, c.Load(context.Background()))
	require.Error(t, c.CreateStory(context.Background(), filepath.Join(t.TempDir(), "missing.jpg")))
	require.Contains(t, toastMessages(toasts), "Couldn't read that file")
}

type recordingListener struct {
	updates chan playback.Snapshot
	closed  chan struct{}
}

func (l *recordingListener) StoriesUpdated()                        {}
func (l *recordingListener) PlaybackUpdated(snap playback.Snapshot) { l.updates <- snap }
func (l *recordingListener) PlaybackClosed()                        { l.closed <- struct{}{} }
func (l *recordingListener) ToastsChanged([]toast.Toast)            {}

func TestListenerReceivesPlaybackEvents(t *testing.T) {
	c, client, engine, _ := newTestController(t)
	client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil)

	dispatched := make(chan struct{}, 4)
	client.EXPECT().MarkViewed(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string) error {
			dispatched <- struct{}{}
			return nil
		},
	).AnyTimes()

	listener := &recordingListener{
		updates: make(chan playback.Snapshot, 32),
		closed:  make(chan struct{}, 1),
	}
	c.SetListener(listener)

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Open(context.Background(), 0))

	select {
	case snap := <-listener.updates:
		require.Equal(t, playback.StatePlaying, snap.State)
	case <-time.After(time.Second):
		t.Fatal("no playback update delivered")
	}

	engine.Close()
	select {
	case <-listener.closed:
	case <-time.After(time.Second):
		t.Fatal("close never delivered")
	}

	select {
	case <-dispatched:
	case <-time.After(time.Second):
		t.Fatal("remote mark-viewed never dispatched")
	}
}

func TestStoriesSnapshotIsIsolatedFromPlayback(t *testing.T) {
	c, client, engine, _ := newTestController(t)
	client.EXPECT().FetchStories(gomock.Any()).Return(feed(), nil)

	dispatched := make(chan string, 16)
	client.EXPECT().MarkViewed(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string) error {
			dispatched <- id
			return nil
		},
	).AnyTimes()

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Open(context.Background(), 0))

	// Render-side reads of the viewed flags while the engine drives
	// viewed events across story boundaries.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			for _, s := range c.Stories() {
				_ = s.IsViewed
			}
		}
	}()
	for i := 0; i < 50; i++ {
		engine.Advance()
		engine.Retreat()
	}
	<-done

	// The snapshot holds values: mutating it must not touch the list.
	snap := c.Stories()
	require.True(t, snap[0].IsViewed)
	snap[0].IsViewed = false
	require.True(t, c.Stories()[0].IsViewed)

	for i := 0; i < 2; i++ {
		select {
		case <-dispatched:
		case <-time.After(2 * time.Second):
			t.Fatal("remote mark-viewed never dispatched")
		}
	}
}

func toastMessages(m *toast.Manager) []string {
	active := m.Active()
	out := make([]string, 0, len(active))
	for _, t := range active {
		out = append(out, t.Message)
	}
	return out
}
