package page

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/emberly-app/emberly-stories/internal/media"
	"github.com/emberly-app/emberly-stories/internal/playback"
	"github.com/emberly-app/emberly-stories/internal/stories"
	"github.com/emberly-app/emberly-stories/internal/toast"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"go.uber.org/fx"
)

// Phase is the page-level lifecycle around the single feed fetch.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseFailed
)

// Listener receives page and playback changes for rendering. All
// methods may be called from background goroutines.
type Listener interface {
	StoriesUpdated()
	PlaybackUpdated(snap playback.Snapshot)
	PlaybackClosed()
	ToastsChanged(active []toast.Toast)
}

type Opts struct {
	fx.In

	Logger     logger.Logger
	Client     stories.Client
	Engine     *playback.Engine
	Toasts     *toast.Manager
	Prefetcher *media.Prefetcher `optional:"true"`
}

// Controller owns the authoritative story list and wires the carousel
// side of the page to the playback engine. It is the sole mutator of
// the list, including the viewed flags the engine reports.
type Controller struct {
	mu sync.Mutex

	logger     logger.Logger
	client     stories.Client
	engine     *playback.Engine
	toasts     *toast.Manager
	prefetcher *media.Prefetcher

	phase    Phase
	fetchErr error
	stories  []*domain.Story

	listener Listener
}

func New(opts Opts) *Controller {
	c := &Controller{
		logger:     opts.Logger,
		client:     opts.Client,
		engine:     opts.Engine,
		toasts:     opts.Toasts,
		prefetcher: opts.Prefetcher,
		phase:      PhaseLoading,
	}

	c.engine.SetCallbacks(playback.Callbacks{
		OnStoryViewed: c.storyViewed,
		OnUpdate:      c.playbackUpdated,
		OnClosed:      c.playbackClosed,
		OnReaction:    c.reactionResult,
	})
	c.toasts.SetNotify(c.toastsChanged)

	return c
}

// SetListener registers the renderer. Safe to call before or after Load.
func (c *Controller) SetListener(l Listener) {
	c.mu.Lock()
	c.listener = l
	c.mu.Unlock()
}

// Load performs the single feed fetch. Failures park the page in
// PhaseFailed behind a manual retry; there is no auto-retry loop.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.fetchErr = nil
	c.mu.Unlock()

	list, err := c.client.FetchStories(ctx)
	if err != nil {
		c.logger.Error("Fetch stories failed", "error", err)
		c.mu.Lock()
		c.phase = PhaseFailed
		c.fetchErr = err
		c.mu.Unlock()
		c.notifyStories()
		return err
	}

	viewable := make([]*domain.Story, 0, len(list))
	for _, story := range list {
		if len(story.Slides) == 0 {
			// The viewer must never see a slideless story.
			c.logger.Warn("Dropping story with no slides", "story_id", story.ID)
			continue
		}
		viewable = append(viewable, story)
	}

	c.mu.Lock()
	c.phase = PhaseReady
	c.stories = viewable
	c.mu.Unlock()

	c.engine.SetStories(viewable)
	c.logger.Info("Stories loaded", "count", len(viewable))
	c.notifyStories()
	return nil
}

// Retry is the explicit user-triggered path out of PhaseFailed.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Load(ctx)
}

func (c *Controller) Phase() (Phase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase, c.fetchErr
}

// Stories returns a value snapshot of the current list in feed order,
// built under the controller lock. Callers never see the shared
// pointees, so viewed-flag updates cannot race a render.
func (c *Controller) Stories() []domain.Story {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Story, len(c.stories))
	for i, story := range c.stories {
		out[i] = *story
	}
	return out
}

// Open relays a carousel selection to the playback engine and warms
// the media for the opened story and the one after it.
func (c *Controller) Open(ctx context.Context, index int) error {
	if err := c.engine.Open(index); err != nil {
		return err
	}

	if c.prefetcher != nil {
		c.mu.Lock()
		var warm []domain.Slide
		for i := index; i < len(c.stories) && i <= index+1; i++ {
			warm = append(warm, c.stories[i].Slides...)
		}
		c.mu.Unlock()
		c.prefetcher.Warm(ctx, warm)
	}
	return nil
}

// CreateStory publishes a media file and, on success, re-fetches the
// whole feed: the authoritative list is always server truth after a
// create, there is no optimistic insertion.
func (c *Controller) CreateStory(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Error("Read media file failed", "path", path, "error", err)
		c.toasts.Error("Couldn't read that file")
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	err = c.client.CreateStory(ctx, stories.Upload{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		c.logger.Error("Create story failed", "path", path, "error", err)
		c.toasts.Error("Couldn't publish your story")
		return err
	}

	c.toasts.Success("Story published")
	if err := c.Load(ctx); err != nil {
		return fmt.Errorf("reload after create: %w", err)
	}
	return nil
}

// storyViewed applies the engine's viewed event to the caller-owned
// list, independent of whether the remote dispatch lands. The write
// shares c.mu with the Stories snapshot path.
func (c *Controller) storyViewed(story *domain.Story) {
	c.mu.Lock()
	story.IsViewed = true
	c.mu.Unlock()
	c.notifyStories()
}

func (c *Controller) playbackUpdated(snap playback.Snapshot) {
	if l := c.currentListener(); l != nil {
		l.PlaybackUpdated(snap)
	}
}

func (c *Controller) playbackClosed() {
	if l := c.currentListener(); l != nil {
		l.PlaybackClosed()
	}
}

func (c *Controller) reactionResult(kind domain.Reaction, err error) {
	switch {
	case err == nil:
		c.toasts.Success("Reaction sent " + kind.Emoji())
	case errors.Is(err, playback.ErrRateLimited):
		c.toasts.Info("Easy there, try again in a moment")
	default:
		c.toasts.Error("Couldn't send your reaction")
	}
}

func (c *Controller) toastsChanged(active []toast.Toast) {
	if l := c.currentListener(); l != nil {
		l.ToastsChanged(active)
	}
}

func (c *Controller) notifyStories() {
	if l := c.currentListener(); l != nil {
		l.StoriesUpdated()
	}
}

func (c *Controller) currentListener() Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listener
}
