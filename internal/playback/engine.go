package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/emberly-app/emberly-stories/internal/config"
	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/emberly-app/emberly-stories/internal/ratelimit"
	"github.com/emberly-app/emberly-stories/internal/stories"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"github.com/emberly-app/emberly-stories/pkg/retry"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

// State is the top-level playback state. ReactionsVisible is an
// orthogonal overlay flag, not a separate state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ErrRateLimited is reported through Callbacks.OnReaction when a
// reaction is throttled locally before dispatch.
var ErrRateLimited = errors.New("reaction rate limited")

const maxProgress = 100.0

// Callbacks are invoked outside the engine lock and must not call back
// into the engine.
type Callbacks struct {
	// OnStoryViewed fires synchronously, at most once per story per
	// session, when playback lands on a story not yet viewed. The page
	// controller owns the story list and is the only mutator of IsViewed.
	OnStoryViewed func(story *domain.Story)
	// OnUpdate delivers a fresh snapshot after every state change.
	OnUpdate func(snap Snapshot)
	// OnClosed fires once when the session reaches the terminal state.
	OnClosed func()
	// OnReaction reports the outcome of a reaction dispatch. It may be
	// called from a background goroutine. err is nil on success and
	// ErrRateLimited when throttled locally.
	OnReaction func(kind domain.Reaction, err error)
}

type Opts struct {
	fx.In

	Config  *config.Config
	Logger  logger.Logger
	Client  stories.Client
	Clock   clockwork.Clock
	Limiter ratelimit.Limiter
}

// Engine runs the autoplay/navigation state machine for one viewing
// session at a time. All transitions are serialized by one mutex; the
// tick goroutine and user input go through the same locked paths.
type Engine struct {
	mu sync.Mutex

	logger  logger.Logger
	client  stories.Client
	clock   clockwork.Clock
	limiter ratelimit.Limiter

	tickInterval time.Duration
	step         float64

	cb Callbacks

	stories          []*domain.Story
	state            State
	storyIndex       int
	slideIndex       int
	progress         float64
	reactionsVisible bool
	viewed           map[string]struct{}

	ticker     clockwork.Ticker
	tickerStop chan struct{}
}

func New(opts Opts) *Engine {
	return &Engine{
		logger:       opts.Logger,
		client:       opts.Client,
		clock:        opts.Clock,
		limiter:      opts.Limiter,
		tickInterval: opts.Config.Playback.TickInterval,
		step:         opts.Config.Playback.ProgressStep,
		state:        StateIdle,
		viewed:       make(map[string]struct{}),
	}
}

// SetCallbacks must be called before the first Open.
func (e *Engine) SetCallbacks(cb Callbacks) {
	e.mu.Lock()
	e.cb = cb
	e.mu.Unlock()
}

// SetStories replaces the navigable story list. Navigation bounds must
// stay stable for a session, so any active session is closed first.
func (e *Engine) SetStories(list []*domain.Story) {
	e.mu.Lock()
	var events []func()
	if e.state == StatePlaying || e.state == StatePaused {
		events = e.closeLocked()
	}
	e.stories = list
	e.mu.Unlock()
	emit(events)
}

// Snapshot returns the current render state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// startTickerLocked owns the autoplay timer: started on every entry to
// Playing, stopped outright on any exit so no stale ticks burst in on
// resume.
func (e *Engine) startTickerLocked() {
	e.stopTickerLocked()

	ticker := e.clock.NewTicker(e.tickInterval)
	stop := make(chan struct{})
	e.ticker = ticker
	e.tickerStop = stop

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				e.tick()
			}
		}
	}()
}

func (e *Engine) stopTickerLocked() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	close(e.tickerStop)
	e.ticker = nil
	e.tickerStop = nil
}

func (e *Engine) dispatchMarkViewed(storyID string) {
	go func() {
		err := retry.Do(context.Background(), e.logger, "mark viewed", func() error {
			return e.client.MarkViewed(context.Background(), storyID)
		}, retry.FireAndForgetConfig())
		if err != nil {
			// Non-fatal: local viewed state is already updated and the
			// call is idempotent, a later session can land it again.
			e.logger.Warn("Mark viewed dispatch failed", "story_id", storyID, "error", err)
		}
	}()
}

func (e *Engine) dispatchReact(storyID string, kind domain.Reaction) {
	cb := e.cb.OnReaction
	go func() {
		err := e.client.React(context.Background(), storyID, kind)
		if err != nil {
			e.logger.Warn("Reaction dispatch failed", "story_id", storyID, "kind", kind, "error", err)
		}
		if cb != nil {
			cb(kind, err)
		}
	}()
}

// emit runs deferred callback events collected under the lock.
func emit(events []func()) {
	for _, fn := range events {
		if fn != nil {
			fn()
		}
	}
}
