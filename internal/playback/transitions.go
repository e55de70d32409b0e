package playback

import (
	"fmt"

	"github.com/emberly-app/emberly-stories/internal/domain"
)

// Open starts a viewing session at the given story index. Re-opening
// while a session is active fully resets playback state: no stale
// progress or reaction-panel visibility carries over.
func (e *Engine) Open(index int) error {
	e.mu.Lock()
	if index < 0 || index >= len(e.stories) {
		e.mu.Unlock()
		return fmt.Errorf("open: story index %d out of range [0,%d)", index, len(e.stories))
	}
	if len(e.stories[index].Slides) == 0 {
		story := e.stories[index]
		e.mu.Unlock()
		return fmt.Errorf("open: story %s has no slides", story.ID)
	}

	e.stopTickerLocked()
	e.state = StatePlaying
	e.storyIndex = index
	e.slideIndex = 0
	e.progress = 0
	e.reactionsVisible = false
	e.viewed = make(map[string]struct{})

	events := e.enterStoryLocked()
	e.startTickerLocked()
	events = append(events, e.updateLocked())
	e.mu.Unlock()

	emit(events)
	return nil
}

// tick fires once per timer period while Playing.
func (e *Engine) tick() {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return
	}

	e.progress += e.step
	var events []func()
	if e.progress >= maxProgress {
		events = e.advanceLocked()
	} else {
		events = append(events, e.updateLocked())
	}
	e.mu.Unlock()

	emit(events)
}

// Advance moves to the next slide, crossing into the next story when
// the active one is exhausted and closing the session past the last
// story. Safe to call after Close.
func (e *Engine) Advance() {
	e.mu.Lock()
	if e.state != StatePlaying && e.state != StatePaused {
		e.mu.Unlock()
		return
	}
	events := e.advanceLocked()
	e.mu.Unlock()
	emit(events)
}

func (e *Engine) advanceLocked() []func() {
	story := e.stories[e.storyIndex]
	switch {
	case e.slideIndex < len(story.Slides)-1:
		e.slideIndex++
		e.progress = 0
		return []func(){e.updateLocked()}
	case e.storyIndex < len(e.stories)-1:
		e.storyIndex++
		e.slideIndex = 0
		e.progress = 0
		events := e.enterStoryLocked()
		return append(events, e.updateLocked())
	default:
		return e.closeLocked()
	}
}

// Retreat moves to the previous slide, crossing onto the last slide of
// the previous story at a story boundary. A no-op on the very first
// slide of the very first story.
func (e *Engine) Retreat() {
	e.mu.Lock()
	if e.state != StatePlaying && e.state != StatePaused {
		e.mu.Unlock()
		return
	}

	var events []func()
	switch {
	case e.slideIndex > 0:
		e.slideIndex--
		e.progress = 0
		events = append(events, e.updateLocked())
	case e.storyIndex > 0:
		e.storyIndex--
		e.slideIndex = len(e.stories[e.storyIndex].Slides) - 1
		e.progress = 0
		events = e.enterStoryLocked()
		events = append(events, e.updateLocked())
	}
	e.mu.Unlock()

	emit(events)
}

// Pause freezes progress while the user holds. The timer is stopped
// outright, not merely ignored.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.state = StatePaused
	e.stopTickerLocked()
	ev := e.updateLocked()
	e.mu.Unlock()
	emit([]func(){ev})
}

// Resume restarts the timer from the frozen progress value. It never
// advances by itself.
func (e *Engine) Resume() {
	e.mu.Lock()
	if e.state != StatePaused {
		e.mu.Unlock()
		return
	}
	e.state = StatePlaying
	e.startTickerLocked()
	ev := e.updateLocked()
	e.mu.Unlock()
	emit([]func(){ev})
}

// ToggleReactions flips the reaction panel. Showing it pauses playback
// so the user can deliberate; hiding it resumes.
func (e *Engine) ToggleReactions() {
	e.mu.Lock()
	if e.state != StatePlaying && e.state != StatePaused {
		e.mu.Unlock()
		return
	}

	if e.reactionsVisible {
		e.reactionsVisible = false
		if e.state == StatePaused {
			e.state = StatePlaying
			e.startTickerLocked()
		}
	} else {
		e.reactionsVisible = true
		if e.state == StatePlaying {
			e.state = StatePaused
			e.stopTickerLocked()
		}
	}
	ev := e.updateLocked()
	e.mu.Unlock()
	emit([]func(){ev})
}

// SelectReaction dispatches a reaction fire-and-forget, hides the
// panel and resumes playback. A failed dispatch never rolls back UI
// state.
func (e *Engine) SelectReaction(kind domain.Reaction) {
	e.mu.Lock()
	if e.state != StatePlaying && e.state != StatePaused {
		e.mu.Unlock()
		return
	}

	story := e.stories[e.storyIndex]
	var events []func()
	if e.limiter != nil && !e.limiter.Allow(story.AuthorID) {
		e.logger.Info("Reaction throttled", "story_id", story.ID, "author_id", story.AuthorID)
		if cb := e.cb.OnReaction; cb != nil {
			k := kind
			events = append(events, func() { cb(k, ErrRateLimited) })
		}
	} else {
		e.dispatchReact(story.ID, kind)
	}

	e.reactionsVisible = false
	if e.state == StatePaused {
		e.state = StatePlaying
		e.startTickerLocked()
	}
	events = append(events, e.updateLocked())
	e.mu.Unlock()

	emit(events)
}

// Close tears the session down. Idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	events := e.closeLocked()
	e.mu.Unlock()
	emit(events)
}

func (e *Engine) closeLocked() []func() {
	if e.state == StateIdle || e.state == StateClosed {
		return nil
	}

	e.stopTickerLocked()
	e.state = StateClosed
	e.reactionsVisible = false

	events := []func(){e.updateLocked()}
	if cb := e.cb.OnClosed; cb != nil {
		events = append(events, cb)
	}
	return events
}

// enterStoryLocked runs the view-tracking side effect for the story
// playback just landed on: a synchronous viewed event for the list
// owner plus an idempotent background mark-viewed dispatch, each at
// most once per story per session.
func (e *Engine) enterStoryLocked() []func() {
	story := e.stories[e.storyIndex]
	// Session map first: once a story is recorded here its IsViewed
	// field belongs to the list owner and must not be re-read.
	if _, done := e.viewed[story.ID]; done {
		return nil
	}
	if story.IsViewed {
		return nil
	}
	e.viewed[story.ID] = struct{}{}

	e.dispatchMarkViewed(story.ID)

	if cb := e.cb.OnStoryViewed; cb != nil {
		return []func(){func() { cb(story) }}
	}
	return nil
}

func (e *Engine) updateLocked() func() {
	cb := e.cb.OnUpdate
	if cb == nil {
		return nil
	}
	snap := e.snapshotLocked()
	return func() { cb(snap) }
}
