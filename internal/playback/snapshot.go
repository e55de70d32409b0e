package playback

import (
	"github.com/emberly-app/emberly-stories/internal/domain"
)

// Snapshot is an immutable view of playback state handed to renderers.
type Snapshot struct {
	State            State
	StoryIndex       int
	SlideIndex       int
	Progress         float64
	ReactionsVisible bool
	Story            *domain.Story
	StoryCount       int
	// Bars holds one fill percentage per slide of the active story:
	// slides before the active one are full, the active one carries the
	// live progress, later ones are empty. This holds at every render.
	Bars []float64
}

// Slide returns the active slide, or nil outside a session.
func (s Snapshot) Slide() *domain.Slide {
	if s.Story == nil || s.SlideIndex < 0 || s.SlideIndex >= len(s.Story.Slides) {
		return nil
	}
	return &s.Story.Slides[s.SlideIndex]
}

func (e *Engine) snapshotLocked() Snapshot {
	progress := e.progress
	if progress > maxProgress {
		progress = maxProgress
	}

	snap := Snapshot{
		State:            e.state,
		StoryIndex:       e.storyIndex,
		SlideIndex:       e.slideIndex,
		Progress:         progress,
		ReactionsVisible: e.reactionsVisible,
		StoryCount:       len(e.stories),
	}

	if e.state == StateIdle || e.storyIndex >= len(e.stories) {
		return snap
	}

	story := e.stories[e.storyIndex]
	snap.Story = story
	snap.Bars = make([]float64, len(story.Slides))
	for i := range snap.Bars {
		switch {
		case i < e.slideIndex:
			snap.Bars[i] = maxProgress
		case i == e.slideIndex:
			snap.Bars[i] = progress
		default:
			snap.Bars[i] = 0
		}
	}
	return snap
}
