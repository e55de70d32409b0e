package carousel

import (
	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/samber/lo"
)

// Accent is the cosmetic ring coloring, a pure function of position.
type Accent int

const (
	AccentRose Accent = iota
	AccentViolet
)

// Ring is one story preview cell in the carousel.
type Ring struct {
	Index       int
	AuthorName  string
	AuthorPhoto string
	Viewed      bool
	Accent      Accent
}

// AccentFor alternates ring accents by index parity.
func AccentFor(index int) Accent {
	if index%2 == 0 {
		return AccentRose
	}
	return AccentViolet
}

// Rings builds the preview cells in feed order. The ring index is the
// open-at index handed to the playback engine.
func Rings(list []domain.Story) []Ring {
	return lo.Map(list, func(story domain.Story, i int) Ring {
		return Ring{
			Index:       i,
			AuthorName:  story.AuthorName,
			AuthorPhoto: story.AuthorPhoto,
			Viewed:      story.IsViewed,
			Accent:      AccentFor(i),
		}
	})
}
