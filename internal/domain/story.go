package domain

import "time"

type MediaKind string

const (
	MediaKindPhoto MediaKind = "photo"
	MediaKindVideo MediaKind = "video"
)

// Slide is one playable unit of a story. Slide order within a story is
// fixed at fetch time and is the playback order.
type Slide struct {
	ID        string
	MediaURL  string
	MediaKind MediaKind
	Caption   string
	CreatedAt time.Time
}

// Story is an authored sequence of slides from one user. A story with
// zero slides must never reach the viewer.
type Story struct {
	ID          string
	AuthorID    string
	AuthorName  string
	AuthorPhoto string
	Slides      []Slide
	IsViewed    bool
	CreatedAt   time.Time
}
