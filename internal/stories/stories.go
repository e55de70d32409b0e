package stories

import (
	"context"

	"github.com/emberly-app/emberly-stories/internal/domain"
)

// Upload is the payload for publishing a new story slide.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

//go:generate go run go.uber.org/mock/mockgen -source=stories.go -destination=mocks/mock.go -package=mocks

// Client is the narrow contract the playback core needs from the remote
// story service.
type Client interface {
	// FetchStories returns the full feed in server order.
	FetchStories(ctx context.Context) ([]*domain.Story, error)
	// MarkViewed records that the current user has seen a story.
	// Idempotent: safe to call more than once for the same story.
	MarkViewed(ctx context.Context, storyID string) error
	// React dispatches a reaction against a story.
	React(ctx context.Context, storyID string, kind domain.Reaction) error
	// CreateStory publishes a new story from a media file.
	CreateStory(ctx context.Context, media Upload) error
}
