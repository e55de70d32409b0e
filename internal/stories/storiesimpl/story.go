package storiesimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emberly-app/emberly-stories/internal/domain"
	apperrors "github.com/emberly-app/emberly-stories/pkg/errors"
)

type slideDTO struct {
	ID        string    `json:"id"`
	MediaURL  string    `json:"media_url"`
	MediaKind string    `json:"media_kind"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type storyDTO struct {
	ID     string `json:"id"`
	Author struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Photo string `json:"photo"`
	} `json:"author"`
	Slides    []slideDTO `json:"slides"`
	IsViewed  bool       `json:"is_viewed"`
	CreatedAt time.Time  `json:"created_at"`
}

type feedDTO struct {
	Stories []storyDTO `json:"stories"`
}

func (s *StoriesImpl) FetchStories(ctx context.Context) ([]*domain.Story, error) {
	var feed feedDTO
	if err := s.do(ctx, http.MethodGet, "/v1/stories", nil, "", &feed); err != nil {
		return nil, apperrors.Wrap(err, "fetch stories")
	}

	result := make([]*domain.Story, 0, len(feed.Stories))
	for _, dto := range feed.Stories {
		result = append(result, dto.toDomain())
	}
	return result, nil
}

func (s *StoriesImpl) MarkViewed(ctx context.Context, storyID string) error {
	path := fmt.Sprintf("/v1/stories/%s/view", storyID)
	if err := s.do(ctx, http.MethodPost, path, nil, "", nil); err != nil {
		return apperrors.Wrap(err, "mark story viewed")
	}
	return nil
}

func (s *StoriesImpl) React(ctx context.Context, storyID string, kind domain.Reaction) error {
	body, err := json.Marshal(map[string]string{"kind": string(kind)})
	if err != nil {
		return apperrors.Wrap(err, "encode reaction")
	}

	path := fmt.Sprintf("/v1/stories/%s/reactions", storyID)
	if err := s.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", nil); err != nil {
		return apperrors.Wrap(err, "send reaction")
	}
	return nil
}

func (dto storyDTO) toDomain() *domain.Story {
	slides := make([]domain.Slide, 0, len(dto.Slides))
	for _, sl := range dto.Slides {
		slides = append(slides, domain.Slide{
			ID:        sl.ID,
			MediaURL:  sl.MediaURL,
			MediaKind: domain.MediaKind(sl.MediaKind),
			Caption:   sl.Caption,
			CreatedAt: sl.CreatedAt,
		})
	}
	return &domain.Story{
		ID:          dto.ID,
		AuthorID:    dto.Author.ID,
		AuthorName:  dto.Author.Name,
		AuthorPhoto: dto.Author.Photo,
		Slides:      slides,
		IsViewed:    dto.IsViewed,
		CreatedAt:   dto.CreatedAt,
	}
}

// do performs one API request and decodes the JSON response into out
// when out is non-nil.
func (s *StoriesImpl) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.ErrUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", apperrors.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("api error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
