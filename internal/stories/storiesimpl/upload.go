package storiesimpl

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/emberly-app/emberly-stories/internal/stories"
	apperrors "github.com/emberly-app/emberly-stories/pkg/errors"
)

func (s *StoriesImpl) CreateStory(ctx context.Context, media stories.Upload) error {
	if len(media.Data) == 0 {
		return apperrors.ErrInvalidInput
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename="%s"`, media.FileName))
	if media.ContentType != "" {
		header.Set("Content-Type", media.ContentType)
	}

	part, err := writer.CreatePart(header)
	if err != nil {
		return apperrors.Wrap(err, "create multipart body")
	}
	if _, err := part.Write(media.Data); err != nil {
		return apperrors.Wrap(err, "write media payload")
	}
	if err := writer.Close(); err != nil {
		return apperrors.Wrap(err, "finish multipart body")
	}

	if err := s.do(ctx, http.MethodPost, "/v1/stories", &buf, writer.FormDataContentType(), nil); err != nil {
		return apperrors.Wrap(err, "create story")
	}

	s.logger.Info("Story uploaded", "file", media.FileName, "bytes", len(media.Data))
	return nil
}
