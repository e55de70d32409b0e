package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emberly-app/emberly-stories/internal/config"
	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestWarmFetchesEverySlide(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("media"))
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Media.StaticRoot = server.URL
	cfg.Media.PrefetchWorkers = 4

	p, err := NewPrefetcher(PrefetcherOpts{
		LC:       fxtest.NewLifecycle(t),
		Config:   cfg,
		Resolver: NewResolver(cfg),
		Logger:   logger.New(logger.Opts{}),
	})
	require.NoError(t, err)

	p.Warm(context.Background(), []domain.Slide{
		{ID: "s1", MediaURL: "a.jpg"},
		{ID: "s2", MediaURL: "b.jpg"},
		{ID: "s3", MediaURL: "data:image/png;base64,xxx"}, // inline, skipped
	})

	require.Eventually(t, func() bool {
		return hits.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)
}
