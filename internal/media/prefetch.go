package media

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emberly-app/emberly-stories/internal/config"
	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/fx"
)

// Prefetcher warms upcoming slide media over a bounded worker pool so a
// slide is already in the HTTP cache when the viewer reaches it.
// Purely advisory: failures are logged at debug and never affect playback.
type Prefetcher struct {
	pool     *ants.Pool
	resolver *Resolver
	http     *http.Client
	logger   logger.Logger
}

type PrefetcherOpts struct {
	fx.In
	LC fx.Lifecycle

	Config   *config.Config
	Resolver *Resolver
	Logger   logger.Logger
}

func NewPrefetcher(opts PrefetcherOpts) (*Prefetcher, error) {
	pool, err := ants.NewPool(opts.Config.Media.PrefetchWorkers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	p := &Prefetcher{
		pool:     pool,
		resolver: opts.Resolver,
		http:     &http.Client{Timeout: 30 * time.Second},
		logger:   opts.Logger,
	}

	opts.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Release()
			return nil
		},
	})

	return p, nil
}

// Warm schedules a fetch for every slide. A full pool drops the job
// rather than queueing: prefetch that has to wait is not worth doing.
func (p *Prefetcher) Warm(ctx context.Context, slides []domain.Slide) {
	for _, slide := range slides {
		url := p.resolver.Resolve(slide.MediaURL)
		if url == "" || strings.HasPrefix(url, "data:") {
			continue
		}

		slideID := slide.ID
		err := p.pool.Submit(func() {
			p.fetch(ctx, slideID, url)
		})
		if err != nil {
			p.logger.Debug("Prefetch pool full, skipping slide", "slide_id", slideID)
		}
	}
}

func (p *Prefetcher) fetch(ctx context.Context, slideID, url string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.logger.Debug("Prefetch request build failed", "slide_id", slideID, "error", err)
		return
	}

	resp, err := p.http.Do(req)
	if err != nil {
		p.logger.Debug("Prefetch failed", "slide_id", slideID, "error", err)
		return
	}
	defer resp.Body.Close()

	n, _ := io.Copy(io.Discard, resp.Body)
	p.logger.Debug("Prefetched slide media", "slide_id", slideID, "bytes", n, "status", resp.StatusCode)
}
