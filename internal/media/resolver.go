package media

import (
	"strings"

	"github.com/emberly-app/emberly-stories/internal/config"
)

// Resolver maps a possibly-relative media locator to a fetchable URL.
type Resolver struct {
	staticRoot string
}

func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{
		staticRoot: strings.TrimRight(cfg.Media.StaticRoot, "/"),
	}
}

// Resolve handles three cases: already-absolute, already-inline-encoded,
// and relative to the static media root.
func (r *Resolver) Resolve(raw string) string {
	switch {
	case raw == "":
		return raw
	case strings.HasPrefix(raw, "data:"):
		return raw
	case strings.Contains(raw, "://"):
		return raw
	default:
		return r.staticRoot + "/" + strings.TrimLeft(raw, "/")
	}
}
