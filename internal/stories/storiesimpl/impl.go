package storiesimpl

import (
	"net/http"

	"github.com/emberly-app/emberly-stories/internal/config"
	"github.com/emberly-app/emberly-stories/internal/stories"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type StoriesImpl struct {
	baseURL string
	token   string
	http    *http.Client
	logger  logger.Logger
}

func New(opts Opts) *StoriesImpl {
	return &StoriesImpl{
		baseURL: opts.Config.API.BaseURL,
		token:   opts.Config.API.Token,
		http: &http.Client{
			Timeout: opts.Config.API.Timeout,
		},
		logger: opts.Logger,
	}
}

var _ stories.Client = (*StoriesImpl)(nil)
