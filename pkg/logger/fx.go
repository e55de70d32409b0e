package logger

import (
	"github.com/emberly-app/emberly-stories/internal/config"
	"go.uber.org/fx"
)

var FxOption = fx.Annotate(
	func(cfg *config.Config) *Impl {
		return New(
			Opts{
				Env:       cfg.App.Env,
				SentryDSN: cfg.Sentry.DSN,
			},
		)
	},
	fx.As(new(Logger)),
)
