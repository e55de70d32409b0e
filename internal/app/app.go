package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/emberly-app/emberly-stories/internal/config"
	"github.com/emberly-app/emberly-stories/internal/media"
	"github.com/emberly-app/emberly-stories/internal/page"
	"github.com/emberly-app/emberly-stories/internal/playback"
	"github.com/emberly-app/emberly-stories/internal/ratelimit"
	"github.com/emberly-app/emberly-stories/internal/stories"
	"github.com/emberly-app/emberly-stories/internal/stories/storiesimpl"
	"github.com/emberly-app/emberly-stories/internal/toast"
	"github.com/emberly-app/emberly-stories/internal/tui"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		func() clockwork.Clock { return clockwork.NewRealClock() },
		func(cfg *config.Config) ratelimit.Limiter {
			return ratelimit.NewInMemoryLimiter(1, cfg.Reactions.Per, cfg.Reactions.Burst)
		},
	),
	fx.Provide(
		fx.Annotate(
			storiesimpl.New,
			fx.As(new(stories.Client)),
		),
		media.NewResolver,
		media.NewPrefetcher,
		playback.New,
		toast.NewManager,
		page.New,
		tui.NewRelay,
		tui.New,
	),
	fx.Invoke(run),
)

func run(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	log logger.Logger,
	controller *page.Controller,
	engine *playback.Engine,
	relay *tui.Relay,
	model tui.Model,
) {
	var program *tea.Program

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			controller.SetListener(relay)

			program = tea.NewProgram(model, tea.WithAltScreen())
			relay.SetProgram(program)

			go func() {
				if _, err := program.Run(); err != nil {
					log.Error("UI loop failed", "error", err)
				}
				_ = shutdowner.Shutdown()
			}()

			log.Info("Stories client started")
			return nil
		},
		OnStop: func(context.Context) error {
			// Stops the tick timer before the UI loop winds down.
			engine.Close()
			if program != nil {
				program.Quit()
			}
			return nil
		},
	})
}
