// Package app assembles the weather bot: configuration, infrastructure,
// dialog engine, and telegram wiring.
package app

import (
	"fmt"

	"github.com/m3rciful/weatherbot/core/bootstrap"
	"github.com/m3rciful/weatherbot/core/telegram/router"
	"github.com/m3rciful/weatherbot/core/telegram/state"
	"github.com/m3rciful/weatherbot/internal/bot"
	"github.com/m3rciful/weatherbot/internal/dialog"
	"github.com/m3rciful/weatherbot/internal/repository/users"
	"github.com/m3rciful/weatherbot/internal/weatherapi"

	tg "github.com/m3rciful/weatherbot/core/telegram"
)

// App holds the assembled application.
type App struct {
	cfg    *Config
	module *bot.Module
}

// Bootstrap initializes the logger, database, and migrations, then builds the
// dialog engine and its telegram module. A storage failure here aborts startup.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	infra, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	repo := users.New(infra.DB)
	weather := weatherapi.NewClient(cfg.Weather)
	sessions := state.NewMemoryManager()
	engine := dialog.NewEngine(sessions, repo, weather)

	return &App{
		cfg:    cfg,
		module: bot.New(engine),
	}, nil
}

// TelegramRunOptions wires routes, middleware, and the command registry.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()
	a.module.Register(reg)

	routes := router.TextRoutes(a.module, reg, router.TextOptions{})
	routes = append(routes, router.CommandRoutes(reg)...)

	return tg.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
	}, nil
}
