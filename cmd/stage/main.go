//go:build ebiten

package main

import (
	"errors"
	"flag"
	"os"

	"winter-stage/internal/app"
	"winter-stage/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if err := app.SetupLogging(cfg.LogLevel, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("logging")
	}

	theme := render.DefaultTheme()
	if cfg.Theme != "" {
		t, err := render.LoadTheme(cfg.Theme)
		if err != nil {
			log.Fatal().Err(err).Msg("theme")
		}
		theme = t
	}

	ebiten.SetWindowTitle("Winter Stage")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetCursorShape(ebiten.CursorShapePointer)

	game, err := app.New(cfg, theme)
	if err != nil {
		log.Fatal().Err(err).Msg("start")
	}
	log.Info().Int("particles", cfg.Particles).Str("default", cfg.DefaultURI).Msg("stage mounted")

	err = ebiten.RunGame(game)
	game.Close()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal().Err(err).Msg("run")
	}
}
