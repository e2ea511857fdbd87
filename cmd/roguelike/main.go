// Package main is the entry point for Roguelike3D.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/config"
	"github.com/Faultbox/roguelike3d/internal/game"
	"github.com/Faultbox/roguelike3d/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	code := run(cfg)
	logger.Sync()
	os.Exit(code)
}

func run(cfg *config.Config) int {
	logger.Info("=== Roguelike3D ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.DumpModels() {
		paths, err := game.WriteModels(cfg)
		if err != nil {
			logger.Error("failed to write models", zap.Error(err))
			return 1
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return 0
	}

	g, err := game.New(cfg)
	if err != nil {
		logger.Error("failed to create game", zap.Error(err))
		return 1
	}
	defer g.Close()

	if err := g.Run(); err != nil {
		logger.Error("game error", zap.Error(err))
		return 1
	}

	logger.Info("game closed normally")
	return 0
}
