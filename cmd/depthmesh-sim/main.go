// Package main runs a depth-sensor surface reconstruction simulation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/unixpickle/essentials"
	"go.uber.org/zap"

	"github.com/Faultbox/depthmesh/internal/config"
	"github.com/Faultbox/depthmesh/internal/logger"
	"github.com/Faultbox/depthmesh/internal/sim"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		essentials.Die("Config error:", err)
	}

	if path := config.WriteConfigPath(); path != "" {
		essentials.Must(cfg.SaveTo(path))
		fmt.Println("Wrote config to", path)
		return
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		essentials.Die("Logger error:", err)
	}

	log.Info("=== depthmesh simulation ===")
	log.Sugar().Debugf("Config: %+v", cfg)

	if err := run(cfg, log); err != nil {
		log.Error("simulation failed", zap.Error(err))
		logger.Sync(log)
		os.Exit(1)
	}
	logger.Sync(log)
}

func run(cfg *config.Config, log *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := sim.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = s.Run(ctx)
	return err
}
