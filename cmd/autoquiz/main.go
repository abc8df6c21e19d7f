// autoquiz - answers on-screen vocabulary quizzes by reading the English
// prompt, translating it and clicking the matching Chinese option
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/autoquiz/internal/config"
	"github.com/GriffinCanCode/autoquiz/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}
	slog.SetDefault(newLogger(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer app.close()

	if cfg.StatusAddr != "" {
		go func() {
			if err := server.New(app.history).ListenAndServe(ctx, cfg.StatusAddr); err != nil {
				slog.Error("status server error", "addr", cfg.StatusAddr, "error", err)
			}
		}()
	}

	slog.Info("autoquiz starting",
		"ocr", cfg.OCRBackend, "translator", cfg.Translator, "clicker", cfg.Clicker,
		"fingerprint", cfg.FingerprintMode)
	if err := app.solver.Run(ctx); err != nil {
		slog.Error("solver error", "error", err)
		return 1
	}
	slog.Info("shutdown complete")
	return 0
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
