package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nextlevelbuilder/gatehook/internal/actions"
	"github.com/nextlevelbuilder/gatehook/internal/bridge"
	"github.com/nextlevelbuilder/gatehook/internal/channelinfo"
	"github.com/nextlevelbuilder/gatehook/internal/config"
	"github.com/nextlevelbuilder/gatehook/internal/discordshell"
	"github.com/nextlevelbuilder/gatehook/internal/webhook"
)

// shutdownGrace bounds how long runBridge waits for the gateway session to
// close cleanly after a shutdown signal before returning anyway.
const shutdownGrace = 10 * time.Second

func runBridge() error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if verbose || cfg.Verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	session, err := discordshell.NewSession(cfg)
	if err != nil {
		slog.Error("failed to create discord session", "error", err)
		os.Exit(1)
	}

	sender := webhook.New(cfg.Webhook, slog.Default())
	channels := channelinfo.New(channelinfo.NewSessionReader(session), slog.Default())
	executor := actions.New(actions.NewDiscordSession(session), channels, slog.Default())
	cell := bridge.NewFilterCell()
	b := bridge.New(cfg, cell, sender, channels, executor, slog.Default())

	shell, err := discordshell.New(session, cfg, b, slog.Default())
	if err != nil {
		slog.Error("failed to build gateway shell", "error", err)
		os.Exit(1)
	}

	if err := shell.Open(); err != nil {
		slog.Error("failed to open gateway session", "error", err)
		os.Exit(1)
	}
	slog.Info("gatehook: bridge running")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("gatehook: shutting down")
	done := make(chan error, 1)
	go func() { done <- shell.Close() }()
	select {
	case err := <-done:
		if err != nil {
			slog.Error("error closing gateway session", "error", err)
		}
	case <-time.After(shutdownGrace):
		slog.Warn("gatehook: shutdown grace period elapsed, exiting anyway")
	}

	return nil
}
