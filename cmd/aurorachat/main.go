package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/omochice/aurorachat/internal/chatlog"
	"github.com/omochice/aurorachat/internal/config"
	"github.com/omochice/aurorachat/internal/conn"
	"github.com/omochice/aurorachat/internal/history"
	"github.com/omochice/aurorachat/internal/host/console"
	"github.com/omochice/aurorachat/internal/host/gamepad"
	"github.com/omochice/aurorachat/internal/logging"
	"github.com/omochice/aurorachat/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "aurorachat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.Debug, cfg.LogDir, time.Now())
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := chatlog.New(cfg.LogCapacity, cfg.LineLimit)
	store := openHistory(cfg, logger)
	restoreHistory(store, log, logger)

	dialer := conn.NewDialer(cfg.Server, cfg.DialTimeout, cfg.PollWindow)
	mgr := conn.New(dialer, log, logger, conn.Options{
		RecvBufferSize:       cfg.RecvBufferSize,
		WriteTimeout:         cfg.WriteTimeout,
		ResendAfterReconnect: cfg.ResendAfterReconnect,
	})
	defer mgr.Close()

	// A failed connect is already in the chat log; the first send retries.
	_ = mgr.Connect(ctx)

	opts := session.DefaultOptions()
	opts.InputCapacity = cfg.InputCapacity
	sess, err := session.New(mgr, log, opts, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("server", cfg.Server).Str("ui", cfg.UI).Msg("starting")
	switch cfg.UI {
	case config.UIGamepad:
		err = gamepad.Run(ctx, sess, cfg.FrameInterval, logger)
	default:
		err = runConsole(ctx, sess, cfg.FrameInterval, logger)
	}

	saveHistory(store, log, logger)
	return err
}

func runConsole(ctx context.Context, sess *session.Session, frame time.Duration, logger zerolog.Logger) error {
	screen, err := console.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	return console.New(screen, sess, frame, logger).Run(ctx)
}

func openHistory(cfg config.Config, logger zerolog.Logger) *history.Store {
	if cfg.NoHistory {
		return nil
	}
	path := cfg.HistoryPath
	if path == "" {
		p, err := history.DefaultPath()
		if err != nil {
			logger.Warn().Err(err).Msg("no history location")
			return nil
		}
		path = p
	}
	return history.NewStore(path)
}

func restoreHistory(store *history.Store, log *chatlog.Log, logger zerolog.Logger) {
	if store == nil {
		return
	}
	snap, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Str("path", store.Path()).Msg("failed to load history")
		return
	}
	for _, line := range snap.Lines {
		log.Add(line)
	}
}

func saveHistory(store *history.Store, log *chatlog.Log, logger zerolog.Logger) {
	if store == nil {
		return
	}
	snap := history.NewSnapshot(log.Lines(), time.Now(), conn.IsStatusLine)
	if err := store.Save(snap); err != nil {
		logger.Warn().Err(err).Str("path", store.Path()).Msg("failed to save history")
	}
}
