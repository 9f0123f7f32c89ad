package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/omochice/aurorachat/internal/logging"
	"github.com/omochice/aurorachat/internal/relay"
)

func main() {
	addr := flag.String("addr", ":8961", "Address to listen on for both TCP and WebSocket clients")
	debug := flag.Bool("debug", false, "Log every forwarded chunk")
	flag.Parse()

	logger := logging.Console(os.Stderr, *debug)

	srv := relay.New(*addr, logger)
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("relay failed to start")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("shutting down")
	srv.Stop()
	logger.Info().Msg("relay stopped")
}
