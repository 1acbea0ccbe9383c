package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"audiobook/app/server"
	"audiobook/config"
	"audiobook/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Debug)

	s, err := server.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to start", "err", err)
	}

	go func() {
		if err := s.Run(); err != nil {
			log.Fatal("server error", "err", err)
		}
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Info("received shutdown signal, shutting down server...")
	s.Stop()
}
