package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colecta_engine/internal/config"
	"colecta_engine/internal/handlers"
	"colecta_engine/internal/repository"
	"colecta_engine/internal/server"
	"colecta_engine/internal/transport/auth"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := config.Init(setupCtx)
	fmt.Println("✅ All connections successfully established!")

	if err := cfg.CheckConnections(setupCtx); err != nil {
		log.Fatalf("❌ Connection check failed: %v", err)
	}
	fmt.Println("🟢 All connections OK")

	h := handlers.New(cfg.Postgres, cfg.Mongo, cfg.S3)
	tokens := repository.NewPersonalAccessTokenRepository(cfg.Postgres)
	srv := server.NewServer(cfg.Port, h, auth.TokenMiddleware(tokens))

	if err := srv.Run(runCtx); err != nil {
		log.Fatal(err)
	}
}
