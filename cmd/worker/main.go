package main

import (
	"CloudVault/config"
	"CloudVault/internal/repo"
	"CloudVault/internal/worker"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config.InitConfig()
	if !config.AppConfig.NotifyEnabled {
		log.Fatalln("notify worker: NOTIFY_ENABLED is false, nothing to consume")
	}
	repo.InitDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("notify worker started")
	if err := worker.RunNotifyWorker(ctx); err != nil {
		log.Fatalf("notify worker stopped: %v", err)
	}
}
