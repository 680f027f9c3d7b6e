package main

import (
	"CloudVault/config"
	"CloudVault/internal/repo"
	"CloudVault/internal/service"
	"CloudVault/internal/storage"
	"CloudVault/router"
	"CloudVault/utils"
	"context"
	"log"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	repo.InitDB()
	repo.InitRedis()
	storage.Init()
	utils.InitCacheManager()

	ctx := context.Background()
	if _, err := service.BootstrapAdmin(ctx); err != nil {
		log.Printf("bootstrap admin failed: %v", err)
	}

	if repo.Redis != nil {
		if err := repo.EnableKeyspaceNotifications(ctx); err != nil {
			log.Printf("enable redis keyspace notifications failed: %v", err)
		} else {
			ready := make(chan struct{})
			go repo.ListenRedisExpired(ctx, repo.Redis, ready)
			<-ready
		}
	}

	r := router.InitRouter()
	if err := r.Run(config.AppConfig.HTTPAddr); err != nil {
		log.Fatalf("http server stopped: %v", err)
	}
}
