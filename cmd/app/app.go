package app

import (
	"log"

	"ssocieyt/internal/config"
	"ssocieyt/internal/database"
	"ssocieyt/internal/repository"
	"ssocieyt/internal/service"
	"ssocieyt/internal/storage"
	"ssocieyt/internal/ws"
)

func App(cfg *config.Config) (*database.DB, *ws.Hub, *service.Service) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		log.Fatalf("Не удалось инициализировать MinIO: %v", err)
	}

	// websocket hub lives for the whole process
	hub := ws.NewHub()
	go hub.Run()

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	services := service.NewService(repo, cfg, minioClient, hub)

	return db, hub, services
}
