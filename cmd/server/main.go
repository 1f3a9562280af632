package main

import (
	"log"
	"net/http"
	"os"

	"catamaze/server/config"
	"catamaze/server/handlers"
	"catamaze/server/maps"
	"catamaze/server/persistence"
	"catamaze/server/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)

	// Initialize storage
	var db persistence.Storage
	if cfg.DBType == config.StorePostgres {
		db, err = persistence.NewPostgresStore(cfg.DatabaseURL)
		log.Println("Using PostgreSQL persistence")
	} else {
		db, err = persistence.NewJSONStore(cfg.DBFile)
		log.Println("Using JSON persistence")
	}
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}
	defer db.Close()

	grid, err := maps.LoadFile(cfg.MapFile, cfg.MapSize)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}

	gameService, err := services.NewGameService(services.Options{
		Grid:               grid,
		Store:              db,
		PersonaDir:         cfg.PersonaDir,
		MaxConcurrentGames: cfg.MaxConcurrentGames,
		Seed:               cfg.Seed,
		Logger:             logger,
	})
	if err != nil {
		log.Fatalf("Failed to initialize game service: %v", err)
	}
	clientManager := handlers.NewClientManager()

	http.Handle("/ws", handlers.NewHTTPHandler(gameService, clientManager))

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, nil))
}
