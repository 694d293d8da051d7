package main

import (
	"log"
	"os"

	"weather-server/confs"
	"weather-server/db"
	"weather-server/logger"
	"weather-server/server"
)

func main() {
	// load config
	cfg, err := confs.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	_, closeLog := logger.Setup(cfg.Log, os.Stdout)
	defer closeLog()

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer database.Close()

	srv, err := server.NewServer(database, cfg)
	if err != nil {
		log.Fatalf("Failed to set up server: %v", err)
	}
	if err := srv.Start(); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
