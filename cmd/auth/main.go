package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/zcorvus/zauth/internal/auth/app"
)

func main() {
	// Load .env if present. Real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
