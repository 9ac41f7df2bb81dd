package main

import (
	"log"

	"github.com/joho/godotenv"

	"betbot/core/cmd"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	if err := cmd.Run(); err != nil {
		log.Fatalf("betbot: %v", err)
	}
}
