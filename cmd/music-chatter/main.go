package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
