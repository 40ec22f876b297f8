package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/pkg/auth"
)

// Hashes a staff PIN for manual provisioning:
//
//	go run scripts/generate_pin.go 2460
func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: generate_pin <pin>")
	}

	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config failed:", err)
	}

	hash, err := auth.NewPINManager(cfg).HashPIN(os.Args[1])
	if err != nil {
		log.Fatal("hash failed:", err)
	}

	fmt.Println(hash)
}
