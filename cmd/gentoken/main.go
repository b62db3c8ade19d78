package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"Murmur/internal/api/middleware"
)

// gentoken signs an HS256 access token for local development
//
// Usage:
//
//	go run ./cmd/gentoken -account 1 -ttl 24h
//
// The secret is read from JWT_SECRET (a .env file is honoured)
func main() {
	accountID := flag.String("account", "", "account id to put in the sub claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	if *accountID == "" {
		log.Fatal("-account is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	token, err := middleware.NewAuthMiddleware(secret, nil).IssueToken(*accountID, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
}
