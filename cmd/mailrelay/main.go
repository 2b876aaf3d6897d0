package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/safehaven-app/go-authflow/relay"
)

func main() {
	// missing .env is fine, the environment may be set by the supervisor
	_ = godotenv.Load()

	cfg := relay.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Printf("warning: %v", err)
	}

	srv := relay.New(relay.NewSMTPSender(cfg))

	if err := srv.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
