package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"charter-concierge/internal/infrastructure/config"
	"charter-concierge/internal/infrastructure/oauth"
	"charter-concierge/pkg/logger"
)

// Fetches a charter backend token with the configured client credentials and prints it.
func main() {
	log := logger.NewLogger(true)
	defer log.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	auth := oauth.NewBackendOAuth(cfg.BackendClientID, cfg.BackendClientSecret, cfg.BackendTokenURL, cfg.BackendScopes, log)
	if !auth.Enabled() {
		fmt.Fprintln(os.Stderr, "BACKEND_CLIENT_ID and BACKEND_TOKEN_URL must be set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := auth.FetchToken(ctx)
	if err != nil {
		log.Fatal("Failed to fetch token", "error", err)
	}

	out, err := auth.TokenToJSON(token)
	if err != nil {
		log.Fatal("Failed to encode token", "error", err)
	}
	fmt.Println(out)
}
