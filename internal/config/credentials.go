package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables holding the server-to-server OAuth app
// credentials, created on the provider's app marketplace.
const (
	EnvClientID     = "ZOOM_CLIENT_ID"
	EnvClientSecret = "ZOOM_CLIENT_SECRET"
	EnvAccountID    = "ZOOM_ACCOUNT_ID"
)

// Credentials are the client credentials for the account_credentials
// token exchange. They are opaque strings, loaded once at startup and
// immutable for the process lifetime.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccountID    string
}

// LoadCredentials reads credentials from the environment, first loading
// a .env file when one exists. envFile overrides the default ".env"
// lookup; pass "" to use the default.
//
// A missing variable is a fatal configuration error, reported before
// any network call is made.
func LoadCredentials(envFile string) (*Credentials, error) {
	// Best effort: a missing .env file is fine as long as the variables
	// are set some other way.
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	creds := &Credentials{
		ClientID:     strings.TrimSpace(os.Getenv(EnvClientID)),
		ClientSecret: strings.TrimSpace(os.Getenv(EnvClientSecret)),
		AccountID:    strings.TrimSpace(os.Getenv(EnvAccountID)),
	}

	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if creds.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if creds.AccountID == "" {
		missing = append(missing, EnvAccountID)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return creds, nil
}
