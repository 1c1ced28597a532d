package multiplayer

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the env-backed server configuration (spec §6.5).
type Config struct {
	Host        string
	Port        int
	Environment string

	AuthenticateJWT bool
	Auth0JWKSURI    string

	HeartbeatCheckInterval time.Duration
	HeartbeatTimeout       time.Duration
}

// ConfigFromEnv builds a Config from the recognized environment variables,
// returning an error describing the first missing required value (spec
// §6.5: "Missing required values abort startup with a clear message").
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Host:        getenv("HOST"),
		Environment: getenv("ENVIRONMENT"),
	}
	if cfg.Host == "" {
		return Config{}, fmt.Errorf("multiplayer: HOST is required")
	}
	if cfg.Environment == "" {
		return Config{}, fmt.Errorf("multiplayer: ENVIRONMENT is required")
	}

	port, err := requireInt(getenv, "PORT")
	if err != nil {
		return Config{}, err
	}
	cfg.Port = port

	cfg.AuthenticateJWT = getenv("AUTHENTICATE_JWT") == "true"
	if cfg.AuthenticateJWT {
		cfg.Auth0JWKSURI = getenv("AUTH0_JWKS_URI")
		if cfg.Auth0JWKSURI == "" {
			return Config{}, fmt.Errorf("multiplayer: AUTH0_JWKS_URI is required when AUTHENTICATE_JWT=true")
		}
	}

	checkSeconds, err := requireInt(getenv, "HEARTBEAT_CHECK_S")
	if err != nil {
		return Config{}, err
	}
	timeoutSeconds, err := requireInt(getenv, "HEARTBEAT_TIMEOUT_S")
	if err != nil {
		return Config{}, err
	}
	cfg.HeartbeatCheckInterval = time.Duration(checkSeconds) * time.Second
	cfg.HeartbeatTimeout = time.Duration(timeoutSeconds) * time.Second
	return cfg, nil
}

func requireInt(getenv func(string) string, key string) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return 0, fmt.Errorf("multiplayer: %s is required", key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("multiplayer: %s must be an integer: %w", key, err)
	}
	return v, nil
}

// ConfigFromOSEnv is a convenience wrapper over ConfigFromEnv using
// os.Getenv.
func ConfigFromOSEnv() (Config, error) {
	return ConfigFromEnv(os.Getenv)
}
