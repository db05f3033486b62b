package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables, loading a .env file
// first when one is present. Unset variables leave the config untouched.
//
// Recognized variables:
//
//	FLASHREAD_ADDRESS         bind address
//	FLASHREAD_DATABASE_DSN    PostgreSQL DSN
//	FLASHREAD_SECRET_KEY      JWT signing secret
//	FLASHREAD_ACCESS_TTL      access token lifetime (Go duration)
//	FLASHREAD_REFRESH_TTL     refresh token lifetime (Go duration)
//	FLASHREAD_CORS_ORIGINS    comma-separated origin list
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("FLASHREAD_ADDRESS"); v != "" {
		cfg.EndpointAddr = v
	}
	if v := os.Getenv("FLASHREAD_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("FLASHREAD_SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("FLASHREAD_ACCESS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("FLASHREAD_REFRESH_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RefreshTokenValidityDuration = d
		}
	}
	if v := os.Getenv("FLASHREAD_CORS_ORIGINS"); v != "" {
		cfg.CORSAllowOrigins = strings.Split(v, ",")
	}
}
