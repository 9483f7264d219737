package config

import (
	"os"
	"strconv"
	"time"
)

// Defaults for token lifetimes. Access tokens are short-lived; refresh
// tokens are long-lived and are not revocable before expiry.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Server captures process-wide configuration. The value is built once at
// startup and threaded into components by constructor; nothing reads the
// environment after FromEnv returns.
type Server struct {
	Addr        string
	DatabaseURL string

	// Token signing. Algorithm selects the JWT signing method (HS256,
	// HS384, HS512, RS256, ES256). HMAC methods use SigningSecret; the
	// asymmetric methods read a PEM private key from SigningKeyFile.
	TokenAlgorithm string
	SigningSecret  string
	SigningKeyFile string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// BcryptCost tunes the password hashing work factor. Zero means the
	// bcrypt default.
	BcryptCost int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:            getEnv("CLAVIS_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TokenAlgorithm:  getEnv("TOKEN_ALGORITHM", "HS256"),
		SigningSecret:   getEnv("TOKEN_SIGNING_SECRET", "dev-secret-key-change-in-production"),
		SigningKeyFile:  os.Getenv("TOKEN_SIGNING_KEY_FILE"),
		AccessTokenTTL:  DefaultAccessTokenTTL,
		RefreshTokenTTL: DefaultRefreshTokenTTL,
	}

	if d, err := time.ParseDuration(os.Getenv("ACCESS_TOKEN_TTL")); err == nil && d > 0 {
		cfg.AccessTokenTTL = d
	}
	if d, err := time.ParseDuration(os.Getenv("REFRESH_TOKEN_TTL")); err == nil && d > 0 {
		cfg.RefreshTokenTTL = d
	}
	if cost, err := strconv.Atoi(os.Getenv("BCRYPT_COST")); err == nil && cost > 0 {
		cfg.BcryptCost = cost
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
