package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-me"

type Config struct {
	Port        string
	DatabaseDSN string
	JWTSecret   string
	Env         string

	// Presidents get short-lived tokens, everyone else the default TTL.
	AccessTokenTTLHours      int
	PresidentTokenTTLMinutes int

	UploadDir         string
	PresidentUsername string
	PresidentPassword string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Port:                     getenv("APP_PORT", "8080"),
		DatabaseDSN:              getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=blinders port=5432 sslmode=disable TimeZone=UTC"),
		JWTSecret:                getenv("JWT_SECRET", defaultJWTSecret),
		Env:                      getenv("APP_ENV", "dev"),
		AccessTokenTTLHours:      getenvInt("ACCESS_TOKEN_TTL_HOURS", 24),
		PresidentTokenTTLMinutes: getenvInt("PRESIDENT_TOKEN_TTL_MINUTES", 60),
		UploadDir:                getenv("UPLOAD_DIR", "uploads"),
		PresidentUsername:        getenv("PRESIDENT_USERNAME", "president-LordBandhan"),
		PresidentPassword:        getenv("PRESIDENT_PASSWORD", ""),
	}
}

// Validate rejects configurations that must never reach a running server.
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: port must not be empty")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("config: database DSN must not be empty")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == defaultJWTSecret {
		return errors.New("config: default JWT secret is not allowed outside dev")
	}
	return nil
}
