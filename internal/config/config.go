package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup. Database and
// redis connection settings are read by pkg/db directly.
type Config struct {
	BindAddress string
	HomeURL     string

	JWTSecret string

	ThumbnailsDir string
	UploadsDir    string
	StateFile     string

	ArgonBaseURL string

	DiscordClientID     string
	DiscordClientSecret string

	CloudflareAPIKey string
	CloudflareZoneID string

	PurgeBaseDelay time.Duration
}

func Load() (*Config, error) {
	// .env is optional in production, the variables may come from the real env
	_ = godotenv.Load()

	cfg := &Config{
		BindAddress:         getEnv("BIND_ADDRESS", "0.0.0.0:3000"),
		HomeURL:             os.Getenv("HOME_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		ThumbnailsDir:       getEnv("THUMBNAILS_DIR", "thumbnails"),
		UploadsDir:          getEnv("UPLOADS_DIR", "uploads"),
		StateFile:           getEnv("STATE_FILE", "state.json"),
		ArgonBaseURL:        getEnv("ARGON_BASE_URL", "https://argon.globed.dev/v1"),
		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		CloudflareAPIKey:    os.Getenv("CLOUDFLARE_API_KEY"),
		CloudflareZoneID:    os.Getenv("CLOUDFLARE_ZONE_ID"),
		PurgeBaseDelay:      30 * time.Second,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
