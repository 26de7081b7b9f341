package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	StorageBackend string // "memory" or "firestore"
	GCPProjectID   string

	// Signed-in identity. Empty means signed out; the core then treats
	// every send/subscribe as a no-op.
	SelfUID string

	// Default conversation partner for the CLI.
	PartnerUID    string
	PartnerEmail  string
	PartnerAvatar string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads all env vars and builds the config
func Load() *Config {
	// .env is optional, for local dev.
	_ = godotenv.Load()

	cfg := &Config{
		StorageBackend: getEnv("MIRROR_STORAGE_BACKEND", "memory"),
		GCPProjectID:   getEnv("MIRROR_GCP_PROJECT", ""),

		SelfUID: getEnv("MIRROR_SELF_UID", ""),

		PartnerUID:    getEnv("MIRROR_PARTNER_UID", ""),
		PartnerEmail:  getEnv("MIRROR_PARTNER_EMAIL", ""),
		PartnerAvatar: getEnv("MIRROR_PARTNER_AVATAR", ""),
	}

	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		log.Fatal("MIRROR_GCP_PROJECT must be set with the firestore backend")
	}

	return cfg
}
