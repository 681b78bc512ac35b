package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port             string
	Env              string
	MongoURI         string
	MongoDBName      string
	StripeWebhookKey string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8090"),
		Env:              getEnv("APP_ENV", "development"),
		MongoURI:         os.Getenv("MONGODB_URI"),
		MongoDBName:      getEnv("MONGODB_DB", "checkout"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}

	if cfg.MongoURI == "" || cfg.StripeWebhookKey == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
