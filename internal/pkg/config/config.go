package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is the process configuration, sourced from the environment with an
// optional .env file for local development. Optional backends (postgres,
// redis, rabbitmq) are enabled by their URLs being non-empty; the in-memory
// adapters are used otherwise.
type Config struct {
	ServiceName string
	Env         string
	Addr        string

	PartnerAPIURL   string
	InventoryAPIURL string
	StripeAPIKey    string

	DatabaseURL string
	RedisAddr   string
	AMQPURL     string
}

func Load() Config {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	return Config{
		ServiceName:     getenvDefault("SERVICE_NAME", "exchange"),
		Env:             getenvDefault("ENV", "dev"),
		Addr:            getenvDefault("ADDR", ":8080"),
		PartnerAPIURL:   getenvDefault("PARTNER_API_URL", "http://localhost:9000/api/v1"),
		InventoryAPIURL: getenvDefault("INVENTORY_API_URL", "http://localhost:9000/api/v1"),
		StripeAPIKey:    os.Getenv("STRIPE_API_KEY"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		AMQPURL:         os.Getenv("AMQP_URL"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
