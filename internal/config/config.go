package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the server configuration, read from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration

	AllowedOrigins []string

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	ServiceFeeRate float64
	TaxRate        float64

	RedisAddr     string
	MemcachedHost string
	SearchTTL     time.Duration

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	JobSchedule      string
	PendingExpiresIn time.Duration
}

// Load reads .env (when present) and the environment, falling back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}
	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenTTL:            getEnvDuration("TOKEN_TTL", 24*time.Hour),
		AllowedOrigins:      getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getEnv("CURRENCY", "usd"),
		ServiceFeeRate:      getEnvFloat("SERVICE_FEE_RATE", 0.12),
		TaxRate:             getEnvFloat("TAX_RATE", 0.10),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		MemcachedHost:       getEnv("MEMCACHED_HOST", "localhost:11211"),
		SearchTTL:           getEnvDuration("SEARCH_CACHE_TTL", 2*time.Minute),
		SendGridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail:   os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "Staybnb"),
		TwilioAccountSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:    os.Getenv("TWILIO_FROM_NUMBER"),
		JobSchedule:         getEnv("JOB_SCHEDULE", "@every 15m"),
		PendingExpiresIn:    getEnvDuration("PENDING_EXPIRES_IN", 30*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		log.WithField("key", key).Warn("invalid float, using default")
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.WithField("key", key).Warn("invalid duration, using default")
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
