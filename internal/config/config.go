package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DBSource             string
	Port                 string
	Env                  string
	PaystackSecretKey    string
	PaystackBaseURL      string
	PaymentCallbackURL   string
	UpgradeThresholdKobo int64
	CORSAllowedOrigins   []string
}

func Load() (*Config, error) {
	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	secretKey := os.Getenv("PAYSTACK_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY environment variable is required")
	}

	threshold, err := strconv.ParseInt(getEnv("UPGRADE_THRESHOLD_KOBO", "1000000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPGRADE_THRESHOLD_KOBO: %w", err)
	}

	return &Config{
		DBSource:             dbSource,
		Port:                 getEnv("SERVER_PORT", "8080"),
		Env:                  getEnv("ENVIRONMENT", "development"),
		PaystackSecretKey:    secretKey,
		PaystackBaseURL:      os.Getenv("PAYSTACK_BASE_URL"),
		PaymentCallbackURL:   os.Getenv("PAYMENT_CALLBACK_URL"),
		UpgradeThresholdKobo: threshold,
		CORSAllowedOrigins:   strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
	}, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
