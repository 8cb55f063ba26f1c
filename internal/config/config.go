package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Paddle   PaddleConfig
	Billing  BillingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type PaddleConfig struct {
	VendorID       string
	VendorAuthCode string
	WebhookSecret  string
	Production     bool
}

type BillingConfig struct {
	// PastDueGraceDays is how long a past_due subscription keeps its
	// entitlement while the provider retries payment.
	PastDueGraceDays int
	TrialDays        int
	MonthlyPlanID    string
	YearlyPlanID     string
	MonthlyPrice     float64
	YearlyPrice      float64
	Currency         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "CalExt"),
		},
		Paddle: PaddleConfig{
			VendorID:       getEnv("PADDLE_VENDOR_ID", ""),
			VendorAuthCode: getEnv("PADDLE_VENDOR_AUTH_CODE", ""),
			WebhookSecret:  getEnv("PADDLE_WEBHOOK_SECRET", ""),
			Production:     getEnv("PADDLE_ENV", "sandbox") == "production",
		},
		Billing: BillingConfig{
			PastDueGraceDays: getEnvAsInt("PAST_DUE_GRACE_DAYS", 7),
			TrialDays:        getEnvAsInt("TRIAL_DAYS", 14),
			MonthlyPlanID:    getEnv("PADDLE_MONTHLY_PLAN_ID", ""),
			YearlyPlanID:     getEnv("PADDLE_YEARLY_PLAN_ID", ""),
			MonthlyPrice:     getEnvAsFloat("MONTHLY_PRICE", 4.99),
			YearlyPrice:      getEnvAsFloat("YEARLY_PRICE", 49.99),
			Currency:         getEnv("BILLING_CURRENCY", "USD"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
