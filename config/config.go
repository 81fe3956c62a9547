package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	MemorySeedFile    string `mapstructure:"MEMORY_SEED_FILE"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB     int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB    int    `mapstructure:"REDIS_QUEUE_DB"`
	AvailabilityTTL int    `mapstructure:"AVAILABILITY_CACHE_TTL_SECONDS"`

	// Booking rules.
	CancellationWindowHours int `mapstructure:"CANCELLATION_FEE_WINDOW_HOURS"`
	ReminderLeadHours       int `mapstructure:"REMINDER_LEAD_HOURS"`

	// Payments.
	PaymentGateway        string `mapstructure:"PAYMENT_GATEWAY"`
	GatewayTimeoutSeconds int    `mapstructure:"GATEWAY_TIMEOUT_SECONDS"`
	DefaultCurrency       string `mapstructure:"DEFAULT_CURRENCY"`
	PaymentReturnURL      string `mapstructure:"PAYMENT_RETURN_URL"`
	StripeKey             string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret   string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	OmisePublicKey        string `mapstructure:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey        string `mapstructure:"OMISE_SECRET_KEY"`

	// Push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	NotificationWorkers     int    `mapstructure:"NOTIFICATION_WORKERS"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "homeease")
	viper.SetDefault("MEMORY_SEED_FILE", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("AVAILABILITY_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("CANCELLATION_FEE_WINDOW_HOURS", 24)
	viper.SetDefault("REMINDER_LEAD_HOURS", 24)
	viper.SetDefault("PAYMENT_GATEWAY", "stripe")
	viper.SetDefault("GATEWAY_TIMEOUT_SECONDS", 15)
	viper.SetDefault("DEFAULT_CURRENCY", "USD")
	viper.SetDefault("PAYMENT_RETURN_URL", "")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("OMISE_PUBLIC_KEY", "")
	viper.SetDefault("OMISE_SECRET_KEY", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("NOTIFICATION_WORKERS", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// UsesMemoryStore reports whether repositories should run in-process instead of on MongoDB.
func UsesMemoryStore() bool {
	return AppConfig.DatabaseURL == "memory://"
}

func (c Config) GatewayTimeout() time.Duration {
	return time.Duration(c.GatewayTimeoutSeconds) * time.Second
}

func (c Config) CancellationWindow() time.Duration {
	return time.Duration(c.CancellationWindowHours) * time.Hour
}

func (c Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadHours) * time.Hour
}

func (c Config) AvailabilityCacheTTL() time.Duration {
	return time.Duration(c.AvailabilityTTL) * time.Second
}
