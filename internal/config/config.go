package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Editor    EditorConfig
	Invoice   InvoiceConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// JWTConfig only carries what is needed to verify tokens issued by the
// auth service
type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours time.Duration
}

type StorageConfig struct {
	UploadMaxSize int64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// EditorConfig controls the in-memory editing sessions
type EditorConfig struct {
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	MaxSessions     int
}

// InvoiceConfig holds invoice defaults and background job settings
type InvoiceConfig struct {
	DefaultPrefix   string
	NumberWidth     int
	DefaultDueDays  int
	OverdueInterval time.Duration
	IdempotencyTTL  time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()
	return build()
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "invoicer-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "invoicer")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_ISSUER", "invoicer-auth")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("UPLOAD_MAX_SIZE", 10485760)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("EDITOR_SESSION_TTL_MINUTES", 60)
	viper.SetDefault("EDITOR_CLEANUP_INTERVAL_MINUTES", 5)
	viper.SetDefault("EDITOR_MAX_SESSIONS", 20)
	viper.SetDefault("INVOICE_DEFAULT_PREFIX", "INV")
	viper.SetDefault("INVOICE_NUMBER_WIDTH", 4)
	viper.SetDefault("INVOICE_DEFAULT_DUE_DAYS", 30)
	viper.SetDefault("INVOICE_OVERDUE_INTERVAL_MINUTES", 60)
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
}

func build() *Config {
	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			Issuer:      viper.GetString("JWT_ISSUER"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		Storage: StorageConfig{
			UploadMaxSize: viper.GetInt64("UPLOAD_MAX_SIZE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Editor: EditorConfig{
			SessionTTL:      time.Duration(viper.GetInt("EDITOR_SESSION_TTL_MINUTES")) * time.Minute,
			CleanupInterval: time.Duration(viper.GetInt("EDITOR_CLEANUP_INTERVAL_MINUTES")) * time.Minute,
			MaxSessions:     viper.GetInt("EDITOR_MAX_SESSIONS"),
		},
		Invoice: InvoiceConfig{
			DefaultPrefix:   viper.GetString("INVOICE_DEFAULT_PREFIX"),
			NumberWidth:     viper.GetInt("INVOICE_NUMBER_WIDTH"),
			DefaultDueDays:  viper.GetInt("INVOICE_DEFAULT_DUE_DAYS"),
			OverdueInterval: time.Duration(viper.GetInt("INVOICE_OVERDUE_INTERVAL_MINUTES")) * time.Minute,
			IdempotencyTTL:  time.Duration(viper.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
