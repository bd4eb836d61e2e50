package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/constants"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type StoreConfig struct {
	Driver string
	// SeedSamples - заполнить пустое хранилище в памяти примерами объявлений
	SeedSamples bool
}

type DBconfig struct {
	URL      string
	MaxConns int
}

type MongoConfig struct {
	URI      string
	Database string
}

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
}

type AuthConfig struct {
	// BackendURL пустой - используется встроенный бэкенд
	BackendURL         string
	SigningKey         string
	TokenTTL           time.Duration
	RevalidateInterval time.Duration
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type VisitConfig struct {
	IdleTTL time.Duration
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Store        StoreConfig
	Database     DBconfig
	Mongo        MongoConfig
	Rest         RESTconfig
	Auth         AuthConfig
	RabbitMQ     RabbitMQConfig
	Visits       VisitConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env необязателен: без него используются переменные процесса.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "listing-browser")

	cfg.Store.Driver = strings.ToLower(getEnvAsString("STORE_DRIVER", StoreMemory))
	cfg.Store.SeedSamples = getEnvAsBool("SEED_SAMPLE_LISTINGS", true)

	switch cfg.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		cfg.Database.URL = os.Getenv("DATABASE_URL")
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for STORE_DRIVER=postgres")
		}
		cfg.Database.MaxConns = getEnvAsInt("DATABASE_MAX_CONNS", 10)
	case StoreMongo:
		cfg.Mongo.URI = os.Getenv("MONGO_URI")
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable is required for STORE_DRIVER=mongo")
		}
		cfg.Mongo.Database = getEnvAsString("MONGO_DATABASE", "real_estate")
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (expected memory, postgres or mongo)", cfg.Store.Driver)
	}

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})

	cfg.Auth.BackendURL = os.Getenv("AUTH_BACKEND_URL")
	cfg.Auth.RevalidateInterval = getEnvAsDuration("SESSION_REVALIDATE_INTERVAL", time.Minute)
	if cfg.Auth.BackendURL == "" {
		cfg.Auth.SigningKey = os.Getenv("JWT_SIGNING_KEY")
		if cfg.Auth.SigningKey == "" {
			return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable is required when AUTH_BACKEND_URL is not set")
		}
		cfg.Auth.TokenTTL = getEnvAsDuration("JWT_TOKEN_TTL", time.Hour)
	}

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.Exchange = getEnvAsString("EVENTS_EXCHANGE", constants.EventsExchange)

	cfg.Visits.IdleTTL = getEnvAsDuration("VISIT_IDLE_TTL", 30*time.Minute)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s: '%s'. Using default: %d\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s: '%s'. Using default: %t\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return valueBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s: '%s'. Using default: %s\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsList разбирает список через запятую.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
