package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config representa la configuración del servicio
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Inngest  InngestConfig
	Logging  LoggingConfig
	CORS     CORSConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// DatabaseConfig representa la configuración de la base de datos
type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectRetries  int
	RetryDelay      time.Duration
	AutoMigrate     bool
}

// RedisConfig representa la configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	IndexTTL time.Duration
}

// StorageConfig representa la configuración del object storage (MinIO/S3)
type StorageConfig struct {
	Host      string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
	PathStyle bool
}

// InngestConfig representa la configuración de Inngest
type InngestConfig struct {
	EventKey string
	AppID    string
	Dev      bool
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// CORSConfig representa los orígenes permitidos
type CORSConfig struct {
	AllowedOrigins []string
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// El archivo .env es opcional
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8000"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("PGHOST", "localhost"),
			Port:            getEnv("PGPORT", "5432"),
			User:            getEnv("PGUSER", "postgres"),
			Password:        getEnv("PGPASSWORD", "postgres"),
			Name:            getEnv("PGDATABASE", "inventory"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 2*time.Minute),
			ConnectRetries:  getEnvAsInt("DB_CONNECT_RETRIES", 3),
			RetryDelay:      getEnvAsDuration("DB_RETRY_DELAY", 2*time.Second),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			IndexTTL: getEnvAsDuration("IMAGE_INDEX_TTL", 24*time.Hour),
		},
		Storage: StorageConfig{
			Host:      getEnv("MINIO_HOST", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET_NAME", "openbarcode"),
			Region:    getEnv("MINIO_REGION", "us-east-1"),
			Secure:    getEnvAsBool("MINIO_SECURE", true),
			PathStyle: getEnvAsBool("MINIO_PATH_STYLE", true),
		},
		Inngest: InngestConfig{
			EventKey: getEnv("INNGEST_EVENT_KEY", ""),
			AppID:    getEnv("INNGEST_APP_ID", "catalog-service"),
			Dev:      getEnvAsBool("INNGEST_DEV", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	return config, nil
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool obtiene una variable de entorno como booleano
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList obtiene una lista separada por comas
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetDSN retorna la cadena de conexión a la base de datos.
// DATABASE_URL tiene prioridad sobre las variables PG*.
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// RedisEnabled indica si Redis está configurado
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// StorageEnabled indica si el object storage está configurado
func (c *Config) StorageEnabled() bool {
	return c.Storage.Host != "" && c.Storage.AccessKey != "" && c.Storage.SecretKey != ""
}

// Endpoint retorna la URL base del object storage.
// MINIO_HOST puede venir con o sin esquema y con path; sólo se conserva el host.
func (s StorageConfig) Endpoint() string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.Host, "https://"), "http://")
	host = strings.SplitN(host, "/", 2)[0]
	if host == "" {
		return ""
	}
	if s.Secure {
		return "https://" + host
	}
	return "http://" + host
}
