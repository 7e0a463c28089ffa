package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	AI        AIConfig        `mapstructure:"ai"`
	Mail      MailConfig      `mapstructure:"mail"`
	Client    ClientConfig    `mapstructure:"client"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	Timezone        string        `mapstructure:"timezone"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type AuthConfig struct {
	JWTSecret                string `mapstructure:"jwt_secret"`
	JWTExpiryHours           int    `mapstructure:"jwt_expiry_hours"`
	JWTIssuer                string `mapstructure:"jwt_issuer"`
	RequireEmailVerification bool   `mapstructure:"require_email_verification"`
	OTPExpiryMinutes         int    `mapstructure:"otp_expiry_minutes"`
	OTPMaxAttempts           int    `mapstructure:"otp_max_attempts"`
	RateLimitPerMinute       int    `mapstructure:"rate_limit_per_minute"`
}

type AdminConfig struct {
	Email          string `mapstructure:"email"`
	Password       string `mapstructure:"password"`
	JWTExpiryHours int    `mapstructure:"jwt_expiry_hours"`
}

type StorageConfig struct {
	Driver       string `mapstructure:"driver"` // local | s3
	LocalDir     string `mapstructure:"local_dir"`
	MaxFileBytes int64  `mapstructure:"max_file_bytes"`
	S3Bucket     string `mapstructure:"s3_bucket"`
	S3Region     string `mapstructure:"s3_region"`
	S3Endpoint   string `mapstructure:"s3_endpoint"`
	S3AccessKey  string `mapstructure:"s3_access_key"`
	S3SecretKey  string `mapstructure:"s3_secret_key"`
	S3Prefix     string `mapstructure:"s3_prefix"`
}

type AnalyticsConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | mongo
	GeoIPDatabase   string        `mapstructure:"geoip_database"`
	DashboardTTL    time.Duration `mapstructure:"dashboard_ttl"`
	LiveChannel     string        `mapstructure:"live_channel"`
	TrackRatePerMin int           `mapstructure:"track_rate_per_minute"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"` // gemini | openai | groq
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Enabled reports whether outgoing mail is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.From != ""
}

type ClientConfig struct {
	PublicBaseURL string `mapstructure:"public_base_url"`
	StaticDir     string `mapstructure:"static_dir"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SwaggerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Title    string `mapstructure:"title"`
	Version  string `mapstructure:"version"`
	Host     string `mapstructure:"host"`
	BasePath string `mapstructure:"base_path"`
}

// envVars maps config keys to the environment variables that override them.
var envVars = map[string]string{
	"server.port":                     "PORT",
	"server.mode":                     "SERVER_MODE",
	"server.timeout":                  "SERVER_TIMEOUT",
	"database.host":                   "DB_HOST",
	"database.port":                   "DB_PORT",
	"database.user":                   "DB_USER",
	"database.password":               "DB_PASSWORD",
	"database.name":                   "DB_NAME",
	"database.sslmode":                "DB_SSLMODE",
	"mongo.uri":                       "MONGO_URI",
	"mongo.database":                  "MONGO_DATABASE",
	"redis.host":                      "REDIS_HOST",
	"redis.port":                      "REDIS_PORT",
	"redis.password":                  "REDIS_PASSWORD",
	"redis.db":                        "REDIS_DB",
	"redis.enabled":                   "REDIS_ENABLED",
	"auth.jwt_secret":                 "JWT_SECRET",
	"auth.jwt_issuer":                 "JWT_ISSUER",
	"auth.jwt_expiry_hours":           "JWT_EXPIRY_HOURS",
	"auth.require_email_verification": "REQUIRE_EMAIL_VERIFICATION",
	"admin.email":                     "ADMIN_EMAIL",
	"admin.password":                  "ADMIN_PASSWORD",
	"storage.driver":                  "STORAGE_DRIVER",
	"storage.local_dir":               "STORAGE_LOCAL_DIR",
	"storage.s3_bucket":               "S3_BUCKET",
	"storage.s3_region":               "S3_REGION",
	"storage.s3_endpoint":             "S3_ENDPOINT",
	"storage.s3_access_key":           "S3_ACCESS_KEY",
	"storage.s3_secret_key":           "S3_SECRET_KEY",
	"analytics.driver":                "ANALYTICS_DRIVER",
	"analytics.geoip_database":        "GEOIP_DATABASE",
	"ai.provider":                     "AI_PROVIDER",
	"ai.api_key":                      "GEMINI_API_KEY",
	"ai.model":                        "AI_MODEL",
	"mail.host":                       "SMTP_HOST",
	"mail.port":                       "SMTP_PORT",
	"mail.username":                   "SMTP_USER",
	"mail.password":                   "SMTP_PASS",
	"mail.from":                       "SMTP_FROM",
	"client.public_base_url":          "CLIENT_URL",
	"client.static_dir":               "CLIENT_DIST",
	"logging.level":                   "LOG_LEVEL",
	"logging.format":                  "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("mongo.database", "resumehub")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("auth.jwt_expiry_hours", 24*7)
	v.SetDefault("auth.jwt_issuer", "resumehub")
	v.SetDefault("auth.require_email_verification", true)
	v.SetDefault("auth.otp_expiry_minutes", 10)
	v.SetDefault("auth.otp_max_attempts", 5)
	v.SetDefault("auth.rate_limit_per_minute", 20)
	v.SetDefault("admin.jwt_expiry_hours", 24)
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", filepath.Join("public", "resumes"))
	v.SetDefault("storage.max_file_bytes", 250*1024)
	v.SetDefault("analytics.driver", "postgres")
	v.SetDefault("analytics.dashboard_ttl", time.Minute)
	v.SetDefault("analytics.live_channel", "analytics_events")
	v.SetDefault("analytics.track_rate_per_minute", 120)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("mail.port", 587)
	v.SetDefault("client.public_base_url", "http://localhost:5173")
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("swagger.enabled", true)
}

// LoadConfig reads config.yaml (when present), .env and the environment.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	if envConfigFile := os.Getenv("CONFIG_FILE"); envConfigFile != "" {
		configPath = envConfigFile
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configPath != "" {
		dir := filepath.Dir(configPath)
		file := filepath.Base(configPath)
		ext := filepath.Ext(file)

		v.AddConfigPath(dir)
		v.SetConfigName(strings.TrimSuffix(file, ext))
	} else {
		_, filename, _, _ := runtime.Caller(0)
		pkgConfigDir := filepath.Dir(filename)
		projectRoot := filepath.Join(pkgConfigDir, "..", "..")

		v.AddConfigPath(".")
		v.AddConfigPath(projectRoot)
		v.AddConfigPath(pkgConfigDir)
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for configKey, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		switch envVar {
		case "PORT", "DB_PORT", "REDIS_PORT", "REDIS_DB", "JWT_EXPIRY_HOURS", "SMTP_PORT":
			if intVal, err := strconv.Atoi(value); err == nil {
				v.Set(configKey, intVal)
			}
		case "SERVER_TIMEOUT":
			if d, err := time.ParseDuration(value); err == nil {
				v.Set(configKey, d)
			}
		case "REDIS_ENABLED", "REQUIRE_EMAIL_VERIFICATION":
			if b, err := strconv.ParseBool(value); err == nil {
				v.Set(configKey, b)
			}
		default:
			v.Set(configKey, value)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}
	switch c.Storage.Driver {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "s3" && c.Storage.S3Bucket == "" {
		return errors.New("storage.s3_bucket is required for the s3 driver")
	}
	switch c.Analytics.Driver {
	case "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported analytics driver %q", c.Analytics.Driver)
	}
	if c.Analytics.Driver == "mongo" && c.Mongo.URI == "" {
		return errors.New("mongo.uri is required for the mongo analytics driver")
	}
	return nil
}

// DSN returns the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.Timezone)
}
