package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OTP      OTPConfig      `mapstructure:"otp"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	HTTPS           bool          `mapstructure:"https"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Name             string        `mapstructure:"name"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	SSLRootCert      string        `mapstructure:"ssl_root_cert"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
	ConnectAttempts  int           `mapstructure:"connect_attempts"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	PoolSize int    `mapstructure:"pool_size"`

	BreakerThreshold int           `mapstructure:"breaker_threshold"` // consecutive failures before skipping Redis
	BreakerReset     time.Duration `mapstructure:"breaker_reset"`
}

// OTPConfig controls authenticator account storage and code generation
type OTPConfig struct {
	Issuer           string `mapstructure:"issuer"`
	EncryptionKey    string `mapstructure:"encryption_key"` // 32 bytes: hex, base64 or raw
	DefaultAlgorithm string `mapstructure:"default_algorithm"`
	DefaultDigits    int    `mapstructure:"default_digits"`
	DefaultPeriod    int    `mapstructure:"default_period"`
	VerifySkew       uint   `mapstructure:"verify_skew"`
	CodeRateLimit    int    `mapstructure:"code_rate_limit"` // codes per user per minute
	CacheCodes       bool   `mapstructure:"cache_codes"`
	QRSize           int    `mapstructure:"qr_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type SecurityConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"` // HS256 key of the session service issuing user tokens
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/fintrack/")

	v.AutomaticEnv()
	v.SetEnvPrefix("FINTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("otp.encryption_key", "OTP_ENCRYPTION_KEY")
	v.BindEnv("security.jwt_secret", "JWT_SECRET")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.breaker_threshold", 5)
	v.SetDefault("redis.breaker_reset", 30*time.Second)
	v.SetDefault("otp.issuer", "Financial Tracking")
	v.SetDefault("otp.default_algorithm", "SHA1")
	v.SetDefault("otp.default_digits", 6)
	v.SetDefault("otp.default_period", 30)
	v.SetDefault("otp.verify_skew", 1)
	v.SetDefault("otp.code_rate_limit", 60)
	v.SetDefault("otp.cache_codes", true)
	v.SetDefault("otp.qr_size", 256)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.max_age", 600)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Load from env if not in config
	if cfg.Database.Password == "" {
		cfg.Database.Password = os.Getenv("DB_PASSWORD")
	}
	if cfg.Redis.Password == "" {
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
	if cfg.OTP.EncryptionKey == "" {
		cfg.OTP.EncryptionKey = os.Getenv("OTP_ENCRYPTION_KEY")
	}
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = os.Getenv("JWT_SECRET")
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	if cfg.OTP.EncryptionKey == "" {
		return nil, fmt.Errorf("OTP_ENCRYPTION_KEY environment variable is required")
	}
	if cfg.Security.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "require"
	}
	if cfg.OTP.DefaultPeriod <= 0 {
		return nil, fmt.Errorf("otp.default_period must be positive, got %d", cfg.OTP.DefaultPeriod)
	}

	return &cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
	if c.SSLRootCert != "" {
		dsn += "&sslrootcert=" + c.SSLRootCert
	}
	return dsn
}
