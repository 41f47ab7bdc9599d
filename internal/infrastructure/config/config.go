package config

import (
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Master    MasterConfig
	Tenancy   TenancyConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// MasterConfig holds the connection settings of the master directory
// database (the one holding empresasconfig). This is the only pooled
// database in the process.
type MasterConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	Params          map[string]string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// TenancyConfig controls how tenant databases are reached.
type TenancyConfig struct {
	// PublicHost replaces loopback hosts stored in directory rows.
	// Empty disables the substitution.
	PublicHost     string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// Preflight runs the schema_version check every time a tenant
	// connection is opened.
	Preflight bool
	// DirectoryKey is a hex encoded 32 byte key used to unseal
	// encrypted db_password values.
	DirectoryKey string
}

// RedisConfig holds Redis connection settings used by the token blacklist
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxHeaderBytes     int
	MaxBodySize        int64
	RateLimitEnabled   bool
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	LoginRatePerMinute int
	CORSAllowOrigins   []string
	TrustedProxies     []string
}

// StorageConfig holds S3-compatible object storage settings for product images
type StorageConfig struct {
	Enabled           bool
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
}

// TelemetryConfig holds OpenTelemetry tracing settings. Tracing is off
// unless enabled is set.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint
	SamplingRatio     float64 // 0.0 to 1.0
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool // otelgorm spans on tenant connections
	DBLogFullSQL      bool // keep query variables in db spans
}

// Load reads configuration from config file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with PYMES_ prefix (e.g., PYMES_MASTER_PASSWORD)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PYMES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("tenancy.preflight", true)
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.db_trace_enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Master: MasterConfig{
			Host:            v.GetString("master.host"),
			Port:            v.GetInt("master.port"),
			User:            v.GetString("master.user"),
			Password:        v.GetString("master.password"),
			DBName:          v.GetString("master.dbname"),
			Params:          v.GetStringMapString("master.params"),
			MaxOpenConns:    v.GetInt("master.max_open_conns"),
			MaxIdleConns:    v.GetInt("master.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("master.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("master.conn_max_idle_time"),
		},
		Tenancy: TenancyConfig{
			PublicHost:     v.GetString("tenancy.public_host"),
			ConnectTimeout: v.GetDuration("tenancy.connect_timeout"),
			ReadTimeout:    v.GetDuration("tenancy.read_timeout"),
			WriteTimeout:   v.GetDuration("tenancy.write_timeout"),
			Preflight:      v.GetBool("tenancy.preflight"),
			DirectoryKey:   v.GetString("tenancy.directory_key"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:        v.GetDuration("http.read_timeout"),
			WriteTimeout:       v.GetDuration("http.write_timeout"),
			IdleTimeout:        v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:     v.GetInt("http.max_header_bytes"),
			MaxBodySize:        v.GetInt64("http.max_body_size"),
			RateLimitEnabled:   v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:  v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:    v.GetDuration("http.rate_limit_window"),
			LoginRatePerMinute: v.GetInt("http.login_rate_per_minute"),
			CORSAllowOrigins:   v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:     v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pymes-api"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Master.Host == "" {
		cfg.Master.Host = "localhost"
	}
	if cfg.Master.Port == 0 {
		cfg.Master.Port = 3306
	}
	if cfg.Master.User == "" {
		cfg.Master.User = "root"
	}
	if cfg.Master.DBName == "" {
		cfg.Master.DBName = "pymes_master"
	}
	if cfg.Master.MaxOpenConns == 0 {
		cfg.Master.MaxOpenConns = 20
	}
	if cfg.Master.MaxIdleConns == 0 {
		cfg.Master.MaxIdleConns = 5
	}
	if cfg.Master.ConnMaxLifetime == 0 {
		cfg.Master.ConnMaxLifetime = 30
	}
	if cfg.Master.ConnMaxIdleTime == 0 {
		cfg.Master.ConnMaxIdleTime = 10
	}
	if cfg.Tenancy.ConnectTimeout == 0 {
		cfg.Tenancy.ConnectTimeout = 5 * time.Second
	}
	if cfg.Tenancy.ReadTimeout == 0 {
		cfg.Tenancy.ReadTimeout = 30 * time.Second
	}
	if cfg.Tenancy.WriteTimeout == 0 {
		cfg.Tenancy.WriteTimeout = 30 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 8 * time.Hour
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 7 * 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "pymes-api"
	}
	if cfg.JWT.MaxRefreshCount == 0 {
		cfg.JWT.MaxRefreshCount = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 5 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 300
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.LoginRatePerMinute == 0 {
		cfg.HTTP.LoginRatePerMinute = 10
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Master.MaxOpenConns <= 0 {
		return fmt.Errorf("master.max_open_conns must be positive")
	}
	if c.Master.MaxIdleConns < 0 {
		return fmt.Errorf("master.max_idle_conns cannot be negative")
	}
	if c.Master.MaxIdleConns > c.Master.MaxOpenConns {
		return fmt.Errorf("master.max_idle_conns (%d) cannot exceed master.max_open_conns (%d)",
			c.Master.MaxIdleConns, c.Master.MaxOpenConns)
	}
	if c.Tenancy.DirectoryKey != "" {
		key, err := hex.DecodeString(c.Tenancy.DirectoryKey)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("tenancy.directory_key must be 64 hex characters")
		}
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Master.Password == "" {
			return fmt.Errorf("master.password is required in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the go-sql-driver DSN for the master directory database
func (m *MasterConfig) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = m.User
	dsn.Passwd = m.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	dsn.DBName = m.DBName
	dsn.ParseTime = true
	if len(m.Params) > 0 {
		dsn.Params = make(map[string]string, len(m.Params))
		for k, v := range m.Params {
			dsn.Params[k] = v
		}
	}
	return dsn.FormatDSN()
}

// DirectoryKeyBytes returns the decoded directory key, or nil when unset.
func (t *TenancyConfig) DirectoryKeyBytes() []byte {
	if t.DirectoryKey == "" {
		return nil
	}
	key, err := hex.DecodeString(t.DirectoryKey)
	if err != nil {
		return nil
	}
	return key
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
