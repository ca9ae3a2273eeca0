package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cart     CartConfig
	Shipping ShippingConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Upstream.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEDIMART_APP_ENV" required:"true"`
	Port         string `envconfig:"MEDIMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEDIMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEDIMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the marketplace REST API this gateway fronts.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"MEDIMART_UPSTREAM_BASE_URL"`
	Timeout time.Duration `envconfig:"MEDIMART_UPSTREAM_TIMEOUT" default:"10s"`
}

func (u UpstreamConfig) validate() error {
	if strings.TrimSpace(u.BaseURL) == "" {
		return fmt.Errorf("%s is required", EnvUpstreamBaseURL)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDIMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEDIMART_REDIS_ADDR"`
	Password     string        `envconfig:"MEDIMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDIMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDIMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDIMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDIMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDIMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDIMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEDIMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEDIMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEDIMART_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CartConfig tunes the in-memory cart engines.
type CartConfig struct {
	DebounceWindow time.Duration `envconfig:"MEDIMART_CART_DEBOUNCE_WINDOW" default:"400ms"`
	EngineTTL      time.Duration `envconfig:"MEDIMART_CART_ENGINE_TTL" default:"30m"`
	PageLimit      int           `envconfig:"MEDIMART_CART_PAGE_LIMIT" default:"25"`
}

// ShippingConfig carries the origin used for carrier quotes.
type ShippingConfig struct {
	Origin string `envconfig:"MEDIMART_SHIPPING_ORIGIN" default:""`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MEDIMART_CORS_ALLOWED_ORIGINS" default:"*"`
}
