package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP      HTTPConfig      `envPrefix:"HTTP_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Images    ImagesConfig    `envPrefix:"IMAGES_"`
	Design    DesignConfig    `envPrefix:"DESIGN_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST,required,notEmpty"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER,required,notEmpty"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME,required,notEmpty"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2m"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"10m"`
}

// ImagesConfig drives the reference image dimension loader.
type ImagesConfig struct {
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL"`
	FetchTimeout   time.Duration `env:"FETCH_TIMEOUT" envDefault:"5s"`
	MaxBytes       int64         `env:"MAX_BYTES" envDefault:"20971520"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"30m"`
	FallbackWidth  float64       `env:"FALLBACK_WIDTH" envDefault:"800"`
	FallbackHeight float64       `env:"FALLBACK_HEIGHT" envDefault:"600"`
}

// DesignConfig holds the default complexity price table, in EUR.
type DesignConfig struct {
	BaseComplexity            float64 `env:"BASE_COMPLEXITY" envDefault:"0"`
	TextElementPrice          float64 `env:"TEXT_ELEMENT_PRICE" envDefault:"2.50"`
	ImageElementPrice         float64 `env:"IMAGE_ELEMENT_PRICE" envDefault:"5.00"`
	ShapeElementPrice         float64 `env:"SHAPE_ELEMENT_PRICE" envDefault:"1.75"`
	ColorComplexityMultiplier float64 `env:"COLOR_COMPLEXITY_MULTIPLIER" envDefault:"0.15"`
	SizeMultiplier            float64 `env:"SIZE_MULTIPLIER" envDefault:"1.0"`
	SpecialEffectsPrice       float64 `env:"SPECIAL_EFFECTS_PRICE" envDefault:"3.00"`
}

type RateLimitConfig struct {
	Requests int64         `env:"REQUESTS" envDefault:"120"`
	Window   time.Duration `env:"WINDOW" envDefault:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Images.FallbackWidth <= 0 || cfg.Images.FallbackHeight <= 0 {
		return nil, fmt.Errorf("image fallback size must be positive, got %.0fx%.0f",
			cfg.Images.FallbackWidth, cfg.Images.FallbackHeight)
	}
	if cfg.Design.SizeMultiplier <= 0 {
		return nil, fmt.Errorf("design size multiplier must be positive, got %.2f", cfg.Design.SizeMultiplier)
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns a postgres:// URL for lib/pq. Credentials are URL-escaped, so
// passwords may contain spaces, quotes or '@'.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
