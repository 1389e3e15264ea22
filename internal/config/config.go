// Package config предоставляет структуры и функции для загрузки конфига админ-панели.
//
// Источник настроек — YAML-файл из CONFIG_PATH, если переменная задана,
// иначе переменные окружения (с предварительной подгрузкой .env).
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Режимы развёртывания.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Бэкенды ограничителя частоты попыток входа.
const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string          `yaml:"env" env:"APP_ENV" env-default:"development"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"DATABASE_URL" env-required:"true"`
	MigrationsPath          string          `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	LandingPath             string          `yaml:"landing_path" env:"LANDING_PATH" env-default:"/users"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	Session                 Session         `yaml:"session"`
	RateLimit               RateLimit       `yaml:"rate_limit"`
	Throttle                Throttle        `yaml:"throttle"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Session настройки cookie-сессии.
type Session struct {
	Secret string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	MaxAge time.Duration `yaml:"max_age" env:"SESSION_MAX_AGE" env-default:"0s"`
}

// RateLimit настройки ограничения попыток входа и регистрации.
type RateLimit struct {
	Backend       string        `yaml:"backend" env:"RATE_LIMIT_BACKEND" env-default:"memory"`
	Limit         int           `yaml:"limit" env:"RATE_LIMIT_LIMIT" env-default:"5"`
	Window        time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"RATE_LIMIT_SWEEP_INTERVAL" env-default:"1m"`
}

// Throttle общий лимит запросов к защищённым страницам.
type Throttle struct {
	RPS   float64 `yaml:"rps" env:"THROTTLE_RPS" env-default:"10"`
	Burst int     `yaml:"burst" env:"THROTTLE_BURST" env-default:"20"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// Load читает конфиг и проверяет его. Ошибка описывает все найденные проблемы сразу.
func Load() (*Config, error) {
	const op = "config.Load"

	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: read .env: %w", op, err)
	}

	var cfg Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read environment: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, завершает процесс при некорректных настройках.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}
	return cfg
}

// Validate проверяет значения, которые cleanenv не умеет проверять сам.
func (c *Config) Validate() error {
	var problems []string

	if !slices.Contains([]string{EnvDevelopment, EnvProduction, EnvTest}, c.Env) {
		problems = append(problems, fmt.Sprintf("env must be one of development, production, test; got %q", c.Env))
	}
	if c.StorageConnectionString == "" {
		problems = append(problems, "storage connection string is required")
	}
	if c.Session.Secret == "" {
		problems = append(problems, "session secret is required")
	}
	if c.Session.MaxAge < 0 {
		problems = append(problems, "session max age must not be negative")
	}
	if !slices.Contains([]string{RateLimitMemory, RateLimitRedis}, c.RateLimit.Backend) {
		problems = append(problems, fmt.Sprintf("rate limit backend must be memory or redis; got %q", c.RateLimit.Backend))
	}
	if c.RateLimit.Limit <= 0 {
		problems = append(problems, "rate limit must be positive")
	}
	if c.RateLimit.Window <= 0 {
		problems = append(problems, "rate limit window must be positive")
	}
	if c.RateLimit.SweepInterval <= 0 {
		problems = append(problems, "rate limit sweep interval must be positive")
	}
	if !strings.HasPrefix(c.LandingPath, "/") {
		problems = append(problems, "landing path must start with /")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// IsProduction сообщает, запущен ли сервис в боевом режиме.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"LandingPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Session:\n"+
			"  Secret: %s\n"+
			"  MaxAge: %s\n"+
			"RateLimit:\n"+
			"  Backend: %s\n"+
			"  Limit: %d\n"+
			"  Window: %s\n"+
			"  SweepInterval: %s\n"+
			"Throttle:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.LandingPath,
		c.HTTPServer.AddressHTTP,
		c.HTTPServer.TimeoutHTTP,
		c.HTTPServer.IdleTimeout,
		mask(c.Session.Secret),
		c.Session.MaxAge,
		c.RateLimit.Backend,
		c.RateLimit.Limit,
		c.RateLimit.Window,
		c.RateLimit.SweepInterval,
		c.Throttle.RPS,
		c.Throttle.Burst,
		c.RedisConnection.AddressRedis,
		c.RedisConnection.DB,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
