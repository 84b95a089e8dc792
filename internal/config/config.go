// config реализует конфигурацию comments-engine: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/pribylovaa/news-portal-comments/internal/models"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Sessions SessionsConfig `yaml:"sessions"`
	Thread   ThreadConfig   `yaml:"thread"`
}

// HTTPConfig — API для view-слоя плюс /metrics, /livez, /healthz.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50095"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// BackendConfig — REST API бэкенда комментариев.
type BackendConfig struct {
	BaseURL   string `yaml:"base_url"   env:"BACKEND_BASE_URL"   env-required:"true"`
	UserAgent string `yaml:"user_agent" env:"BACKEND_USER_AGENT" env-default:"comments-engine"`
}

// TimeoutConfig — общий дедлайн входящего запроса и дедлайн одного вызова бэкенда.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE"         env-default:"15s"`
	Backend time.Duration `yaml:"backend" env:"BACKEND_TIMEOUT" env-default:"5s"`
}

// SessionsConfig — жизнь Store в реестре сессий.
type SessionsConfig struct {
	// Простой без обращений, после которого Store вытесняется. Не меньше 1m.
	IdleTTL       time.Duration `yaml:"idle_ttl"       env:"SESSION_IDLE_TTL"       env-default:"30m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"1m"`
	MaxStores     int           `yaml:"max_stores"     env:"MAX_STORES"             env-default:"10000"`
}

// ThreadConfig — параметры ветки по умолчанию.
type ThreadConfig struct {
	DefaultSort string `yaml:"default_sort" env:"DEFAULT_SORT" env-default:"newest"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	var (
		c   *Config
		err error
	)

	switch envPath := os.Getenv("CONFIG_PATH"); {
	// 1) --config.
	case path != "":
		c, err = tryRead(path)
	// 2) CONFIG_PATH.
	case envPath != "":
		c, err = tryRead(envPath)
	// 3) ./local.yaml.
	case fileExists("local.yaml"):
		c, err = tryRead("local.yaml")
	// 4) Только ENV.
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
		c = &cfg
	}
	if err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute http(s) url")
	}

	if c.Timeouts.Service <= 0 {
		return fmt.Errorf("timeouts.service must be > 0")
	}

	if c.Timeouts.Backend <= 0 {
		return fmt.Errorf("timeouts.backend must be > 0")
	}

	if c.Sessions.IdleTTL < time.Minute {
		return fmt.Errorf("sessions.idle_ttl must be at least 1m")
	}

	if c.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("sessions.sweep_interval must be > 0")
	}

	if c.Sessions.MaxStores <= 0 {
		return fmt.Errorf("sessions.max_stores must be > 0")
	}

	if _, err := models.ParseSortKey(c.Thread.DefaultSort); err != nil {
		return fmt.Errorf("thread.default_sort: %w", err)
	}

	return nil
}
