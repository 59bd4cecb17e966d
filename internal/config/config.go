// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
//
// Конфиг читается из YAML-файла по пути из CONFIG_PATH, значения можно
// переопределить переменными окружения. Ошибки конфигурации фатальны для старта.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"golang.org/x/mod/semver"
)

// DefaultAppID namespaces collections when APP_ID is not set.
const DefaultAppID = "default-padayon-app"

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	Version                 string `yaml:"version" env:"APP_VERSION" env-default:"v0.1.0"`
	AppID                   string `yaml:"app_id" env:"APP_ID" env-default:"default-padayon-app"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	InitialAuthToken        string `yaml:"initial_auth_token" env:"INITIAL_AUTH_TOKEN"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	Generative              `yaml:"generative"`
	Mutations               `yaml:"mutations"`
	UI                      `yaml:"ui"`
	Janitor                 `yaml:"janitor"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"5"`
	RateBurst   int           `yaml:"rate_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном сессии
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// RabbitMQ настройки брокера доменных событий. Пустой URL отключает брокер.
type RabbitMQ struct {
	URL      string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string        `yaml:"exchange" env-default:"padayon.events"`
	Queue    string        `yaml:"queue" env-default:"padayon.live-projector"`
	Workers  int           `yaml:"workers" env-default:"4"`
	Retries  int           `yaml:"retries" env-default:"5"`
	Delay    time.Duration `yaml:"delay" env-default:"2s"`
}

// Generative настройки внешнего генеративного API.
type Generative struct {
	BaseURL    string        `yaml:"base_url" env:"GENERATIVE_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	Model      string        `yaml:"model" env:"GENERATIVE_MODEL" env-default:"gemini-2.0-flash"`
	APIKey     string        `yaml:"api_key" env:"GENERATIVE_API_KEY"`
	Timeout    time.Duration `yaml:"timeout" env-default:"30s"`
	HistoryTTL time.Duration `yaml:"history_ttl" env-default:"168h"`
}

// Mutations настройки клиента изменений.
type Mutations struct {
	NoticeTTL       time.Duration `yaml:"notice_ttl" env-default:"3s"`
	AtomicReactions bool          `yaml:"atomic_reactions" env:"ATOMIC_REACTIONS"`
}

// UI тема и язык экранов.
type UI struct {
	Theme  string `yaml:"theme" env:"UI_THEME" env-default:"calm"`
	Locale string `yaml:"locale" env:"UI_LOCALE" env-default:"en"`
}

// Janitor расписание фоновой очистки.
type Janitor struct {
	Schedule string        `yaml:"schedule" env-default:"*/5 * * * *"`
	IdleTTL  time.Duration `yaml:"idle_ttl" env-default:"30m"`
}

// Load читает конфиг из файла и окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if configPath == "" {
		return nil, fmt.Errorf("%s: CONFIG_PATH is not set", op)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.AppID == "" {
		c.AppID = DefaultAppID
	}
	if !semver.IsValid(c.Version) {
		return fmt.Errorf("version %q is not a valid semantic version", c.Version)
	}
	if c.NoticeTTL <= 0 {
		return errors.New("mutations.notice_ttl must be positive")
	}
	return nil
}

// BrokerEnabled reports whether domain events go through RabbitMQ.
func (c *Config) BrokerEnabled() bool {
	return c.RabbitMQ.URL != ""
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Version: %s\n"+
			"AppID: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"RabbitMQ enabled: %t\n"+
			"Generative model: %s\n"+
			"UI: %s/%s\n",
		c.Env,
		c.Version,
		c.AppID,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.BrokerEnabled(),
		c.Model,
		c.Theme,
		c.Locale,
	)
}
