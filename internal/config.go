package internal

import (
	"fmt"
	"message-board/errors"
	"message-board/repositories"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ServerConfig configures the feed daemon.
type ServerConfig struct {
	Host            string        `env:"FEED_HOST,default=localhost"`
	Port            int           `env:"FEED_PORT,default=8080"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string        `env:"BLUGE_FILEPATH"`
	Namespace       string        `env:"FEED_NAMESPACE,default=messages"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	HealthInterval  time.Duration `env:"HEALTH_INTERVAL,default=30s"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ClientConfig configures the terminal client. An empty ServerURL runs the
// client without a store: messages can be composed but nothing is sent.
type ClientConfig struct {
	ServerURL   string        `envconfig:"BOARD_SERVER_URL"`
	Namespace   string        `envconfig:"BOARD_NAMESPACE" default:"messages"`
	LogLevel    string        `envconfig:"BOARD_LOG_LEVEL" default:"INFO"`
	LogFile     string        `envconfig:"BOARD_LOG_FILE" default:"board.log"`
	DialTimeout time.Duration `envconfig:"BOARD_DIAL_TIMEOUT" default:"3s"`
}

// LoadServerConfig reads the environment, after an optional .env file.
func LoadServerConfig() (ServerConfig, error) {
	_ = godotenv.Load()
	var cfg ServerConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("server config: %w", err)
	}
	if err := repositories.ValidateNamespace(cfg.Namespace); err != nil {
		return ServerConfig{}, fmt.Errorf("FEED_NAMESPACE: %w", err)
	}
	if cfg.HealthInterval <= 0 {
		return ServerConfig{}, fmt.Errorf("HEALTH_INTERVAL %s: %w", cfg.HealthInterval, errors.ErrInvalidInterval)
	}
	if cfg.RestartInterval <= 0 {
		return ServerConfig{}, fmt.Errorf("RESTART_INTERVAL %s: %w", cfg.RestartInterval, errors.ErrInvalidInterval)
	}
	return cfg, nil
}

// LoadClientConfig reads the environment, after an optional .env file.
func LoadClientConfig() (ClientConfig, error) {
	_ = godotenv.Load()
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("client config: %w", err)
	}
	if err := repositories.ValidateNamespace(cfg.Namespace); err != nil {
		return ClientConfig{}, fmt.Errorf("BOARD_NAMESPACE: %w", err)
	}
	return cfg, nil
}
