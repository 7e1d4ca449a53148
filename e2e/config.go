package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_FEED_URL targets a running feedd (ws://host:port/ws). When empty the
	// suite starts an in-process daemon on a temporary badger directory.
	FeedURL   string `envconfig:"E2E_FEED_URL"`
	Namespace string `envconfig:"E2E_NAMESPACE" default:"e2e"`
	// E2E_DEBUG_JSON dumps every delivered record as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized step headers
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
