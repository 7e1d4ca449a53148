package internal

import (
	"message-board/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadServerConfig(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", t.TempDir())
	t.Setenv("FEED_PORT", "9090")

	cfg, err := LoadServerConfig()
	req.NoError(err)
	req.Equal("localhost:9090", cfg.Addr())
	req.Equal("messages", cfg.Namespace)
	req.Equal("INFO", cfg.LogLevel)
	req.Equal(200*time.Millisecond, cfg.RestartInterval)
	req.Equal(30*time.Second, cfg.HealthInterval)
	req.Empty(cfg.BlugeFilepath)
}

func TestLoadServerConfig_Errors(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected error
	}{
		{name: "Port is not a number", env: map[string]string{"BADGER_FILEPATH": "/tmp/feed", "FEED_PORT": "http"}},
		{name: "Namespace with separator", env: map[string]string{"BADGER_FILEPATH": "/tmp/feed", "FEED_NAMESPACE": "a:b"}, expected: errors.ErrInvalidNamespace},
		{name: "Zero health interval", env: map[string]string{"BADGER_FILEPATH": "/tmp/feed", "HEALTH_INTERVAL": "0s"}, expected: errors.ErrInvalidInterval},
		{name: "Negative health interval", env: map[string]string{"BADGER_FILEPATH": "/tmp/feed", "HEALTH_INTERVAL": "-5s"}, expected: errors.ErrInvalidInterval},
		{name: "Zero restart interval", env: map[string]string{"BADGER_FILEPATH": "/tmp/feed", "RESTART_INTERVAL": "0s"}, expected: errors.ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadServerConfig()
			req.Error(err)
			if tt.expected != nil {
				req.ErrorIs(err, tt.expected)
			}
		})
	}
}

func TestLoadClientConfig(t *testing.T) {
	req := require.New(t)
	t.Setenv("BOARD_SERVER_URL", "")

	cfg, err := LoadClientConfig()
	req.NoError(err)
	req.Empty(cfg.ServerURL)
	req.Equal("messages", cfg.Namespace)
	req.Equal(3*time.Second, cfg.DialTimeout)

	t.Setenv("BOARD_NAMESPACE", "rooms:1")
	_, err = LoadClientConfig()
	req.ErrorIs(err, errors.ErrInvalidNamespace)
}
