package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerbus/peerbus-go/pkg/transport"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, ":7460", cfg.ListenAddress)
	assert.Equal(t, uint32(transport.DefaultMaxMessageSize), cfg.MaxMessageSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.ErrorIs(t, cfg.Validate(), ErrNoNetwork)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "peerbus.yaml", `
network: orders
ignored_source_addresses:
  - loopback://localhost/orders_bus
  - loopback://localhost/orders_bus_control
listen_address: 127.0.0.1:9000
max_message_size: 65536
metrics_address: :9090
protocol_log: /var/log/peerbus.cbor
forward_path: /run/peerbus/commands
log_level: debug
tls_cert_file: /etc/peerbus/server.crt
tls_key_file: /etc/peerbus/server.key
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "orders", cfg.Network)
	assert.Equal(t, []wire.URI{
		"loopback://localhost/orders_bus",
		"loopback://localhost/orders_bus_control",
	}, cfg.IgnoredSourceAddresses)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddress)
	assert.Equal(t, uint32(65536), cfg.MaxMessageSize)
	assert.Equal(t, ":9090", cfg.MetricsAddress)
	assert.Equal(t, "/var/log/peerbus.cbor", cfg.ProtocolLog)
	assert.Equal(t, "/run/peerbus/commands", cfg.ForwardPath)
	assert.True(t, cfg.TLSEnabled())

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load(writeFile(t, "min.yaml", "network: orders\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7460", cfg.ListenAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "failed to read file", le.Message)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "unknown.yaml", "network: orders\nqueue_name: x\n"))
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "failed to parse YAML", le.Message)

	_, err = Load(writeFile(t, "bad.yaml", "network: [\n"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PEERBUS_NETWORK", "billing")
	t.Setenv("PEERBUS_IGNORED_SOURCE_ADDRESSES", "loopback://localhost/a, loopback://localhost/b,,")
	t.Setenv("PEERBUS_MAX_MESSAGE_SIZE", "2048")
	t.Setenv("PEERBUS_LOG_LEVEL", "warn")
	t.Setenv("PEERBUS_FORWARD_PATH", "")

	cfg := Defaults()
	cfg.ForwardPath = "/tmp/commands"
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "billing", cfg.Network)
	assert.Equal(t, []wire.URI{"loopback://localhost/a", "loopback://localhost/b"}, cfg.IgnoredSourceAddresses)
	assert.Equal(t, uint32(2048), cfg.MaxMessageSize)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "", cfg.ForwardPath, "a set but empty variable overrides")
	assert.Equal(t, ":7460", cfg.ListenAddress)
}

func TestApplyEnvInvalidSize(t *testing.T) {
	t.Setenv("PEERBUS_MAX_MESSAGE_SIZE", "lots")
	assert.ErrorIs(t, Defaults().ApplyEnv(), ErrInvalidMaxMessage)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "PEERBUS_TEST_DOTENV_NETWORK=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("PEERBUS_TEST_DOTENV_NETWORK") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("PEERBUS_TEST_DOTENV_NETWORK"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Defaults()
		cfg.Network = "orders"
		cfg.IgnoredSourceAddresses = []wire.URI{"loopback://localhost/bus"}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"no network", func(c *Config) { c.Network = "" }, ErrNoNetwork},
		{"relative address", func(c *Config) { c.IgnoredSourceAddresses = []wire.URI{"bus"} }, ErrInvalidAddress},
		{"zero size", func(c *Config) { c.MaxMessageSize = 0 }, ErrInvalidMaxMessage},
		{"huge size", func(c *Config) { c.MaxMessageSize = MaxMessageSizeLimit + 1 }, ErrInvalidMaxMessage},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }, ErrInvalidLogLevel},
		{"empty level", func(c *Config) { c.LogLevel = "" }, nil},
		{"cert without key", func(c *Config) { c.TLSCertFile = "server.crt" }, ErrIncompleteTLS},
		{"key without cert", func(c *Config) { c.TLSKeyFile = "server.key" }, ErrIncompleteTLS},
		{"cert and key", func(c *Config) { c.TLSCertFile, c.TLSKeyFile = "server.crt", "server.key" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestConsumerConfigCopies(t *testing.T) {
	cfg := Defaults()
	cfg.Network = "orders"
	cfg.IgnoredSourceAddresses = []wire.URI{"loopback://localhost/bus"}

	cc := cfg.ConsumerConfig()
	cfg.IgnoredSourceAddresses[0] = "loopback://localhost/changed"

	assert.Equal(t, "orders", cc.Network)
	assert.Equal(t, []wire.URI{"loopback://localhost/bus"}, cc.IgnoredSourceAddresses)
}
