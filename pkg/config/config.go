// Package config loads the consumer service configuration from a YAML file,
// an optional .env file and PEERBUS_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/peerbus/peerbus-go/pkg/consumer"
	"github.com/peerbus/peerbus-go/pkg/transport"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PEERBUS_"

// MaxMessageSizeLimit bounds max_message_size.
const MaxMessageSizeLimit = 16 << 20

// Validation errors.
var (
	ErrNoNetwork         = errors.New("network is required")
	ErrInvalidAddress    = errors.New("invalid ignored source address")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidMaxMessage = errors.New("invalid max message size")
	ErrIncompleteTLS     = errors.New("tls_cert_file and tls_key_file must be set together")
)

// Config is the consumer service configuration.
type Config struct {
	// Network is the local network identifier.
	Network string `yaml:"network"`

	// IgnoredSourceAddresses are the local bus addresses whose echoes are
	// dropped.
	IgnoredSourceAddresses []wire.URI `yaml:"ignored_source_addresses"`

	// ListenAddress is the TCP address for inbound envelopes.
	ListenAddress string `yaml:"listen_address"`

	// MaxMessageSize is the largest accepted frame payload in bytes.
	MaxMessageSize uint32 `yaml:"max_message_size"`

	// MetricsAddress serves /metrics when set.
	MetricsAddress string `yaml:"metrics_address"`

	// ProtocolLog is the path of the CBOR protocol event log, if any.
	ProtocolLog string `yaml:"protocol_log"`

	// ForwardPath receives coordinator command frames. Commands are only
	// logged when empty.
	ForwardPath string `yaml:"forward_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// TLSCertFile and TLSKeyFile enable TLS on the listener. Both or
	// neither must be set.
	TLSCertFile string `yaml:"tls_cert_file"`
	TLSKeyFile  string `yaml:"tls_key_file"`
}

// LoadError reports a configuration file that could not be loaded.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return e.File + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.File + ": " + e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Defaults returns a Config with default values.
func Defaults() *Config {
	return &Config{
		ListenAddress:  fmt.Sprintf(":%d", transport.DefaultPort),
		MaxMessageSize: transport.DefaultMaxMessageSize,
		LogLevel:       "info",
	}
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to parse YAML", Cause: err}
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the .env file at path into the process
// environment. A missing file is not an error. Variables already set are
// kept.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return &LoadError{File: path, Message: "failed to load env file", Cause: err}
	}
	return nil
}

// ApplyEnv overrides fields from PEERBUS_* environment variables.
// PEERBUS_IGNORED_SOURCE_ADDRESSES is a comma-separated list.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("NETWORK"); ok {
		c.Network = v
	}
	if v, ok := lookup("IGNORED_SOURCE_ADDRESSES"); ok {
		c.IgnoredSourceAddresses = splitAddresses(v)
	}
	if v, ok := lookup("LISTEN_ADDRESS"); ok {
		c.ListenAddress = v
	}
	if v, ok := lookup("MAX_MESSAGE_SIZE"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_MESSAGE_SIZE=%q", ErrInvalidMaxMessage, EnvPrefix, v)
		}
		c.MaxMessageSize = uint32(n)
	}
	if v, ok := lookup("METRICS_ADDRESS"); ok {
		c.MetricsAddress = v
	}
	if v, ok := lookup("PROTOCOL_LOG"); ok {
		c.ProtocolLog = v
	}
	if v, ok := lookup("FORWARD_PATH"); ok {
		c.ForwardPath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("TLS_CERT_FILE"); ok {
		c.TLSCertFile = v
	}
	if v, ok := lookup("TLS_KEY_FILE"); ok {
		c.TLSKeyFile = v
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Network == "" {
		return ErrNoNetwork
	}
	for _, addr := range c.IgnoredSourceAddresses {
		if err := addr.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
	}
	if c.MaxMessageSize == 0 || c.MaxMessageSize > MaxMessageSizeLimit {
		return fmt.Errorf("%w: %d", ErrInvalidMaxMessage, c.MaxMessageSize)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return ErrIncompleteTLS
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// TLSEnabled reports whether a certificate and key are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// SlogLevel parses LogLevel. An empty level is info.
func (c *Config) SlogLevel() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return level, nil
}

// ConsumerConfig returns the filter configuration for consumer.New.
func (c *Config) ConsumerConfig() consumer.Config {
	addrs := make([]wire.URI, len(c.IgnoredSourceAddresses))
	copy(addrs, c.IgnoredSourceAddresses)
	return consumer.Config{
		Network:                c.Network,
		IgnoredSourceAddresses: addrs,
	}
}

func lookup(name string) (string, bool) {
	return os.LookupEnv(EnvPrefix + name)
}

func splitAddresses(s string) []wire.URI {
	var out []wire.URI
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, wire.URI(part))
		}
	}
	return out
}
