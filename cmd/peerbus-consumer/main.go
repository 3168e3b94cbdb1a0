// Command peerbus-consumer receives subscription messages from peer buses,
// filters them and hands the resulting commands to the subscription
// coordinator.
//
// Usage:
//
//	peerbus-consumer [flags]
//
// Flags:
//
//	-config string        YAML configuration file
//	-env-file string      .env file with PEERBUS_* overrides (default ".env")
//	-network string       Local network identifier
//	-ignore string        Comma-separated local bus addresses to ignore
//	-listen string        Listen address (default ":7460")
//	-metrics string       Address for the /metrics endpoint
//	-protocol-log string  File path for protocol event logging (CBOR format)
//	-forward string       File receiving coordinator command frames
//	-log-level string     Log level: debug, info, warn, error
//
// Precedence, lowest first: defaults, config file, .env file and
// environment, flags.
//
// Examples:
//
//	# Consume the "orders" network, ignoring our own bus
//	peerbus-consumer -network orders -ignore loopback://localhost/orders_bus
//
//	# Forward commands to a file and record a protocol log
//	peerbus-consumer -config /etc/peerbus/consumer.yaml \
//	    -forward /run/peerbus/commands -protocol-log /var/log/peerbus/consumer.plog
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/peerbus/peerbus-go/pkg/config"
	"github.com/peerbus/peerbus-go/pkg/version"
	"github.com/peerbus/peerbus-go/pkg/wire"
)

var (
	configFile  = flag.String("config", "", "YAML configuration file")
	envFile     = flag.String("env-file", ".env", ".env file with PEERBUS_* overrides")
	network     = flag.String("network", "", "Local network identifier")
	ignore      = flag.String("ignore", "", "Comma-separated local bus addresses to ignore")
	listen      = flag.String("listen", "", "Listen address (default \":7460\")")
	metricsAddr = flag.String("metrics", "", "Address for the /metrics endpoint")
	protocolLog = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	forward     = flag.String("forward", "", "File receiving coordinator command frames")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	showVersion = flag.Bool("version", false, "Print the protocol version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("peerbus-consumer protocol %s (%s)\n", version.Current, strings.Join(version.SupportedALPNProtocols(), ", "))
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	logger.Info("peerbus consumer",
		"protocol", version.Current,
		"network", cfg.Network,
		"listen", cfg.ListenAddress,
		"ignored", len(cfg.IgnoredSourceAddresses),
		"forward", cfg.ForwardPath,
	)

	a, err := newApp(cfg, logger, prometheus.NewRegistry())
	if err != nil {
		logger.Error("failed to set up consumer", "error", err)
		os.Exit(1)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.start(ctx); err != nil {
		logger.Error("failed to start consumer", "error", err)
		os.Exit(1)
	}

	if err := a.wait(); err != nil {
		logger.Error("consumer stopped with error", "error", err)
		a.close()
		os.Exit(1)
	}
	logger.Info("consumer stopped")
}

// loadConfig merges defaults, the config file, the environment and any flags
// set on the command line, then validates the result.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(*envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "network":
			cfg.Network = *network
		case "ignore":
			cfg.IgnoredSourceAddresses = nil
			for _, part := range strings.Split(*ignore, ",") {
				if part = strings.TrimSpace(part); part != "" {
					cfg.IgnoredSourceAddresses = append(cfg.IgnoredSourceAddresses, wire.URI(part))
				}
			}
		case "listen":
			cfg.ListenAddress = *listen
		case "metrics":
			cfg.MetricsAddress = *metricsAddr
		case "protocol-log":
			cfg.ProtocolLog = *protocolLog
		case "forward":
			cfg.ForwardPath = *forward
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
