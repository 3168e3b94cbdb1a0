package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/peerbus/peerbus-go/pkg/config"
	"github.com/peerbus/peerbus-go/pkg/consumer"
	"github.com/peerbus/peerbus-go/pkg/coordinator"
	"github.com/peerbus/peerbus-go/pkg/log"
	"github.com/peerbus/peerbus-go/pkg/metrics"
	"github.com/peerbus/peerbus-go/pkg/transport"
	"github.com/peerbus/peerbus-go/pkg/version"
)

const shutdownTimeout = 5 * time.Second

// app wires the consumer, its coordinator and the transport server.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	server      *transport.Server
	forwarder   *coordinator.Forwarder
	protocolLog *log.FileLogger

	metricsServer   *http.Server
	metricsListener net.Listener

	group     *errgroup.Group
	closeOnce sync.Once
}

// newApp builds the service from cfg. Metrics are registered with reg.
func newApp(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	collector, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	if cfg.MetricsAddress != "" {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		a.metricsServer = &http.Server{Addr: cfg.MetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}

	protocolLogger, err := a.openProtocolLogger()
	if err != nil {
		return nil, err
	}

	coord, err := a.openCoordinator()
	if err != nil {
		a.close()
		return nil, err
	}

	opts := []consumer.Option{
		consumer.WithLogger(logger),
		consumer.WithMetrics(collector),
	}
	if protocolLogger != nil {
		opts = append(opts, consumer.WithProtocolLogger(protocolLogger))
	}
	c, err := consumer.New(coord, cfg.ConsumerConfig(), opts...)
	if err != nil {
		a.close()
		return nil, err
	}

	tlsConf, err := a.tlsConfig()
	if err != nil {
		a.close()
		return nil, err
	}

	serverCfg := transport.ServerConfig{
		Address:        cfg.ListenAddress,
		TLSConfig:      tlsConf,
		MaxMessageSize: cfg.MaxMessageSize,
		Handler:        c,
		Logger:         logger,
		ProtocolLogger: protocolLogger,
		Metrics:        collector,
	}
	a.server, err = transport.NewServer(serverCfg)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// openProtocolLogger returns the protocol logger, or nil when neither a
// protocol log file nor debug logging is configured.
func (a *app) openProtocolLogger() (log.Logger, error) {
	var loggers []log.Logger

	if a.cfg.ProtocolLog != "" {
		fl, err := log.NewFileLogger(a.cfg.ProtocolLog)
		if err != nil {
			return nil, fmt.Errorf("failed to create protocol logger: %w", err)
		}
		a.protocolLog = fl
		loggers = append(loggers, fl)
		a.logger.Info("protocol logging enabled", "path", a.cfg.ProtocolLog)
	}
	if a.logger.Enabled(context.Background(), slog.LevelDebug) {
		// The consumer filter already logs its discards at debug level.
		loggers = append(loggers, log.NewFilteredLogger(log.NewSlogAdapter(a.logger), log.Filter{
			ExcludeCategories: []log.Category{log.CategoryDiscard},
		}))
	}

	switch len(loggers) {
	case 0:
		return nil, nil
	case 1:
		return loggers[0], nil
	default:
		return log.NewMultiLogger(loggers...), nil
	}
}

// openCoordinator returns a Forwarder when forward_path is set. Otherwise
// commands are only logged.
func (a *app) openCoordinator() (coordinator.Coordinator, error) {
	if a.cfg.ForwardPath != "" {
		f, err := coordinator.OpenForwarder(a.cfg.ForwardPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open forward path: %w", err)
		}
		a.forwarder = f
		return f, nil
	}

	a.logger.Warn("no forward_path configured, commands are only logged")
	return coordinator.SenderFunc(func(_ context.Context, cmd coordinator.Command) error {
		a.logger.Info("coordinator command", "command", cmd.Kind().String(), "peer_id", cmd.Peer().String())
		return nil
	}), nil
}

func (a *app) tlsConfig() (*tls.Config, error) {
	if !a.cfg.TLSEnabled() {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(a.cfg.TLSCertFile, a.cfg.TLSKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   version.SupportedALPNProtocols(),
	}, nil
}

// start begins accepting connections and serving metrics. It returns once
// both listeners are bound.
func (a *app) start(ctx context.Context) error {
	if err := a.server.Start(ctx); err != nil {
		return err
	}

	if a.metricsServer != nil {
		ln, err := net.Listen("tcp", a.metricsServer.Addr)
		if err != nil {
			a.server.Stop()
			return fmt.Errorf("failed to listen for metrics: %w", err)
		}
		a.metricsListener = ln
		a.logger.Info("metrics endpoint started", "address", ln.Addr().String())
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.metricsServer != nil {
		g.Go(func() error {
			if err := a.metricsServer.Serve(a.metricsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()

		var errs []error
		if a.metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			errs = append(errs, a.metricsServer.Shutdown(shutdownCtx))
			cancel()
		}
		errs = append(errs, a.server.Stop())
		return errors.Join(errs...)
	})
	a.group = g
	return nil
}

// wait blocks until the context passed to start is done and everything has
// shut down.
func (a *app) wait() error {
	if a.group == nil {
		return nil
	}
	return a.group.Wait()
}

// close releases the forward file and protocol log.
func (a *app) close() {
	a.closeOnce.Do(func() {
		if a.forwarder != nil {
			if err := a.forwarder.Close(); err != nil {
				a.logger.Warn("failed to close forward file", "error", err)
			}
		}
		if a.protocolLog != nil {
			if err := a.protocolLog.Close(); err != nil {
				a.logger.Warn("failed to close protocol log", "error", err)
			}
			written, dropped := a.protocolLog.Stats()
			a.logger.Info("protocol log closed", "events", written, "dropped", dropped)
		}
	})
}
