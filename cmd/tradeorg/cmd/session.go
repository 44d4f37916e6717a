package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rustyeddy/tradeorg/config"
	"github.com/rustyeddy/tradeorg/internal/scenario"
	"github.com/rustyeddy/tradeorg/journal"
	"github.com/rustyeddy/tradeorg/org"
	"go.uber.org/zap"
)

// session is the wiring shared by commands that replay orders: config,
// logger, trade journal and the optional metrics endpoint.
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	journal journal.Journal
	metrics *prometheus.Registry
	server  *http.Server
	events  *org.EventLog
}

func openSession(logOut io.Writer, serve bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, log: log, journal: journal.Nop{}, events: org.NewEventLog()}
	if cfg.Journal.Type == "csv" {
		j, err := journal.NewCSV(cfg.Journal.TradesFile)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		s.journal = j
		log.Info("journaling trades", zap.String("file", cfg.Journal.TradesFile))
	}

	if cfg.Metrics.Enabled {
		s.metrics = prometheus.NewRegistry()
		if serve && cfg.Metrics.Addr != "" {
			s.server = serveMetrics(cfg.Metrics.Addr, s.metrics, log)
		}
	}
	return s, nil
}

// replay builds the organization and sends every configured order.
func (s *session) replay(ctx context.Context) (*scenario.Scenario, []scenario.Result, error) {
	opts := []org.Option{org.WithJournal(s.journal), org.WithEventLog(s.events)}
	if s.metrics != nil {
		opts = append(opts, org.WithMetrics(org.NewMetrics(s.metrics)))
	}

	sc, err := scenario.Build(s.cfg, s.log, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("build organization: %w", err)
	}
	results, err := sc.Run(ctx, s.cfg.Orders)
	if err != nil {
		return sc, results, fmt.Errorf("replay orders: %w", err)
	}
	return sc, results, nil
}

func (s *session) Close() error {
	var errs []error
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop metrics server: %w", err))
		}
	}
	if err := s.journal.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close journal: %w", err))
	}
	_ = s.log.Sync()
	return errors.Join(errs...)
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}
