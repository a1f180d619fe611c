package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urbanride/dispatch/api/orders"
	"github.com/urbanride/dispatch/config"
	"github.com/urbanride/dispatch/core/dispatch"
	coremetrics "github.com/urbanride/dispatch/core/metrics"
	"github.com/urbanride/dispatch/core/model"
	"github.com/urbanride/dispatch/core/pricing"
	"github.com/urbanride/dispatch/infra/logger"
	"github.com/urbanride/dispatch/infra/metrics"
	"github.com/urbanride/dispatch/infra/mqtt"
	"github.com/urbanride/dispatch/internal/eventbus"
)

// Service assembles the pricing and dispatch engine with its adapters.
type Service struct {
	Coordinator *dispatch.Coordinator
	handler     *orders.Handler
	ingestor    *mqtt.RulesIngestor
	bus         *eventbus.Bus
	log         logger.Logger
	cfg         *config.Config
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	calc, err := pricing.NewCalculator(cfg.Pricing)
	if err != nil {
		return nil, fmt.Errorf("calculator: %w", err)
	}
	scorer, err := pricing.NewScorer(cfg.Score)
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}

	bus := eventbus.New()
	coordinator, err := dispatch.NewCoordinator(pricing.NewStore(), calc, scorer, logg, sink, bus)
	if err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}
	if cfg.Rules.Path != "" {
		if err := seedRules(coordinator, cfg.Rules.Path); err != nil {
			return nil, fmt.Errorf("seed rules: %w", err)
		}
	}

	svc := &Service{
		Coordinator: coordinator,
		handler:     orders.NewHandler(coordinator),
		bus:         bus,
		log:         logg,
		cfg:         cfg,
	}
	if cfg.MQTT.Enabled {
		ing, err := mqtt.NewRulesIngestor(cfg.MQTT, coordinator)
		if err != nil {
			return nil, fmt.Errorf("rules ingestor: %w", err)
		}
		svc.ingestor = ing
	}
	return svc, nil
}

// seedRules installs the initial rule snapshot from a JSON file.
func seedRules(c *dispatch.Coordinator, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var rules []model.PricingRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return err
	}
	return c.ReplaceRules(rules)
}

// Run starts the HTTP servers and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("API listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.ingestor != nil {
		s.ingestor.Close()
	}
	s.bus.Close()
	return nil
}
