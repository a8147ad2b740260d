// Package app wires the dispatch service from its configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cheetahx/dispatch/api/orders"
	"github.com/cheetahx/dispatch/config"
	coreaudit "github.com/cheetahx/dispatch/core/audit"
	"github.com/cheetahx/dispatch/core/directory"
	"github.com/cheetahx/dispatch/core/dispatch"
	"github.com/cheetahx/dispatch/core/logger"
	coremetrics "github.com/cheetahx/dispatch/core/metrics"
	"github.com/cheetahx/dispatch/core/model"
	"github.com/cheetahx/dispatch/core/routing"
	"github.com/cheetahx/dispatch/core/voice"
	infraaudit "github.com/cheetahx/dispatch/infra/audit"
	"github.com/cheetahx/dispatch/infra/callout"
	infradirectory "github.com/cheetahx/dispatch/infra/directory"
	infralogger "github.com/cheetahx/dispatch/infra/logger"
	inframetrics "github.com/cheetahx/dispatch/infra/metrics"
	infrarouting "github.com/cheetahx/dispatch/infra/routing"
	"github.com/cheetahx/dispatch/infra/transcribe"
	"github.com/cheetahx/dispatch/internal/eventbus"
)

// Service orchestrates the dispatch pipeline and its connectors.
type Service struct {
	Pipeline *dispatch.Pipeline
	Bus      *eventbus.Bus[model.DispatchResult]

	listenAddr string
	apiToken   string
	promAddr   string
	log        logger.Logger
	closers    []func() error
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	svc := &Service{
		Bus:        eventbus.New[model.DispatchResult](),
		listenAddr: cfg.App.ListenAddr,
		apiToken:   cfg.App.APIToken,
		promAddr:   cfg.Metrics.PromAddr,
		log:        infralogger.New("service"),
	}

	dir, err := svc.buildDirectory(cfg.Directory)
	if err != nil {
		return nil, err
	}
	routes := buildRoutes(cfg.Routing)
	agent, err := svc.buildAgent(cfg)
	if err != nil {
		return nil, err
	}
	auditSink, err := svc.buildAudit(cfg.Audit)
	if err != nil {
		svc.closeAll()
		return nil, err
	}

	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if cfg.Metrics.InfluxEnabled {
		sink = inframetrics.NewInfluxSinkWithFallback(cfg.Metrics.Influx)
	}

	svc.Pipeline = dispatch.NewPipeline(dispatch.Deps{
		Directory: dir,
		Routes:    routes,
		Agent:     agent,
		Audit:     auditSink,
		Metrics:   sink,
		Log:       infralogger.New("dispatch"),
	})
	return svc, nil
}

func (s *Service) buildDirectory(cfg config.DirectoryConfig) (directory.Directory, error) {
	switch cfg.Mode {
	case "http":
		return infradirectory.NewHTTPDirectory(cfg.HTTP, infralogger.New("directory")), nil
	case "static":
		return infradirectory.NewStaticDirectory(infradirectory.FixturePool(time.Now())), nil
	default:
		return nil, fmt.Errorf("directory mode %s", cfg.Mode)
	}
}

func buildRoutes(cfg config.RoutingConfig) routing.RouteService {
	if cfg.Mode == "googlemaps" {
		return infrarouting.NewGoogleMapsService(cfg.GoogleMaps, infralogger.New("routing"))
	}
	return infrarouting.MockRouteService{AvgSpeedKmh: cfg.MockSpeedKmh}
}

func (s *Service) buildAgent(cfg *config.Config) (dispatch.CallAgent, error) {
	switch cfg.Callout.Mode {
	case "local":
		audio := callout.NewLocalAudio(infralogger.New("audio"))
		s.closers = append(s.closers, func() error { audio.Close(); return nil })
		stt := transcribe.New(cfg.Transcribe, infralogger.New("transcribe"))
		return voice.NewAgent(audio, stt, cfg.Callout.Voice, infralogger.New("voice")), nil
	case "remote":
		return callout.NewRemoteAgent(cfg.Callout.Remote, infralogger.New("callout")), nil
	case "mock":
		return callout.NewMockAgent(cfg.Callout.Mock.AcceptanceRate, cfg.Callout.Mock.Seed, infralogger.New("callout")), nil
	default:
		return nil, fmt.Errorf("callout mode %s", cfg.Callout.Mode)
	}
}

func (s *Service) buildAudit(cfg config.AuditConfig) (coreaudit.Sink, error) {
	var store infraaudit.Store
	var err error
	switch cfg.Backend {
	case "sqlite":
		store, err = infraaudit.NewSQLiteStore(cfg.Path)
	default:
		store, err = infraaudit.NewJSONLStore(cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}
	s.closers = append(s.closers, store.Close)

	appenders := infraaudit.MultiAppender{store}
	if cfg.MQTTEnabled {
		pub, err := infraaudit.NewMQTTAppender(cfg.MQTT, infralogger.New("audit"))
		if err != nil {
			return nil, fmt.Errorf("audit mqtt: %w", err)
		}
		s.closers = append(s.closers, pub.Close)
		appenders = append(appenders, pub)
	}
	return infraaudit.NewStoreSink(appenders), nil
}

// ProcessOrder runs the pipeline for one order and publishes the result on
// the bus.
func (s *Service) ProcessOrder(ctx context.Context, order model.Order) (model.DispatchResult, error) {
	result, err := s.Pipeline.ProcessOrder(ctx, order)
	if err != nil {
		return result, err
	}
	s.Bus.Publish(result)
	return result, nil
}

// Run serves the order intake API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promAddr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/orders", orders.NewIntakeHandler(s, s.apiToken, infralogger.New("api")))
	srv := &http.Server{Addr: s.listenAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("intake server shutdown: %v", err)
		}
		cancel()
	}()
	s.log.Infof("order intake listening on %s", s.listenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Bus.Close()
	return s.closeAll()
}

func (s *Service) closeAll() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
