package app

import (
	"context"
	"fmt"

	"github.com/voltbus/curtaild/config"
	"github.com/voltbus/curtaild/core/curtail"
	"github.com/voltbus/curtaild/infra/hub"
	"github.com/voltbus/curtaild/infra/logger"
	"github.com/voltbus/curtaild/infra/metrics"
	"github.com/voltbus/curtaild/infra/mqtt"
)

// Service wires the hub client, metrics sinks, the optional MQTT publisher
// and the curtailment controller.
type Service struct {
	Controller *curtail.Controller

	publisher   *mqtt.Publisher
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	logger.SetGlobalLevel(cfg.Logging.Level)

	client := hub.NewClient(cfg.Hub, logger.New("hub-client"))

	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	ctl := curtail.NewController(cfg.Curtailment, client, client, logger.New("controller"))
	ctl.SetSink(sink)

	svc := &Service{
		Controller:  ctl,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		ctl.SetPublisher(pub)
		svc.publisher = pub
	}
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	return s.Controller.Run(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	return nil
}
