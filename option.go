package rrsim

import (
	"log/slog"

	"github.com/viant/afs"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/progress"
	"github.com/viant/rrsim/service/catalog"
	"github.com/viant/rrsim/service/dao"
	"github.com/viant/rrsim/service/event"
	"github.com/viant/rrsim/service/scheduler"
	"github.com/viant/rrsim/tracing"
)

// Option configures a Service
type Option func(s *Service)

// WithConfig sets the service configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithQuantum overrides the configured quantum
func WithQuantum(quantum int) Option {
	return func(s *Service) {
		s.quantum = &quantum
	}
}

// WithLogger sets the logger shared by the service components
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithFs sets the file system used to read configuration and datasets
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithEventService sets the event service backing subscriptions
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.eventService = service
	}
}

// WithProcessDAO sets the record registry
func WithProcessDAO(dao dao.Service[int, model.Process]) Option {
	return func(s *Service) {
		s.runtime.processDAO = dao
	}
}

// WithSource sets an already opened dataset
func WithSource(source catalog.Source) Option {
	return func(s *Service) {
		s.runtime.source = source
	}
}

// WithListener registers a synchronous scheduler listener
func WithListener(listener scheduler.Listener) Option {
	return func(s *Service) {
		s.listeners = append(s.listeners, listener)
	}
}

// WithProgressListener sets a callback receiving run counters
func WithProgressListener(listener func(progress.Progress)) Option {
	return func(s *Service) {
		s.runtime.onProgress = listener
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErrors = append(s.initErrors, err)
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.initErrors = append(s.initErrors, err)
		}
	}
}
