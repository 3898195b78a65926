package rrsim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viant/afs"

	"github.com/viant/rrsim/service/catalog"
	pmemory "github.com/viant/rrsim/service/dao/process/memory"
	"github.com/viant/rrsim/service/event"
	"github.com/viant/rrsim/service/messaging"
	"github.com/viant/rrsim/service/scheduler"
	"github.com/viant/rrsim/tracing"
)

// Service wires the scheduler with the dataset, registry and event layers
type Service struct {
	runtime      *Runtime
	config       *Config
	quantum      *int
	logger       *slog.Logger
	fs           afs.Service
	eventService *event.Service
	listeners    []scheduler.Listener
	initErrors   []error
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	config := *s.config
	s.config = &config
	if s.quantum != nil {
		s.config.Scheduler.Quantum = *s.quantum
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.config.Tracing.Enabled {
		WithTracing(s.config.Tracing.ServiceName, s.config.Tracing.Version, s.config.Tracing.Output)(s)
	}
	if len(s.initErrors) > 0 {
		return errors.Join(s.initErrors...)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}
	kind, _ := catalog.ParseKind(s.config.Catalog.Kind)
	s.runtime.kind = kind
	s.runtime.logger = s.logger
	s.runtime.fs = s.fs
	s.runtime.events = s.eventService

	engine, err := scheduler.New(
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithLogger(s.logger),
		scheduler.WithListener(s.runtime.onEvent),
	)
	if err != nil {
		return err
	}
	for _, listener := range s.listeners {
		engine.AddListener(listener)
	}
	s.runtime.engine = engine
	return nil
}

func (s *Service) ensureBaseSetup() error {
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.eventService == nil {
		service, err := event.New(messaging.VendorMemory,
			event.WithNewMemoryQueueConfig(s.config.queueConfig),
			event.WithLogger(s.logger))
		if err != nil {
			return err
		}
		s.eventService = service
	}
	if s.runtime.processDAO == nil {
		s.runtime.processDAO = pmemory.New()
	}
	return nil
}

// Runtime returns the simulator runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Close stops the scheduler and subscriptions, releases the dataset and
// flushes traces.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if err := s.runtime.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush traces: %w", err))
	}
	return errors.Join(errs...)
}

// New creates a simulator service; the configured dataset, if any, is
// opened by the caller through Runtime.OpenDataset.
func New(options ...Option) (*Service, error) {
	ret := &Service{runtime: &Runtime{}, config: DefaultConfig()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
