package event

import (
	"log/slog"

	"github.com/viant/rrsim/service/messaging/memory"
)

type Option func(s *Service)

// WithNewMemoryQueueConfig sets the per-queue memory configuration factory
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memNewQueueConfig = newConfig
	}
}

// WithLogger sets the logger used by listeners
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
