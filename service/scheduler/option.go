package scheduler

import "log/slog"

// Option configures an Engine
type Option func(e *Engine)

// WithConfig sets the scheduler configuration
func WithConfig(config Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithQuantum overrides the configured quantum
func WithQuantum(quantum int) Option {
	return func(e *Engine) {
		e.config.Quantum = quantum
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithListener registers a synchronous transition listener
func WithListener(listener Listener) Option {
	return func(e *Engine) {
		if listener != nil {
			e.listeners = append(e.listeners, listener)
		}
	}
}
