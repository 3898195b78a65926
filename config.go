package rrsim

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/rrsim/internal/expr"
	"github.com/viant/rrsim/service/catalog"
	"github.com/viant/rrsim/service/messaging/memory"
	"github.com/viant/rrsim/service/scheduler"
)

// Config is a serialisable representation of the simulator configuration.
// Zero-value nested sections are replaced by their package defaults when the
// configuration is loaded.
type Config struct {
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Catalog   CatalogConfig    `json:"catalog" yaml:"catalog"`
	Events    EventsConfig     `json:"events" yaml:"events"`
	Tracing   TracingConfig    `json:"tracing" yaml:"tracing"`
}

// CatalogConfig selects the dataset opened at startup
type CatalogConfig struct {
	// Location of a .db/.sqlite, .duckdb, .yaml or .json dataset; optional
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Kind     string `json:"kind" yaml:"kind"`
}

// EventsConfig configures the queue behind event subscriptions
type EventsConfig struct {
	QueueBuffer int           `json:"queueBuffer" yaml:"queueBuffer"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries"`
	RetryDelay  time.Duration `json:"retryDelay" yaml:"retryDelay"`
}

// TracingConfig configures the OpenTelemetry stdout exporter
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"serviceName" yaml:"serviceName"`
	Version     string `json:"version" yaml:"version"`
	// Output is a file path; empty writes to stdout
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: scheduler.DefaultConfig(),
		Catalog:   CatalogConfig{Kind: string(catalog.KindCPU)},
		Events: EventsConfig{
			QueueBuffer: 1024,
			MaxRetries:  0,
			RetryDelay:  10 * time.Millisecond,
		},
		Tracing: TracingConfig{ServiceName: "rrsim", Version: Version},
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if _, err := catalog.ParseKind(c.Catalog.Kind); err != nil {
		return fmt.Errorf("catalog.kind: %w", err)
	}
	if c.Events.QueueBuffer <= 0 {
		return fmt.Errorf("events.queueBuffer must be > 0")
	}
	if c.Events.MaxRetries < 0 {
		return fmt.Errorf("events.maxRetries must be >= 0")
	}
	return nil
}

// queueConfig returns the memory queue configuration of subscription queues.
// A slow subscriber loses snapshots rather than stalling the scheduler.
func (c *Config) queueConfig(string) memory.Config {
	ret := memory.DefaultConfig()
	ret.QueueBuffer = c.Events.QueueBuffer
	ret.MaxRetries = c.Events.MaxRetries
	ret.RetryDelay = c.Events.RetryDelay
	ret.DropWhenFull = true
	return ret
}

// LoadConfig reads a YAML (or JSON) configuration from URL, expanding
// ${env.KEY} references before decoding. Omitted settings keep defaults.
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(expr.ExpandEnv(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
