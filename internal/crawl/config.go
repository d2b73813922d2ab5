package crawl

import "time"

// Default configuration values.
const (
	defaultMaxPages       = 10
	maxPagesCeiling       = 20
	defaultMaxDepth       = 3
	defaultParallelism    = 2
	defaultDelay          = 1 * time.Second
	defaultRequestTimeout = 15 * time.Second
	defaultBudget         = 5 * time.Minute
)

// Config holds crawler configuration.
type Config struct {
	// MaxPages is the page count ceiling for one crawl.
	MaxPages int `yaml:"max_pages"`
	// MaxDepth bounds link traversal depth from the root URL.
	MaxDepth int `yaml:"max_depth"`
	// Parallelism is the number of concurrent requests per domain.
	Parallelism int `yaml:"parallelism"`
	// Delay is the fixed inter-request politeness delay.
	Delay time.Duration `yaml:"delay"`
	// RequestTimeout bounds each page request.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Budget is the wall-clock ceiling for the whole crawl.
	Budget time.Duration `yaml:"budget"`
}

// WithDefaults returns a copy of the config with default values applied
// for zero-value fields and the page ceiling enforced.
func (c Config) WithDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.MaxPages > maxPagesCeiling {
		c.MaxPages = maxPagesCeiling
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaultMaxDepth
	}
	if c.Parallelism <= 0 {
		c.Parallelism = defaultParallelism
	}
	if c.Delay <= 0 {
		c.Delay = defaultDelay
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.Budget <= 0 {
		c.Budget = defaultBudget
	}
	return c
}
