package fetch

import "time"

// Default configuration values.
const (
	defaultAttemptTimeout  = 15 * time.Second
	defaultRenderTimeout   = 30 * time.Second
	defaultSparseThreshold = 10000
	defaultMaxBodyBytes    = 10 * 1024 * 1024 // 10 MB
)

// Config holds fetcher configuration.
type Config struct {
	// AttemptTimeout bounds each single persona attempt.
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	// RenderTimeout bounds the optional render-service call.
	RenderTimeout time.Duration `yaml:"render_timeout"`
	// SparseThreshold is the body length in bytes under which static HTML
	// is judged JS-dependent.
	SparseThreshold int `yaml:"sparse_threshold"`
	// MaxBodyBytes caps the size of a fetched response body.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// RenderEndpoint is the Browserless-style /content endpoint. Empty
	// disables the render fallback.
	RenderEndpoint string `yaml:"render_endpoint"`
	// RenderToken authenticates against the render endpoint.
	RenderToken string `yaml:"render_token"`
}

// WithDefaults returns a copy of the config with default values applied
// for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = defaultAttemptTimeout
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = defaultRenderTimeout
	}
	if c.SparseThreshold <= 0 {
		c.SparseThreshold = defaultSparseThreshold
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	return c
}
