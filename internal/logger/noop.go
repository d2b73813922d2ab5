package logger

import "time"

// Noop is a logger that discards all messages. Used in tests.
type Noop struct{}

// NewNoop creates a new no-op logger.
func NewNoop() Interface {
	return &Noop{}
}

func (n *Noop) Debug(string, ...any) {}
func (n *Noop) Info(string, ...any)  {}
func (n *Noop) Warn(string, ...any)  {}
func (n *Noop) Error(string, ...any) {}
func (n *Noop) Fatal(string, ...any) {}

func (n *Noop) With(...any) Interface                 { return n }
func (n *Noop) WithComponent(string) Interface        { return n }
func (n *Noop) WithDocument(string) Interface         { return n }
func (n *Noop) WithURL(string) Interface              { return n }
func (n *Noop) WithDuration(time.Duration) Interface  { return n }
func (n *Noop) WithError(error) Interface             { return n }
