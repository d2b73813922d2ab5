package analyze

import "time"

// SetRetryDelay shrinks the backoff so retry tests run fast.
func (a *Analyzer) SetRetryDelay(d time.Duration) {
	a.retry.InitialDelay = d
	a.retry.MaxDelay = d
}
