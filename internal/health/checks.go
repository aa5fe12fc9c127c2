package health

import (
	"context"
	"errors"
	"time"
)

// ErrBreakerOpen is reported by a breaker check while its circuit is open
var ErrBreakerOpen = errors.New("circuit breaker open")

// CheckResult is one check's outcome
type CheckResult struct {
	Status    string `json:"status"`
	Critical  bool   `json:"critical"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

// Check is a named readiness check. A failing critical check makes the
// service not_ready; any other failure only degrades it.
type Check struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) error
}

func (c Check) run(ctx context.Context) CheckResult {
	start := time.Now()
	err := c.Run(ctx)
	res := CheckResult{
		Status:    StatusOK,
		Critical:  c.Critical,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		res.Status = StatusNotReady
		if !c.Critical {
			res.Status = StatusDegraded
		}
		res.Error = err.Error()
	}
	return res
}

// StorePinger is satisfied by every run store
type StorePinger interface {
	Ping(ctx context.Context) error
}

// StoreCheck pings the run store; the check is named after its backend
func StoreCheck(backend string, store StorePinger) Check {
	return Check{
		Name:     "store:" + backend,
		Critical: true,
		Run:      store.Ping,
	}
}

// Breaker reports whether a provider's circuit breaker has tripped
type Breaker interface {
	IsOpen() bool
}

// BreakerCheck reports a provider circuit. Enrichment falls back while it is
// open, so the check is never critical.
func BreakerCheck(name string, b Breaker) Check {
	return Check{
		Name: "provider:" + name,
		Run: func(context.Context) error {
			if b.IsOpen() {
				return ErrBreakerOpen
			}
			return nil
		},
	}
}
