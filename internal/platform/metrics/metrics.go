package metrics

import (
	"sync/atomic"
	"time"
)

// Outcome names a request lifecycle event counted by the collector.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeRejected
	OutcomeExceptional
	OutcomeResolved
	outcomeCount
)

var outcomeNames = [outcomeCount]string{
	OutcomeCreated:     "requestsCreatedTotal",
	OutcomeRejected:    "requestsRejectedTotal",
	OutcomeExceptional: "requestsExceptionalTotal",
	OutcomeResolved:    "requestsResolvedTotal",
}

type Collector struct {
	totalRequests   uint64
	clientErrors    uint64
	errorRequests   uint64
	totalDurationMs uint64
	outcomes        [outcomeCount]uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// Count is nil-safe so services may run without a collector.
func (c *Collector) Count(o Outcome) {
	if c == nil || o < 0 || o >= outcomeCount {
		return
	}
	atomic.AddUint64(&c.outcomes[o], 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	out := map[string]any{
		"httpRequestsTotal": total,
		"clientErrorsTotal": atomic.LoadUint64(&c.clientErrors),
		"errorsTotal":       atomic.LoadUint64(&c.errorRequests),
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
	}
	for i, name := range outcomeNames {
		out[name] = atomic.LoadUint64(&c.outcomes[i])
	}
	return out
}
