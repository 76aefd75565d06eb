// Package ratelimit implements the client-side pacing policy for USPS API
// calls: a fixed delay between record batches. The policy is static by
// design of the pipeline - observed 429 responses do not change the delay -
// so sustained throughput is batch_size / (processing_time + delay).
package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for pacing.
var (
	pacerPausesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usps_pacer_pauses_total",
		Help: "Total number of inter-batch pacing pauses",
	})

	pacerPauseSecondsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usps_pacer_pause_seconds_total",
		Help: "Cumulative time spent in pacing pauses",
	})
)

// SleepFunc blocks for d or until ctx is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pacer enforces a fixed delay between request batches.
type Pacer struct {
	delay  time.Duration
	sleep  SleepFunc
	logger zerolog.Logger
}

// NewPacer creates a pacer with the given inter-batch delay. A zero or
// negative delay disables pausing.
func NewPacer(delay time.Duration, logger zerolog.Logger) *Pacer {
	return &Pacer{
		delay:  delay,
		sleep:  sleepContext,
		logger: logger,
	}
}

// Delay returns the configured inter-batch delay.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// SetSleep replaces the sleep implementation (for testing).
func (p *Pacer) SetSleep(fn SleepFunc) {
	p.sleep = fn
}

// Pause blocks for the configured delay. It returns early with ctx.Err()
// when the context is cancelled mid-pause.
func (p *Pacer) Pause(ctx context.Context) error {
	if p.delay <= 0 {
		return nil
	}

	p.logger.Debug().
		Dur("delay", p.delay).
		Msg("Pausing before next batch")

	pacerPausesTotal.Inc()
	pacerPauseSecondsTotal.Add(p.delay.Seconds())

	return p.sleep(ctx, p.delay)
}

// sleepContext waits for d with context cancellation support.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
