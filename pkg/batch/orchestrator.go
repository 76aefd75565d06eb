// Package batch sequences address validation over fixed-size record groups.
// Processing is strictly sequential: one request at a time, in input order,
// with a pacing pause between groups.
package batch

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/usps-tools/addrvalidate/pkg/usps"
)

// Prometheus metrics for batch processing.
var (
	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usps_batches_total",
		Help: "Total number of record batches processed",
	})

	batchRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "usps_batch_records_total",
		Help: "Total number of records processed across batches",
	})
)

// Validator validates a single record. *usps.Client satisfies it.
type Validator interface {
	Validate(ctx context.Context, rec usps.Record, cred *usps.Credential) usps.Result
}

// Pacer suspends between batches. *ratelimit.Pacer satisfies it.
type Pacer interface {
	Pause(ctx context.Context) error
}

// Orchestrator partitions records into contiguous groups of at most
// batchSize and validates them in input order.
type Orchestrator struct {
	validator Validator
	pacer     Pacer
	batchSize int
	logger    zerolog.Logger
}

// New creates an orchestrator. batchSize must be at least 1.
func New(validator Validator, pacer Pacer, batchSize int) (*Orchestrator, error) {
	if validator == nil {
		return nil, fmt.Errorf("validator is required")
	}

	if pacer == nil {
		return nil, fmt.Errorf("pacer is required")
	}

	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be >= 1 (got %d)", batchSize)
	}

	return &Orchestrator{
		validator: validator,
		pacer:     pacer,
		batchSize: batchSize,
		logger:    log.With().Str("component", "batch").Logger(),
	}, nil
}

// Run validates every record and returns exactly one Result per input
// record, in input order. Per-record failures are already absorbed by the
// Validator, so they never interrupt iteration; a pause happens after every
// group except the last. Run only fails when ctx is cancelled, in which
// case no results are returned.
func (o *Orchestrator) Run(ctx context.Context, records []usps.Record, cred *usps.Credential) ([]usps.Result, error) {
	results := make([]usps.Result, 0, len(records))
	total := len(records)

	for start := 0; start < total; start += o.batchSize {
		end := start + o.batchSize
		if end > total {
			end = total
		}

		o.logger.Info().
			Int("batch", start/o.batchSize+1).
			Int("first_row", start).
			Int("last_row", end-1).
			Msg("Processing batch")

		for _, rec := range records[start:end] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results = append(results, o.validator.Validate(ctx, rec, cred))
		}

		batchesTotal.Inc()
		batchRecordsTotal.Add(float64(end - start))

		if end < total {
			if err := o.pacer.Pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}
