// Package metrics provides the centralized Prometheus registry reference
// for the validator. All metrics are defined in their respective packages
// (usps, batch, ratelimit, report) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the validator.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/usps):
//   - usps_requests_total{status} (Counter): Address verification requests by HTTP status
//   - usps_request_duration_seconds (Histogram): Address verification request duration
//   - usps_errors_total{class} (Counter): Failed verification requests by class
//     (client, server, rate_limit, network, decode)
//   - usps_token_requests_total{outcome} (Counter): Token endpoint calls by outcome
//
// Pacing Metrics (pkg/ratelimit):
//   - usps_pacer_pauses_total (Counter): Inter-batch pacing pauses
//   - usps_pacer_pause_seconds_total (Counter): Cumulative pause time
//
// Batch Metrics (pkg/batch):
//   - usps_batches_total (Counter): Record batches processed
//   - usps_batch_records_total (Counter): Records processed across batches
//
// Run Metrics (pkg/report):
//   - usps_run_valid_records (Gauge): Valid records in the last run
//   - usps_run_invalid_records (Gauge): Invalid records in the last run
//
// Example Prometheus Queries:
//
//   # Verification error rate
//   rate(usps_errors_total[5m])
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(usps_request_duration_seconds_bucket[5m]))
//
//   # Share of run time spent pacing
//   rate(usps_pacer_pause_seconds_total[5m])
//
//   # Validity ratio of the last run
//   usps_run_valid_records /
//   (usps_run_valid_records + usps_run_invalid_records)
