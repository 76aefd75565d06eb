// Package report aggregates validation results into the run summary and
// the persisted output table.
package report

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/usps-tools/addrvalidate/pkg/usps"
)

// Prometheus metrics for run outcomes.
var (
	runValidRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "usps_run_valid_records",
		Help: "Number of records in the last run that validated successfully",
	})

	runInvalidRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "usps_run_invalid_records",
		Help: "Number of records in the last run that failed validation",
	})
)

// ErrAllInvalid is returned when every processed record failed validation.
// A fully failed batch almost always means a systemic problem (bad
// credential, wrong endpoint, malformed input) rather than genuinely bad
// addresses, so no output table is produced.
var ErrAllInvalid = errors.New("no valid addresses in result set")

// Summary holds the per-run outcome counts.
type Summary struct {
	Total   int
	Valid   int
	Invalid int
}

// Writer persists the full ordered result set.
type Writer func(results []usps.Result) error

// Summarize counts valid and invalid results.
func Summarize(results []usps.Result) Summary {
	sum := Summary{Total: len(results)}
	for _, r := range results {
		if r.Valid {
			sum.Valid++
		} else {
			sum.Invalid++
		}
	}
	return sum
}

// Finalize computes the run summary and, when at least one record is valid,
// writes the complete ordered result set - invalid rows included, for
// auditability - through write. When records were processed but none
// validated it returns ErrAllInvalid and writes nothing. An empty result
// set also writes nothing but is not an error.
func Finalize(results []usps.Result, write Writer) (Summary, error) {
	sum := Summarize(results)

	runValidRecords.Set(float64(sum.Valid))
	runInvalidRecords.Set(float64(sum.Invalid))

	logger := log.With().Str("component", "report").Logger()

	if sum.Total == 0 {
		logger.Warn().Msg("No addresses were processed")
		return sum, nil
	}

	if sum.Valid == 0 {
		logger.Error().
			Int("total", sum.Total).
			Msg("No valid addresses found; check the input data or API credentials")
		return sum, ErrAllInvalid
	}

	if err := write(results); err != nil {
		return sum, fmt.Errorf("write results: %w", err)
	}

	logger.Info().
		Int("total", sum.Total).
		Int("valid", sum.Valid).
		Int("invalid", sum.Invalid).
		Msg("Validation complete")

	return sum, nil
}

// SampleTable renders the first n result rows for the console, mirroring
// the preview printed at the end of a run.
func SampleTable(results []usps.Result, n int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"KEY", "original_STREET", "validated_STREET", "full_zip4", "is_valid", "error_message"})

	for i, r := range results {
		if i >= n {
			break
		}
		tw.AppendRow(table.Row{r.Key, r.OriginalStreet, r.ValidatedStreet, r.FullZIP4, r.Valid, r.ErrorMessage})
	}

	return tw.Render()
}
