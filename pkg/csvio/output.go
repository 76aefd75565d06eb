package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/usps-tools/addrvalidate/pkg/usps"
)

// resultHeader is the output schema. Column names keep the historical
// mixed-case style so downstream consumers of the table keep working.
var resultHeader = []string{
	"KEY",
	"original_STREET",
	"original_CITY",
	"original_STATE",
	"original_POST_CODE",
	"validated_STREET",
	"validated_CITY",
	"validated_STATE",
	"validated_ZIPCode",
	"validated_ZIPPlus4",
	"full_zip4",
	"is_valid",
	"error_message",
}

// WriteResults writes every result row to path, creating the parent
// directory when needed. Rows are written in the order given.
func WriteResults(path string, results []usps.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(resultHeader); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.Key,
			r.OriginalStreet,
			r.OriginalCity,
			r.OriginalState,
			r.OriginalPostCode,
			r.ValidatedStreet,
			r.ValidatedCity,
			r.ValidatedState,
			r.ValidatedZIPCode,
			r.ValidatedZIPPlus4,
			r.FullZIP4,
			strconv.FormatBool(r.Valid),
			r.ErrorMessage,
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row for key %s: %w", r.Key, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush output: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	log.Info().
		Str("component", "csvio").
		Int("rows", len(results)).
		Str("path", path).
		Msg("Results saved")

	return nil
}
