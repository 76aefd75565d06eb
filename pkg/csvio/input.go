// Package csvio reads the input address table and writes the validated
// output table.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/usps-tools/addrvalidate/pkg/usps"
)

// Input gatekeeping errors. All of them are fatal before any remote call.
var (
	// ErrMissingCSVExt is returned when the filename has no extension or a
	// non-.csv one.
	ErrMissingCSVExt = errors.New("missing .csv extension")

	// ErrExcelInput is returned for spreadsheet extensions, with a
	// corrective message instead of the generic one.
	ErrExcelInput = errors.New("please convert your Excel file to a .csv")

	// ErrNotFound is returned when the file is absent from the data
	// directory.
	ErrNotFound = errors.New("filename not found in data folder; check this file has been moved to the right folder")
)

// excelExts are spreadsheet extensions that are explicitly rejected.
var excelExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
	".xltx": true,
	".xltm": true,
}

// requiredColumns are the input header columns the loader needs, by exact
// name.
var requiredColumns = []string{"KEY", "STREET", "CITY", "STATE", "POST_CODE"}

// CheckFilename enforces the input naming rules: the name must carry a
// literal .csv extension (case-insensitive), and spreadsheet extensions are
// rejected outright.
func CheckFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))

	switch {
	case excelExts[ext]:
		return ErrExcelInput
	case ext != ".csv":
		return ErrMissingCSVExt
	}

	return nil
}

// Load reads the input table dir/filename and returns its records in file
// order. The filename is checked before the file is touched, so a rejected
// extension never opens anything. Extra columns are ignored.
func Load(dir, filename string) ([]usps.Record, error) {
	if err := CheckFilename(filename); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, filename)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", filename, ErrNotFound)
		}
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []usps.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}

		records = append(records, usps.Record{
			Key:      row[idx["KEY"]],
			Street:   row[idx["STREET"]],
			City:     row[idx["CITY"]],
			State:    row[idx["STATE"]],
			PostCode: row[idx["POST_CODE"]],
		})
	}

	log.Info().
		Str("component", "csvio").
		Int("records", len(records)).
		Str("path", path).
		Msg("Loaded input records")

	return records, nil
}

// columnIndex maps each required column name to its position in the header.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("input file is missing required column %q", name)
		}
	}

	return idx, nil
}
