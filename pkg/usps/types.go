package usps

import "time"

// Record is one input address row. Key is an opaque caller-supplied
// identifier carried through to the output untouched; it is not checked
// for uniqueness.
type Record struct {
	Key      string
	Street   string
	City     string
	State    string
	PostCode string
}

// Credential is a bearer token obtained from the USPS OAuth2 token endpoint.
// It is acquired once per run and shared read-only across all validation
// calls; there is no mid-run refresh.
type Credential struct {
	AccessToken string
	ExpiresIn   int
	IssuedAt    time.Time
}

// Sentinel values for the FullZIP4 column.
const (
	// FullZIP4None marks a successful call that returned no ZIP code.
	FullZIP4None = "N/A"

	// FullZIP4Error marks a record whose remote call failed.
	FullZIP4Error = "ERROR"
)

// Result is the outcome of validating a single Record. The Original fields
// echo the input; the Validated fields hold what the service returned, with
// an empty string meaning the service omitted the field. Results are created
// exactly once per input record and never mutated afterwards.
type Result struct {
	Key string

	OriginalStreet   string
	OriginalCity     string
	OriginalState    string
	OriginalPostCode string

	ValidatedStreet   string
	ValidatedCity     string
	ValidatedState    string
	ValidatedZIPCode  string
	ValidatedZIPPlus4 string

	FullZIP4     string
	Valid        bool
	ErrorMessage string
}

// newResult builds the success-path Result for rec from the address fields
// the service returned. A record is valid only when street, city, state and
// ZIP code are all present.
func newResult(rec Record, street, city, state, zipCode, zipPlus4 string) Result {
	return Result{
		Key:               rec.Key,
		OriginalStreet:    rec.Street,
		OriginalCity:      rec.City,
		OriginalState:     rec.State,
		OriginalPostCode:  rec.PostCode,
		ValidatedStreet:   street,
		ValidatedCity:     city,
		ValidatedState:    state,
		ValidatedZIPCode:  zipCode,
		ValidatedZIPPlus4: zipPlus4,
		FullZIP4:          fullZIP4(zipCode, zipPlus4),
		Valid:             street != "" && city != "" && state != "" && zipCode != "",
	}
}

// errorResult builds the failure-path Result: all validated fields empty,
// the ERROR sentinel, and a human-readable message for the output table.
func errorResult(rec Record, msg string) Result {
	return Result{
		Key:              rec.Key,
		OriginalStreet:   rec.Street,
		OriginalCity:     rec.City,
		OriginalState:    rec.State,
		OriginalPostCode: rec.PostCode,
		FullZIP4:         FullZIP4Error,
		Valid:            false,
		ErrorMessage:     msg,
	}
}

// fullZIP4 derives the combined ZIP column: "ZIPCode-ZIPPlus4" when both are
// present, the bare ZIP code when only it is, and the N/A sentinel otherwise.
func fullZIP4(zipCode, zipPlus4 string) string {
	switch {
	case zipCode != "" && zipPlus4 != "":
		return zipCode + "-" + zipPlus4
	case zipCode != "":
		return zipCode
	default:
		return FullZIP4None
	}
}
