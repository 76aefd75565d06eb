package usps

import (
	"context"
	"strings"
	"testing"

	"github.com/usps-tools/addrvalidate/internal/testutil"
)

var testRecord = Record{
	Key:      "R1",
	Street:   "1600 Pennsylvania Ave NW",
	City:     "Washington",
	State:    "DC",
	PostCode: "20500",
}

func testCredential() *Credential {
	return &Credential{AccessToken: "test-token", ExpiresIn: 3599}
}

func TestValidate_Success(t *testing.T) {
	mock := testutil.NewMockUSPS()
	defer mock.Close()

	mock.SetAddressResponse(testutil.NewAddressResponse(
		"1600 PENNSYLVANIA AVE NW", "WASHINGTON", "DC", "20500", "0005"))

	client := newTestClient(t, mock)

	result := client.Validate(context.Background(), testRecord, testCredential())

	if !result.Valid {
		t.Fatalf("Valid = false, want true (error: %q)", result.ErrorMessage)
	}

	if result.ValidatedStreet != "1600 PENNSYLVANIA AVE NW" {
		t.Errorf("ValidatedStreet = %q, want normalized street", result.ValidatedStreet)
	}

	if result.FullZIP4 != "20500-0005" {
		t.Errorf("FullZIP4 = %q, want %q", result.FullZIP4, "20500-0005")
	}

	if result.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty", result.ErrorMessage)
	}
}

func TestValidate_RequestShape(t *testing.T) {
	mock := testutil.NewMockUSPS()
	defer mock.Close()

	client := newTestClient(t, mock)

	client.Validate(context.Background(), testRecord, testCredential())

	if got := mock.GetLastAuthHeader(); got != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer test-token")
	}

	query := mock.GetLastQuery()
	expected := map[string]string{
		"streetAddress": testRecord.Street,
		"city":          testRecord.City,
		"state":         testRecord.State,
		"ZIPCode":       testRecord.PostCode,
	}
	for param, want := range expected {
		if got := query.Get(param); got != want {
			t.Errorf("query %s = %q, want %q", param, got, want)
		}
	}
}

func TestValidate_NoZIPPlus4(t *testing.T) {
	mock := testutil.NewMockUSPS()
	defer mock.Close()

	mock.SetAddressResponse(testutil.NewAddressResponse(
		"1600 PENNSYLVANIA AVE NW", "WASHINGTON", "DC", "20500", ""))

	client := newTestClient(t, mock)

	result := client.Validate(context.Background(), testRecord, testCredential())

	if !result.Valid {
		t.Fatalf("Valid = false, want true (error: %q)", result.ErrorMessage)
	}

	if result.FullZIP4 != "20500" {
		t.Errorf("FullZIP4 = %q, want bare ZIP code", result.FullZIP4)
	}
}

func TestValidate_MissingCoreField(t *testing.T) {
	mock := testutil.NewMockUSPS()
	defer mock.Close()

	// No ZIPCode in the response: success on the wire, invalid record.
	mock.SetAddressResponse(testutil.NewAddressResponse(
		"1600 PENNSYLVANIA AVE NW", "WASHINGTON", "DC", "", ""))

	client := newTestClient(t, mock)

	result := client.Validate(context.Background(), testRecord, testCredential())

	if result.Valid {
		t.Error("Valid = true, want false when a core field is absent")
	}

	if result.FullZIP4 != FullZIP4None {
		t.Errorf("FullZIP4 = %q, want %q on success path without ZIP", result.FullZIP4, FullZIP4None)
	}

	if result.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want empty for a successful call", result.ErrorMessage)
	}
}

func TestValidate_FailureCapture(t *testing.T) {
	tests := []struct {
		name          string
		response      testutil.MockResponse
		expectedClass string
	}{
		{
			name:          "client error",
			response:      testutil.NewNotFoundResponse(),
			expectedClass: "client",
		},
		{
			name:          "server error",
			response:      testutil.NewServerErrorResponse(),
			expectedClass: "server",
		},
		{
			name:          "rate limited",
			response:      testutil.NewRateLimitResponse(),
			expectedClass: "rate_limit",
		},
		{
			name:          "malformed body",
			response:      testutil.NewMalformedResponse(),
			expectedClass: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockUSPS()
			defer mock.Close()

			mock.SetAddressResponse(tt.response)

			client := newTestClient(t, mock)

			result := client.Validate(context.Background(), testRecord, testCredential())

			if result.Valid {
				t.Error("Valid = true, want false on failure")
			}

			if result.FullZIP4 != FullZIP4Error {
				t.Errorf("FullZIP4 = %q, want %q", result.FullZIP4, FullZIP4Error)
			}

			if result.ValidatedStreet != "" || result.ValidatedCity != "" ||
				result.ValidatedState != "" || result.ValidatedZIPCode != "" {
				t.Error("validated fields should all be empty on failure")
			}

			if result.ErrorMessage == "" {
				t.Error("ErrorMessage should not be empty on failure")
			}

			if !strings.Contains(result.ErrorMessage, tt.expectedClass) {
				t.Errorf("ErrorMessage = %q, want it to mention class %q", result.ErrorMessage, tt.expectedClass)
			}

			if result.Key != testRecord.Key {
				t.Errorf("Key = %q, want %q", result.Key, testRecord.Key)
			}
		})
	}
}

func TestValidate_NetworkErrorCaptured(t *testing.T) {
	mock := testutil.NewMockUSPS()
	client := newTestClient(t, mock)
	mock.Close() // Force a connection failure.

	result := client.Validate(context.Background(), testRecord, testCredential())

	if result.Valid {
		t.Error("Valid = true, want false on network failure")
	}

	if result.FullZIP4 != FullZIP4Error {
		t.Errorf("FullZIP4 = %q, want %q", result.FullZIP4, FullZIP4Error)
	}

	if !strings.Contains(result.ErrorMessage, "network") {
		t.Errorf("ErrorMessage = %q, want it to mention the network class", result.ErrorMessage)
	}
}
