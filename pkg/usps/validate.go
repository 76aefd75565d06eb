package usps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// addressResponse mirrors the Addresses v3 payload. Fields the service
// omits decode to empty strings, which is not an error.
type addressResponse struct {
	Address struct {
		StreetAddress string `json:"streetAddress"`
		City          string `json:"city"`
		State         string `json:"state"`
		ZIPCode       string `json:"ZIPCode"`
		ZIPPlus4      string `json:"ZIPPlus4"`
	} `json:"address"`
}

// Validate verifies one address record against the Addresses v3 API.
//
// Validate never fails: every failure class (4xx/5xx statuses, transport
// errors, unreadable or malformed bodies) is captured into the returned
// Result with all validated fields empty, the ERROR sentinel, and a
// descriptive message. Each record is attempted exactly once; there is no
// retry.
func (c *Client) Validate(ctx context.Context, rec Record, cred *Credential) Result {
	start := time.Now()
	defer func() {
		uspsRequestDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.AddressAPIURL, nil)
	if err != nil {
		return c.failure(rec, &apiError{Class: ErrorClassNetwork, Message: "create request", Err: err})
	}

	q := req.URL.Query()
	q.Set("streetAddress", rec.Street)
	q.Set("city", rec.City)
	q.Set("state", rec.State)
	q.Set("ZIPCode", rec.PostCode)
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		uspsRequestsTotal.WithLabelValues("network_error").Inc()
		return c.failure(rec, &apiError{Class: ErrorClassNetwork, Message: "request failed", Err: err})
	}
	defer resp.Body.Close()

	uspsRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		return c.failure(rec, &apiError{
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Message:    errorBody(resp),
		})
	}

	var payload addressResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return c.failure(rec, &apiError{Class: ErrorClassDecode, Message: "decode response", Err: err})
	}

	result := newResult(rec,
		payload.Address.StreetAddress,
		payload.Address.City,
		payload.Address.State,
		payload.Address.ZIPCode,
		payload.Address.ZIPPlus4,
	)

	c.logger.Debug().
		Str("key", rec.Key).
		Bool("valid", result.Valid).
		Str("full_zip4", result.FullZIP4).
		Msg("Address validated")

	return result
}

// failure converts a captured error into the failure-shaped Result and
// records it in logs and metrics.
func (c *Client) failure(rec Record, apiErr *apiError) Result {
	uspsErrorsTotal.WithLabelValues(string(apiErr.Class)).Inc()

	c.logger.Warn().
		Str("key", rec.Key).
		Str("error_class", string(apiErr.Class)).
		Int("status", apiErr.StatusCode).
		Msg("Address validation failed")

	return errorResult(rec, apiErr.Error())
}

// errorBody extracts a short description from an error response, falling
// back to the HTTP status line when the body is empty or unreadable.
func errorBody(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return resp.Status
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return resp.Status
	}

	return msg
}
