package usps

import (
	"context"
	"errors"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenScope is the OAuth2 scope required by the Addresses v3 API.
const TokenScope = "addresses"

// AcquireToken exchanges the client credentials for a short-lived bearer
// token. Every failure mode - transport error, non-success status,
// unparseable body, missing access token - surfaces as *AuthError, which
// callers must treat as fatal for the whole run. The token is not cached
// across runs and not refreshed within one.
func (c *Client) AcquireToken(ctx context.Context) (*Credential, error) {
	cfg := &clientcredentials.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		TokenURL:     c.config.TokenURL,
		Scopes:       []string{TokenScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	// Route the exchange through the client's HTTP client so tests can
	// intercept it.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	c.logger.Info().
		Str("token_url", c.config.TokenURL).
		Msg("Requesting access token")

	tok, err := cfg.Token(ctx)
	if err != nil {
		uspsTokenRequestsTotal.WithLabelValues("error").Inc()

		authErr := &AuthError{Message: "token retrieval failed", Err: err}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			authErr.StatusCode = retrieveErr.Response.StatusCode
		}

		c.logger.Error().
			Err(err).
			Int("status", authErr.StatusCode).
			Msg("Token retrieval failed")

		return nil, authErr
	}

	if tok.AccessToken == "" {
		uspsTokenRequestsTotal.WithLabelValues("error").Inc()
		return nil, &AuthError{Message: "access token missing from response"}
	}

	expiresIn := int(tok.ExpiresIn)
	if expiresIn == 0 && !tok.Expiry.IsZero() {
		expiresIn = int(time.Until(tok.Expiry).Seconds())
	}

	uspsTokenRequestsTotal.WithLabelValues("success").Inc()
	c.logger.Info().
		Int("expires_in", expiresIn).
		Msg("Access token retrieved")

	return &Credential{
		AccessToken: tok.AccessToken,
		ExpiresIn:   expiresIn,
		IssuedAt:    time.Now(),
	}, nil
}
