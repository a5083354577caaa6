package auth

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/moj-analytical-services/dbt-adapters/internal/profile"
	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

// Credential is a resolved, refreshable credential. It wraps a token
// source together with the identity metadata the caller needs to label
// the session: the billing project and, when impersonation is active,
// the target principal.
type Credential struct {
	source oauth2.TokenSource

	// Method that produced this credential.
	Method profile.AuthMethod

	// ProjectID is the project discovered alongside the credential, or
	// empty when discovery did not yield one.
	ProjectID string

	// TargetPrincipal is the impersonated service account, or empty
	// when the credential acts as itself.
	TargetPrincipal string
}

// AccessToken fetches a current access token from the underlying
// source. For lazily-constructed credentials this is the first point
// where malformed secrets surface.
func (c *Credential) AccessToken(ctx context.Context) (string, time.Time, error) {
	token, err := c.source.Token()
	if err != nil {
		return "", time.Time{}, errors.Wrap(
			errors.ErrTokenFetchFailed,
			err,
			"failed to fetch access token",
		).WithField("method", c.Method.String())
	}
	if !token.Valid() {
		return "", time.Time{}, errors.New(
			errors.ErrTokenInvalid,
			"token source returned an expired or empty token",
		).WithField("method", c.Method.String())
	}
	return token.AccessToken, token.Expiry, nil
}

// TokenSource exposes the underlying source for clients that consume
// oauth2.TokenSource directly.
func (c *Credential) TokenSource() oauth2.TokenSource {
	return c.source
}
