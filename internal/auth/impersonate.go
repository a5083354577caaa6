package auth

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

// impersonateFunc builds a token source acting as a target principal.
// Swappable in tests so impersonation can be exercised without IAM.
type impersonateFunc func(ctx context.Context, base oauth2.TokenSource, targetPrincipal string, targetScopes []string) (oauth2.TokenSource, error)

// newImpersonatedTokenSource exchanges the base credential for
// short-lived tokens acting as targetPrincipal, via the IAM credentials
// generateAccessToken endpoint. The principal format is not validated
// locally; malformed principals fail remotely at token-fetch time.
func newImpersonatedTokenSource(ctx context.Context, base oauth2.TokenSource, targetPrincipal string, targetScopes []string) (oauth2.TokenSource, error) {
	source, err := impersonate.CredentialsTokenSource(ctx,
		impersonate.CredentialsConfig{
			TargetPrincipal: targetPrincipal,
			Scopes:          targetScopes,
		},
		option.WithTokenSource(base),
	)
	if err != nil {
		return nil, errors.Wrap(
			errors.ErrImpersonationFailed,
			err,
			"failed to construct impersonated credential",
		).WithField("target_principal", targetPrincipal)
	}
	return source, nil
}
