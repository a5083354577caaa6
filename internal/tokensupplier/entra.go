package tokensupplier

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"golang.org/x/oauth2/google/externalaccount"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

// entraSupplier obtains subject tokens from Microsoft Entra ID with a
// client-credentials grant. The Entra access token is the JWT exchanged
// at the STS for a Google token.
type entraSupplier struct {
	credential *azidentity.ClientSecretCredential
	scope      string
}

func newEntraSupplier(endpoint map[string]string) (*entraSupplier, error) {
	tenantID := endpoint["tenant_id"]
	clientID := endpoint["client_id"]
	clientSecret := endpoint["client_secret"]

	for name, value := range map[string]string{
		"tenant_id":     tenantID,
		"client_id":     clientID,
		"client_secret": clientSecret,
	} {
		if value == "" {
			return nil, errors.New(
				errors.ErrEndpointInvalid,
				fmt.Sprintf("token_endpoint requires %s for entra credentials", name),
			)
		}
	}

	credential, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, errors.Wrap(
			errors.ErrEndpointInvalid,
			err,
			"failed to build Entra credential",
		).WithField("tenant_id", tenantID)
	}

	scope := endpoint["scope"]
	if scope == "" {
		scope = fmt.Sprintf("api://%s/.default", clientID)
	}

	return &entraSupplier{
		credential: credential,
		scope:      scope,
	}, nil
}

// SubjectToken implements externalaccount.SubjectTokenSupplier
func (s *entraSupplier) SubjectToken(ctx context.Context, _ externalaccount.SupplierOptions) (string, error) {
	token, err := s.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{s.scope},
	})
	if err != nil {
		return "", errors.Wrap(
			errors.ErrSubjectTokenFailed,
			err,
			"failed to obtain Entra token",
		).WithField("scope", s.scope)
	}
	return token.Token, nil
}

func (s *entraSupplier) SubjectTokenType() string {
	return SubjectTokenTypeJWT
}

func (s *entraSupplier) Attach(config *externalaccount.Config) {
	config.SubjectTokenSupplier = s
}

// Verify fetches one Entra token as a pre-flight probe.
func (s *entraSupplier) Verify(ctx context.Context) error {
	_, err := s.SubjectToken(ctx, externalaccount.SupplierOptions{})
	return err
}
