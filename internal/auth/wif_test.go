package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/google/externalaccount"

	"github.com/moj-analytical-services/dbt-adapters/internal/profile"
	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

type fakeSupplier struct {
	tokenType string
	token     string
}

func (s *fakeSupplier) SubjectTokenType() string {
	return s.tokenType
}

func (s *fakeSupplier) Attach(config *externalaccount.Config) {
	config.SubjectTokenSupplier = s
}

func (s *fakeSupplier) SubjectToken(ctx context.Context, _ externalaccount.SupplierOptions) (string, error) {
	return s.token, nil
}

func wifProfile() *profile.Profile {
	p := &profile.Profile{
		Method:                   profile.MethodExternalOAuthWIF,
		Schema:                   "analytics",
		WorkloadPoolProviderPath: "//iam.googleapis.com/projects/123/locations/global/workloadIdentityPools/pool/providers/idp",
		TokenEndpoint: map[string]string{
			"type":         "entra",
			"request_url":  "https://login.example.com/token",
			"request_data": "grant_type=client_credentials",
		},
	}
	p.Normalize()
	return p
}

func TestNewExternalAccountConfig(t *testing.T) {
	p := wifProfile()
	supplier := &fakeSupplier{tokenType: "urn:ietf:params:oauth:token-type:jwt"}

	config := newExternalAccountConfig(p, supplier)

	assert.Equal(t, "googleapis.com", config.UniverseDomain)
	assert.Equal(t, p.WorkloadPoolProviderPath, config.Audience)
	assert.Equal(t, "urn:ietf:params:oauth:token-type:jwt", config.SubjectTokenType)
	assert.Equal(t, "https://sts.googleapis.com/v1/token", config.TokenURL)
	assert.Equal(t, p.Scopes, config.Scopes)
	assert.Same(t, supplier, config.SubjectTokenSupplier)
	assert.Empty(t, config.ServiceAccountImpersonationURL)
}

func TestNewExternalAccountConfig_ImpersonationURLOnlyWhenPresent(t *testing.T) {
	p := wifProfile()
	p.ServiceAccountImpersonationURL = "https://iamcredentials.googleapis.com/v1/projects/-/serviceAccounts/sa@proj.iam.gserviceaccount.com:generateAccessToken"

	config := newExternalAccountConfig(p, &fakeSupplier{tokenType: "urn:ietf:params:oauth:token-type:jwt"})

	assert.Equal(t, p.ServiceAccountImpersonationURL, config.ServiceAccountImpersonationURL)
}

func TestNewExternalAccountConfig_SubjectTokenTypeFollowsSupplier(t *testing.T) {
	config := newExternalAccountConfig(wifProfile(),
		&fakeSupplier{tokenType: "urn:ietf:params:aws:token-type:aws4_request"})

	assert.Equal(t, "urn:ietf:params:aws:token-type:aws4_request", config.SubjectTokenType)
}

func TestNewADCDocument(t *testing.T) {
	p := wifProfile()

	doc, err := NewADCDocument(p)
	require.NoError(t, err)

	assert.Equal(t, "external_account", doc.Type)
	assert.Equal(t, "googleapis.com", doc.UniverseDomain)
	assert.Equal(t, p.WorkloadPoolProviderPath, doc.Audience)
	assert.Equal(t, "https://sts.googleapis.com/v1/token", doc.TokenURL)
	assert.Equal(t, "https://login.example.com/token", doc.CredentialSource.URL)
	require.NotNil(t, doc.CredentialSource.Format)
	assert.Equal(t, "access_token", doc.CredentialSource.Format.SubjectTokenFieldName)
}

func TestNewADCDocument_MissingEndpoint(t *testing.T) {
	p := wifProfile()
	p.TokenEndpoint = nil

	_, err := NewADCDocument(p)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_endpoint is required for external-oauth-wif")
}

func TestNewADCDocument_NonURLEndpoint(t *testing.T) {
	p := wifProfile()
	p.TokenEndpoint = map[string]string{"type": "aws"}

	_, err := NewADCDocument(p)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEndpointInvalid))
}
