package auth

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google/externalaccount"

	"github.com/moj-analytical-services/dbt-adapters/internal/profile"
	"github.com/moj-analytical-services/dbt-adapters/internal/tokensupplier"
	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

const (
	universeDomain = "googleapis.com"
	stsTokenURL    = "https://sts.googleapis.com/v1/token"
)

// newExternalAccountConfig builds the external-account configuration
// for a workload identity federation exchange. Built fresh per
// resolution; the attached supplier stays live for the credential's
// lifetime and is never cached across resolutions.
func newExternalAccountConfig(p *profile.Profile, supplier tokensupplier.Supplier) externalaccount.Config {
	config := externalaccount.Config{
		UniverseDomain:   universeDomain,
		Audience:         p.WorkloadPoolProviderPath,
		SubjectTokenType: supplier.SubjectTokenType(),
		TokenURL:         stsTokenURL,
		Scopes:           p.Scopes,
	}
	supplier.Attach(&config)

	// Absent is valid: the external identity may hold IAM grants
	// directly, with no service account in between.
	if p.ServiceAccountImpersonationURL != "" {
		config.ServiceAccountImpersonationURL = p.ServiceAccountImpersonationURL
	}

	return config
}

// newWIFTokenSource exchanges subject tokens at the security token
// service for Google access tokens.
func newWIFTokenSource(ctx context.Context, p *profile.Profile, supplier tokensupplier.Supplier) (oauth2.TokenSource, error) {
	config := newExternalAccountConfig(p, supplier)

	source, err := externalaccount.NewTokenSource(ctx, config)
	if err != nil {
		return nil, errors.Wrap(
			errors.ErrExchangeFailed,
			err,
			"failed to construct workload identity credential",
		).WithField("audience", p.WorkloadPoolProviderPath)
	}
	return source, nil
}

// ADCDocument is the external_account application-default-credentials
// file shape understood by Google client libraries. Only URL-sourced
// subject tokens can be expressed this way; in-process suppliers
// (client-credential grants, AWS signing) have no file equivalent.
type ADCDocument struct {
	Type                           string              `json:"type"`
	UniverseDomain                 string              `json:"universe_domain"`
	Audience                       string              `json:"audience"`
	SubjectTokenType               string              `json:"subject_token_type"`
	TokenURL                       string              `json:"token_url"`
	ServiceAccountImpersonationURL string              `json:"service_account_impersonation_url,omitempty"`
	CredentialSource               adcCredentialSource `json:"credential_source"`
}

type adcCredentialSource struct {
	URL    string          `json:"url"`
	Format *adcTokenFormat `json:"format,omitempty"`
}

type adcTokenFormat struct {
	Type                  string `json:"type"`
	SubjectTokenFieldName string `json:"subject_token_field_name"`
}

// NewADCDocument renders a WIF profile as an external_account ADC file.
// Fails when the token_endpoint has no request_url to point the file at.
func NewADCDocument(p *profile.Profile) (*ADCDocument, error) {
	if len(p.TokenEndpoint) == 0 {
		return nil, errors.New(
			errors.ErrConfigMissingField,
			"token_endpoint is required for external-oauth-wif",
		)
	}

	requestURL := p.TokenEndpoint["request_url"]
	if requestURL == "" {
		return nil, errors.New(
			errors.ErrEndpointInvalid,
			"token_endpoint has no request_url; only URL-sourced endpoints can be written as an ADC file",
		)
	}

	return &ADCDocument{
		Type:                           "external_account",
		UniverseDomain:                 universeDomain,
		Audience:                       p.WorkloadPoolProviderPath,
		SubjectTokenType:               tokensupplier.SubjectTokenTypeJWT,
		TokenURL:                       stsTokenURL,
		ServiceAccountImpersonationURL: p.ServiceAccountImpersonationURL,
		CredentialSource: adcCredentialSource{
			URL: requestURL,
			Format: &adcTokenFormat{
				Type:                  "json",
				SubjectTokenFieldName: "access_token",
			},
		},
	}, nil
}
