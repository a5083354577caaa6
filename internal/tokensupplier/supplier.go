// Package tokensupplier turns a profile token_endpoint mapping into a
// supplier of subject tokens for the Security Token Service exchange.
package tokensupplier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/google/externalaccount"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

const (
	// SubjectTokenTypeJWT is the STS token type for JWT subject tokens.
	SubjectTokenTypeJWT = "urn:ietf:params:oauth:token-type:jwt"

	// SubjectTokenTypeAWS4 is the STS token type for AWS signature
	// request subject tokens.
	SubjectTokenTypeAWS4 = "urn:ietf:params:aws:token-type:aws4_request"
)

// Supplier yields subject material for the STS exchange. Suppliers stay
// live for the lifetime of the credential; they are never cached across
// resolutions.
type Supplier interface {
	// SubjectTokenType returns the URN describing the tokens this
	// supplier yields.
	SubjectTokenType() string

	// Attach binds the supplier to an external-account configuration.
	Attach(config *externalaccount.Config)
}

// Verifier is implemented by suppliers that can probe their identity
// provider without going through the STS exchange.
type Verifier interface {
	Verify(ctx context.Context) error
}

// New builds a supplier from a token_endpoint mapping. The endpoint
// type selects the provider integration.
func New(endpoint map[string]string) (Supplier, error) {
	switch endpoint["type"] {
	case "entra":
		// Direct Entra credentials take precedence over a raw token
		// service URL.
		if endpoint["tenant_id"] != "" || endpoint["client_id"] != "" {
			return newEntraSupplier(endpoint)
		}
		return newRequestSupplier(endpoint)

	case "aws":
		return newAWSSupplier(endpoint)

	case "":
		return nil, errors.New(
			errors.ErrEndpointInvalid,
			"token_endpoint requires a type",
		)

	default:
		return nil, errors.New(
			errors.ErrEndpointInvalid,
			fmt.Sprintf("unsupported token_endpoint type: '%s'", endpoint["type"]),
		).WithField("type", endpoint["type"])
	}
}

// requestSupplier fetches subject tokens from an external token service
// with a form-encoded POST, the way token services federated behind a
// workload pool commonly expose them.
type requestSupplier struct {
	requestURL  string
	requestData string
	client      *http.Client
}

func newRequestSupplier(endpoint map[string]string) (*requestSupplier, error) {
	if endpoint["request_url"] == "" {
		return nil, errors.New(
			errors.ErrEndpointInvalid,
			"token_endpoint requires a request_url",
		)
	}
	if endpoint["request_data"] == "" {
		return nil, errors.New(
			errors.ErrEndpointInvalid,
			"token_endpoint requires request_data",
		)
	}

	return &requestSupplier{
		requestURL:  endpoint["request_url"],
		requestData: endpoint["request_data"],
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SubjectToken implements externalaccount.SubjectTokenSupplier
func (s *requestSupplier) SubjectToken(ctx context.Context, _ externalaccount.SupplierOptions) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.requestURL,
		strings.NewReader(s.requestData))
	if err != nil {
		return "", errors.Wrap(
			errors.ErrSubjectTokenFailed,
			err,
			"failed to build subject token request",
		)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(
			errors.ErrSubjectTokenFailed,
			err,
			"subject token request failed",
		).WithField("request_url", s.requestURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(
			errors.ErrSubjectTokenFailed,
			err,
			"failed to read subject token response",
		)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.New(
			errors.ErrSubjectTokenFailed,
			fmt.Sprintf("token service returned status %d", resp.StatusCode),
		).WithField("request_url", s.requestURL)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", errors.Wrap(
			errors.ErrSubjectTokenFailed,
			err,
			"failed to parse token service response",
		)
	}
	if payload.AccessToken == "" {
		return "", errors.New(
			errors.ErrSubjectTokenFailed,
			"token service response has no access_token",
		)
	}

	return payload.AccessToken, nil
}

func (s *requestSupplier) SubjectTokenType() string {
	return SubjectTokenTypeJWT
}

func (s *requestSupplier) Attach(config *externalaccount.Config) {
	config.SubjectTokenSupplier = s
}

// Verify fetches one subject token as a pre-flight probe.
func (s *requestSupplier) Verify(ctx context.Context) error {
	_, err := s.SubjectToken(ctx, externalaccount.SupplierOptions{})
	return err
}
