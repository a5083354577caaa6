// Package auth resolves a normalized connection profile into a live,
// refreshable credential. Strategy dispatch is a closed switch over the
// profile method; impersonation wraps whichever base strategy ran.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/moj-analytical-services/dbt-adapters/internal/profile"
	"github.com/moj-analytical-services/dbt-adapters/internal/tokensupplier"
	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
	"github.com/moj-analytical-services/dbt-adapters/pkg/logger"
	"github.com/moj-analytical-services/dbt-adapters/pkg/metrics"
)

// credentialsFromJSONFunc parses service-account key material.
type credentialsFromJSONFunc func(ctx context.Context, jsonData []byte, scopes ...string) (*google.Credentials, error)

// wifSourceFunc constructs the workload identity federation exchange.
type wifSourceFunc func(ctx context.Context, p *profile.Profile, supplier tokensupplier.Supplier) (oauth2.TokenSource, error)

// Resolver turns profiles into credentials. Safe for concurrent use;
// the defaults cache is the only shared mutable state.
type Resolver struct {
	defaults *DefaultsResolver
	log      logger.Logger
	metrics  *metrics.Metrics

	newSupplier     func(endpoint map[string]string) (tokensupplier.Supplier, error)
	newWIFSource    wifSourceFunc
	newImpersonated impersonateFunc
	fromJSON        credentialsFromJSONFunc
	readFile        func(name string) ([]byte, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// WithMetrics sets the resolver metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithDefaults sets the shared defaults resolver. Useful when several
// resolvers should share one discovery cache.
func WithDefaults(d *DefaultsResolver) Option {
	return func(r *Resolver) {
		r.defaults = d
	}
}

// withWIFSource replaces the token exchange constructor. Test hook.
func withWIFSource(fn wifSourceFunc) Option {
	return func(r *Resolver) {
		r.newWIFSource = fn
	}
}

// withImpersonated replaces the impersonation constructor. Test hook.
func withImpersonated(fn impersonateFunc) Option {
	return func(r *Resolver) {
		r.newImpersonated = fn
	}
}

// withCredentialsFromJSON replaces key material parsing. Test hook.
func withCredentialsFromJSON(fn credentialsFromJSONFunc) Option {
	return func(r *Resolver) {
		r.fromJSON = fn
	}
}

// NewResolver creates a Resolver with production collaborators.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		log:             logger.Nop(),
		newSupplier:     tokensupplier.New,
		newWIFSource:    newWIFTokenSource,
		newImpersonated: newImpersonatedTokenSource,
		fromJSON:        google.CredentialsFromJSON,
		readFile:        os.ReadFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.defaults == nil {
		r.defaults = NewDefaultsResolver(
			WithDefaultsLogger(r.log),
			WithDefaultsMetrics(r.metrics),
		)
	}
	return r
}

// Resolve validates the profile, runs the strategy its method selects,
// and optionally wraps the result in impersonation. All-or-nothing: no
// partial credential is ever returned.
func (r *Resolver) Resolve(ctx context.Context, p *profile.Profile) (*Credential, error) {
	start := time.Now()

	credential, err := r.resolve(ctx, p)

	method := "unset"
	if p != nil && p.Method != "" {
		method = p.Method.String()
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.ObserveResolution(method, status, time.Since(start))

	return credential, err
}

func (r *Resolver) resolve(ctx context.Context, p *profile.Profile) (*Credential, error) {
	if p == nil || p.Method == "" {
		return nil, errors.New(
			errors.ErrConfigMissingField,
			"Must specify authentication method",
		)
	}
	if p.Schema == "" {
		return nil, errors.New(
			errors.ErrConfigMissingField,
			"Must specify schema",
		)
	}

	r.log.Debug("resolving credential",
		logger.String("method", p.Method.String()),
		logger.String("database", p.Database))

	source, projectID, err := r.baseTokenSource(ctx, p)
	if err != nil {
		return nil, err
	}

	credential := &Credential{
		source:    source,
		Method:    p.Method,
		ProjectID: projectID,
	}

	if p.ImpersonateServiceAccount != "" {
		// Target scopes follow the profile; nil passes through as an
		// empty sequence and the endpoint decides.
		wrapped, err := r.newImpersonated(ctx, source, p.ImpersonateServiceAccount, p.Scopes)
		if err != nil {
			return nil, err
		}
		credential.source = wrapped
		credential.TargetPrincipal = p.ImpersonateServiceAccount

		r.log.Debug("impersonation active",
			logger.String("target_principal", p.ImpersonateServiceAccount))
	}

	return credential, nil
}

// baseTokenSource dispatches on the profile method. The method set is
// closed; anything else is rejected by name.
func (r *Resolver) baseTokenSource(ctx context.Context, p *profile.Profile) (oauth2.TokenSource, string, error) {
	switch p.Method {
	case profile.MethodOAuth:
		defaults, err := r.defaults.Discover(ctx, p.Scopes)
		if err != nil {
			return nil, "", err
		}
		return defaults.TokenSource, defaults.ProjectID, nil

	case profile.MethodServiceAccount:
		return r.serviceAccountSource(ctx, p)

	case profile.MethodServiceAccountJSON:
		return r.serviceAccountJSONSource(ctx, p)

	case profile.MethodOAuthSecrets:
		return r.oauthSecretsSource(ctx, p), "", nil

	case profile.MethodExternalOAuthWIF:
		return r.wifSource(ctx, p)

	default:
		return nil, "", errors.New(
			errors.ErrMethodInvalid,
			fmt.Sprintf("Invalid `method` in profile: '%s'", p.Method),
		)
	}
}

func (r *Resolver) serviceAccountSource(ctx context.Context, p *profile.Profile) (oauth2.TokenSource, string, error) {
	data, err := r.readFile(p.Keyfile)
	if err != nil {
		return nil, "", errors.Wrap(
			errors.ErrKeyfileLoadFailed,
			err,
			"failed to read keyfile",
		).WithField("keyfile", p.Keyfile)
	}
	return r.credentialsFromKey(ctx, p, data)
}

func (r *Resolver) serviceAccountJSONSource(ctx context.Context, p *profile.Profile) (oauth2.TokenSource, string, error) {
	data, err := keyfilePayload(p.KeyfileJSON)
	if err != nil {
		return nil, "", err
	}
	return r.credentialsFromKey(ctx, p, data)
}

func (r *Resolver) credentialsFromKey(ctx context.Context, p *profile.Profile, data []byte) (oauth2.TokenSource, string, error) {
	credentials, err := r.fromJSON(ctx, data, p.Scopes...)
	if err != nil {
		return nil, "", errors.Wrap(
			errors.ErrKeyfileMalformed,
			err,
			"invalid service account key material",
		)
	}
	return credentials.TokenSource, credentials.ProjectID, nil
}

// oauthSecretsSource builds a refresh-token credential. No network call
// happens here; malformed secrets surface on first token fetch.
func (r *Resolver) oauthSecretsSource(ctx context.Context, p *profile.Profile) oauth2.TokenSource {
	config := &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Scopes:       p.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL: p.TokenURI,
		},
	}
	return config.TokenSource(ctx, &oauth2.Token{
		AccessToken:  p.Token,
		RefreshToken: p.RefreshToken,
	})
}

func (r *Resolver) wifSource(ctx context.Context, p *profile.Profile) (oauth2.TokenSource, string, error) {
	if len(p.TokenEndpoint) == 0 {
		return nil, "", errors.New(
			errors.ErrConfigMissingField,
			"token_endpoint is required for external-oauth-wif",
		)
	}

	supplier, err := r.newSupplier(p.TokenEndpoint)
	if err != nil {
		return nil, "", err
	}

	source, err := r.newWIFSource(ctx, p, supplier)
	if err != nil {
		return nil, "", err
	}
	return source, "", nil
}

// keyfilePayload turns the keyfile_json profile value into JSON bytes.
// Strings that pass the base64 heuristic are decoded first; mappings are
// re-marshalled after repairing escaped newlines in the private key.
func keyfilePayload(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, errors.New(
			errors.ErrConfigMissingField,
			"keyfile_json is required for service-account-json",
		)

	case string:
		if looksBase64(v) {
			decoded, err := decodeBase64(v)
			if err != nil {
				return nil, errors.Wrap(
					errors.ErrKeyfileMalformed,
					err,
					"keyfile_json is not valid base64",
				)
			}
			return decoded, nil
		}
		return []byte(v), nil

	case map[string]interface{}:
		// The profile is read-only; repair a copy, not the caller's map.
		repaired := make(map[string]interface{}, len(v))
		for k, val := range v {
			repaired[k] = val
		}
		if key, ok := repaired["private_key"].(string); ok {
			repaired["private_key"] = repairPrivateKey(key)
		}
		data, err := json.Marshal(repaired)
		if err != nil {
			return nil, errors.Wrap(
				errors.ErrKeyfileMalformed,
				err,
				"failed to serialize keyfile_json mapping",
			)
		}
		return data, nil

	default:
		return nil, errors.New(
			errors.ErrKeyfileMalformed,
			fmt.Sprintf("keyfile_json must be a mapping or string, got %T", value),
		)
	}
}

// repairPrivateKey undoes the double escaping some configuration layers
// apply to PEM newlines.
func repairPrivateKey(key string) string {
	return strings.ReplaceAll(key, "\\n", "\n")
}
