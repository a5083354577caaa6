// Package profile models the declarative BigQuery connection profile and
// its normalization. The credential resolver always receives a
// fully-normalized profile; legacy field aliases are rewritten here,
// before validation.
package profile

// AuthMethod identifies which authentication strategy resolves the
// profile into a credential. The set is closed.
type AuthMethod string

const (
	MethodOAuth              AuthMethod = "oauth"
	MethodOAuthSecrets       AuthMethod = "oauth-secrets"
	MethodServiceAccount     AuthMethod = "service-account"
	MethodServiceAccountJSON AuthMethod = "service-account-json"
	// MethodExternalOAuthWIF is Workload Identity Federation:
	// https://cloud.google.com/iam/docs/workload-identity-federation
	MethodExternalOAuthWIF AuthMethod = "external-oauth-wif"
)

// String returns the string representation of the method
func (m AuthMethod) String() string {
	return string(m)
}

// IsValid returns true if the method is one of the supported set
func (m AuthMethod) IsValid() bool {
	switch m {
	case MethodOAuth, MethodOAuthSecrets, MethodServiceAccount,
		MethodServiceAccountJSON, MethodExternalOAuthWIF:
		return true
	default:
		return false
	}
}

// DefaultScopes returns the OAuth scopes requested when the profile
// does not name its own.
func DefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/bigquery",
		"https://www.googleapis.com/auth/cloud-platform",
		"https://www.googleapis.com/auth/drive",
	}
}

// Profile is the declarative connection configuration. Exactly one
// authentication method is active; fields belonging to inactive methods
// are ignored, not validated.
type Profile struct {
	Method AuthMethod `yaml:"method" validate:"omitempty,oneof=oauth oauth-secrets service-account service-account-json external-oauth-wif"`

	// BigQuery allows an empty database (aka project), deferring to the
	// environment for the project.
	Database         string `yaml:"database"`
	Schema           string `yaml:"schema"`
	ExecutionProject string `yaml:"execution_project"`
	QuotaProject     string `yaml:"quota_project"`
	Location         string `yaml:"location"`

	ImpersonateServiceAccount string `yaml:"impersonate_service_account"`

	// Keyfile JSON credentials (inline mapping or base64-encoded string)
	Keyfile     string      `yaml:"keyfile"`
	KeyfileJSON interface{} `yaml:"keyfile_json"`

	// oauth-secrets
	Token        string `yaml:"token"`
	RefreshToken string `yaml:"refresh_token"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURI     string `yaml:"token_uri"`

	// WorkloadPoolProviderPath is the Security Token Service audience,
	// usually the fully specified resource name of the workload pool
	// provider, e.g.
	// //iam.googleapis.com/projects/<id>/locations/global/workloadIdentityPools/<pool>/providers/<provider>
	WorkloadPoolProviderPath string `yaml:"workload_pool_provider_path"`

	// ServiceAccountImpersonationURL is the IAM generateAccessToken URL
	// used when the external identity has no direct grants, e.g.
	// https://iamcredentials.googleapis.com/v1/projects/-/serviceAccounts/<sa>:generateAccessToken
	ServiceAccountImpersonationURL string `yaml:"service_account_impersonation_url"`

	// TokenEndpoint describes how to obtain subject tokens from the
	// external identity provider federated with GCP.
	TokenEndpoint map[string]string `yaml:"token_endpoint"`

	Scopes []string `yaml:"scopes"`
}

// aliases maps legacy profile field names to their current names.
var aliases = map[string]string{
	"project":        "database",
	"dataset":        "schema",
	"target_project": "target_database",
	"target_dataset": "target_schema",
}

// ApplyAliases rewrites legacy field names in a raw profile mapping.
// Current names win when both are present.
func ApplyAliases(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if current, ok := aliases[k]; ok {
			if _, exists := raw[current]; !exists {
				out[current] = v
			}
			continue
		}
		out[k] = v
	}
	return out
}

// Normalize fills profile defaults: the default scope set and the
// execution project (which defaults to the database).
func (p *Profile) Normalize() {
	if len(p.Scopes) == 0 {
		p.Scopes = DefaultScopes()
	}
	if p.ExecutionProject == "" {
		p.ExecutionProject = p.Database
	}
}
