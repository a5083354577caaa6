package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthMethodIsValid(t *testing.T) {
	tests := []struct {
		method AuthMethod
		valid  bool
	}{
		{MethodOAuth, true},
		{MethodOAuthSecrets, true},
		{MethodServiceAccount, true},
		{MethodServiceAccountJSON, true},
		{MethodExternalOAuthWIF, true},
		{AuthMethod(""), false},
		{AuthMethod("sso"), false},
		{AuthMethod("OAUTH"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.method.IsValid())
		})
	}
}

func TestApplyAliases(t *testing.T) {
	raw := map[string]interface{}{
		"method":  "oauth",
		"project": "legacy-project",
		"dataset": "legacy_dataset",
	}

	normalized := ApplyAliases(raw)

	assert.Equal(t, "legacy-project", normalized["database"])
	assert.Equal(t, "legacy_dataset", normalized["schema"])
	assert.NotContains(t, normalized, "project")
	assert.NotContains(t, normalized, "dataset")
	assert.Equal(t, "oauth", normalized["method"])
}

func TestApplyAliases_CurrentNameWins(t *testing.T) {
	raw := map[string]interface{}{
		"project":  "legacy",
		"database": "current",
	}

	normalized := ApplyAliases(raw)

	assert.Equal(t, "current", normalized["database"])
}

func TestNormalize_DefaultScopes(t *testing.T) {
	p := &Profile{Method: MethodOAuth, Schema: "analytics"}
	p.Normalize()

	assert.Equal(t, DefaultScopes(), p.Scopes)
	assert.Len(t, p.Scopes, 3)
	assert.Contains(t, p.Scopes, "https://www.googleapis.com/auth/bigquery")
}

func TestNormalize_KeepsExplicitScopes(t *testing.T) {
	scopes := []string{"https://www.googleapis.com/auth/bigquery"}
	p := &Profile{Method: MethodOAuth, Schema: "analytics", Scopes: scopes}
	p.Normalize()

	assert.Equal(t, scopes, p.Scopes)
}

func TestNormalize_ExecutionProjectDefaultsToDatabase(t *testing.T) {
	p := &Profile{Method: MethodOAuth, Schema: "analytics", Database: "my-project"}
	p.Normalize()

	assert.Equal(t, "my-project", p.ExecutionProject)
}
