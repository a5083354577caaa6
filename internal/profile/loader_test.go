package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeProfile(t, `
method: service-account
project: my-project
dataset: analytics
keyfile: /secrets/sa.json
`)

	p, err := Load(WithFile(path))
	require.NoError(t, err)

	assert.Equal(t, MethodServiceAccount, p.Method)
	assert.Equal(t, "my-project", p.Database)
	assert.Equal(t, "analytics", p.Schema)
	assert.Equal(t, "/secrets/sa.json", p.Keyfile)
	assert.Equal(t, "my-project", p.ExecutionProject)
	assert.Equal(t, DefaultScopes(), p.Scopes)
}

func TestLoad_TokenEndpoint(t *testing.T) {
	path := writeProfile(t, `
method: external-oauth-wif
database: my-project
schema: analytics
workload_pool_provider_path: //iam.googleapis.com/projects/123/locations/global/workloadIdentityPools/pool/providers/idp
token_endpoint:
  type: entra
  request_url: https://login.example.com/token
  request_data: grant_type=client_credentials
`)

	p, err := Load(WithFile(path))
	require.NoError(t, err)

	assert.Equal(t, MethodExternalOAuthWIF, p.Method)
	assert.Equal(t, "entra", p.TokenEndpoint["type"])
	assert.Equal(t, "https://login.example.com/token", p.TokenEndpoint["request_url"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(WithFile("/nonexistent/profile.yml"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigLoadFailed))
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeProfile(t, "method: [unclosed")

	_, err := Load(WithFile(path))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
}

func TestLoad_EnvProjectFallback(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")

	path := writeProfile(t, `
method: oauth
schema: analytics
`)

	p, err := Load(WithFile(path), WithEnv())
	require.NoError(t, err)

	assert.Equal(t, "env-project", p.Database)
	assert.Equal(t, "env-project", p.ExecutionProject)
}

func TestLoad_EnvDoesNotOverrideFile(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")

	path := writeProfile(t, `
method: oauth
database: file-project
schema: analytics
`)

	p, err := Load(WithFile(path), WithEnv())
	require.NoError(t, err)

	assert.Equal(t, "file-project", p.Database)
}
