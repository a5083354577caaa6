package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/version"
)

// captureStdout runs fn with stdout redirected to a pipe and returns
// what was written.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), runErr
}

func TestVersionCommand(t *testing.T) {
	version.Version = "1.0.0"
	version.Commit = "abc123"
	version.BuildTime = "2026-08-24"

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"version"})

	output, err := captureStdout(t, rootCmd.Execute)

	assert.NoError(t, err)
	assert.Contains(t, output, "dbt BigQuery Auth")
	assert.Contains(t, output, "1.0.0")
	assert.Contains(t, output, "abc123")
	assert.Contains(t, output, "2026-08-24")
}

func TestHelpCommand(t *testing.T) {
	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"--help"})

	output, err := captureStdout(t, rootCmd.Execute)

	assert.NoError(t, err)
	assert.Contains(t, output, "bigquery-auth")
	assert.Contains(t, output, "token")
	assert.Contains(t, output, "adc")
	assert.Contains(t, output, "login")
	assert.Contains(t, output, "version")
}

func TestTokenGetCommand_InvalidProfile(t *testing.T) {
	profilePath := filepath.Join(t.TempDir(), "profile.yml")
	require.NoError(t, os.WriteFile(profilePath, []byte("method: sso\nschema: analytics\n"), 0o600))

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"token", "get", "--profile=" + profilePath})

	err := rootCmd.Execute()
	assert.Error(t, err)
}

func TestTokenGetCommand_MissingProfileFile(t *testing.T) {
	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"token", "get", "--profile=" + filepath.Join(t.TempDir(), "absent.yml")})

	err := rootCmd.Execute()
	assert.Error(t, err)
}

func TestADCGenerateCommand_WrongMethod(t *testing.T) {
	profilePath := filepath.Join(t.TempDir(), "profile.yml")
	require.NoError(t, os.WriteFile(profilePath, []byte("method: oauth\nschema: analytics\n"), 0o600))

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"adc", "generate", "--profile=" + profilePath})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external-oauth-wif")
}

func TestADCGenerateCommand(t *testing.T) {
	profilePath := filepath.Join(t.TempDir(), "profile.yml")
	require.NoError(t, os.WriteFile(profilePath, []byte(`method: external-oauth-wif
schema: analytics
workload_pool_provider_path: //iam.googleapis.com/projects/123/locations/global/workloadIdentityPools/pool/providers/idp
token_endpoint:
  type: entra
  request_url: https://login.example.com/token
  request_data: grant_type=client_credentials
`), 0o600))

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{"adc", "generate", "--profile=" + profilePath})

	output, err := captureStdout(t, rootCmd.Execute)

	assert.NoError(t, err)
	assert.Contains(t, output, `"type": "external_account"`)
	assert.Contains(t, output, "https://login.example.com/token")
	assert.Contains(t, output, "https://sts.googleapis.com/v1/token")
}
