package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
	"github.com/moj-analytical-services/dbt-adapters/pkg/logger"
)

func TestLogin_SDKMissing(t *testing.T) {
	login := NewLogin(logger.Nop())
	login.lookPath = func(file string) (string, error) {
		return "", fmt.Errorf("executable file not found in $PATH")
	}
	login.run = func(ctx context.Context, name string, args ...string) error {
		t.Fatal("login must not run when the SDK is missing")
		return nil
	}

	err := login.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsSetupError(err))
	assert.Contains(t, err.Error(), "gcloud")
	assert.Contains(t, err.Error(), "https://cloud.google.com/sdk/")
}

func TestLogin_RunsApplicationDefaultLogin(t *testing.T) {
	var gotName string
	var gotArgs []string

	login := NewLogin(logger.Nop())
	login.lookPath = func(file string) (string, error) {
		return "/usr/bin/gcloud", nil
	}
	login.run = func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}

	require.NoError(t, login.Run(context.Background()))
	assert.Equal(t, "gcloud", gotName)
	assert.Equal(t, []string{"auth", "application-default", "login"}, gotArgs)
}

func TestLogin_CommandFailure(t *testing.T) {
	login := NewLogin(logger.Nop())
	login.lookPath = func(file string) (string, error) {
		return "/usr/bin/gcloud", nil
	}
	login.run = func(ctx context.Context, name string, args ...string) error {
		return fmt.Errorf("exit status 1")
	}

	err := login.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLoginFailed))
}
