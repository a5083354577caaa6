package auth

import (
	"context"
	"os"
	"os/exec"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
	"github.com/moj-analytical-services/dbt-adapters/pkg/logger"
)

const gcloudBinary = "gcloud"

// Login performs the interactive application-default login flow. This
// is an explicit operator action with an OS-level side effect (it
// writes the ambient default credentials); programmatic resolution
// never invokes it.
type Login struct {
	log logger.Logger

	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewLogin creates a Login backed by the local gcloud binary.
func NewLogin(log logger.Logger) *Login {
	if log == nil {
		log = logger.Nop()
	}
	return &Login{
		log:      log,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Run checks for the SDK and drives the interactive login.
func (l *Login) Run(ctx context.Context) error {
	if _, err := l.lookPath(gcloudBinary); err != nil {
		return errors.New(
			errors.ErrSDKMissing,
			"gcloud is not installed",
		).WithDetail("dbt requires gcloud to be installed to authenticate via oauth. " +
			"Install it from https://cloud.google.com/sdk/ and re-run the login.")
	}

	l.log.Info("starting interactive application-default login")

	if err := l.run(ctx, gcloudBinary, "auth", "application-default", "login"); err != nil {
		return errors.Wrap(
			errors.ErrLoginFailed,
			err,
			"gcloud application-default login failed",
		)
	}

	l.log.Info("application-default credentials written")
	return nil
}
