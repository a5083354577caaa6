package adc

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/common"
	"github.com/moj-analytical-services/dbt-adapters/internal/auth"
	"github.com/moj-analytical-services/dbt-adapters/internal/output"
	"github.com/moj-analytical-services/dbt-adapters/internal/profile"
	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
	"github.com/moj-analytical-services/dbt-adapters/pkg/logger"
)

func NewCommand(flags *common.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adc",
		Short: "Application-default-credentials operations",
	}
	cmd.AddCommand(newGenerateCommand(flags))
	return cmd
}

func newGenerateCommand(flags *common.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Render a WIF profile as an application-default-credentials file",
		Long: `Render an external-oauth-wif profile as an external_account credentials
file that Google client libraries can consume directly via
GOOGLE_APPLICATION_CREDENTIALS, without going through this tool.

Only URL-sourced token endpoints can be expressed as a file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}
}

func run(flags *common.Flags) error {
	log, err := common.CreateLogger(flags)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	p, err := common.LoadProfile(flags)
	if err != nil {
		log.Error("Failed to load profile", logger.String("error", err.Error()))
		return err
	}

	if p.Method != profile.MethodExternalOAuthWIF {
		return errors.New(
			errors.ErrConfigInvalid,
			fmt.Sprintf("adc generate requires method external-oauth-wif, profile uses '%s'", p.Method),
		)
	}

	doc, err := auth.NewADCDocument(p)
	if err != nil {
		log.Error("Failed to build credentials file", logger.String("error", err.Error()))
		return err
	}

	writer := output.NewWriter(os.Stdout)
	if err := writer.WriteADC(doc); err != nil {
		log.Error("Failed to write credentials file", logger.String("error", err.Error()))
		return err
	}

	return nil
}
