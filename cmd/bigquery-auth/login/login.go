package login

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/common"
	"github.com/moj-analytical-services/dbt-adapters/internal/auth"
	"github.com/moj-analytical-services/dbt-adapters/pkg/logger"
)

func NewCommand(flags *common.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Run the interactive application-default login flow",
		Long: `Run gcloud's interactive application-default login and write ambient
default credentials for the oauth method. Requires the Google Cloud SDK.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}
}

func run(flags *common.Flags) error {
	ctx, cancel := common.SetupSignalHandler()
	defer cancel()

	log, err := common.CreateLogger(flags)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	if err := auth.NewLogin(log).Run(ctx); err != nil {
		log.Error("Login failed", logger.String("error", err.Error()))
		return err
	}

	return nil
}
