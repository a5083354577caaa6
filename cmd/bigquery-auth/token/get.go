package token

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/common"
	"github.com/moj-analytical-services/dbt-adapters/cmd/bigquery-auth/version"
	"github.com/moj-analytical-services/dbt-adapters/internal/auth"
	"github.com/moj-analytical-services/dbt-adapters/internal/output"
	"github.com/moj-analytical-services/dbt-adapters/internal/profile"
	"github.com/moj-analytical-services/dbt-adapters/internal/tokensupplier"
	"github.com/moj-analytical-services/dbt-adapters/pkg/logger"
	"github.com/moj-analytical-services/dbt-adapters/pkg/metrics"
	"github.com/moj-analytical-services/dbt-adapters/pkg/tracing"
)

func NewCommand(flags *common.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token operations",
	}
	cmd.AddCommand(newGetCommand(flags))
	return cmd
}

func newGetCommand(flags *common.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Resolve the profile and print an access token",
		Long: `Resolve the connection profile into a credential and print a JSON
document with the access token, its expiry, and the resolved identity.

Examples:
  # Ambient application-default credentials
  bigquery-auth token get --profile=profiles/bigquery.yml

  # Verify the external identity provider before resolving (WIF only)
  bigquery-auth token get --profile=profiles/wif.yml --verify
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Verify, "verify", false, "Probe the external identity provider before resolving (external-oauth-wif only)")
	cmd.Flags().BoolVar(&flags.TracingEnabled, "tracing", false, "Export spans to an OTLP collector")
	cmd.Flags().StringVar(&flags.TracingEndpoint, "tracing-endpoint", "localhost:4317", "OTLP collector endpoint")

	return cmd
}

func run(flags *common.Flags) error {
	ctx, cancel := common.SetupSignalHandler()
	defer cancel()

	log, err := common.CreateLogger(flags)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	tracingConfig := tracing.DefaultConfig()
	tracingConfig.Enabled = flags.TracingEnabled
	tracingConfig.Endpoint = flags.TracingEndpoint
	tracingConfig.ServiceVersion = version.Version

	tracer, err := tracing.NewProvider(ctx, tracingConfig)
	if err != nil {
		return fmt.Errorf("failed to create tracing provider: %w", err)
	}
	defer tracer.Shutdown(ctx)

	p, err := common.LoadProfile(flags)
	if err != nil {
		log.Error("Failed to load profile", logger.String("error", err.Error()))
		return err
	}

	ctx, span := tracer.StartSpan(ctx, "credential.resolve",
		attribute.String("auth.method", p.Method.String()))
	defer span.End()

	log.Info("Resolving credential",
		logger.String("method", p.Method.String()),
		logger.String("database", p.Database),
	)

	if flags.Verify && p.Method == profile.MethodExternalOAuthWIF {
		supplier, err := tokensupplier.New(p.TokenEndpoint)
		if err != nil {
			log.Error("Invalid token endpoint", logger.String("error", err.Error()))
			return err
		}
		if verifier, ok := supplier.(tokensupplier.Verifier); ok {
			if err := verifier.Verify(ctx); err != nil {
				log.Error("Identity provider probe failed", logger.String("error", err.Error()))
				return err
			}
			log.Info("Identity provider probe succeeded")
		}
	}

	resolver := auth.NewResolver(
		auth.WithLogger(log),
		auth.WithMetrics(metrics.NewMetrics(metrics.DefaultConfig())),
	)

	credential, err := resolver.Resolve(ctx, p)
	if err != nil {
		log.Error("Failed to resolve credential", logger.String("error", err.Error()))
		return err
	}

	token, expiry, err := credential.AccessToken(ctx)
	if err != nil {
		log.Error("Failed to fetch access token", logger.String("error", err.Error()))
		return err
	}

	log.Info("Credential resolved",
		logger.String("method", p.Method.String()),
		logger.String("expires_at", expiry.Format(time.RFC3339)),
	)

	doc := output.NewDocument(token, expiry)
	doc.Project = credential.ProjectID
	doc.Principal = credential.TargetPrincipal

	writer := output.NewWriter(os.Stdout)
	if err := writer.Write(doc); err != nil {
		log.Error("Failed to write credential document", logger.String("error", err.Error()))
		return err
	}

	return nil
}
