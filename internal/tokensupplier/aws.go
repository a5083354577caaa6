package tokensupplier

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"golang.org/x/oauth2/google/externalaccount"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

// awsSupplier federates the ambient AWS identity. Instead of a JWT it
// supplies the AWS security credentials the STS uses to verify a signed
// GetCallerIdentity request, so the subject token type switches to the
// aws4_request URN.
type awsSupplier struct {
	region string

	mu     sync.Mutex
	config *aws.Config

	loadConfig func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error)
}

func newAWSSupplier(endpoint map[string]string) (*awsSupplier, error) {
	return &awsSupplier{
		region:     endpoint["region"],
		loadConfig: awsconfig.LoadDefaultConfig,
	}, nil
}

// awsConfig loads the default credential chain once. Loading is
// deferred so supplier construction performs no I/O.
func (s *awsSupplier) awsConfig(ctx context.Context) (aws.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config != nil {
		return *s.config, nil
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if s.region != "" {
		optFns = append(optFns, awsconfig.WithRegion(s.region))
	}

	config, err := s.loadConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, errors.Wrap(
			errors.ErrSubjectTokenFailed,
			err,
			"failed to load AWS configuration",
		)
	}

	s.config = &config
	return config, nil
}

// AwsRegion implements externalaccount.AwsSecurityCredentialsSupplier
func (s *awsSupplier) AwsRegion(ctx context.Context, _ externalaccount.SupplierOptions) (string, error) {
	config, err := s.awsConfig(ctx)
	if err != nil {
		return "", err
	}
	if config.Region == "" {
		return "", errors.New(
			errors.ErrSubjectTokenFailed,
			"no AWS region configured",
		).WithDetail("set region on the token_endpoint or in the AWS environment")
	}
	return config.Region, nil
}

// AwsSecurityCredentials implements externalaccount.AwsSecurityCredentialsSupplier
func (s *awsSupplier) AwsSecurityCredentials(ctx context.Context, _ externalaccount.SupplierOptions) (*externalaccount.AwsSecurityCredentials, error) {
	config, err := s.awsConfig(ctx)
	if err != nil {
		return nil, err
	}

	credentials, err := config.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, errors.Wrap(
			errors.ErrSubjectTokenFailed,
			err,
			"failed to retrieve AWS credentials",
		)
	}

	return &externalaccount.AwsSecurityCredentials{
		AccessKeyID:     credentials.AccessKeyID,
		SecretAccessKey: credentials.SecretAccessKey,
		SessionToken:    credentials.SessionToken,
	}, nil
}

func (s *awsSupplier) SubjectTokenType() string {
	return SubjectTokenTypeAWS4
}

func (s *awsSupplier) Attach(config *externalaccount.Config) {
	config.AwsSecurityCredentialsSupplier = s
}

// Verify probes the ambient AWS identity with GetCallerIdentity.
func (s *awsSupplier) Verify(ctx context.Context) error {
	config, err := s.awsConfig(ctx)
	if err != nil {
		return err
	}

	client := sts.NewFromConfig(config)
	if _, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err != nil {
		return errors.Wrap(
			errors.ErrSubjectTokenFailed,
			err,
			"AWS caller identity check failed",
		)
	}
	return nil
}
