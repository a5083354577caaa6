package profile

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the profile's structural constraints plus the
// method-conditional required fields. Required-ness depends on the
// active method, so a flat required-fields check is not enough.
func Validate(profile *Profile) error {
	if profile == nil {
		return errors.New(errors.ErrConfigInvalid, "profile is nil")
	}

	if err := validate.Struct(profile); err != nil {
		return formatValidationError(err)
	}

	switch profile.Method {
	case MethodServiceAccount:
		if profile.Keyfile == "" {
			return errors.New(
				errors.ErrConfigMissingField,
				"keyfile is required for service-account",
			).WithField("method", profile.Method)
		}

	case MethodServiceAccountJSON:
		if profile.KeyfileJSON == nil {
			return errors.New(
				errors.ErrConfigMissingField,
				"keyfile_json is required for service-account-json",
			).WithField("method", profile.Method)
		}

	case MethodOAuthSecrets:
		for name, value := range map[string]string{
			"token":         profile.Token,
			"refresh_token": profile.RefreshToken,
			"client_id":     profile.ClientID,
			"client_secret": profile.ClientSecret,
			"token_uri":     profile.TokenURI,
		} {
			if value == "" {
				return errors.New(
					errors.ErrConfigMissingField,
					fmt.Sprintf("%s is required for oauth-secrets", name),
				).WithField("method", profile.Method)
			}
		}
		if err := validateURL("token_uri", profile.TokenURI); err != nil {
			return err
		}

	case MethodExternalOAuthWIF:
		if profile.WorkloadPoolProviderPath == "" {
			return errors.New(
				errors.ErrConfigMissingField,
				"workload_pool_provider_path is required for external-oauth-wif",
			).WithField("method", profile.Method)
		}
		if len(profile.TokenEndpoint) == 0 {
			return errors.New(
				errors.ErrConfigMissingField,
				"token_endpoint is required for external-oauth-wif",
			).WithField("method", profile.Method)
		}
		if profile.ServiceAccountImpersonationURL != "" {
			if err := validateURL("service_account_impersonation_url", profile.ServiceAccountImpersonationURL); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateURL checks the format of a method-active URL field. Fields of
// inactive methods are never checked.
func validateURL(name, value string) error {
	if err := validate.Var(value, "url"); err != nil {
		return errors.New(
			errors.ErrValidationFailed,
			fmt.Sprintf("invalid value for %s (url)", name),
		).WithField("field", name)
	}
	return nil
}

// formatValidationError converts validator errors into application errors
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrValidationFailed, err, "profile validation failed")
	}

	first := validationErrors[0]
	return errors.New(
		errors.ErrValidationFailed,
		fmt.Sprintf("invalid value for %s (%s)", first.Field(), first.Tag()),
	).WithField("field", first.Field())
}
