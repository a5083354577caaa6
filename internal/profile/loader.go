package profile

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

// LoadOption is a functional option for loading a profile
type LoadOption func(*loadOptions)

type loadOptions struct {
	path    string
	fromEnv bool
}

// WithFile specifies the profile file path
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithEnv enables environment fallbacks for the database field
func WithEnv() LoadOption {
	return func(o *loadOptions) {
		o.fromEnv = true
	}
}

// Load reads, alias-normalizes and validates a profile.
func Load(opts ...LoadOption) (*Profile, error) {
	options := &loadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	profile := &Profile{}

	if options.path != "" {
		loaded, err := loadFromFile(options.path)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}

	if options.fromEnv && profile.Database == "" {
		profile.Database = projectFromEnv()
	}

	profile.Normalize()

	if err := Validate(profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// loadFromFile loads a profile from a YAML file. The file is decoded
// into a raw mapping first so the legacy alias pre-pass can run before
// the struct sees it.
func loadFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(
			errors.ErrConfigLoadFailed,
			err,
			"failed to read profile file",
		).WithField("path", path)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(
			errors.ErrConfigInvalid,
			err,
			"failed to parse profile file",
		).WithField("path", path)
	}

	normalized, err := yaml.Marshal(ApplyAliases(raw))
	if err != nil {
		return nil, errors.Wrap(
			errors.ErrConfigInvalid,
			err,
			"failed to normalize profile",
		).WithField("path", path)
	}

	var profile Profile
	if err := yaml.Unmarshal(normalized, &profile); err != nil {
		return nil, errors.Wrap(
			errors.ErrConfigInvalid,
			err,
			"failed to decode profile",
		).WithField("path", path)
	}

	return &profile, nil
}

// projectFromEnv returns the ambient GCP project from the conventional
// environment variables, or empty.
func projectFromEnv() string {
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT"} {
		if project := os.Getenv(key); project != "" {
			return project
		}
	}
	return ""
}
