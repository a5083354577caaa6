package auth

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
	"github.com/moj-analytical-services/dbt-adapters/pkg/logger"
	"github.com/moj-analytical-services/dbt-adapters/pkg/metrics"
)

// Defaults holds one discovered ambient credential and the project it
// came with. Entries are never mutated after discovery completes.
type Defaults struct {
	TokenSource oauth2.TokenSource
	ProjectID   string
}

// discoverFunc runs the platform default-credential chain. Swappable in
// tests where no ambient environment exists.
type discoverFunc func(ctx context.Context, scopes ...string) (*google.Credentials, error)

type defaultsEntry struct {
	once     sync.Once
	defaults Defaults
	err      error
}

// DefaultsResolver memoizes ambient-credential discovery per distinct
// scope sequence. Discovery shells out or performs I/O and costs on the
// order of a second, so each scope set is discovered at most once per
// resolver lifetime, including under concurrent callers.
type DefaultsResolver struct {
	mu      sync.Mutex
	entries map[string]*defaultsEntry

	discover discoverFunc
	log      logger.Logger
	metrics  *metrics.Metrics
}

// DefaultsOption configures a DefaultsResolver.
type DefaultsOption func(*DefaultsResolver)

// WithDiscoverFunc replaces the default-credential chain.
func WithDiscoverFunc(fn discoverFunc) DefaultsOption {
	return func(r *DefaultsResolver) {
		r.discover = fn
	}
}

// WithDefaultsLogger sets the resolver logger.
func WithDefaultsLogger(log logger.Logger) DefaultsOption {
	return func(r *DefaultsResolver) {
		r.log = log
	}
}

// WithDefaultsMetrics sets the resolver metrics.
func WithDefaultsMetrics(m *metrics.Metrics) DefaultsOption {
	return func(r *DefaultsResolver) {
		r.metrics = m
	}
}

// NewDefaultsResolver creates a resolver backed by the Google default
// credential chain.
func NewDefaultsResolver(opts ...DefaultsOption) *DefaultsResolver {
	r := &DefaultsResolver{
		entries:  make(map[string]*defaultsEntry),
		discover: google.FindDefaultCredentials,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// scopeKey treats the scope sequence as a value. Order matters; two
// permutations of the same scopes are distinct entries.
func scopeKey(scopes []string) string {
	return strings.Join(scopes, "\x00")
}

// Discover returns the ambient credential and project for the given
// scope sequence, running the underlying discovery at most once per
// distinct sequence.
func (r *DefaultsResolver) Discover(ctx context.Context, scopes []string) (Defaults, error) {
	key := scopeKey(scopes)

	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok {
		entry = &defaultsEntry{}
		r.entries[key] = entry
	}
	r.mu.Unlock()

	r.metrics.CacheLookup(ok)

	entry.once.Do(func() {
		r.log.Debug("discovering ambient default credentials",
			logger.Int("scopes", len(scopes)))

		credentials, err := r.discover(ctx, scopes...)
		if err != nil {
			entry.err = errors.Wrap(
				errors.ErrDefaultsDiscovery,
				err,
				"Failed to authenticate with supplied credentials",
			)
			return
		}

		entry.defaults = Defaults{
			TokenSource: credentials.TokenSource,
			ProjectID:   credentials.ProjectID,
		}
	})

	return entry.defaults, entry.err
}

// Reset drops all cached entries. Intended for test isolation.
func (r *DefaultsResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*defaultsEntry)
}
