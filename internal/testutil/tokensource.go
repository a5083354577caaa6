// Package testutil provides fake credential collaborators for tests.
package testutil

import (
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
)

// TokenSource is a fake oauth2.TokenSource that counts calls and can be
// told to fail.
type TokenSource struct {
	AccessToken string
	Expiry      time.Time
	Err         error

	calls atomic.Int64
}

// NewTokenSource returns a source yielding a token valid for one hour.
func NewTokenSource(accessToken string) *TokenSource {
	return &TokenSource{
		AccessToken: accessToken,
		Expiry:      time.Now().Add(time.Hour),
	}
}

// Token implements oauth2.TokenSource
func (s *TokenSource) Token() (*oauth2.Token, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	return &oauth2.Token{
		AccessToken: s.AccessToken,
		Expiry:      s.Expiry,
	}, nil
}

// Calls reports how many times Token was invoked.
func (s *TokenSource) Calls() int64 {
	return s.calls.Load()
}
