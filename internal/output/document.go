// Package output renders resolved credentials as the JSON document
// consumed by the warehouse client layer.
package output

import (
	"time"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

// Document is the credential handed to the consumer on stdout. The
// token is the only required field; identity metadata travels with it
// so the consumer can label the session.
type Document struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// Project is the billing project resolved with the credential.
	Project string `json:"project,omitempty"`

	// Principal is the impersonated service account, when one is active.
	Principal string `json:"principal,omitempty"`
}

// NewDocument builds a bearer-token document. A zero expiry is omitted
// from the output; some token sources do not report one.
func NewDocument(token string, expiry time.Time) *Document {
	doc := &Document{
		Token:     token,
		TokenType: "Bearer",
	}
	if !expiry.IsZero() {
		doc.ExpiresAt = &expiry
	}
	return doc
}

// Validate checks the document before it is written.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New(
			errors.ErrOutputInvalid,
			"document is nil",
		)
	}
	if d.Token == "" {
		return errors.New(
			errors.ErrOutputInvalid,
			"document has no token",
		)
	}
	if d.TokenType == "" {
		return errors.New(
			errors.ErrOutputInvalid,
			"document has no token type",
		)
	}
	if d.ExpiresAt != nil && d.ExpiresAt.Before(time.Now()) {
		return errors.New(
			errors.ErrOutputInvalid,
			"document token is already expired",
		).WithField("expires_at", d.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
