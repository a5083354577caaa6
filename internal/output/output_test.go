package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

func TestDocumentValidate(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name    string
		doc     *Document
		wantErr bool
	}{
		{
			name: "valid document",
			doc:  NewDocument("tok", future),
		},
		{
			name: "no expiry is valid",
			doc:  NewDocument("tok", time.Time{}),
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: true,
		},
		{
			name:    "missing token",
			doc:     &Document{TokenType: "Bearer"},
			wantErr: true,
		},
		{
			name:    "missing token type",
			doc:     &Document{Token: "tok"},
			wantErr: true,
		},
		{
			name:    "expired token",
			doc:     NewDocument("tok", past),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrOutputInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriter_Write(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	doc := NewDocument("tok-123", expiry)
	doc.Project = "analytics-project"
	doc.Principal = "target@proj.iam.gserviceaccount.com"

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Write(doc))

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "tok-123", parsed["token"])
	assert.Equal(t, "Bearer", parsed["token_type"])
	assert.Equal(t, "analytics-project", parsed["project"])
	assert.Equal(t, "target@proj.iam.gserviceaccount.com", parsed["principal"])
	assert.NotEmpty(t, parsed["expires_at"])
}

func TestWriter_Write_OmitsEmptyMetadata(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).Write(NewDocument("tok", time.Time{})))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.NotContains(t, parsed, "project")
	assert.NotContains(t, parsed, "principal")
	assert.NotContains(t, parsed, "expires_at")
}

func TestWriter_Write_RejectsInvalid(t *testing.T) {
	var buf bytes.Buffer

	err := NewWriter(&buf).Write(&Document{})

	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
