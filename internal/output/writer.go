package output

import (
	"encoding/json"
	"io"

	"github.com/moj-analytical-services/dbt-adapters/pkg/errors"
)

// Writer handles writing credential documents
type Writer struct {
	writer io.Writer
}

// NewWriter creates a new document writer
func NewWriter(writer io.Writer) *Writer {
	return &Writer{
		writer: writer,
	}
}

// Write validates and writes a document as indented JSON followed by a
// trailing newline.
func (w *Writer) Write(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(
			errors.ErrOutputFailed,
			err,
			"failed to marshal credential document",
		)
	}

	if _, err := w.writer.Write(append(data, '\n')); err != nil {
		return errors.Wrap(
			errors.ErrOutputFailed,
			err,
			"failed to write credential document",
		)
	}

	return nil
}

// WriteADC validates nothing and writes any JSON-marshallable value,
// used for application-default-credential files.
func (w *Writer) WriteADC(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Wrap(
			errors.ErrOutputFailed,
			err,
			"failed to marshal credentials file",
		)
	}

	if _, err := w.writer.Write(append(data, '\n')); err != nil {
		return errors.Wrap(
			errors.ErrOutputFailed,
			err,
			"failed to write credentials file",
		)
	}

	return nil
}
