// Package schemas validates persisted documents against the embedded JSON Schemas.
package schemas

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/voicedna/internal/types"
	schemafiles "github.com/jonathan/voicedna/schemas"
	"github.com/xeipuuv/gojsonschema"
)

// Document names a schema-backed document kind.
type Document string

const (
	VoiceDNA         Document = "voice_dna"
	CalibrationRound Document = "calibration_round"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Document Document
	Errors   []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Document))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	compiled   = make(map[Document]*gojsonschema.Schema)
	compiledMu sync.Mutex
)

// schemaFor compiles a document's schema once and reuses it.
func schemaFor(doc Document) (*gojsonschema.Schema, error) {
	compiledMu.Lock()
	defer compiledMu.Unlock()

	if s, ok := compiled[doc]; ok {
		return s, nil
	}

	path := string(doc) + ".schema.json"
	data, err := schemafiles.Files.ReadFile(path)
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "unknown document", Cause: err}
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "schema failed to compile", Cause: err}
	}
	compiled[doc] = s
	return s, nil
}

// Validate checks raw JSON against the schema for doc.
func Validate(doc Document, data []byte) error {
	s, err := schemaFor(doc)
	if err != nil {
		return err
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to read %s document: %w", doc, err)
	}

	if result.Valid() {
		return nil
	}

	// Build structured error
	validationErr := &ValidationError{
		Document: doc,
		Errors:   make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}

// ValidateVoiceDNA checks a profile before it is persisted.
func ValidateVoiceDNA(p *types.VoiceDNA) error {
	return validateValue(VoiceDNA, p)
}

// ValidateCalibrationRound checks a round before it is persisted.
func ValidateCalibrationRound(r *types.CalibrationRound) error {
	return validateValue(CalibrationRound, r)
}

func validateValue(doc Document, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", doc, err)
	}
	return Validate(doc, data)
}
