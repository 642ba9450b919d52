package resume

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"resumeforge/internal/errors"
)

// Decode migrates, unmarshals and normalizes a stored or fetched document.
// Callers never see a document that skipped these steps.
func Decode(raw []byte) (Document, error) {
	migrated, _, err := Migrate(raw)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(migrated, &doc); err != nil {
		return Document{}, errors.NewValidationError(errors.ErrCodeDecodeFailed,
			"resume does not match the document layout", err)
	}
	Normalize(&doc)
	return doc, nil
}

// Encode serializes doc as compact JSON.
func Encode(doc Document) ([]byte, error) {
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeDecodeFailed, "failed to encode resume", err)
	}
	return out, nil
}

// EncodeIndent serializes doc as indented JSON for files and terminals.
func EncodeIndent(doc Document) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeDecodeFailed, "failed to encode resume", err)
	}
	return out, nil
}

// DecodeYAML reads a YAML document. It goes through JSON so that migration
// and normalization apply exactly as they do for stored data.
func DecodeYAML(raw []byte) (Document, error) {
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return Document{}, errors.NewValidationError(errors.ErrCodeDecodeFailed,
			"resume is not valid YAML", err)
	}
	if generic == nil {
		generic = map[string]any{}
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return Document{}, errors.NewValidationError(errors.ErrCodeDecodeFailed,
			"resume YAML cannot be represented as JSON", err)
	}
	return Decode(asJSON)
}

// EncodeYAML serializes doc as YAML.
func EncodeYAML(doc Document) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeDecodeFailed, "failed to encode resume as YAML", err)
	}
	return out, nil
}

// DecodeFile picks the decoder from a file name's extension.
func DecodeFile(name string, raw []byte) (Document, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		return Decode(raw)
	case ".yaml", ".yml":
		return DecodeYAML(raw)
	default:
		return Document{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported resume file type %q (use .json, .yaml or .yml)", ext), nil)
	}
}
