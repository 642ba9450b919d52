package server

import (
	"fmt"

	"resumeforge/internal/errors"
	"resumeforge/internal/utils"
)

// uploadKind says how an uploaded resume file is read
type uploadKind int

const (
	kindText uploadKind = iota
	kindStructured
	kindPDF
)

var uploadKinds = map[string]uploadKind{
	".txt":  kindText,
	".md":   kindText,
	".json": kindStructured,
	".yaml": kindStructured,
	".yml":  kindStructured,
	".pdf":  kindPDF,
}

func classifyUpload(filename string) (uploadKind, error) {
	ext := utils.GetFileExtension(filename)
	kind, ok := uploadKinds[ext]
	if !ok {
		return 0, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported resume file type %q (use .txt, .md, .json, .yaml or .pdf)", ext), nil)
	}
	return kind, nil
}

// extractText returns the readable text of an uploaded resume
func extractText(filename string, content []byte) (string, error) {
	kind, err := classifyUpload(filename)
	if err != nil {
		return "", err
	}

	var text string
	if kind == kindPDF {
		text, err = utils.PDFText(content)
		if err != nil {
			return "", errors.NewValidationError(errors.ErrCodeFileNotReadable, "failed to read PDF resume", err)
		}
	} else {
		text = string(content)
	}

	text = utils.NormalizeWhitespace(text)
	if text == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidInput, "uploaded resume contains no text", nil).
			WithContext("file", filename)
	}
	return text, nil
}
