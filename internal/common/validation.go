package common

import (
	"fmt"
	"slices"
	"strings"

	"resumeforge/internal/errors"
	"resumeforge/internal/formatters"
)

// ValidateOutputFormat checks format against the configured allow-list and
// against the formats the registry can actually produce. An empty allow-list
// only applies the registry check.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) > 0 && !slices.Contains(supportedFormats, format) {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported output format '%s' (supported: %s)", format, strings.Join(supportedFormats, ", ")), nil)
	}

	if !slices.Contains(formatters.GlobalRegistry.GetSupportedFormats(), format) {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("no formatter produces '%s'", format), nil).
			WithContext("format", format)
	}
	return nil
}
