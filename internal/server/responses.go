package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// multipartMemory is how much of a multipart body is kept in memory
const multipartMemory = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, title, message, code string, status int) {
	writeJSON(w, status, types.ErrorResponse{
		Error:   title,
		Code:    code,
		Message: message,
	})
}

// writeAppError maps err onto a status code and writes it
func writeAppError(w http.ResponseWriter, title string, err error) {
	writeErrorResponse(w, title, err.Error(), errors.CodeOf(err), statusFor(err))
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch {
	case appErr.Code == errors.ErrCodeNotFound:
		return http.StatusNotFound
	case appErr.Type == errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case appErr.Type == errors.ErrorTypeAI:
		return http.StatusBadGateway
	case appErr.Type == errors.ErrorTypeConfig:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// parseJSONRequest decodes a JSON request body into v
func parseJSONRequest(r *http.Request, v any) error {
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return requestReadError(err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}
	return nil
}

// readBody returns the raw request body
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, requestReadError(err)
	}
	return body, nil
}

func requestReadError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to read request body", err)
}

// uploadedFile holds the "file" part of a multipart request
type uploadedFile struct {
	Name    string
	Content []byte
}

// readUpload parses a multipart form and returns its "file" part
func readUpload(r *http.Request) (uploadedFile, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return uploadedFile{}, requestReadError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return uploadedFile{}, errors.NewValidationError(errors.ErrCodeMissingField, "multipart field \"file\" is required", err)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return uploadedFile{}, requestReadError(err)
	}
	return uploadedFile{Name: header.Filename, Content: content}, nil
}
