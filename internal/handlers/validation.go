package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// bindingErrorMessage describes why a request body could not be decoded
func bindingErrorMessage(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)

	switch {
	case errors.Is(err, io.EOF):
		return "Request body is empty"
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("Malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Field %s must be of type %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &maxErr):
		return fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit)
	default:
		return "Invalid request body"
	}
}

// bindingStatus maps a decode failure to its HTTP status
func bindingStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// malformedAttachmentMetadata reports a type mismatch inside the files
// metadata or an attachment list. Those are relayed as internal errors
// rather than client errors.
func malformedAttachmentMetadata(err error) bool {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return false
	}
	field := typeErr.Field
	return field == "files" || strings.HasPrefix(field, "files.") ||
		strings.Contains(field, "Email.attachments")
}

func stringify(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
