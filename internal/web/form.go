package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ValidationError reports a missing or malformed form field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Required returns the trimmed values of the named form fields, or a
// ValidationError for the first one that is empty.
func Required(r *http.Request, fields ...string) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, &ValidationError{Field: "form"}
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(r.PostForm.Get(f))
		if v == "" {
			return nil, &ValidationError{Field: f}
		}
		out[f] = v
	}
	return out, nil
}

// Secret returns the untrimmed value of a form field that must not be empty.
// Whitespace is significant, as in passwords.
func Secret(r *http.Request, field string) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", &ValidationError{Field: "form"}
	}
	v := r.PostForm.Get(field)
	if v == "" {
		return "", &ValidationError{Field: field}
	}
	return v, nil
}

// Present returns the raw value of a form field that must be sent but may be
// empty.
func Present(r *http.Request, field string) (string, error) {
	if err := r.ParseForm(); err != nil {
		return "", &ValidationError{Field: "form"}
	}
	vs, ok := r.PostForm[field]
	if !ok || len(vs) == 0 {
		return "", &ValidationError{Field: field}
	}
	return vs[0], nil
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
