package service

import (
	"fmt"
	"strings"

	"github.com/JustJay7/court-fetcher/internal/database"
)

// ErrNotFound is returned when a query, document or file does not exist.
var ErrNotFound = database.ErrNotFound

// ValidationError reports a request that failed input checks.
type ValidationError struct {
	Message string
	// Required lists every required field of the request.
	Required []string
	// Missing lists the required fields that were absent.
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
}

// requireFields returns a ValidationError naming the empty fields, or nil.
func requireFields(fields [][2]string) error {
	required := make([]string, 0, len(fields))
	var missing []string
	for _, f := range fields {
		required = append(required, f[0])
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{
		Message:  "Missing required fields",
		Required: required,
		Missing:  missing,
	}
}
