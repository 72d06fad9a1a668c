package serrors

import "fmt"

// Base is a coded error shared across module boundaries. The code is stable and
// machine-readable; the message is for logs and API envelopes.
type Base struct {
	Code    string
	Message string
	Field   string
}

func NewError(code, message, field string) *Base {
	return &Base{
		Code:    code,
		Message: message,
		Field:   field,
	}
}

func (e *Base) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithField returns a copy of the error bound to a concrete field name.
func (e *Base) WithField(field string) *Base {
	return &Base{Code: e.Code, Message: e.Message, Field: field}
}

// ValidationErrors maps field names to human-readable messages.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}
