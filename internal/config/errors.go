package config

import (
	"errors"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/persist"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
)

// ErrNotFound indicates an expected resource, such as the settings file,
// is absent. A normal outcome with a defined fallback, not a fault.
var ErrNotFound = persist.ErrNotFound

// AsViolation extracts the validation violation from a rejected commit.
// Returns nil when err is not a validation failure.
func AsViolation(err error) *schema.Violation {
	var v *schema.Violation
	if errors.As(err, &v) {
		return v
	}
	return nil
}
