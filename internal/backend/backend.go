// Package backend implements the collaborator commands the desktop shell
// invokes around the configuration core: data directory resolution,
// update checking, login auto-launch, companion executable detection and
// cache cleanup.
package backend

import (
	"errors"
)

// ErrNotFound indicates an expected resource, such as the companion
// executable or a cache directory, is absent. Callers treat it as a
// normal outcome with a defined fallback.
var ErrNotFound = errors.New("not found")

// ErrPlatformUnsupported indicates the operation is unavailable on the
// current platform. The shell renders the control disabled.
var ErrPlatformUnsupported = errors.New("unsupported on this platform")
