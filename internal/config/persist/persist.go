// Package persist provides durable storage for the configuration tree.
//
// The canonical on-disk form is a single pretty-printed JSON file per user
// profile. Saves are atomic: content is written to a temporary file in the
// same directory and renamed over the canonical path, so a crash mid-write
// never leaves a truncated or mixed-content file. For JSON files, known
// fields are merged into the existing raw document rather than rewriting
// it, so keys written by newer or older releases survive a save untouched.
//
// TOML and YAML settings files are accepted for interop; the codec is
// chosen by file extension.
package persist

import (
	"errors"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
)

// ErrNotFound indicates the settings file does not exist yet. Callers fall
// back to schema.Default(); it is a normal first-run outcome, not a fault.
var ErrNotFound = errors.New("settings file not found")

// Adapter loads and stores the serialized configuration.
type Adapter interface {
	// Load reads the stored configuration as a partial tree. Returns
	// ErrNotFound when no file exists.
	Load() (*schema.Patch, error)

	// Save durably writes the full configuration. A failure leaves the
	// previously stored file untouched.
	Save(cfg schema.Config) error

	// SaveField durably writes a single field without rewriting the rest
	// of the stored document. cfg is the snapshot the field belongs to;
	// adapters that cannot patch in place fall back to a full save of it.
	SaveField(cfg schema.Config, path string, value any) error
}
