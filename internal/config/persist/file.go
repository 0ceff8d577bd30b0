package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
)

// SettingsFileName is the canonical settings file inside the data
// directory.
const SettingsFileName = "settings.json"

// FileAdapter stores the configuration in a single file. The format is
// chosen by the file's extension; settings.json is canonical.
type FileAdapter struct {
	path  string
	codec codec
}

// NewFileAdapter creates an adapter for the given settings path.
func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{
		path:  path,
		codec: codecFor(path),
	}
}

// Path returns the settings file path.
func (a *FileAdapter) Path() string {
	return a.path
}

// Load reads the settings file as a partial tree. Returns ErrNotFound
// when the file does not exist.
func (a *FileAdapter) Load() (*schema.Patch, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading settings file %s: %w", a.path, err)
	}
	return a.codec.Decode(data)
}

// Save writes the full configuration atomically. Unknown keys in an
// existing JSON document are carried over.
func (a *FileAdapter) Save(cfg schema.Config) error {
	prev, err := os.ReadFile(a.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading settings file %s: %w", a.path, err)
	}

	data, err := a.codec.Encode(cfg, prev)
	if err != nil {
		return err
	}
	return WriteFileAtomic(a.path, data)
}

// SaveField writes a single field. JSON documents are patched in place so
// nothing else in the file changes; other formats fall back to a full
// save of cfg.
func (a *FileAdapter) SaveField(cfg schema.Config, path string, value any) error {
	if _, ok := a.codec.(jsonCodec); !ok {
		return a.Save(cfg)
	}

	prev, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return a.Save(cfg)
		}
		return fmt.Errorf("reading settings file %s: %w", a.path, err)
	}
	if !gjson.ValidBytes(prev) {
		return a.Save(cfg)
	}

	out, err := sjson.SetBytes(prev, path, value)
	if err != nil {
		return fmt.Errorf("writing field %s: %w", path, err)
	}
	return WriteFileAtomic(a.path, pretty.PrettyOptions(out, prettyOpts))
}

// WriteFileAtomic writes data to a temporary file in the target's
// directory and renames it over path. Readers never observe a partial
// write, and a failure before the rename leaves the old file intact.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating settings directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp settings file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp settings file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting settings file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing settings file %s: %w", path, err)
	}
	return nil
}
