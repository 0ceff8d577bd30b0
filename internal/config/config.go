package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/notify"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/persist"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/store"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/watcher"
)

// AppDirName is the per-user directory under the OS config root holding
// the settings file and other application data.
const AppDirName = "antigravity-manager"

// DataDirEnv overrides the application data directory when set.
const DataDirEnv = "ANTIGRAVITY_DATA_DIR"

// Manager wires the settings pipeline together: durable storage, the
// authoritative snapshot store, change notification and the optional
// file watcher for out-of-band edits.
type Manager struct {
	mu sync.Mutex

	dataDir string
	path    string

	adapter  persist.Adapter
	notifier *notify.Notifier
	store    *store.Store
	watcher  *watcher.Watcher

	enableWatcher bool
	loaded        bool
	log           logrus.FieldLogger
}

// Option configures a Manager.
type Option func(*Manager)

// WithDataDir overrides the application data directory.
func WithDataDir(dir string) Option {
	return func(m *Manager) {
		m.dataDir = dir
	}
}

// WithConfigPath overrides the settings file path. The format follows
// the extension; settings.json under the data directory is the default.
func WithConfigPath(path string) Option {
	return func(m *Manager) {
		m.path = path
	}
}

// WithWatcher enables or disables watching the settings file for
// out-of-band edits. Enabled by default.
func WithWatcher(enable bool) Option {
	return func(m *Manager) {
		m.enableWatcher = enable
	}
}

// WithLogger sets the logger for load, commit and reload reporting.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates a Manager. Nothing is read from disk until Load.
func New(opts ...Option) *Manager {
	m := &Manager{
		notifier:      notify.New(),
		enableWatcher: true,
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.dataDir == "" {
		m.dataDir = DefaultDataDir()
	}
	if m.path == "" {
		m.path = filepath.Join(m.dataDir, persist.SettingsFileName)
	}

	m.adapter = persist.NewFileAdapter(m.path)
	m.store = store.New(schema.Default(), m.adapter, m.notifier, store.WithLogger(m.log))
	return m
}

// Load reads the settings file, fills defaults, repairs invalid legacy
// values and publishes the result as the committed snapshot. A missing
// file is a normal first run; a corrupt or unreadable one is logged and
// replaced in memory by defaults. Load never fails over file content.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := m.loadOrDefault()
	m.store.Reset(cfg)
	m.loaded = true

	if m.enableWatcher && m.watcher == nil {
		w, err := watcher.New(m.path, m.reload, watcher.WithLogger(m.log))
		if err != nil {
			return fmt.Errorf("creating settings watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("starting settings watcher: %w", err)
		}
		m.watcher = w
	}
	return nil
}

// loadOrDefault reads and repairs the stored settings, falling back to
// defaults when the file is absent or unreadable.
func (m *Manager) loadOrDefault() schema.Config {
	patch, err := m.adapter.Load()
	switch {
	case errors.Is(err, persist.ErrNotFound):
		return schema.Default()
	case err != nil:
		m.log.WithError(err).WithField("path", m.path).
			Warn("settings file unreadable, using defaults")
		return schema.Default()
	}

	cfg := schema.FillDefaults(patch)
	for _, c := range schema.Repair(&cfg) {
		m.log.WithFields(logrus.Fields{
			"field": c.Field,
			"from":  c.From,
			"to":    c.To,
		}).Warn("repaired invalid setting")
	}
	return cfg
}

// reload re-reads the settings file after the watcher reported an
// external change and publishes the differences.
func (m *Manager) reload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.WithField("path", m.path).Info("reloading settings after external change")
	m.store.Replace(m.loadOrDefault(), notify.SourceReload)
}

// Close stops the watcher and notification delivery.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher != nil {
		_ = m.watcher.Stop()
		m.watcher = nil
	}
	m.notifier.Close()
}

// Current returns a deep copy of the committed configuration.
func (m *Manager) Current() schema.Config {
	return m.store.Current()
}

// Stage deep-merges patch onto the committed snapshot and returns the
// candidate without committing it.
func (m *Manager) Stage(patch *schema.Patch) schema.Config {
	return m.store.Stage(patch)
}

// Commit validates candidate and makes it the committed snapshot,
// persisting it atomically. See store.Store.Commit for the contract.
func (m *Manager) Commit(candidate schema.Config) error {
	return m.store.Commit(candidate)
}

// ApplyImmediate applies one allow-listed field (language, theme) ahead
// of an explicit save.
func (m *Manager) ApplyImmediate(field, value string) error {
	return m.store.ApplyImmediate(field, value)
}

// Subscribe registers an observer for every settings change.
func (m *Manager) Subscribe(observer notify.Observer) *notify.Subscription {
	return m.notifier.Subscribe(observer)
}

// OnField registers an observer for one field path and everything
// beneath it.
func (m *Manager) OnField(field string, observer notify.Observer) *notify.Subscription {
	return m.notifier.SubscribeField(field, observer)
}

// SettingsPath returns the settings file path.
func (m *Manager) SettingsPath() string {
	return m.path
}

// DataDir returns the application data directory.
func (m *Manager) DataDir() string {
	return m.dataDir
}

// DefaultDataDir returns the per-user application data directory,
// honoring the ANTIGRAVITY_DATA_DIR override. Falls back to a dotted
// directory under $HOME when the OS config root is unavailable.
func DefaultDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppDirName
	}
	return filepath.Join(home, "."+AppDirName)
}
