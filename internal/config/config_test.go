package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/notify"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithDataDir(t.TempDir()), WithWatcher(false)}, opts...)
	m := New(opts...)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestLoadFirstRunUsesDefaults(t *testing.T) {
	m := newTestManager(t)

	got := m.Current()
	want := schema.Default()
	if diff := schema.DiffPaths(want, got); diff != nil {
		t.Errorf("first-run config differs from defaults at %v", diff)
	}
	// First run does not create the file; only a save does.
	if _, err := os.Stat(m.SettingsPath()); !os.IsNotExist(err) {
		t.Errorf("settings file exists before any save: %v", err)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	content := `{"language": "ja", "proxy": {"port": 9090}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestManager(t, WithDataDir(dir))
	got := m.Current()

	if got.Language != "ja" {
		t.Errorf("language = %q, want ja", got.Language)
	}
	if got.Proxy.Port != 9090 {
		t.Errorf("proxy.port = %d, want 9090", got.Proxy.Port)
	}
	// Absent fields take defaults.
	if got.Proxy.RequestTimeout != 300 {
		t.Errorf("proxy.request_timeout = %d, want 300", got.Proxy.RequestTimeout)
	}
	if len(got.PinnedQuotaModels.Models) != len(schema.DefaultPinnedModels) {
		t.Errorf("pinned models = %v", got.PinnedQuotaModels.Models)
	}
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`{broken`), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestManager(t, WithDataDir(dir))
	if got := m.Current().Proxy.Port; got != 8045 {
		t.Errorf("proxy.port = %d, want default 8045", got)
	}
}

func TestLoadRepairsLegacyValues(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "quota_protection": {"threshold_percentage": 150},
  "circuit_breaker": {"backoff_steps": [60, 30, 120]}
}`
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestManager(t, WithDataDir(dir))
	got := m.Current()

	if got.QuotaProtection.ThresholdPercentage != 100 {
		t.Errorf("threshold = %d, want clamped 100", got.QuotaProtection.ThresholdPercentage)
	}
	steps := got.CircuitBreaker.BackoffSteps
	if len(steps) != 3 || steps[0] != 30 || steps[1] != 60 || steps[2] != 120 {
		t.Errorf("backoff_steps = %v, want sorted [30 60 120]", steps)
	}
}

func TestCommitPersistsAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, WithDataDir(dir))

	port := 9090
	candidate := m.Stage(&schema.Patch{Proxy: &schema.ProxyPatch{Port: &port}})
	if err := m.Commit(candidate); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	m.Close()

	m2 := newTestManager(t, WithDataDir(dir))
	if got := m2.Current().Proxy.Port; got != 9090 {
		t.Errorf("reloaded proxy.port = %d, want 9090", got)
	}
}

func TestCommitViolationSurface(t *testing.T) {
	m := newTestManager(t)

	enabled := true
	empty := ""
	candidate := m.Stage(&schema.Patch{
		Proxy: &schema.ProxyPatch{
			UpstreamProxy: &schema.UpstreamProxyPatch{Enabled: &enabled, URL: &empty},
		},
	})

	err := m.Commit(candidate)
	v := AsViolation(err)
	if v == nil {
		t.Fatalf("Commit() error = %v, want violation", err)
	}
	if v.Field != "proxy.upstream_proxy.url" {
		t.Errorf("violation field = %q", v.Field)
	}
	if m.Current().Proxy.UpstreamProxy.Enabled {
		t.Error("rejected commit changed the snapshot")
	}
}

func TestApplyImmediatePersistsSingleField(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, WithDataDir(dir))

	if err := m.ApplyImmediate("theme", schema.ThemeDark); err != nil {
		t.Fatalf("ApplyImmediate() error = %v", err)
	}
	m.Close()

	m2 := newTestManager(t, WithDataDir(dir))
	if got := m2.Current().Theme; got != schema.ThemeDark {
		t.Errorf("reloaded theme = %q, want dark", got)
	}
}

func TestWatcherReloadPublishesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"language": "en"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	m := New(WithDataDir(dir), WithWatcher(true))
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer m.Close()

	changed := make(chan notify.Change, 1)
	m.OnField("language", func(c notify.Change) {
		select {
		case changed <- c:
		default:
		}
	})

	if err := os.WriteFile(path, []byte(`{"language": "fr"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changed:
		if c.New != "fr" || c.Source != notify.SourceReload {
			t.Errorf("change = %+v", c)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload notification after external edit")
	}

	if got := m.Current().Language; got != "fr" {
		t.Errorf("language after reload = %q, want fr", got)
	}
}

func TestDefaultDataDirEnvOverride(t *testing.T) {
	t.Setenv(DataDirEnv, "/tmp/agm-test")
	if got := DefaultDataDir(); got != "/tmp/agm-test" {
		t.Errorf("DefaultDataDir() = %q, want /tmp/agm-test", got)
	}
}
