// Package schema declares the Antigravity Manager configuration tree,
// its defaults, and the rules that values must satisfy.
//
// The package defines two parallel type trees:
//
//   - Config: a fully populated configuration. Every field holds a value
//     after FillDefaults; consumers never see an absent section.
//   - Patch: a partial configuration in which every field is optional.
//     A nil field means "leave the base value alone"; a non-nil field
//     overwrites it. Patches merge recursively so that editing one field
//     of a nested section never disturbs its siblings.
//
// Validation runs in two modes. Check reports violations in field
// declaration order and is used to block commits. Repair coerces invalid
// values to the nearest valid value and is used on load, so a damaged
// settings file can never prevent startup.
package schema

// Theme names accepted by the UI.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Thinking budget modes.
const (
	ThinkingModeAuto  = "auto"
	ThinkingModeFixed = "fixed"
	ThinkingModeNone  = "none"
)

// Config is the complete Antigravity Manager configuration. It is the
// authoritative in-memory form; the persisted file mirrors this tree with
// snake_case keys.
type Config struct {
	// Language is the UI locale code (see SupportedLanguages).
	// Changing it applies immediately, ahead of a general save.
	Language string `json:"language" yaml:"language" toml:"language"`

	// Theme is the UI theme: light, dark, or system.
	// Changing it applies immediately, ahead of a general save.
	Theme string `json:"theme" yaml:"theme" toml:"theme"`

	// AutoRefresh enables periodic account refresh. It is forced to true
	// on every successful commit; downstream subsystems depend on it.
	AutoRefresh bool `json:"auto_refresh" yaml:"auto_refresh" toml:"auto_refresh"`

	// RefreshInterval is the refresh period in minutes (1-60).
	RefreshInterval int `json:"refresh_interval" yaml:"refresh_interval" toml:"refresh_interval"`

	// AutoSync enables background account synchronization.
	AutoSync bool `json:"auto_sync" yaml:"auto_sync" toml:"auto_sync"`

	// SyncInterval is the sync period in minutes (1-60). Only meaningful
	// when AutoSync is on.
	SyncInterval int `json:"sync_interval" yaml:"sync_interval" toml:"sync_interval"`

	// Proxy configures the companion proxy service.
	Proxy ProxyConfig `json:"proxy" yaml:"proxy" toml:"proxy"`

	// ScheduledWarmup configures the scheduled model warm-up job.
	ScheduledWarmup WarmupConfig `json:"scheduled_warmup" yaml:"scheduled_warmup" toml:"scheduled_warmup"`

	// QuotaProtection configures usage throttling when remaining quota
	// falls below a threshold.
	QuotaProtection QuotaProtectionConfig `json:"quota_protection" yaml:"quota_protection" toml:"quota_protection"`

	// PinnedQuotaModels is the ordered list of models shown on the quota
	// dashboard.
	PinnedQuotaModels PinnedModelsConfig `json:"pinned_quota_models" yaml:"pinned_quota_models" toml:"pinned_quota_models"`

	// CircuitBreaker configures failure backoff for upstream requests.
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker" yaml:"circuit_breaker" toml:"circuit_breaker"`
}

// ProxyConfig holds settings for the local proxy service.
type ProxyConfig struct {
	// Enabled starts the proxy with the application.
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// Port is the TCP port the proxy listens on (1-65535).
	Port int `json:"port" yaml:"port" toml:"port"`

	// APIKey authenticates clients to the proxy. May be empty.
	APIKey string `json:"api_key" yaml:"api_key" toml:"api_key"`

	// RequestTimeout is the upstream request timeout in seconds (> 0).
	RequestTimeout int `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`

	// UpstreamProxy routes outbound proxy traffic through another proxy.
	UpstreamProxy UpstreamProxyConfig `json:"upstream_proxy" yaml:"upstream_proxy" toml:"upstream_proxy"`

	// DebugLogging captures request/response traffic to disk.
	DebugLogging DebugLoggingConfig `json:"debug_logging" yaml:"debug_logging" toml:"debug_logging"`

	// ThinkingBudget controls the thinking budget forwarded to models.
	ThinkingBudget ThinkingBudgetConfig `json:"thinking_budget" yaml:"thinking_budget" toml:"thinking_budget"`
}

// UpstreamProxyConfig holds upstream proxy settings. When Enabled is true
// the URL must be non-empty.
type UpstreamProxyConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// URL is the upstream proxy address. Stored trimmed; required when
	// Enabled.
	URL string `json:"url" yaml:"url" toml:"url"`
}

// DebugLoggingConfig holds debug traffic logging settings.
//
// OutputDir is deliberately a pointer: nil means "not configured", and the
// effective directory (<data_dir>/debug_logs) is resolved by the consumer
// at read time, never written back into the stored configuration.
// Disabling debug logging retains OutputDir so re-enabling restores it.
type DebugLoggingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	OutputDir *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty" toml:"output_dir,omitempty"`
}

// ThinkingBudgetConfig holds the thinking budget policy passed through to
// the proxy. CustomValue is meaningful only when Mode is "fixed".
type ThinkingBudgetConfig struct {
	Mode string `json:"mode" yaml:"mode" toml:"mode"`

	// CustomValue is a non-negative token budget used when Mode is fixed.
	CustomValue int `json:"custom_value" yaml:"custom_value" toml:"custom_value"`
}

// WarmupConfig holds scheduled warm-up settings.
type WarmupConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// MonitoredModels is a set of model identifiers; duplicates are
	// rejected on commit and dropped on load.
	MonitoredModels []string `json:"monitored_models" yaml:"monitored_models" toml:"monitored_models"`
}

// QuotaProtectionConfig holds quota protection settings.
type QuotaProtectionConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// ThresholdPercentage is the remaining-quota percentage (1-100) below
	// which usage is throttled.
	ThresholdPercentage int `json:"threshold_percentage" yaml:"threshold_percentage" toml:"threshold_percentage"`

	// MonitoredModels is a set of model identifiers; duplicates are
	// rejected on commit and dropped on load.
	MonitoredModels []string `json:"monitored_models" yaml:"monitored_models" toml:"monitored_models"`
}

// PinnedModelsConfig holds the ordered quota dashboard model list.
type PinnedModelsConfig struct {
	Models []string `json:"models" yaml:"models" toml:"models"`
}

// CircuitBreakerConfig holds failure backoff settings.
type CircuitBreakerConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// BackoffSteps are wait durations in seconds applied on successive
	// failures. Each step must be positive and the sequence must be
	// non-decreasing.
	BackoffSteps []int `json:"backoff_steps" yaml:"backoff_steps" toml:"backoff_steps"`
}

// Clone returns a deep copy of the configuration. Mutating the copy never
// affects the original.
func (c Config) Clone() Config {
	out := c
	out.Proxy.DebugLogging.OutputDir = clonePtr(c.Proxy.DebugLogging.OutputDir)
	out.ScheduledWarmup.MonitoredModels = cloneSlice(c.ScheduledWarmup.MonitoredModels)
	out.QuotaProtection.MonitoredModels = cloneSlice(c.QuotaProtection.MonitoredModels)
	out.PinnedQuotaModels.Models = cloneSlice(c.PinnedQuotaModels.Models)
	out.CircuitBreaker.BackoffSteps = cloneSlice(c.CircuitBreaker.BackoffSteps)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
