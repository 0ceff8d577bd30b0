package schema

// Patch is a partial configuration. Nil fields are absent and leave the
// base value untouched; non-nil fields overwrite it. Nested sections are
// themselves patches so a single-field edit deep in the tree merges
// without disturbing sibling fields.
//
// The zero Patch is valid and changes nothing.
type Patch struct {
	Language          *string              `json:"language,omitempty" yaml:"language,omitempty" toml:"language,omitempty"`
	Theme             *string              `json:"theme,omitempty" yaml:"theme,omitempty" toml:"theme,omitempty"`
	AutoRefresh       *bool                `json:"auto_refresh,omitempty" yaml:"auto_refresh,omitempty" toml:"auto_refresh,omitempty"`
	RefreshInterval   *int                 `json:"refresh_interval,omitempty" yaml:"refresh_interval,omitempty" toml:"refresh_interval,omitempty"`
	AutoSync          *bool                `json:"auto_sync,omitempty" yaml:"auto_sync,omitempty" toml:"auto_sync,omitempty"`
	SyncInterval      *int                 `json:"sync_interval,omitempty" yaml:"sync_interval,omitempty" toml:"sync_interval,omitempty"`
	Proxy             *ProxyPatch          `json:"proxy,omitempty" yaml:"proxy,omitempty" toml:"proxy,omitempty"`
	ScheduledWarmup   *WarmupPatch         `json:"scheduled_warmup,omitempty" yaml:"scheduled_warmup,omitempty" toml:"scheduled_warmup,omitempty"`
	QuotaProtection   *QuotaProtectionPatch `json:"quota_protection,omitempty" yaml:"quota_protection,omitempty" toml:"quota_protection,omitempty"`
	PinnedQuotaModels *PinnedModelsPatch   `json:"pinned_quota_models,omitempty" yaml:"pinned_quota_models,omitempty" toml:"pinned_quota_models,omitempty"`
	CircuitBreaker    *CircuitBreakerPatch `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty" toml:"circuit_breaker,omitempty"`
}

// ProxyPatch is a partial ProxyConfig.
type ProxyPatch struct {
	Enabled        *bool                `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Port           *int                 `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`
	APIKey         *string              `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key,omitempty"`
	RequestTimeout *int                 `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty" toml:"request_timeout,omitempty"`
	UpstreamProxy  *UpstreamProxyPatch  `json:"upstream_proxy,omitempty" yaml:"upstream_proxy,omitempty" toml:"upstream_proxy,omitempty"`
	DebugLogging   *DebugLoggingPatch   `json:"debug_logging,omitempty" yaml:"debug_logging,omitempty" toml:"debug_logging,omitempty"`
	ThinkingBudget *ThinkingBudgetPatch `json:"thinking_budget,omitempty" yaml:"thinking_budget,omitempty" toml:"thinking_budget,omitempty"`
}

// UpstreamProxyPatch is a partial UpstreamProxyConfig.
type UpstreamProxyPatch struct {
	Enabled *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	URL     *string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
}

// DebugLoggingPatch is a partial DebugLoggingConfig. There is no way to
// clear OutputDir through a patch; disabling debug logging retains it.
type DebugLoggingPatch struct {
	Enabled   *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	OutputDir *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty" toml:"output_dir,omitempty"`
}

// ThinkingBudgetPatch is a partial ThinkingBudgetConfig.
type ThinkingBudgetPatch struct {
	Mode        *string `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	CustomValue *int    `json:"custom_value,omitempty" yaml:"custom_value,omitempty" toml:"custom_value,omitempty"`
}

// WarmupPatch is a partial WarmupConfig.
type WarmupPatch struct {
	Enabled         *bool     `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	MonitoredModels *[]string `json:"monitored_models,omitempty" yaml:"monitored_models,omitempty" toml:"monitored_models,omitempty"`
}

// QuotaProtectionPatch is a partial QuotaProtectionConfig.
type QuotaProtectionPatch struct {
	Enabled             *bool     `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	ThresholdPercentage *int      `json:"threshold_percentage,omitempty" yaml:"threshold_percentage,omitempty" toml:"threshold_percentage,omitempty"`
	MonitoredModels     *[]string `json:"monitored_models,omitempty" yaml:"monitored_models,omitempty" toml:"monitored_models,omitempty"`
}

// PinnedModelsPatch is a partial PinnedModelsConfig.
type PinnedModelsPatch struct {
	Models *[]string `json:"models,omitempty" yaml:"models,omitempty" toml:"models,omitempty"`
}

// CircuitBreakerPatch is a partial CircuitBreakerConfig.
type CircuitBreakerPatch struct {
	Enabled      *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	BackoffSteps *[]int  `json:"backoff_steps,omitempty" yaml:"backoff_steps,omitempty" toml:"backoff_steps,omitempty"`
}

// ApplyTo merges the patch onto cfg. Present fields overwrite; absent
// fields keep the base value. The merge recurses through nested sections.
func (p *Patch) ApplyTo(cfg *Config) {
	if p == nil {
		return
	}
	setIf(&cfg.Language, p.Language)
	setIf(&cfg.Theme, p.Theme)
	setIf(&cfg.AutoRefresh, p.AutoRefresh)
	setIf(&cfg.RefreshInterval, p.RefreshInterval)
	setIf(&cfg.AutoSync, p.AutoSync)
	setIf(&cfg.SyncInterval, p.SyncInterval)
	p.Proxy.applyTo(&cfg.Proxy)
	p.ScheduledWarmup.applyTo(&cfg.ScheduledWarmup)
	p.QuotaProtection.applyTo(&cfg.QuotaProtection)
	p.PinnedQuotaModels.applyTo(&cfg.PinnedQuotaModels)
	p.CircuitBreaker.applyTo(&cfg.CircuitBreaker)
}

func (p *ProxyPatch) applyTo(cfg *ProxyConfig) {
	if p == nil {
		return
	}
	setIf(&cfg.Enabled, p.Enabled)
	setIf(&cfg.Port, p.Port)
	setIf(&cfg.APIKey, p.APIKey)
	setIf(&cfg.RequestTimeout, p.RequestTimeout)
	p.UpstreamProxy.applyTo(&cfg.UpstreamProxy)
	p.DebugLogging.applyTo(&cfg.DebugLogging)
	p.ThinkingBudget.applyTo(&cfg.ThinkingBudget)
}

func (p *UpstreamProxyPatch) applyTo(cfg *UpstreamProxyConfig) {
	if p == nil {
		return
	}
	setIf(&cfg.Enabled, p.Enabled)
	setIf(&cfg.URL, p.URL)
}

func (p *DebugLoggingPatch) applyTo(cfg *DebugLoggingConfig) {
	if p == nil {
		return
	}
	setIf(&cfg.Enabled, p.Enabled)
	if p.OutputDir != nil {
		dir := *p.OutputDir
		cfg.OutputDir = &dir
	}
}

func (p *ThinkingBudgetPatch) applyTo(cfg *ThinkingBudgetConfig) {
	if p == nil {
		return
	}
	setIf(&cfg.Mode, p.Mode)
	setIf(&cfg.CustomValue, p.CustomValue)
}

func (p *WarmupPatch) applyTo(cfg *WarmupConfig) {
	if p == nil {
		return
	}
	setIf(&cfg.Enabled, p.Enabled)
	if p.MonitoredModels != nil {
		cfg.MonitoredModels = cloneSlice(*p.MonitoredModels)
	}
}

func (p *QuotaProtectionPatch) applyTo(cfg *QuotaProtectionConfig) {
	if p == nil {
		return
	}
	setIf(&cfg.Enabled, p.Enabled)
	setIf(&cfg.ThresholdPercentage, p.ThresholdPercentage)
	if p.MonitoredModels != nil {
		cfg.MonitoredModels = cloneSlice(*p.MonitoredModels)
	}
}

func (p *PinnedModelsPatch) applyTo(cfg *PinnedModelsConfig) {
	if p == nil {
		return
	}
	if p.Models != nil {
		cfg.Models = cloneSlice(*p.Models)
	}
}

func (p *CircuitBreakerPatch) applyTo(cfg *CircuitBreakerConfig) {
	if p == nil {
		return
	}
	setIf(&cfg.Enabled, p.Enabled)
	if p.BackoffSteps != nil {
		cfg.BackoffSteps = cloneSlice(*p.BackoffSteps)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// AsPatch converts a complete configuration into a patch with every field
// present. Applying the result to any base reproduces c exactly.
func (c Config) AsPatch() *Patch {
	c = c.Clone()
	return &Patch{
		Language:        &c.Language,
		Theme:           &c.Theme,
		AutoRefresh:     &c.AutoRefresh,
		RefreshInterval: &c.RefreshInterval,
		AutoSync:        &c.AutoSync,
		SyncInterval:    &c.SyncInterval,
		Proxy: &ProxyPatch{
			Enabled:        &c.Proxy.Enabled,
			Port:           &c.Proxy.Port,
			APIKey:         &c.Proxy.APIKey,
			RequestTimeout: &c.Proxy.RequestTimeout,
			UpstreamProxy: &UpstreamProxyPatch{
				Enabled: &c.Proxy.UpstreamProxy.Enabled,
				URL:     &c.Proxy.UpstreamProxy.URL,
			},
			DebugLogging: &DebugLoggingPatch{
				Enabled:   &c.Proxy.DebugLogging.Enabled,
				OutputDir: c.Proxy.DebugLogging.OutputDir,
			},
			ThinkingBudget: &ThinkingBudgetPatch{
				Mode:        &c.Proxy.ThinkingBudget.Mode,
				CustomValue: &c.Proxy.ThinkingBudget.CustomValue,
			},
		},
		ScheduledWarmup: &WarmupPatch{
			Enabled:         &c.ScheduledWarmup.Enabled,
			MonitoredModels: &c.ScheduledWarmup.MonitoredModels,
		},
		QuotaProtection: &QuotaProtectionPatch{
			Enabled:             &c.QuotaProtection.Enabled,
			ThresholdPercentage: &c.QuotaProtection.ThresholdPercentage,
			MonitoredModels:     &c.QuotaProtection.MonitoredModels,
		},
		PinnedQuotaModels: &PinnedModelsPatch{
			Models: &c.PinnedQuotaModels.Models,
		},
		CircuitBreaker: &CircuitBreakerPatch{
			Enabled:      &c.CircuitBreaker.Enabled,
			BackoffSteps: &c.CircuitBreaker.BackoffSteps,
		},
	}
}
