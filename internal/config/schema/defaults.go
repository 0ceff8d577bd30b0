package schema

// DefaultPinnedModels seeds the quota dashboard model list for fresh
// installs and for legacy files that predate the pinned_quota_models
// section.
var DefaultPinnedModels = []string{
	"gemini-3-pro-preview",
	"gemini-3-pro-thinking",
	"claude-sonnet-4-5",
	"claude-sonnet-4-5-thinking",
}

// DefaultBackoffSteps is the circuit breaker wait sequence in seconds.
var DefaultBackoffSteps = []int{30, 60, 120, 300, 600}

// Default returns a fully populated configuration with every field at its
// default value.
func Default() Config {
	return Config{
		Language:        DefaultLanguage,
		Theme:           ThemeSystem,
		AutoRefresh:     true,
		RefreshInterval: 5,
		AutoSync:        false,
		SyncInterval:    10,
		Proxy: ProxyConfig{
			Enabled:        false,
			Port:           8045,
			APIKey:         "",
			RequestTimeout: 300,
			UpstreamProxy:  UpstreamProxyConfig{},
			DebugLogging:   DebugLoggingConfig{},
			ThinkingBudget: ThinkingBudgetConfig{Mode: ThinkingModeAuto},
		},
		ScheduledWarmup: WarmupConfig{
			MonitoredModels: []string{},
		},
		QuotaProtection: QuotaProtectionConfig{
			ThresholdPercentage: 10,
			MonitoredModels:     []string{},
		},
		PinnedQuotaModels: PinnedModelsConfig{
			Models: cloneSlice(DefaultPinnedModels),
		},
		CircuitBreaker: CircuitBreakerConfig{
			BackoffSteps: cloneSlice(DefaultBackoffSteps),
		},
	}
}

// FillDefaults builds a complete configuration from a possibly incomplete
// one. Fields absent from the patch take their default; fields present in
// the patch are preserved verbatim, valid or not (Repair handles invalid
// values on load). FillDefaults(AsPatch(FillDefaults(p))) equals
// FillDefaults(p) for any p.
func FillDefaults(p *Patch) Config {
	cfg := Default()
	p.ApplyTo(&cfg)
	return cfg
}
