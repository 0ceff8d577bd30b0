package schema

import (
	"reflect"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
		wantRule  Rule
	}{
		{
			name:   "valid defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:      "unknown language",
			mutate:    func(cfg *Config) { cfg.Language = "tlh" },
			wantField: "language",
			wantRule:  RuleEnum,
		},
		{
			name:      "unknown theme",
			mutate:    func(cfg *Config) { cfg.Theme = "solarized" },
			wantField: "theme",
			wantRule:  RuleEnum,
		},
		{
			name:      "refresh interval too low",
			mutate:    func(cfg *Config) { cfg.RefreshInterval = 0 },
			wantField: "refresh_interval",
			wantRule:  RuleRange,
		},
		{
			name:      "refresh interval too high",
			mutate:    func(cfg *Config) { cfg.RefreshInterval = 61 },
			wantField: "refresh_interval",
			wantRule:  RuleRange,
		},
		{
			name:      "port zero",
			mutate:    func(cfg *Config) { cfg.Proxy.Port = 0 },
			wantField: "proxy.port",
			wantRule:  RuleRange,
		},
		{
			name:      "port above range",
			mutate:    func(cfg *Config) { cfg.Proxy.Port = 70000 },
			wantField: "proxy.port",
			wantRule:  RuleRange,
		},
		{
			name:      "request timeout zero",
			mutate:    func(cfg *Config) { cfg.Proxy.RequestTimeout = 0 },
			wantField: "proxy.request_timeout",
			wantRule:  RuleRange,
		},
		{
			name: "upstream enabled with empty url",
			mutate: func(cfg *Config) {
				cfg.Proxy.UpstreamProxy.Enabled = true
				cfg.Proxy.UpstreamProxy.URL = ""
			},
			wantField: "proxy.upstream_proxy.url",
			wantRule:  RuleRequired,
		},
		{
			name: "upstream enabled with whitespace url",
			mutate: func(cfg *Config) {
				cfg.Proxy.UpstreamProxy.Enabled = true
				cfg.Proxy.UpstreamProxy.URL = "   "
			},
			wantField: "proxy.upstream_proxy.url",
			wantRule:  RuleRequired,
		},
		{
			name: "upstream disabled with empty url is fine",
			mutate: func(cfg *Config) {
				cfg.Proxy.UpstreamProxy.Enabled = false
				cfg.Proxy.UpstreamProxy.URL = ""
			},
		},
		{
			name:      "bad thinking mode",
			mutate:    func(cfg *Config) { cfg.Proxy.ThinkingBudget.Mode = "turbo" },
			wantField: "proxy.thinking_budget.mode",
			wantRule:  RuleEnum,
		},
		{
			name:      "negative thinking budget",
			mutate:    func(cfg *Config) { cfg.Proxy.ThinkingBudget.CustomValue = -1 },
			wantField: "proxy.thinking_budget.custom_value",
			wantRule:  RuleRange,
		},
		{
			name: "duplicate warmup models",
			mutate: func(cfg *Config) {
				cfg.ScheduledWarmup.MonitoredModels = []string{"a", "b", "a"}
			},
			wantField: "scheduled_warmup.monitored_models",
			wantRule:  RuleUniqueness,
		},
		{
			name:      "threshold zero",
			mutate:    func(cfg *Config) { cfg.QuotaProtection.ThresholdPercentage = 0 },
			wantField: "quota_protection.threshold_percentage",
			wantRule:  RuleRange,
		},
		{
			name:      "threshold above 100",
			mutate:    func(cfg *Config) { cfg.QuotaProtection.ThresholdPercentage = 150 },
			wantField: "quota_protection.threshold_percentage",
			wantRule:  RuleRange,
		},
		{
			name:   "threshold in range",
			mutate: func(cfg *Config) { cfg.QuotaProtection.ThresholdPercentage = 10 },
		},
		{
			name:      "unsorted backoff steps",
			mutate:    func(cfg *Config) { cfg.CircuitBreaker.BackoffSteps = []int{60, 30, 120} },
			wantField: "circuit_breaker.backoff_steps",
			wantRule:  RuleOrdering,
		},
		{
			name:      "non-positive backoff step",
			mutate:    func(cfg *Config) { cfg.CircuitBreaker.BackoffSteps = []int{0, 30} },
			wantField: "circuit_breaker.backoff_steps",
			wantRule:  RuleRange,
		},
		{
			name:   "sorted backoff steps",
			mutate: func(cfg *Config) { cfg.CircuitBreaker.BackoffSteps = []int{30, 60, 120, 300, 600} },
		},
		{
			name:   "equal adjacent backoff steps allowed",
			mutate: func(cfg *Config) { cfg.CircuitBreaker.BackoffSteps = []int{30, 30, 60} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			errs := Check(&cfg)
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("unexpected violation: %v", errs[0])
				}
				return
			}
			if len(errs) == 0 {
				t.Fatal("expected a violation, got none")
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", errs[0].Field, tt.wantField)
			}
			if errs[0].Rule != tt.wantRule {
				t.Errorf("rule = %v, want %v", errs[0].Rule, tt.wantRule)
			}
		})
	}
}

func TestCheck_DeclarationOrder(t *testing.T) {
	cfg := Default()
	cfg.Theme = "solarized"
	cfg.Proxy.Port = 0
	cfg.QuotaProtection.ThresholdPercentage = 0

	errs := Check(&cfg)
	if len(errs) != 3 {
		t.Fatalf("expected 3 violations, got %d", len(errs))
	}
	want := []string{"theme", "proxy.port", "quota_protection.threshold_percentage"}
	for i, field := range want {
		if errs[i].Field != field {
			t.Errorf("violation %d = %q, want %q", i, errs[i].Field, field)
		}
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		check  func(t *testing.T, cfg Config, repairs []Correction)
	}{
		{
			name:   "valid config untouched",
			mutate: func(cfg *Config) {},
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if len(repairs) != 0 {
					t.Errorf("unexpected repairs: %v", repairs)
				}
			},
		},
		{
			name:   "threshold clamped up",
			mutate: func(cfg *Config) { cfg.QuotaProtection.ThresholdPercentage = 0 },
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if cfg.QuotaProtection.ThresholdPercentage != 1 {
					t.Errorf("threshold = %d, want 1", cfg.QuotaProtection.ThresholdPercentage)
				}
			},
		},
		{
			name:   "threshold clamped down",
			mutate: func(cfg *Config) { cfg.QuotaProtection.ThresholdPercentage = 150 },
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if cfg.QuotaProtection.ThresholdPercentage != 100 {
					t.Errorf("threshold = %d, want 100", cfg.QuotaProtection.ThresholdPercentage)
				}
			},
		},
		{
			name:   "unsorted backoff steps sorted",
			mutate: func(cfg *Config) { cfg.CircuitBreaker.BackoffSteps = []int{60, 30, 120} },
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if !reflect.DeepEqual(cfg.CircuitBreaker.BackoffSteps, []int{30, 60, 120}) {
					t.Errorf("steps = %v", cfg.CircuitBreaker.BackoffSteps)
				}
			},
		},
		{
			name:   "non-positive steps dropped",
			mutate: func(cfg *Config) { cfg.CircuitBreaker.BackoffSteps = []int{-5, 0, 60, 30} },
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if !reflect.DeepEqual(cfg.CircuitBreaker.BackoffSteps, []int{30, 60}) {
					t.Errorf("steps = %v", cfg.CircuitBreaker.BackoffSteps)
				}
			},
		},
		{
			name:   "all steps invalid falls back to defaults",
			mutate: func(cfg *Config) { cfg.CircuitBreaker.BackoffSteps = []int{0} },
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if !reflect.DeepEqual(cfg.CircuitBreaker.BackoffSteps, DefaultBackoffSteps) {
					t.Errorf("steps = %v, want defaults", cfg.CircuitBreaker.BackoffSteps)
				}
			},
		},
		{
			name: "enabled upstream without url disabled",
			mutate: func(cfg *Config) {
				cfg.Proxy.UpstreamProxy.Enabled = true
				cfg.Proxy.UpstreamProxy.URL = "  "
			},
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if cfg.Proxy.UpstreamProxy.Enabled {
					t.Error("upstream proxy left enabled with no url")
				}
			},
		},
		{
			name:   "legacy bare language mapped to nearest",
			mutate: func(cfg *Config) { cfg.Language = "zh" },
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if cfg.Language != "zh-CN" {
					t.Errorf("language = %q, want zh-CN", cfg.Language)
				}
			},
		},
		{
			name:   "gibberish language falls back to default",
			mutate: func(cfg *Config) { cfg.Language = "???" },
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if cfg.Language != DefaultLanguage {
					t.Errorf("language = %q, want %q", cfg.Language, DefaultLanguage)
				}
			},
		},
		{
			name: "duplicate monitored models deduped in order",
			mutate: func(cfg *Config) {
				cfg.QuotaProtection.MonitoredModels = []string{"b", "a", "b", "a"}
			},
			check: func(t *testing.T, cfg Config, repairs []Correction) {
				if !reflect.DeepEqual(cfg.QuotaProtection.MonitoredModels, []string{"b", "a"}) {
					t.Errorf("models = %v", cfg.QuotaProtection.MonitoredModels)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			repairs := Repair(&cfg)
			if errs := Check(&cfg); len(errs) != 0 {
				t.Fatalf("config still invalid after repair: %v", errs[0])
			}
			tt.check(t, cfg, repairs)
		})
	}
}
