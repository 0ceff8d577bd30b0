package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Check validates a configuration for commit. Violations are reported in
// field declaration order so the first entry is the one shown to the user.
// A nil result means the configuration is valid.
func Check(cfg *Config) []*Violation {
	var errs []*Violation
	add := func(field string, rule Rule, msg string, value any) {
		errs = append(errs, &Violation{Field: field, Rule: rule, Message: msg, Value: value})
	}

	if !IsSupportedLanguage(cfg.Language) {
		add("language", RuleEnum, "unrecognized locale code", cfg.Language)
	}
	if !IsTheme(cfg.Theme) {
		add("theme", RuleEnum, "must be light, dark, or system", cfg.Theme)
	}
	if cfg.RefreshInterval < 1 || cfg.RefreshInterval > 60 {
		add("refresh_interval", RuleRange, "must be between 1 and 60 minutes", cfg.RefreshInterval)
	}
	if cfg.SyncInterval < 1 || cfg.SyncInterval > 60 {
		add("sync_interval", RuleRange, "must be between 1 and 60 minutes", cfg.SyncInterval)
	}
	if cfg.Proxy.Port < 1 || cfg.Proxy.Port > 65535 {
		add("proxy.port", RuleRange, "must be a valid TCP port (1-65535)", cfg.Proxy.Port)
	}
	if cfg.Proxy.RequestTimeout <= 0 {
		add("proxy.request_timeout", RuleRange, "must be greater than zero seconds", cfg.Proxy.RequestTimeout)
	}
	if cfg.Proxy.UpstreamProxy.Enabled && strings.TrimSpace(cfg.Proxy.UpstreamProxy.URL) == "" {
		add("proxy.upstream_proxy.url", RuleRequired, "required when the upstream proxy is enabled", cfg.Proxy.UpstreamProxy.URL)
	}
	if !isThinkingMode(cfg.Proxy.ThinkingBudget.Mode) {
		add("proxy.thinking_budget.mode", RuleEnum, "must be auto, fixed, or none", cfg.Proxy.ThinkingBudget.Mode)
	}
	if cfg.Proxy.ThinkingBudget.CustomValue < 0 {
		add("proxy.thinking_budget.custom_value", RuleRange, "must not be negative", cfg.Proxy.ThinkingBudget.CustomValue)
	}
	if dup, ok := firstDuplicate(cfg.ScheduledWarmup.MonitoredModels); ok {
		add("scheduled_warmup.monitored_models", RuleUniqueness, fmt.Sprintf("duplicate entry %q", dup), cfg.ScheduledWarmup.MonitoredModels)
	}
	if cfg.QuotaProtection.ThresholdPercentage < 1 || cfg.QuotaProtection.ThresholdPercentage > 100 {
		add("quota_protection.threshold_percentage", RuleRange, "must be between 1 and 100", cfg.QuotaProtection.ThresholdPercentage)
	}
	if dup, ok := firstDuplicate(cfg.QuotaProtection.MonitoredModels); ok {
		add("quota_protection.monitored_models", RuleUniqueness, fmt.Sprintf("duplicate entry %q", dup), cfg.QuotaProtection.MonitoredModels)
	}
	if field, msg, bad := checkBackoffSteps(cfg.CircuitBreaker.BackoffSteps); msg != "" {
		rule := RuleOrdering
		if strings.Contains(msg, "positive") {
			rule = RuleRange
		}
		add(field, rule, msg, bad)
	}

	return errs
}

// Repair coerces every invalid value to its nearest valid value, in place.
// It never fails: a damaged settings file must not prevent startup. The
// returned list names each correction for logging.
func Repair(cfg *Config) []Correction {
	var repairs []Correction
	fix := func(field string, from, to any) {
		repairs = append(repairs, Correction{Field: field, From: from, To: to})
	}

	if !IsSupportedLanguage(cfg.Language) {
		nearest := NearestLanguage(cfg.Language)
		fix("language", cfg.Language, nearest)
		cfg.Language = nearest
	}
	if !IsTheme(cfg.Theme) {
		fix("theme", cfg.Theme, ThemeSystem)
		cfg.Theme = ThemeSystem
	}
	if v := clamp(cfg.RefreshInterval, 1, 60); v != cfg.RefreshInterval {
		fix("refresh_interval", cfg.RefreshInterval, v)
		cfg.RefreshInterval = v
	}
	if v := clamp(cfg.SyncInterval, 1, 60); v != cfg.SyncInterval {
		fix("sync_interval", cfg.SyncInterval, v)
		cfg.SyncInterval = v
	}
	if v := clamp(cfg.Proxy.Port, 1, 65535); v != cfg.Proxy.Port {
		fix("proxy.port", cfg.Proxy.Port, v)
		cfg.Proxy.Port = v
	}
	if cfg.Proxy.RequestTimeout <= 0 {
		def := Default().Proxy.RequestTimeout
		fix("proxy.request_timeout", cfg.Proxy.RequestTimeout, def)
		cfg.Proxy.RequestTimeout = def
	}
	if trimmed := strings.TrimSpace(cfg.Proxy.UpstreamProxy.URL); trimmed != cfg.Proxy.UpstreamProxy.URL {
		cfg.Proxy.UpstreamProxy.URL = trimmed
	}
	if cfg.Proxy.UpstreamProxy.Enabled && cfg.Proxy.UpstreamProxy.URL == "" {
		// Nearest valid state for an enabled upstream with no URL is off.
		fix("proxy.upstream_proxy.enabled", true, false)
		cfg.Proxy.UpstreamProxy.Enabled = false
	}
	if !isThinkingMode(cfg.Proxy.ThinkingBudget.Mode) {
		fix("proxy.thinking_budget.mode", cfg.Proxy.ThinkingBudget.Mode, ThinkingModeAuto)
		cfg.Proxy.ThinkingBudget.Mode = ThinkingModeAuto
	}
	if cfg.Proxy.ThinkingBudget.CustomValue < 0 {
		fix("proxy.thinking_budget.custom_value", cfg.Proxy.ThinkingBudget.CustomValue, 0)
		cfg.Proxy.ThinkingBudget.CustomValue = 0
	}
	if deduped := dedupe(cfg.ScheduledWarmup.MonitoredModels); len(deduped) != len(cfg.ScheduledWarmup.MonitoredModels) {
		fix("scheduled_warmup.monitored_models", cfg.ScheduledWarmup.MonitoredModels, deduped)
		cfg.ScheduledWarmup.MonitoredModels = deduped
	}
	if v := clamp(cfg.QuotaProtection.ThresholdPercentage, 1, 100); v != cfg.QuotaProtection.ThresholdPercentage {
		fix("quota_protection.threshold_percentage", cfg.QuotaProtection.ThresholdPercentage, v)
		cfg.QuotaProtection.ThresholdPercentage = v
	}
	if deduped := dedupe(cfg.QuotaProtection.MonitoredModels); len(deduped) != len(cfg.QuotaProtection.MonitoredModels) {
		fix("quota_protection.monitored_models", cfg.QuotaProtection.MonitoredModels, deduped)
		cfg.QuotaProtection.MonitoredModels = deduped
	}
	if repaired, changed := repairBackoffSteps(cfg.CircuitBreaker.BackoffSteps); changed {
		fix("circuit_breaker.backoff_steps", cfg.CircuitBreaker.BackoffSteps, repaired)
		cfg.CircuitBreaker.BackoffSteps = repaired
	}

	return repairs
}

// IsTheme reports whether v is a recognized theme name.
func IsTheme(v string) bool {
	return v == ThemeLight || v == ThemeDark || v == ThemeSystem
}

func isThinkingMode(v string) bool {
	return v == ThinkingModeAuto || v == ThinkingModeFixed || v == ThinkingModeNone
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// firstDuplicate returns the first value that appears more than once.
func firstDuplicate(items []string) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			return item, true
		}
		seen[item] = struct{}{}
	}
	return "", false
}

// dedupe drops repeated entries, keeping first occurrences in order.
func dedupe(items []string) []string {
	if items == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// checkBackoffSteps validates positivity and ordering. An empty sequence
// is valid (the circuit breaker simply has no delay schedule).
func checkBackoffSteps(steps []int) (field, msg string, bad any) {
	for _, s := range steps {
		if s <= 0 {
			return "circuit_breaker.backoff_steps", "every step must be a positive number of seconds", steps
		}
	}
	for i := 1; i < len(steps); i++ {
		if steps[i] < steps[i-1] {
			return "circuit_breaker.backoff_steps", "steps must be sorted in ascending order", steps
		}
	}
	return "", "", nil
}

// repairBackoffSteps drops non-positive steps and sorts the remainder. An
// empty result falls back to the default schedule.
func repairBackoffSteps(steps []int) ([]int, bool) {
	if _, msg, _ := checkBackoffSteps(steps); msg == "" {
		return steps, false
	}
	out := make([]int, 0, len(steps))
	for _, s := range steps {
		if s > 0 {
			out = append(out, s)
		}
	}
	sort.Ints(out)
	if len(out) == 0 {
		out = cloneSlice(DefaultBackoffSteps)
	}
	return out, true
}
