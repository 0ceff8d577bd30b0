// Package config is the configuration core of Antigravity Manager.
//
// The configuration is a nested, partially optional settings tree: proxy
// behavior, quota protection, circuit breaker, scheduled warm-up, debug
// logging and thinking-budget policy. The package loads it with
// forward-compatible defaults, validates edits before they are
// committed, merge-patches single-field edits from the UI, and persists
// atomically so a crash never leaves a corrupt or half-written file.
//
// Structure:
//
//   - schema: the typed Configuration and Patch trees, defaults, the
//     two-mode validator (blocking checks at commit, repairs at load)
//     and value diffing.
//   - store: the authoritative snapshot with the two write paths, the
//     validated full commit and the immediate apply of language/theme.
//   - persist: durable load/save with atomic replace and unknown-key
//     preservation in the canonical JSON document.
//   - notify: synchronous per-field change notification.
//   - watcher: reload on out-of-band edits of the settings file.
//
// Manager ties these together. Typical use:
//
//	m := config.New(config.WithDataDir(dir))
//	if err := m.Load(ctx); err != nil { ... }
//	defer m.Close()
//
//	candidate := m.Stage(patch)
//	if err := m.Commit(candidate); err != nil { ... }
package config
