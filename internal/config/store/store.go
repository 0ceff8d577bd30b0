// Package store holds the authoritative in-memory configuration snapshot
// and coordinates the two write paths: the validated commit of a full
// candidate, and the immediate apply of the small set of fields that take
// effect without an explicit save.
package store

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/notify"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/persist"
	"github.com/zhoudashuaibi/Antigravity-Manager/internal/config/schema"
)

// ImmediateFields are the fields ApplyImmediate accepts. They have no
// cross-field invariants, so they skip commit validation and take effect
// ahead of an explicit save.
var ImmediateFields = []string{"language", "theme"}

// Store owns the committed configuration snapshot.
//
// Reads return deep copies; the snapshot is never handed out as a mutable
// alias. Commits are serialized: a second commit waits until the first
// one's validation and persistence sequence completes. Immediate applies
// of the same field serialize too, with the later write winning.
type Store struct {
	mu      sync.RWMutex // guards current
	current schema.Config

	commitMu sync.Mutex // serializes Commit
	applyMu  sync.Mutex // serializes ApplyImmediate

	adapter  persist.Adapter
	notifier *notify.Notifier
	log      logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for commit and apply reporting.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Store holding initial as its committed snapshot.
func New(initial schema.Config, adapter persist.Adapter, notifier *notify.Notifier, opts ...Option) *Store {
	s := &Store{
		current:  initial.Clone(),
		adapter:  adapter,
		notifier: notifier,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns a deep copy of the committed snapshot.
func (s *Store) Current() schema.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Stage deep-merges patch onto the committed snapshot and returns the
// resulting candidate. Nothing is committed; nested sections merge per
// field, so siblings of an edited field keep their committed values.
func (s *Store) Stage(patch *schema.Patch) schema.Config {
	candidate := s.Current()
	patch.ApplyTo(&candidate)
	return candidate
}

// Commit validates candidate and makes it the committed snapshot.
//
// auto_refresh is forced true regardless of the candidate's value;
// downstream subsystems depend on it unconditionally. On a validation
// violation the commit is rejected with the first violation in
// field-declaration order and the snapshot is unchanged. On a save
// failure the snapshot is also unchanged; saves are idempotent and safe
// to retry.
//
// Language and theme observers fire before the disk write resolves;
// observers of other fields fire after the new snapshot is in place.
func (s *Store) Commit(candidate schema.Config) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	candidate.AutoRefresh = true

	if violations := schema.Check(&candidate); len(violations) > 0 {
		s.log.WithField("field", violations[0].Field).Warn("commit rejected")
		return violations[0]
	}

	old := s.Current()
	diffs := schema.Diff(old, candidate)

	immediate, deferred := splitDiffs(diffs)
	for _, d := range immediate {
		s.notifier.Notify(notify.Change{
			Field:  d.Path,
			Old:    d.Old,
			New:    d.New,
			Source: notify.SourceCommit,
		})
	}

	if err := s.adapter.Save(candidate); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	s.mu.Lock()
	s.current = candidate.Clone()
	s.mu.Unlock()

	for _, d := range deferred {
		s.notifier.Notify(notify.Change{
			Field:  d.Path,
			Old:    d.Old,
			New:    d.New,
			Source: notify.SourceCommit,
		})
	}

	if len(diffs) > 0 {
		s.log.WithField("fields", len(diffs)).Info("settings committed")
	}
	return nil
}

// ApplyImmediate sets one allow-listed field in the committed snapshot
// and persists just that field, independent of any staged-but-uncommitted
// edits. Observers fire before the disk write resolves. An unknown
// language code is mapped to the nearest supported one.
func (s *Store) ApplyImmediate(field string, value string) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	var old string
	switch field {
	case "language":
		value = schema.NearestLanguage(value)
	case "theme":
		if !schema.IsTheme(value) {
			return &schema.Violation{
				Field:   "theme",
				Rule:    schema.RuleEnum,
				Message: fmt.Sprintf("unknown theme %q", value),
				Value:   value,
			}
		}
	default:
		return fmt.Errorf("field %q does not support immediate apply", field)
	}

	s.mu.Lock()
	switch field {
	case "language":
		old, s.current.Language = s.current.Language, value
	case "theme":
		old, s.current.Theme = s.current.Theme, value
	}
	snapshot := s.current.Clone()
	s.mu.Unlock()

	if old != value {
		s.notifier.Notify(notify.Change{
			Field:  field,
			Old:    old,
			New:    value,
			Source: notify.SourceLiveApply,
		})
	}

	if err := s.adapter.SaveField(snapshot, field, value); err != nil {
		return fmt.Errorf("saving %s: %w", field, err)
	}
	return nil
}

// Reset swaps the committed snapshot without notifying observers. Used
// for the initial load, before observers care about transitions.
func (s *Store) Reset(cfg schema.Config) {
	s.mu.Lock()
	s.current = cfg.Clone()
	s.mu.Unlock()
}

// Replace swaps the committed snapshot without validation or
// persistence. Used when the settings file changed on disk and the
// reloaded tree is already repaired. Observers receive the field-level
// differences.
func (s *Store) Replace(cfg schema.Config, source notify.Source) {
	old := s.Current()

	s.mu.Lock()
	s.current = cfg.Clone()
	s.mu.Unlock()

	for _, d := range schema.Diff(old, cfg) {
		s.notifier.Notify(notify.Change{
			Field:  d.Path,
			Old:    d.Old,
			New:    d.New,
			Source: source,
		})
	}
}

// splitDiffs separates changes to immediate-apply fields from the rest.
func splitDiffs(diffs []schema.FieldDiff) (immediate, deferred []schema.FieldDiff) {
	for _, d := range diffs {
		if isImmediateField(d.Path) {
			immediate = append(immediate, d)
		} else {
			deferred = append(deferred, d)
		}
	}
	return immediate, deferred
}

func isImmediateField(path string) bool {
	for _, f := range ImmediateFields {
		if f == path {
			return true
		}
	}
	return false
}
