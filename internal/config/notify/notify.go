// Package notify delivers settings change events to subscribed components.
//
// Delivery is synchronous: observers run on the caller's goroutine before
// the triggering save is considered resolved, so a listener such as the
// proxy runtime observes the new value no later than the disk does.
// Events are emitted only for fields whose value actually changed.
package notify

import (
	"sync"
)

// Source identifies what produced a settings change.
type Source string

const (
	// SourceCommit marks changes applied by a validated settings commit.
	SourceCommit Source = "commit"

	// SourceLiveApply marks changes applied immediately from the UI,
	// bypassing the staged candidate flow.
	SourceLiveApply Source = "live-apply"

	// SourceReload marks changes picked up from an external edit of the
	// settings file.
	SourceReload Source = "reload"
)

// Change is one field-level settings change event.
type Change struct {
	// Field is the dot-separated path of the changed field, for example
	// "proxy.port". Empty for whole-configuration reload events.
	Field string

	// Old is the value before the change.
	Old any

	// New is the value after the change.
	New any

	// Source identifies what produced the change.
	Source Source
}

// Observer is called for each matching settings change.
type Observer func(change Change)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages settings change subscriptions and synchronous
// delivery.
type Notifier struct {
	mu sync.RWMutex

	// Observers for every change
	globalObservers map[uint64]Observer

	// Observers keyed by field path
	fieldObservers map[string]map[uint64]Observer

	nextID uint64
	closed bool
}

// New creates a Notifier with no subscriptions.
func New() *Notifier {
	return &Notifier{
		globalObservers: make(map[uint64]Observer),
		fieldObservers:  make(map[string]map[uint64]Observer),
	}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.globalObservers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// SubscribeField registers an observer for one field path. The observer
// fires on exact matches and on changes beneath the path: subscribing to
// "proxy" receives changes to "proxy.port".
func (n *Notifier) SubscribeField(field string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.fieldObservers[field] == nil {
		n.fieldObservers[field] = make(map[uint64]Observer)
	}
	n.fieldObservers[field][id] = observer

	return &Subscription{id: id, notifier: n}
}

// Notify delivers a change to every matching observer on the calling
// goroutine, returning after all observers have run.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()

	if n.closed {
		n.mu.RUnlock()
		return
	}

	var observers []Observer
	for _, obs := range n.globalObservers {
		observers = append(observers, obs)
	}
	if change.Field != "" {
		for field, fieldObs := range n.fieldObservers {
			if field == change.Field || isAncestorField(field, change.Field) {
				for _, obs := range fieldObs {
					observers = append(observers, obs)
				}
			}
		}
	} else {
		// Reload touches potentially everything
		for _, fieldObs := range n.fieldObservers {
			for _, obs := range fieldObs {
				observers = append(observers, obs)
			}
		}
	}

	n.mu.RUnlock()

	// Observers run outside the lock so they may subscribe or
	// unsubscribe without deadlocking.
	for _, obs := range observers {
		obs(change)
	}
}

// NotifyReload signals that the whole configuration was replaced.
func (n *Notifier) NotifyReload(source Source) {
	n.Notify(Change{Source: source})
}

// Close stops delivery. Notify calls after Close are dropped. Safe to
// call more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.globalObservers, id)
	for field, observers := range n.fieldObservers {
		delete(observers, id)
		if len(observers) == 0 {
			delete(n.fieldObservers, field)
		}
	}
}

// isAncestorField reports whether parent is a strict ancestor of child,
// e.g. "proxy" and "proxy.port".
func isAncestorField(parent, child string) bool {
	if len(parent) >= len(child) {
		return false
	}
	return child[:len(parent)] == parent && child[len(parent)] == '.'
}

// Batch collects field changes so a commit can deliver them as one
// group after the new snapshot is in place.
type Batch struct {
	notifier *Notifier
	changes  []Change
	mu       sync.Mutex
}

// NewBatch creates an empty batch.
func (n *Notifier) NewBatch() *Batch {
	return &Batch{notifier: n}
}

// Add appends a change to the batch.
func (b *Batch) Add(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
}

// Set appends a field change to the batch.
func (b *Batch) Set(field string, old, new any, source Source) {
	b.Add(Change{Field: field, Old: old, New: new, Source: source})
}

// Commit delivers all batched changes in order and empties the batch.
func (b *Batch) Commit() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.mu.Unlock()

	for _, change := range changes {
		b.notifier.Notify(change)
	}
}

// Discard empties the batch without delivering anything.
func (b *Batch) Discard() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = nil
}

// Len returns the number of pending changes.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}
