// Package rules holds the active expansion rule set.
//
// A Rule maps a literal trigger string (e.g. ";email") to the replacement
// text typed in its place. Rules are replaced wholesale by the control
// surface; the matcher iterates over point-in-time snapshots so keystroke
// delivery never blocks on a rule update.
package rules

import "sync"

// Rule is a single trigger/replacement pair. Triggers are matched literally;
// the first rule in iteration order wins on ties.
type Rule struct {
	Trigger     string `json:"trigger" yaml:"trigger" toml:"trigger"`
	Replacement string `json:"replacement" yaml:"replacement" toml:"replacement"`
}

// Store is the shared, read-mostly rule set. The lock is held only for the
// duration of a clone or replace, never during matching.
type Store struct {
	mu    sync.Mutex
	rules []Rule
}

// NewStore returns an empty rule store.
func NewStore() *Store {
	return &Store{}
}

// ReplaceAll overwrites the active rule set. The input slice is cloned so
// callers can keep mutating their copy.
func (s *Store) ReplaceAll(rs []Rule) {
	clone := make([]Rule, len(rs))
	copy(clone, rs)

	s.mu.Lock()
	s.rules = clone
	s.mu.Unlock()
}

// Snapshot returns a consistent point-in-time copy of the rule set.
func (s *Store) Snapshot() []Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := make([]Rule, len(s.rules))
	copy(clone, s.rules)
	return clone
}

// Len returns the number of active rules.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rules)
}
