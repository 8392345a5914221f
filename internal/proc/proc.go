// Package proc enumerates running processes and answers liveness queries by
// executable name.
package proc

import "strings"

// Entry is one row of a process snapshot.
type Entry struct {
	PID  uint32
	Name string
}

// Watcher refreshes a process table and matches executable names against a
// case-insensitive substring. A Watcher is not safe for concurrent use;
// every consumer that needs one concurrently holds its own instance.
type Watcher struct {
	entries []Entry
}

// NewWatcher returns an empty watcher. The table is filled on the first
// Snapshot.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Snapshot refreshes the internal process table.
func (w *Watcher) Snapshot() error {
	entries, err := listProcesses()
	if err != nil {
		return err
	}
	w.entries = entries
	return nil
}

// FindFirst takes a fresh snapshot and returns the id of the first process
// whose executable name contains name. Enumeration order is OS-defined and
// not stable across snapshots.
func (w *Watcher) FindFirst(name string) (uint32, bool) {
	if err := w.Snapshot(); err != nil {
		return 0, false
	}
	for _, e := range w.entries {
		if matchesName(e.Name, name) {
			return e.PID, true
		}
	}
	return 0, false
}

// IsAlive takes a fresh snapshot and reports whether any process matches.
func (w *Watcher) IsAlive(name string) bool {
	_, ok := w.FindFirst(name)
	return ok
}

// matchesName reports whether the executable name contains the query,
// ignoring case.
func matchesName(exe, query string) bool {
	return strings.Contains(strings.ToLower(exe), strings.ToLower(query))
}
