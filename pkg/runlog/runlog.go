// Package runlog implements the per-run non-fatal error/warning collector:
// reconciliation functions push problems here instead of raising
// exceptions, and only genuinely fatal conditions unwind the call stack.
package runlog

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Severity classifies a collected entry.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Entry is one non-fatal problem recorded during a run.
type Entry struct {
	Severity Severity
	Message  string
}

// Collector accumulates Entries for the duration of one run and mirrors
// each one to a structured logger as it arrives.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	log     logr.Logger
}

// New returns an empty Collector that also logs through log.
func New(log logr.Logger) *Collector {
	return &Collector{log: log}
}

// Warnf records a warning-level entry.
func (c *Collector) Warnf(format string, args ...any) {
	c.add(SeverityWarning, fmt.Sprintf(format, args...))
}

// Errorf records an error-level entry.
func (c *Collector) Errorf(format string, args ...any) {
	c.add(SeverityError, fmt.Sprintf(format, args...))
}

func (c *Collector) add(sev Severity, msg string) {
	c.mu.Lock()
	c.entries = append(c.entries, Entry{Severity: sev, Message: msg})
	c.mu.Unlock()

	if sev == SeverityError {
		c.log.Error(fmt.Errorf("%s", msg), "non-fatal run error")
	} else {
		c.log.Info("non-fatal run warning", "message", msg)
	}
}

// Entries returns a snapshot of everything collected so far.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// HasErrors reports whether any SeverityError entry was recorded.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
