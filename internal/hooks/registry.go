// Package hooks provides an injectable registry of named extension points.
// Filters transform a value; actions write output for a host page.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// DefaultPriority is the priority hosts and plugins use unless ordering matters.
const DefaultPriority = 20

// FilterFunc transforms the value passed through a filter chain.
type FilterFunc func(ctx context.Context, value any) any

// ActionFunc renders output for an extension point into w.
type ActionFunc func(ctx context.Context, w io.Writer, arg any) error

type filterEntry struct {
	priority int
	fn       FilterFunc
}

type actionEntry struct {
	priority int
	fn       ActionFunc
}

// Registry holds filter and action callbacks by extension point name. It is
// safe for concurrent registration and firing.
type Registry struct {
	mu      sync.RWMutex
	filters map[string][]filterEntry
	actions map[string][]actionEntry
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry. Failing actions are logged to logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		filters: make(map[string][]filterEntry),
		actions: make(map[string][]actionEntry),
		logger:  logger,
	}
}

// AddFilter registers fn on the named filter. Lower priorities run first;
// ties run in registration order.
func (r *Registry) AddFilter(name string, priority int, fn FilterFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Readers hold the previous slice; never sort it in place.
	old := r.filters[name]
	entries := make([]filterEntry, 0, len(old)+1)
	entries = append(entries, old...)
	entries = append(entries, filterEntry{priority: priority, fn: fn})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].priority < entries[j].priority })
	r.filters[name] = entries
}

// AddAction registers fn on the named action with the same ordering rules as
// AddFilter.
func (r *Registry) AddAction(name string, priority int, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.actions[name]
	entries := make([]actionEntry, 0, len(old)+1)
	entries = append(entries, old...)
	entries = append(entries, actionEntry{priority: priority, fn: fn})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].priority < entries[j].priority })
	r.actions[name] = entries
}

// ApplyFilters passes value through every filter registered on name and
// returns the result. With no filters the value is returned as is.
func (r *Registry) ApplyFilters(ctx context.Context, name string, value any) any {
	r.mu.RLock()
	entries := r.filters[name]
	r.mu.RUnlock()

	for _, e := range entries {
		value = e.fn(ctx, value)
	}
	return value
}

// DoAction runs every action registered on name. A failing action is logged
// and does not prevent the remaining actions from running; all failures are
// returned joined.
func (r *Registry) DoAction(ctx context.Context, name string, w io.Writer, arg any) error {
	r.mu.RLock()
	entries := r.actions[name]
	r.mu.RUnlock()

	var errs []error
	for _, e := range entries {
		if err := r.runAction(ctx, name, e.fn, w, arg); err != nil {
			r.logger.Error("hook action failed", "hook", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// runAction calls fn, turning a panic into an error.
func (r *Registry) runAction(ctx context.Context, name string, fn ActionFunc, w io.Writer, arg any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("hook %s panicked: %v", name, rec)
		}
	}()
	return fn(ctx, w, arg)
}

// HasAction reports whether any action is registered on name.
func (r *Registry) HasAction(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions[name]) > 0
}

// Extension points fired by the helpdesk host.
const (
	// Stylesheets filters the []string of stylesheet URLs of a page.
	Stylesheets = "stylesheets"
	// Javascripts filters the []string of script URLs of a page.
	Javascripts = "javascripts"
	// CustomerProfileExtra renders below a customer's profile; arg is the customer.
	CustomerProfileExtra = "customer.profile.extra"
	// MailboxSettingsMenu renders entries of a mailbox's settings menu; arg is the mailbox.
	MailboxSettingsMenu = "mailboxes.settings.menu"
)
