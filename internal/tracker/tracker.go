// Package tracker dispatches newly parsed ephemeris tables to observers that
// registered interest in specific columns, for downstream pointing logic.
package tracker

import (
	"log/slog"
	"sync"

	"github.com/indigo-pc/sunspot/internal/ephemeris"
)

// Observer receives the full table plus the value slices for the columns the
// subscription named, keyed by column title.
type Observer func(table *ephemeris.Table, columns map[string][]string)

type subscription struct {
	id     int
	titles []string
	fn     Observer
}

// Tracker holds column observers and notifies them once per new table.
// Dispatch is sequential, in subscription order, on the caller's goroutine.
type Tracker struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   []subscription
}

// New creates an empty Tracker.
func New(logger *slog.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// Subscribe registers an observer for the given column titles and returns a
// subscription id for Unsubscribe.
func (t *Tracker) Subscribe(fn Observer, titles ...string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.subs = append(t.subs, subscription{id: t.nextID, titles: titles, fn: fn})
	return t.nextID
}

// Unsubscribe removes the subscription with the given id. Unknown ids are
// ignored.
func (t *Tracker) Unsubscribe(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.id == id {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return
		}
	}
}

// Notify invokes every observer whose columns are all present in the table.
// An observer naming a column the table lacks is skipped with a warning; the
// remaining observers still run.
func (t *Tracker) Notify(table *ephemeris.Table) {
	t.mu.Lock()
	subs := make([]subscription, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, s := range subs {
		columns := make(map[string][]string, len(s.titles))
		ok := true
		for _, title := range s.titles {
			values, err := table.ValuesFor(title)
			if err != nil {
				t.logger.Warn("skipping tracker observer, column not in table",
					"subscription_id", s.id,
					"column", title,
				)
				ok = false
				break
			}
			columns[title] = values
		}
		if ok {
			s.fn(table, columns)
		}
	}
}
