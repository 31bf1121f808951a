// Package task drives calendar synchronization. A Task holds a deduplicated
// set of work items, resolves each to a generator variant, and applies the
// item's action against the calendar store in deterministic name order.
package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mlindgren/suncal/pkg/astro"
	"github.com/mlindgren/suncal/pkg/calstore"
	"github.com/mlindgren/suncal/pkg/model"
	"github.com/mlindgren/suncal/pkg/prefs"
	"github.com/mlindgren/suncal/pkg/window"
)

const (
	msgClearing  = "Clearing calendars"
	msgUpdating  = "Updating calendars"
	msgReminders = "reminders"
)

// Config carries everything a Task needs to run.
type Config struct {
	Store   calstore.Adapter
	Source  astro.Source
	Prefs   *prefs.Store
	Factory Factory

	// Calendars lists every known calendar name; the clear-all phase
	// iterates it so disabled calendars are removed too.
	Calendars []string

	// ClearAll removes every known calendar before processing items.
	ClearAll bool

	// Progress receives paired (outer, inner) updates. Optional.
	Progress model.ProgressFunc

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Task is a single synchronization run. Not safe for concurrent use.
type Task struct {
	cfg       Config
	items     map[string]model.TaskItem
	lastError string
}

func New(cfg Config) *Task {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Task{cfg: cfg, items: make(map[string]model.TaskItem)}
}

// AddItems merges items into the task's work set. A later item for the same
// calendar replaces the earlier one.
func (t *Task) AddItems(items ...model.TaskItem) {
	for _, item := range items {
		t.items[item.Calendar] = item
	}
}

// LastError returns the message of the most recent failure, or "".
func (t *Task) LastError() string { return t.lastError }

func (t *Task) publish(outer, inner *model.Progress) {
	if t.cfg.Progress != nil {
		t.cfg.Progress(outer, inner)
	}
}

func (t *Task) fail(format string, args ...any) {
	t.lastError = fmt.Sprintf(format, args...)
}

// env builds the generator environment for this run.
func (t *Task) env(name, lat, lon, alt string) *Env {
	return &Env{
		Store:        t.cfg.Store,
		Source:       t.cfg.Source,
		Prefs:        t.cfg.Prefs,
		LocationName: name,
		Latitude:     lat,
		Longitude:    lon,
		Altitude:     alt,
		Publish:      t.publish,
		CreateReminders: func(ctx context.Context, calendar string, outer *model.Progress) error {
			return t.createCalendarReminders(ctx, calendar, outer)
		},
	}
}

// Run executes the task: an optional clear-all phase, then each work item
// in ascending calendar-name order. The result is the conjunction of every
// item's outcome; a permission failure aborts the run immediately.
func (t *Task) Run(ctx context.Context) bool {
	if t.cfg.ClearAll {
		if !t.clearAll(ctx) {
			return false
		}
	}
	if len(t.items) == 0 {
		return true
	}
	if err := ctx.Err(); err != nil {
		t.fail("sync cancelled: %v", err)
		return false
	}

	past, future := t.cfg.Prefs.WindowMillis()
	win := window.ComputeMillis(t.cfg.Now(), past, future)
	locName, lat, lon, alt, hasLocation := t.cfg.Prefs.Location()
	env := t.env(locName, lat, lon, alt)

	names := make([]string, 0, len(t.items))
	for name := range t.items {
		names = append(names, name)
	}
	sort.Strings(names)

	n := len(names)
	ok := true
	for c, name := range names {
		if err := ctx.Err(); err != nil {
			t.fail("sync cancelled: %v", err)
			return false
		}
		item := t.items[name]
		cal := t.cfg.Factory(name)
		if cal == nil {
			t.fail("unrecognized calendar %q", name)
			if n == 1 || c == n-1 {
				return false
			}
			continue
		}
		cal.Init(t.cfg.Prefs)

		outer := &model.Progress{Current: c, Total: n, Message: msgUpdating}
		switch item.Action {
		case model.ActionDelete:
			outer.Message = msgClearing + "\n" + cal.Title()
			t.publish(outer, nil)
			if err := t.deleteCalendar(ctx, cal, outer); err != nil {
				t.fail("failed to remove calendar %s: %v", name, err)
				if errors.Is(err, calstore.ErrPermission) {
					return false
				}
				ok = false
			}

		case model.ActionRemindersUpdate:
			outer.Message = cal.Title() + "\n" + msgReminders
			t.publish(outer, nil)
			err := t.updateCalendarReminders(ctx, name, outer)
			// An absent calendar has no reminders to rebuild.
			if err != nil && !errors.Is(err, calstore.ErrCalendarNotFound) {
				t.fail("failed to update reminders for %s: %v", name, err)
				if errors.Is(err, calstore.ErrPermission) {
					return false
				}
				ok = false
			}

		case model.ActionRemindersDelete:
			outer.Message = cal.Title() + "\n" + msgReminders
			t.publish(outer, nil)
			_, err := t.removeCalendarReminders(ctx, name, outer)
			if err != nil && !errors.Is(err, calstore.ErrCalendarNotFound) {
				t.fail("failed to remove reminders for %s: %v", name, err)
				if errors.Is(err, calstore.ErrPermission) {
					return false
				}
				ok = false
			}

		default: // model.ActionUpdate
			if !hasLocation {
				t.fail("no observer location configured")
				ok = false
				continue
			}
			outer.Message = msgUpdating + "\n" + cal.Title()
			t.publish(outer, nil)
			if err := t.updateCalendar(ctx, cal, env, win, outer); err != nil {
				t.fail("failed to update %s: %v", name, err)
				if errors.Is(err, calstore.ErrPermission) || errors.Is(err, context.Canceled) {
					return false
				}
				ok = false
			}
		}
	}
	if ok {
		t.cfg.Prefs.SetLastSync(t.cfg.Now())
	}
	return ok
}

// updateCalendar refreshes one calendar: events that fell behind the window
// are trimmed first, then the generator runs. The generator refuses an
// existing calendar, so an update without a preceding delete trims and then
// fails the item — regeneration requires an explicit delete first.
func (t *Task) updateCalendar(ctx context.Context, cal Calendar, env *Env, win model.Window, outer *model.Progress) error {
	name := cal.Name()
	exists, err := t.cfg.Store.HasCalendar(name)
	if err != nil {
		return err
	}
	if exists {
		id, err := t.cfg.Store.QueryCalendarID(name)
		if err != nil {
			return err
		}
		if _, err := t.cfg.Store.RemoveCalendarEventsBefore(id, win.Start); err != nil {
			return err
		}
	}
	return cal.InitCalendar(ctx, env, win, outer)
}

// deleteCalendar removes a calendar's reminders, then the calendar itself
// with its events, then its notes. Removing an absent calendar is not a
// failure.
func (t *Task) deleteCalendar(ctx context.Context, cal Calendar, outer *model.Progress) error {
	name := cal.Name()
	if _, err := t.removeCalendarReminders(ctx, name, outer); err != nil {
		if !errors.Is(err, calstore.ErrCalendarNotFound) {
			return err
		}
	}
	if _, err := t.cfg.Store.RemoveCalendar(name); err != nil {
		return err
	}
	t.cfg.Prefs.ClearNotes(name)
	return nil
}

// clearAll removes every known calendar and its preferences residue:
// reminders first, then the calendar row, then its notes.
func (t *Task) clearAll(ctx context.Context) bool {
	names := append([]string(nil), t.cfg.Calendars...)
	sort.Strings(names)
	for c, name := range names {
		if err := ctx.Err(); err != nil {
			t.fail("sync cancelled: %v", err)
			return false
		}
		outer := &model.Progress{Current: c, Total: len(names), Message: msgClearing}
		t.publish(outer, nil)
		if _, err := t.removeCalendarReminders(ctx, name, outer); err != nil {
			if !errors.Is(err, calstore.ErrCalendarNotFound) {
				t.fail("failed to remove reminders for %s: %v", name, err)
				return false
			}
		}
		if _, err := t.cfg.Store.RemoveCalendar(name); err != nil {
			t.fail("failed to remove calendar %s: %v", name, err)
			return false
		}
		t.cfg.Prefs.ClearNotes(name)
	}
	return true
}
