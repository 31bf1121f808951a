package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mlindgren/suncal/pkg/astro"
	"github.com/mlindgren/suncal/pkg/calstore"
	"github.com/mlindgren/suncal/pkg/model"
	"github.com/mlindgren/suncal/pkg/prefs"
	"github.com/mlindgren/suncal/pkg/task"
	"github.com/mlindgren/suncal/pkg/task/calendars"
)

const (
	defaultDir    = ".suncal"
	defaultDB     = defaultDir + "/calendars.db"
	defaultSource = defaultDir + "/ephemeris.db"
	defaultPrefs  = defaultDir + "/prefs.yaml"
)

// app holds shared state for all CLI subcommands.
type app struct {
	store  *calstore.Store
	source *astro.DB
	prefs  *prefs.Store
}

// newApp opens the calendar store, the ephemeris source and the preferences
// file. Creates the .suncal/ directory when the default paths are in use.
func newApp() (*app, error) {
	dbPath := envOr("SUNCAL_DB", defaultDB)
	srcPath := envOr("SUNCAL_EPHEMERIS", defaultSource)
	prefsPath := envOr("SUNCAL_PREFS", defaultPrefs)
	if dbPath == defaultDB || srcPath == defaultSource || prefsPath == defaultPrefs {
		if err := os.MkdirAll(defaultDir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", defaultDir, err)
		}
	}
	s, err := calstore.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open calendar store %q: %w", dbPath, err)
	}
	src, err := astro.Open(srcPath)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("cannot open ephemeris %q: %w", srcPath, err)
	}
	p, err := prefs.Open(prefsPath)
	if err != nil {
		s.Close()
		src.Close()
		return nil, fmt.Errorf("cannot open preferences %q: %w", prefsPath, err)
	}
	return &app{store: s, source: src, prefs: p}, nil
}

// Close releases the databases. Preferences are saved explicitly by the
// commands that change them.
func (a *app) Close() {
	a.source.Close()
	a.store.Close()
}

// newTask builds a run over the given items.
func (a *app) newTask(clearAll bool, items ...model.TaskItem) *task.Task {
	t := task.New(task.Config{
		Store:     a.store,
		Source:    a.source,
		Prefs:     a.prefs,
		Factory:   calendars.New,
		Calendars: calendars.Names(),
		ClearAll:  clearAll,
		Progress:  printProgress,
	})
	t.AddItems(items...)
	return t
}

// runTask executes t under a signal-cancelled context, saves preferences
// (notes, last sync) and returns an exit code.
func (a *app) runTask(t *task.Task) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ok := t.Run(ctx)
	if err := a.prefs.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "suncal: save preferences: %v\n", err)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "suncal: %s\n", t.LastError())
		return 1
	}
	return 0
}

// syncCalendars rebuilds the named calendars. The update path refuses an
// existing calendar, so calendars already in the store are deleted in a
// first run before the update run.
func (a *app) syncCalendars(names []string) int {
	var deletes []model.TaskItem
	for _, name := range names {
		exists, err := a.store.HasCalendar(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "suncal: %v\n", err)
			return 1
		}
		if exists {
			deletes = append(deletes, model.TaskItem{Calendar: name, Action: model.ActionDelete})
		}
	}
	if len(deletes) > 0 {
		if code := a.runTask(a.newTask(false, deletes...)); code != 0 {
			return code
		}
	}
	updates := make([]model.TaskItem, 0, len(names))
	for _, name := range names {
		updates = append(updates, model.TaskItem{Calendar: name, Action: model.ActionUpdate})
	}
	return a.runTask(a.newTask(false, updates...))
}

// enabledCalendars returns the calendars switched on in preferences.
func (a *app) enabledCalendars() []string {
	var names []string
	for _, name := range calendars.Names() {
		if a.prefs.CalendarEnabled(name) {
			names = append(names, name)
		}
	}
	return names
}

// printProgress renders two-level progress on stderr. The outer line tracks
// items, the inner line rows within the current item.
func printProgress(outer, inner *model.Progress) {
	if inner != nil {
		fmt.Fprintf(os.Stderr, "\r  [%d/%d] %s", inner.Current, inner.Total, firstLine(inner.Message))
		if inner.Current == inner.Total {
			fmt.Fprintln(os.Stderr)
		}
		return
	}
	if outer != nil {
		fmt.Fprintf(os.Stderr, "%s (%d/%d)\n", firstLine(outer.Message), outer.Current+1, outer.Total)
	}
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
