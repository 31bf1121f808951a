package task

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mlindgren/suncal/pkg/astro"
	"github.com/mlindgren/suncal/pkg/calstore"
	"github.com/mlindgren/suncal/pkg/model"
	"github.com/mlindgren/suncal/pkg/prefs"
	"github.com/mlindgren/suncal/pkg/template"
)

// fakeStore is an in-memory Adapter that records call order and batch
// sizes, and can fail on demand.
type fakeStore struct {
	nextID    int64
	calendars map[string]int64
	events    map[int64][]calstore.EventRef

	ops             []string
	eventBatches    []int
	reminderBatches []int
	deleteBatches   []int
	reminderRows    []calstore.ReminderRow

	failWith error // returned by every mutating call when set
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		calendars: make(map[string]int64),
		events:    make(map[int64][]calstore.EventRef),
	}
}

func (f *fakeStore) addCalendar(name string, events int) int64 {
	f.nextID++
	id := f.nextID
	f.calendars[name] = id
	for i := 0; i < events; i++ {
		f.nextID++
		f.events[id] = append(f.events[id], calstore.EventRef{
			ID:    f.nextID,
			Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		})
	}
	return id
}

func (f *fakeStore) op(name string) { f.ops = append(f.ops, name) }

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) HasCalendar(name string) (bool, error) {
	f.op("HasCalendar:" + name)
	_, ok := f.calendars[name]
	return ok, nil
}

func (f *fakeStore) CreateCalendar(name, title, color string) (int64, error) {
	f.op("CreateCalendar:" + name)
	if f.failWith != nil {
		return -1, f.failWith
	}
	return f.addCalendar(name, 0), nil
}

func (f *fakeStore) QueryCalendarID(name string) (int64, error) {
	f.op("QueryCalendarID:" + name)
	id, ok := f.calendars[name]
	if !ok {
		return -1, calstore.ErrCalendarNotFound
	}
	return id, nil
}

func (f *fakeStore) ListCalendars() ([]calstore.Calendar, error) { return nil, nil }

func (f *fakeStore) RemoveCalendar(name string) (bool, error) {
	f.op("RemoveCalendar:" + name)
	if f.failWith != nil {
		return false, f.failWith
	}
	id, ok := f.calendars[name]
	if ok {
		delete(f.calendars, name)
		delete(f.events, id)
	}
	return ok, nil
}

func (f *fakeStore) RemoveCalendars() error {
	f.op("RemoveCalendars")
	f.calendars = make(map[string]int64)
	f.events = make(map[int64][]calstore.EventRef)
	return nil
}

func (f *fakeStore) QueryCalendarEvents(calendarID int64) (*calstore.EventCursor, error) {
	return calstore.NewEventCursor(f.events[calendarID]), nil
}

func (f *fakeStore) ListCalendarEvents(calendarID int64) ([]model.Event, error) {
	return nil, nil
}

func (f *fakeStore) CountCalendarEvents(calendarID int64) (int64, error) {
	return int64(len(f.events[calendarID])), nil
}

func (f *fakeStore) CreateCalendarEvents(events []model.Event) (int, error) {
	f.op("CreateCalendarEvents")
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.eventBatches = append(f.eventBatches, len(events))
	for _, ev := range events {
		f.nextID++
		f.events[ev.CalendarID] = append(f.events[ev.CalendarID], calstore.EventRef{
			ID:    f.nextID,
			Start: ev.Start,
		})
	}
	return len(events), nil
}

func (f *fakeStore) RemoveCalendarEventsBefore(calendarID int64, t time.Time) (int, error) {
	f.op("RemoveCalendarEventsBefore")
	if f.failWith != nil {
		return 0, f.failWith
	}
	kept := f.events[calendarID][:0]
	removed := 0
	for _, ref := range f.events[calendarID] {
		if ref.Start.Before(t) {
			removed++
			continue
		}
		kept = append(kept, ref)
	}
	f.events[calendarID] = kept
	return removed, nil
}

func (f *fakeStore) CreateCalendarReminders(reminders []calstore.ReminderRow) (int, error) {
	f.op("CreateCalendarReminders")
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.reminderBatches = append(f.reminderBatches, len(reminders))
	f.reminderRows = append(f.reminderRows, reminders...)
	return len(reminders), nil
}

func (f *fakeStore) DeleteRemindersByEvent(eventIDs []int64) (int, error) {
	f.op("DeleteRemindersByEvent")
	if f.failWith != nil {
		return 0, f.failWith
	}
	f.deleteBatches = append(f.deleteBatches, len(eventIDs))
	return len(eventIDs), nil
}

var _ calstore.Adapter = (*fakeStore)(nil)

// fakeSource serves canned rows for any query.
type fakeSource struct {
	rows    []astro.Row
	err     error
	queries []astro.Query
}

func (f *fakeSource) Query(ctx context.Context, q astro.Query) (*astro.Cursor, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return astro.NewCursor(f.rows), nil
}

var _ astro.Source = (*fakeSource)(nil)

// fakeCal is a minimal generator that records whether it ran.
type fakeCal struct {
	name    string
	ran     bool
	initErr error
}

func (c *fakeCal) Name() string    { return c.name }
func (c *fakeCal) Title() string   { return "Calendar " + c.name }
func (c *fakeCal) Summary() string { return "" }
func (c *fakeCal) Color() string   { return "#ffffff" }

func (c *fakeCal) DefaultTemplate() template.Template { return template.Template{Title: "%M"} }
func (c *fakeCal) DefaultStrings() model.Strings      { return model.Strings{"event"} }
func (c *fakeCal) DefaultFlags() model.Flags          { return model.Flags{true} }
func (c *fakeCal) FlagLabel(i int) string             { return "" }
func (c *fakeCal) Init(settings *prefs.Store)         {}

func (c *fakeCal) InitCalendar(ctx context.Context, env *Env, win model.Window, outer *model.Progress) error {
	c.ran = true
	return c.initErr
}

// factoryOf builds a Factory over a fixed set of generators.
func factoryOf(cals ...*fakeCal) Factory {
	return func(name string) Calendar {
		for _, c := range cals {
			if c.name == name {
				return c
			}
		}
		return nil
	}
}

func newTestPrefs(t *testing.T) *prefs.Store {
	t.Helper()
	s, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.yaml"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	return s
}

func newTestTask(t *testing.T, store *fakeStore, factory Factory, items ...model.TaskItem) (*Task, *prefs.Store) {
	t.Helper()
	p := newTestPrefs(t)
	p.SetLocation("Test Valley", "35.0", "-112.0", "420")
	tk := New(Config{
		Store:   store,
		Source:  &fakeSource{},
		Prefs:   p,
		Factory: factory,
	})
	tk.AddItems(items...)
	return tk, p
}
