package calstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mlindgren/suncal/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.CreateCalendar(name, "Title "+name, "#336699")
	if err != nil {
		t.Fatalf("CreateCalendar(%q): %v", name, err)
	}
	return id
}

func insertEvents(t *testing.T, s *Store, calID int64, n int, base time.Time) {
	t.Helper()
	events := make([]model.Event, n)
	for i := range events {
		events[i] = model.Event{
			CalendarID: calID,
			Title:      "Sunrise",
			Start:      base.Add(time.Duration(i) * 24 * time.Hour),
		}
	}
	if got, err := s.CreateCalendarEvents(events); err != nil || got != n {
		t.Fatalf("CreateCalendarEvents: inserted %d, err %v", got, err)
	}
}

// --- Calendar tests ---

func TestCreateAndHasCalendar(t *testing.T) {
	s := newTestStore(t)
	if ok, _ := s.HasCalendar("daylight"); ok {
		t.Fatal("empty store should have no calendars")
	}
	id := mustCreate(t, s, "daylight")
	if id <= 0 {
		t.Fatalf("CreateCalendar returned id %d, want > 0", id)
	}
	ok, err := s.HasCalendar("daylight")
	if err != nil || !ok {
		t.Fatalf("HasCalendar = %v/%v after create", ok, err)
	}
}

func TestCreateCalendarDuplicate(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "daylight")
	_, err := s.CreateCalendar("daylight", "Daylight", "#000000")
	if !errors.Is(err, ErrCalendarExists) {
		t.Fatalf("duplicate create: err = %v, want ErrCalendarExists", err)
	}
}

func TestQueryCalendarID(t *testing.T) {
	s := newTestStore(t)
	want := mustCreate(t, s, "moonphase")
	got, err := s.QueryCalendarID("moonphase")
	if err != nil || got != want {
		t.Fatalf("QueryCalendarID = %d/%v, want %d", got, err, want)
	}
	_, err = s.QueryCalendarID("nonexistent")
	if !errors.Is(err, ErrCalendarNotFound) {
		t.Fatalf("missing calendar: err = %v, want ErrCalendarNotFound", err)
	}
}

func TestListCalendarsOrdered(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "solstice")
	mustCreate(t, s, "daylight")
	mustCreate(t, s, "moonphase")

	cals, err := s.ListCalendars()
	if err != nil {
		t.Fatal(err)
	}
	if len(cals) != 3 {
		t.Fatalf("got %d calendars, want 3", len(cals))
	}
	if cals[0].Name != "daylight" || cals[1].Name != "moonphase" || cals[2].Name != "solstice" {
		t.Fatalf("calendars not name-ordered: %v", []string{cals[0].Name, cals[1].Name, cals[2].Name})
	}
}

func TestRemoveCalendarCascades(t *testing.T) {
	s := newTestStore(t)
	id := mustCreate(t, s, "daylight")
	insertEvents(t, s, id, 3, time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC))

	cur, _ := s.QueryCalendarEvents(id)
	ref, _ := cur.Next()
	if _, err := s.CreateCalendarReminders([]ReminderRow{{EventID: ref.ID, Minutes: 5, Method: model.MethodDefault}}); err != nil {
		t.Fatal(err)
	}

	removed, err := s.RemoveCalendar("daylight")
	if err != nil || !removed {
		t.Fatalf("RemoveCalendar = %v/%v", removed, err)
	}
	if ok, _ := s.HasCalendar("daylight"); ok {
		t.Fatal("calendar still present after removal")
	}
	if n, _ := s.CountCalendarEvents(id); n != 0 {
		t.Fatalf("events not cascaded: %d left", n)
	}
	if n, _ := s.CountEventReminders(ref.ID); n != 0 {
		t.Fatalf("reminders not cascaded: %d left", n)
	}
}

func TestRemoveCalendarAbsent(t *testing.T) {
	s := newTestStore(t)
	removed, err := s.RemoveCalendar("nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("removing an absent calendar should report false")
	}
}

func TestRemoveCalendarsAll(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "daylight")
	mustCreate(t, s, "moonphase")
	if err := s.RemoveCalendars(); err != nil {
		t.Fatal(err)
	}
	cals, _ := s.ListCalendars()
	if len(cals) != 0 {
		t.Fatalf("RemoveCalendars left %d calendars", len(cals))
	}
}

// --- Event tests ---

func TestCreateAndCursorEvents(t *testing.T) {
	s := newTestStore(t)
	id := mustCreate(t, s, "daylight")
	base := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)
	insertEvents(t, s, id, 5, base)

	cur, err := s.QueryCalendarEvents(id)
	if err != nil {
		t.Fatal(err)
	}
	if cur.Count() != 5 {
		t.Fatalf("cursor count = %d, want 5", cur.Count())
	}
	var prev time.Time
	seen := 0
	for {
		ref, ok := cur.Next()
		if !ok {
			break
		}
		if ref.Start.Before(prev) {
			t.Fatal("cursor not ordered by start")
		}
		prev = ref.Start
		seen++
	}
	if seen != 5 {
		t.Fatalf("cursor yielded %d refs, want 5", seen)
	}
}

func TestEventSpanRoundtrip(t *testing.T) {
	s := newTestStore(t)
	id := mustCreate(t, s, "twilight-civil")
	start := time.Date(2026, 3, 1, 6, 10, 0, 0, time.UTC)
	end := start.Add(26 * time.Minute)
	_, err := s.CreateCalendarEvents([]model.Event{
		{CalendarID: id, Title: "Civil Twilight", Location: "Phoenix", Start: start, End: end},
		{CalendarID: id, Title: "Sunrise", Start: start.Add(time.Hour)},
	})
	if err != nil {
		t.Fatal(err)
	}

	events, err := s.ListCalendarEvents(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].HasEnd() || !events[0].End.Equal(end) {
		t.Fatalf("span event end = %v, want %v", events[0].End, end)
	}
	if events[1].HasEnd() {
		t.Fatal("point event should have no end")
	}
	if events[0].Location != "Phoenix" {
		t.Fatalf("location = %q", events[0].Location)
	}
}

func TestRemoveCalendarEventsBefore(t *testing.T) {
	s := newTestStore(t)
	id := mustCreate(t, s, "daylight")
	base := time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC)
	insertEvents(t, s, id, 10, base)

	cutoff := base.Add(5 * 24 * time.Hour)
	n, err := s.RemoveCalendarEventsBefore(id, cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("removed %d events, want 5", n)
	}
	left, _ := s.CountCalendarEvents(id)
	if left != 5 {
		t.Fatalf("%d events left, want 5", left)
	}
}

// --- Reminder tests ---

func TestCreateAndDeleteReminders(t *testing.T) {
	s := newTestStore(t)
	id := mustCreate(t, s, "daylight")
	insertEvents(t, s, id, 4, time.Date(2026, 1, 1, 7, 0, 0, 0, time.UTC))

	cur, _ := s.QueryCalendarEvents(id)
	var rows []ReminderRow
	var ids []int64
	for {
		ref, ok := cur.Next()
		if !ok {
			break
		}
		rows = append(rows, ReminderRow{EventID: ref.ID, Minutes: 0, Method: model.MethodDefault})
		rows = append(rows, ReminderRow{EventID: ref.ID, Minutes: 5, Method: model.MethodAlert})
		ids = append(ids, ref.ID)
	}
	inserted, err := s.CreateCalendarReminders(rows)
	if err != nil || inserted != 8 {
		t.Fatalf("CreateCalendarReminders = %d/%v, want 8", inserted, err)
	}
	if n, _ := s.CountEventReminders(ids[0]); n != 2 {
		t.Fatalf("event has %d reminders, want 2", n)
	}

	removed, err := s.DeleteRemindersByEvent(ids)
	if err != nil || removed != 8 {
		t.Fatalf("DeleteRemindersByEvent = %d/%v, want 8", removed, err)
	}
	if n, _ := s.CountEventReminders(ids[0]); n != 0 {
		t.Fatalf("%d reminders left after delete", n)
	}
}

func TestEmptyBatchesAreNoops(t *testing.T) {
	s := newTestStore(t)
	if n, err := s.CreateCalendarEvents(nil); n != 0 || err != nil {
		t.Fatalf("empty event batch = %d/%v", n, err)
	}
	if n, err := s.CreateCalendarReminders(nil); n != 0 || err != nil {
		t.Fatalf("empty reminder batch = %d/%v", n, err)
	}
	if n, err := s.DeleteRemindersByEvent(nil); n != 0 || err != nil {
		t.Fatalf("empty delete batch = %d/%v", n, err)
	}
}

// --- Error taxonomy tests ---

func TestAsStoreErrPermission(t *testing.T) {
	err := asStoreErr(errors.New("SQLITE_READONLY: attempt to write a readonly database"))
	if !errors.Is(err, ErrPermission) {
		t.Fatalf("readonly error should map to ErrPermission, got %v", err)
	}
}

func TestAsStoreErrPassthrough(t *testing.T) {
	raw := errors.New("syntax error near SELECT")
	if got := asStoreErr(raw); got != raw {
		t.Fatalf("unrecognized error should pass through, got %v", got)
	}
	if asStoreErr(nil) != nil {
		t.Fatal("nil should stay nil")
	}
}
