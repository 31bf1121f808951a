package main

import (
	"path/filepath"
	"testing"

	"github.com/mlindgren/suncal/pkg/model"
)

// --- envOr tests ---

func TestEnvOr_EnvSet(t *testing.T) {
	t.Setenv("TEST_SUNCAL_ENV", "hello")
	if got := envOr("TEST_SUNCAL_ENV", "default"); got != "hello" {
		t.Fatalf("envOr with set env: got %q, want %q", got, "hello")
	}
}

func TestEnvOr_EnvUnset(t *testing.T) {
	if got := envOr("TEST_SUNCAL_UNSET_KEY_XYZ", "fallback"); got != "fallback" {
		t.Fatalf("envOr with unset env: got %q, want %q", got, "fallback")
	}
}

// --- helper tests ---

func TestFirstLine(t *testing.T) {
	if got := firstLine("Updating calendars\nDaylight"); got != "Updating calendars" {
		t.Fatalf("firstLine: got %q", got)
	}
	if got := firstLine("no newline"); got != "no newline" {
		t.Fatalf("firstLine: got %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("daylight, moonrise,,solstice ")
	want := []string{"daylight", "moonrise", "solstice"}
	if len(got) != len(want) {
		t.Fatalf("splitList: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitList: got %v, want %v", got, want)
		}
	}
	if splitList("") != nil {
		t.Fatal("splitList(\"\") should be nil")
	}
}

func TestParseReminderSpec(t *testing.T) {
	minutes, method, err := parseReminderSpec("10")
	if err != nil || minutes != 10 || method != model.MethodDefault {
		t.Fatalf("parseReminderSpec(10): %d/%d err=%v", minutes, method, err)
	}
	minutes, method, err = parseReminderSpec("-5:email")
	if err != nil || minutes != -5 || method != model.MethodEmail {
		t.Fatalf("parseReminderSpec(-5:email): %d/%d err=%v", minutes, method, err)
	}
	if _, _, err := parseReminderSpec("x"); err == nil {
		t.Fatal("parseReminderSpec(x) should fail")
	}
	if _, _, err := parseReminderSpec("5:pager"); err == nil {
		t.Fatal("parseReminderSpec(5:pager) should fail")
	}
}

func TestDescribeMinutes(t *testing.T) {
	if got := describeMinutes(0); got != "at the event" {
		t.Fatalf("describeMinutes(0): %q", got)
	}
	if got := describeMinutes(5); got != "5 min before" {
		t.Fatalf("describeMinutes(5): %q", got)
	}
	if got := describeMinutes(-5); got != "5 min after" {
		t.Fatalf("describeMinutes(-5): %q", got)
	}
}

// --- app wiring tests ---

func newTestApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SUNCAL_DB", filepath.Join(dir, "calendars.db"))
	t.Setenv("SUNCAL_EPHEMERIS", filepath.Join(dir, "ephemeris.db"))
	t.Setenv("SUNCAL_PREFS", filepath.Join(dir, "prefs.yaml"))
	a, err := newApp()
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestEnabledCalendars(t *testing.T) {
	a := newTestApp(t)
	if got := a.enabledCalendars(); len(got) != 0 {
		t.Fatalf("enabled by default: %v, want none", got)
	}
	a.prefs.SetCalendarEnabled("daylight", true)
	a.prefs.SetCalendarEnabled("moonphase", true)
	got := a.enabledCalendars()
	if len(got) != 2 || got[0] != "daylight" || got[1] != "moonphase" {
		t.Fatalf("enabled = %v, want [daylight moonphase]", got)
	}
}

func TestConfigEnableUnknownCalendar(t *testing.T) {
	a := newTestApp(t)
	if code := a.cmdConfig([]string{"--enable", "bogus"}); code == 0 {
		t.Fatal("enabling an unknown calendar should fail")
	}
}

func TestSyncNothingEnabled(t *testing.T) {
	a := newTestApp(t)
	if code := a.cmdSync(nil); code == 0 {
		t.Fatal("sync with nothing enabled should fail")
	}
}

// A repeat sync deletes the existing calendar before the update run, since
// the update path refuses a calendar that is already present.
func TestSyncCalendarsRebuildsExisting(t *testing.T) {
	a := newTestApp(t)
	a.prefs.SetLocation("Test Valley", "35.0", "-112.0", "420")

	if code := a.syncCalendars([]string{"daylight"}); code != 0 {
		t.Fatal("first sync failed")
	}
	if code := a.syncCalendars([]string{"daylight"}); code != 0 {
		t.Fatal("repeat sync failed against an existing calendar")
	}
	cals, err := a.store.ListCalendars()
	if err != nil {
		t.Fatalf("list calendars: %v", err)
	}
	if len(cals) != 1 || cals[0].Name != "daylight" {
		t.Fatalf("calendars = %+v, want a single daylight calendar", cals)
	}
}

func TestClearEmptyStore(t *testing.T) {
	a := newTestApp(t)
	if code := a.cmdClear(nil); code != 0 {
		t.Fatal("clearing an empty store should succeed")
	}
}
