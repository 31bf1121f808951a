// Package prefs is the preference store: a flat key/value map persisted as
// YAML, with typed accessors and all of suncal's defaulting rules.
//
// The map is loaded once, mutated in memory, and written back atomically
// (temp file + rename, 0600 perms). A missing file is not an error; it
// yields an empty store, which is also how first launch is detected.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mlindgren/suncal/pkg/model"
	"github.com/mlindgren/suncal/pkg/template"
)

// Note keys attachable to a calendar. Notes are small persisted strings
// used for staleness detection and display.
const (
	NoteLocationName = "location_name"
)

// AllNotes lists every note key ClearNotes removes.
var AllNotes = []string{NoteLocationName}

// stringsSep separates packed label lists. Labels must not contain it.
const stringsSep = "|"

// Store holds the loaded preference map. Not safe for concurrent use; the
// sync engine runs one orchestration at a time by design.
type Store struct {
	path   string
	values map[string]string
}

// Open loads the store at path. A nonexistent file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read prefs %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse prefs %q: %w", path, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// Save writes the store back to its path atomically with 0600 perms.
func (s *Store) Save() error {
	if s.path == "" {
		return errors.New("prefs store has no path")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".suncal-prefs-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// --- raw accessors ---

func (s *Store) getString(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

func (s *Store) getInt(key string, def int) int {
	if v, ok := s.values[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (s *Store) getInt64(key string, def int64) int64 {
	if v, ok := s.values[key]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func (s *Store) getBool(key string, def bool) bool {
	if v, ok := s.values[key]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func (s *Store) set(key, val string)      { s.values[key] = val }
func (s *Store) setInt(key string, n int) { s.values[key] = strconv.Itoa(n) }
func (s *Store) remove(key string)        { delete(s.values, key) }

// --- global flags and window ---

// Enabled reports the global calendar-integration switch (default false).
func (s *Store) Enabled() bool           { return s.getBool("calendars_enabled", false) }
func (s *Store) SetEnabled(enabled bool) { s.set("calendars_enabled", strconv.FormatBool(enabled)) }

// WindowMillis returns the (past, future) window offsets in milliseconds,
// defaulting to one year back and two years forward.
func (s *Store) WindowMillis() (past, future int64) {
	return s.getInt64("calendar_window0", 31536000000),
		s.getInt64("calendar_window1", 63072000000)
}

func (s *Store) SetWindowMillis(past, future int64) {
	s.set("calendar_window0", strconv.FormatInt(past, 10))
	s.set("calendar_window1", strconv.FormatInt(future, 10))
}

// FirstLaunch reports whether suncal has never completed setup.
func (s *Store) FirstLaunch() bool { return s.getBool("first_launch", true) }
func (s *Store) MarkLaunched()     { s.set("first_launch", "false") }

// LastSync returns the recorded completion time of the last successful run.
func (s *Store) LastSync() (time.Time, bool) {
	ms := s.getInt64("last_sync", -1)
	if ms < 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

func (s *Store) SetLastSync(t time.Time) {
	s.set("last_sync", strconv.FormatInt(t.UnixMilli(), 10))
}

// --- location ---

// Location returns the resolved observer location (name, lat, lon, alt).
// Ok is false until a location has been set; generation requires one.
func (s *Store) Location() (name, lat, lon, alt string, ok bool) {
	name = s.getString("location_name", "")
	return name,
		s.getString("location_latitude", ""),
		s.getString("location_longitude", ""),
		s.getString("location_altitude", ""),
		name != ""
}

func (s *Store) SetLocation(name, lat, lon, alt string) {
	s.set("location_name", name)
	s.set("location_latitude", lat)
	s.set("location_longitude", lon)
	s.set("location_altitude", alt)
}

// --- per-calendar settings ---

// CalendarEnabled reports whether one calendar is switched on (default false).
func (s *Store) CalendarEnabled(cal string) bool { return s.getBool("calendar_"+cal, false) }
func (s *Store) SetCalendarEnabled(cal string, enabled bool) {
	s.set("calendar_"+cal, strconv.FormatBool(enabled))
}

// CalendarColor returns the stored color for cal, or def when unset.
func (s *Store) CalendarColor(cal, def string) string { return s.getString("color_"+cal, def) }
func (s *Store) SetCalendarColor(cal, color string)   { s.set("color_"+cal, color) }

// --- reminders (preference side) ---
//
// Reminder slots are a dense 0-based sequence sized by the per-calendar
// count. Removal is always LIFO, so indices [0, count) are always
// contiguous and gap-free.

// ReminderCount returns the number of reminder slots for cal (default 1).
func (s *Store) ReminderCount(cal string) int {
	return s.getInt("reminder_count_"+cal, 1)
}

func (s *Store) SetReminderCount(cal string, n int) { s.setInt("reminder_count_"+cal, n) }

// ReminderMinutes returns slot i's offset in minutes before the event.
// Defaults: slot 0 at the event, slot 1 five minutes before, slot 2 five
// minutes after; the method default disables everything past slot 1.
func (s *Store) ReminderMinutes(cal string, i int) int {
	return s.getInt(reminderKey("reminder_minutes", cal, i), defaultReminderMinutes(i))
}

// ReminderMethod returns slot i's delivery method. Slots 0 and 1 default
// to the store's default method; every other slot defaults to disabled.
func (s *Store) ReminderMethod(cal string, i int) int {
	return s.getInt(reminderKey("reminder_method", cal, i), defaultReminderMethod(i))
}

// SetReminder writes slot i's minutes and method.
func (s *Store) SetReminder(cal string, i, minutes, method int) {
	s.setInt(reminderKey("reminder_minutes", cal, i), minutes)
	s.setInt(reminderKey("reminder_method", cal, i), method)
}

// Reminder returns slot i as a model value.
func (s *Store) Reminder(cal string, i int) model.Reminder {
	return model.Reminder{
		Calendar: cal,
		Index:    i,
		Minutes:  s.ReminderMinutes(cal, i),
		Method:   s.ReminderMethod(cal, i),
	}
}

// AddReminder appends a slot at index count and increments the count.
func (s *Store) AddReminder(cal string, minutes, method int) {
	n := s.ReminderCount(cal)
	s.SetReminder(cal, n, minutes, method)
	s.SetReminderCount(cal, n+1)
}

// RemoveLastReminder removes the highest slot and decrements the count,
// floored at zero.
func (s *Store) RemoveLastReminder(cal string) {
	n := s.ReminderCount(cal)
	i := n - 1
	s.remove(reminderKey("reminder_minutes", cal, i))
	s.remove(reminderKey("reminder_method", cal, i))
	if i < 0 {
		i = 0
	}
	s.SetReminderCount(cal, i)
}

// RemoveAllReminders pops slots until the count reaches zero.
func (s *Store) RemoveAllReminders(cal string) {
	for s.ReminderCount(cal) > 0 {
		s.RemoveLastReminder(cal)
	}
}

func reminderKey(prefix, cal string, i int) string {
	return prefix + "_" + strconv.Itoa(i) + "_" + cal
}

func defaultReminderMinutes(i int) int {
	switch i {
	case 0:
		return 0
	case 1:
		return 5 // five minutes before
	case 2:
		return -5 // five minutes after
	default:
		return 0
	}
}

func defaultReminderMethod(i int) int {
	switch i {
	case 0, 1:
		return model.MethodDefault
	default:
		return model.MethodDisabled
	}
}

// --- flags / strings / template overrides ---

// Flags returns the per-calendar event-type gates, falling back to def
// when no override is stored.
func (s *Store) Flags(cal string, def model.Flags) model.Flags {
	v, ok := s.values["flags_"+cal]
	if !ok || v == "" {
		return def
	}
	parts := strings.Split(v, stringsSep)
	flags := make(model.Flags, len(parts))
	for i, p := range parts {
		flags[i] = p == "1"
	}
	return flags
}

func (s *Store) SetFlags(cal string, flags model.Flags) {
	parts := make([]string, len(flags))
	for i, f := range flags {
		if f {
			parts[i] = "1"
		} else {
			parts[i] = "0"
		}
	}
	s.set("flags_"+cal, strings.Join(parts, stringsSep))
}

// Strings returns the per-calendar event labels, falling back to def.
func (s *Store) Strings(cal string, def model.Strings) model.Strings {
	v, ok := s.values["strings_"+cal]
	if !ok || v == "" {
		return def
	}
	return model.Strings(strings.Split(v, stringsSep))
}

func (s *Store) SetStrings(cal string, labels model.Strings) {
	s.set("strings_"+cal, strings.Join(labels, stringsSep))
}

// Template returns the per-calendar event template, falling back to def.
// The three patterns override together: a stored title implies the stored
// desc and location as well.
func (s *Store) Template(cal string, def template.Template) template.Template {
	if _, ok := s.values["template_title_"+cal]; !ok {
		return def
	}
	return template.Template{
		Title:    s.getString("template_title_"+cal, ""),
		Desc:     s.getString("template_desc_"+cal, ""),
		Location: s.getString("template_location_"+cal, ""),
	}
}

func (s *Store) SetTemplate(cal string, t template.Template) {
	s.set("template_title_"+cal, t.Title)
	s.set("template_desc_"+cal, t.Desc)
	s.set("template_location_"+cal, t.Location)
}

// --- notes ---

// Note returns the named note for cal, if present.
func (s *Store) Note(cal, key string) (string, bool) {
	v, ok := s.values["note_"+cal+"_"+key]
	return v, ok
}

func (s *Store) SetNote(cal, key, note string) { s.set("note_"+cal+"_"+key, note) }

// ClearNotes removes every known note for cal.
func (s *Store) ClearNotes(cal string) {
	for _, key := range AllNotes {
		s.remove("note_" + cal + "_" + key)
	}
}
