// Package model defines the core domain types for suncal.
//
// Suncal generates recurring astronomical events (sunrise/sunset, twilight
// phases, golden hour, moon phases, solstices) from a precomputed ephemeris
// source and writes them into an external calendar store. Generation is
// one-directional: a calendar is never edited in place, only created whole
// or deleted whole, bounded by a year-aligned time window.
package model

import "time"

// TaskAction enumerates what a sync run should do with one calendar.
type TaskAction int

const (
	// ActionUpdate generates the calendar from the ephemeris source.
	ActionUpdate TaskAction = iota
	// ActionDelete removes the calendar, its reminders, and its notes.
	ActionDelete
	// ActionRemindersUpdate rebuilds reminders from current preferences
	// without regenerating events.
	ActionRemindersUpdate
	// ActionRemindersDelete removes reminders only.
	ActionRemindersDelete
)

func (a TaskAction) String() string {
	switch a {
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionRemindersUpdate:
		return "reminders-update"
	case ActionRemindersDelete:
		return "reminders-delete"
	default:
		return "unknown"
	}
}

// TaskItem pairs a calendar name with the action to perform on it. A run
// consumes a set of items keyed by calendar name; submitting the same name
// twice keeps the last action submitted.
type TaskItem struct {
	Calendar string     `json:"calendar"`
	Action   TaskAction `json:"action"`
}

// Window is the absolute time range a run generates events for. Both bounds
// are year-aligned (see the window package); Start is inclusive, End
// exclusive. A Window is computed once per run and shared by every
// generator so all calendars cover an identical range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Descriptor identifies one calendar kind. Name is the stable key used in
// the store and in preferences; Title and Summary are display strings
// resolved at init time; Color is a hex string like "#ff9900".
type Descriptor struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Color   string `json:"color"`
}

// Event is the unit written to the calendar store. End is optional: the
// zero time means a point event (sunrise, full moon); a non-zero End makes
// a span (a twilight period).
type Event struct {
	ID          int64     `json:"id,omitempty"`
	CalendarID  int64     `json:"calendar_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end,omitempty"`
}

// HasEnd reports whether the event is a span rather than a point.
func (e Event) HasEnd() bool { return !e.End.IsZero() }

// Reminder method values, matching the conventional calendar-provider
// encoding. MethodDisabled is the sentinel for an inactive reminder slot.
const (
	MethodDisabled = -1
	MethodDefault  = 0
	MethodAlert    = 1
	MethodEmail    = 2
)

// Reminder is one preference-backed reminder slot for a calendar. Slots
// form a dense 0-based sequence [0, count) with no gaps; removal is always
// from the end.
type Reminder struct {
	Calendar string `json:"calendar"`
	Index    int    `json:"index"`
	Minutes  int    `json:"minutes"` // offset before the event; negative means after
	Method   int    `json:"method"`
}

// Enabled reports whether the slot is active.
func (r Reminder) Enabled() bool { return r.Method != MethodDisabled }

// Flags gates which event types a generator emits, indexed the same way as
// the generator's Strings.
type Flags []bool

// Strings holds the user-visible labels for a generator's event types.
// Indices shared with Flags label flag slots; a variant may carry extra
// trailing labels (e.g. the name of the twilight period as a whole).
type Strings []string

// At returns the label at i, or "" when i is out of range.
func (s Strings) At(i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}

// Progress is one level of a nested progress report: Current of Total with
// a display message. Total == 0 means indeterminate.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// ProgressFunc receives paired (outer, inner) progress updates. Outer
// tracks calendars within the run, inner tracks rows within the current
// calendar. Either may be nil when that level has nothing new. Callbacks
// run on the sync worker and must not block.
type ProgressFunc func(outer, inner *Progress)
