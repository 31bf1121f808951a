// iface.go defines the Adapter interface for dependency injection and
// testing.
//
// The concrete *Store type satisfies this interface. The sync engine
// depends on Adapter rather than *Store, so orchestrator tests can inject
// fakes that record batch sizes and fail on demand.
package calstore

import (
	"time"

	"github.com/mlindgren/suncal/pkg/model"
)

// Adapter is the full set of calendar-store operations the sync engine
// uses. The concrete *Store type implements it.
type Adapter interface {
	// Close closes the store.
	Close() error

	// --- Calendars ---

	// HasCalendar reports whether a calendar with the given name exists.
	HasCalendar(name string) (bool, error)

	// CreateCalendar inserts a calendar row and returns its ID.
	CreateCalendar(name, title, color string) (int64, error)

	// QueryCalendarID resolves a name to a row ID (ErrCalendarNotFound).
	QueryCalendarID(name string) (int64, error)

	// ListCalendars returns all calendars ordered by name.
	ListCalendars() ([]Calendar, error)

	// RemoveCalendar deletes a calendar by name (cascading).
	RemoveCalendar(name string) (bool, error)

	// RemoveCalendars deletes every calendar (cascading).
	RemoveCalendars() error

	// --- Events ---

	// QueryCalendarEvents returns a counted cursor of (id, start) pairs.
	QueryCalendarEvents(calendarID int64) (*EventCursor, error)

	// ListCalendarEvents returns full event rows ordered by start.
	ListCalendarEvents(calendarID int64) ([]model.Event, error)

	// CountCalendarEvents returns the number of events in a calendar.
	CountCalendarEvents(calendarID int64) (int64, error)

	// CreateCalendarEvents writes one batch of events transactionally.
	CreateCalendarEvents(events []model.Event) (int, error)

	// RemoveCalendarEventsBefore deletes events starting before t.
	RemoveCalendarEventsBefore(calendarID int64, t time.Time) (int, error)

	// --- Reminders ---

	// CreateCalendarReminders writes one batch of reminder rows.
	CreateCalendarReminders(reminders []ReminderRow) (int, error)

	// DeleteRemindersByEvent removes reminders for the given event IDs.
	DeleteRemindersByEvent(eventIDs []int64) (int, error)
}

// Compile-time check that *Store implements Adapter.
var _ Adapter = (*Store)(nil)
