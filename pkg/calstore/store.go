// Package calstore manages the external calendar store suncal writes into.
//
// The store is a SQLite database in WAL mode holding three tables:
// calendars, events, and reminders. Suncal owns every row it writes — a
// calendar is generated whole and deleted whole, never edited in place —
// so the schema carries no sync/dirty bookkeeping. Batch writes run inside
// a single transaction per chunk, bounding both peak memory and the blast
// radius of one failed chunk.
package calstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mlindgren/suncal/pkg/model"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed calendar store.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the calendar database and initializes the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", asStoreErr(err))
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// retryOnContention wraps retryOp from retry.go with the default config.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS calendars (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		calendar_id INTEGER NOT NULL REFERENCES calendars(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT,
		location    TEXT,
		dtstart     INTEGER NOT NULL,
		dtend       INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_events_calendar ON events(calendar_id, dtstart);

	CREATE TABLE IF NOT EXISTS reminders (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		minutes  INTEGER NOT NULL,
		method   INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reminders_event ON reminders(event_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// Calendars
// ---------------------------------------------------------------------------

// Calendar is one row of the calendars table.
type Calendar struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// HasCalendar reports whether a calendar with the given name exists.
func (s *Store) HasCalendar(name string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM calendars WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, asStoreErr(err)
	}
	return n > 0, nil
}

// CreateCalendar inserts a new calendar row and returns its ID. Returns
// ErrCalendarExists when the name is already present.
func (s *Store) CreateCalendar(name, title, color string) (int64, error) {
	var id int64
	err := retryOnContention(func() error {
		res, err := s.db.Exec(
			`INSERT INTO calendars (name, title, color, created_at) VALUES (?, ?, ?, ?)`,
			name, title, color, time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return -1, asStoreErr(err)
	}
	return id, nil
}

// QueryCalendarID resolves a calendar name to its row ID. Returns
// ErrCalendarNotFound when absent.
func (s *Store) QueryCalendarID(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM calendars WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return -1, fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
	}
	if err != nil {
		return -1, asStoreErr(err)
	}
	return id, nil
}

// ListCalendars returns all calendars ordered by name.
func (s *Store) ListCalendars() ([]Calendar, error) {
	rows, err := s.db.Query(`SELECT id, name, title, color FROM calendars ORDER BY name`)
	if err != nil {
		return nil, asStoreErr(err)
	}
	defer rows.Close()

	var cals []Calendar
	for rows.Next() {
		var c Calendar
		if err := rows.Scan(&c.ID, &c.Name, &c.Title, &c.Color); err != nil {
			return nil, err
		}
		cals = append(cals, c)
	}
	return cals, rows.Err()
}

// RemoveCalendar deletes a calendar by name, cascading to its events and
// their reminders. Returns true when a row was actually removed.
func (s *Store) RemoveCalendar(name string) (bool, error) {
	var removed bool
	err := retryOnContention(func() error {
		res, err := s.db.Exec(`DELETE FROM calendars WHERE name = ?`, name)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		removed = n > 0
		return err
	})
	if err != nil {
		return false, asStoreErr(err)
	}
	return removed, nil
}

// RemoveCalendars deletes every calendar in the store (cascading).
func (s *Store) RemoveCalendars() error {
	return asStoreErr(retryOnContention(func() error {
		_, err := s.db.Exec(`DELETE FROM calendars`)
		return err
	}))
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// EventRef is the cursor projection of one event row: just enough to batch
// reminder writes and deletes against it.
type EventRef struct {
	ID    int64     `json:"id"`
	Start time.Time `json:"start"`
}

// EventCursor iterates the events of one calendar in start order. Count is
// known up front so callers can report determinate progress.
type EventCursor struct {
	refs []EventRef
	pos  int
}

// NewEventCursor wraps a preloaded slice of refs in a cursor. Exists so
// fakes of Adapter can return cursors without a database.
func NewEventCursor(refs []EventRef) *EventCursor { return &EventCursor{refs: refs} }

// Count returns the total number of events behind the cursor.
func (c *EventCursor) Count() int { return len(c.refs) }

// Next returns the next event reference, or ok == false at the end.
func (c *EventCursor) Next() (EventRef, bool) {
	if c.pos >= len(c.refs) {
		return EventRef{}, false
	}
	ref := c.refs[c.pos]
	c.pos++
	return ref, true
}

// QueryCalendarEvents returns a cursor over the (id, start) pairs of every
// event in the calendar, ordered by start time.
func (s *Store) QueryCalendarEvents(calendarID int64) (*EventCursor, error) {
	rows, err := s.db.Query(
		`SELECT id, dtstart FROM events WHERE calendar_id = ? ORDER BY dtstart ASC, id ASC`,
		calendarID,
	)
	if err != nil {
		return nil, asStoreErr(err)
	}
	defer rows.Close()

	cur := &EventCursor{}
	for rows.Next() {
		var ref EventRef
		var startMs int64
		if err := rows.Scan(&ref.ID, &startMs); err != nil {
			return nil, err
		}
		ref.Start = time.UnixMilli(startMs).UTC()
		cur.refs = append(cur.refs, ref)
	}
	return cur, rows.Err()
}

// ListCalendarEvents returns the full event rows of a calendar ordered by
// start time. Used by the exporter and the status view, not the sync loop.
func (s *Store) ListCalendarEvents(calendarID int64) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT id, calendar_id, title, COALESCE(description,''), COALESCE(location,''), dtstart, dtend
		 FROM events WHERE calendar_id = ? ORDER BY dtstart ASC, id ASC`,
		calendarID,
	)
	if err != nil {
		return nil, asStoreErr(err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		var startMs int64
		var endMs sql.NullInt64
		if err := rows.Scan(&e.ID, &e.CalendarID, &e.Title, &e.Description, &e.Location, &startMs, &endMs); err != nil {
			return nil, err
		}
		e.Start = time.UnixMilli(startMs).UTC()
		if endMs.Valid {
			e.End = time.UnixMilli(endMs.Int64).UTC()
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountCalendarEvents returns the number of events in a calendar.
func (s *Store) CountCalendarEvents(calendarID int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE calendar_id = ?`, calendarID).Scan(&n)
	if err != nil {
		return 0, asStoreErr(err)
	}
	return n, nil
}

// CreateCalendarEvents writes one batch of events in a single transaction
// and returns the number inserted. Callers keep batches at or below the
// sync engine's chunk size; the store does not enforce a limit.
func (s *Store) CreateCalendarEvents(events []model.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	var inserted int
	err := retryOnContention(func() error {
		inserted = 0
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		stmt, err := tx.Prepare(
			`INSERT INTO events (calendar_id, title, description, location, dtstart, dtend)
			 VALUES (?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range events {
			var end interface{}
			if e.HasEnd() {
				end = e.End.UnixMilli()
			}
			if _, err := stmt.Exec(e.CalendarID, e.Title, e.Description, e.Location, e.Start.UnixMilli(), end); err != nil {
				return err
			}
			inserted++
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, asStoreErr(err)
	}
	return inserted, nil
}

// RemoveCalendarEventsBefore deletes events of a calendar starting before
// t, returning the number removed. Reminders cascade.
func (s *Store) RemoveCalendarEventsBefore(calendarID int64, t time.Time) (int, error) {
	var n int64
	err := retryOnContention(func() error {
		res, err := s.db.Exec(
			`DELETE FROM events WHERE calendar_id = ? AND dtstart < ?`,
			calendarID, t.UnixMilli(),
		)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, asStoreErr(err)
	}
	return int(n), nil
}

// ---------------------------------------------------------------------------
// Reminders
// ---------------------------------------------------------------------------

// ReminderRow attaches one reminder to one stored event.
type ReminderRow struct {
	EventID int64 `json:"event_id"`
	Minutes int   `json:"minutes"`
	Method  int   `json:"method"`
}

// CreateCalendarReminders writes one batch of reminder rows in a single
// transaction and returns the number inserted.
func (s *Store) CreateCalendarReminders(reminders []ReminderRow) (int, error) {
	if len(reminders) == 0 {
		return 0, nil
	}
	var inserted int
	err := retryOnContention(func() error {
		inserted = 0
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		stmt, err := tx.Prepare(`INSERT INTO reminders (event_id, minutes, method) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range reminders {
			if _, err := stmt.Exec(r.EventID, r.Minutes, r.Method); err != nil {
				return err
			}
			inserted++
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, asStoreErr(err)
	}
	return inserted, nil
}

// DeleteRemindersByEvent removes every reminder attached to the given
// event IDs (one batch, one transaction) and returns the number removed.
func (s *Store) DeleteRemindersByEvent(eventIDs []int64) (int, error) {
	if len(eventIDs) == 0 {
		return 0, nil
	}
	var removed int64
	err := retryOnContention(func() error {
		removed = 0
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		stmt, err := tx.Prepare(`DELETE FROM reminders WHERE event_id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, id := range eventIDs {
			res, err := stmt.Exec(id)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			removed += n
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, asStoreErr(err)
	}
	return int(removed), nil
}

// CountEventReminders returns the number of reminders attached to an event.
func (s *Store) CountEventReminders(eventID int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM reminders WHERE event_id = ?`, eventID).Scan(&n)
	if err != nil {
		return 0, asStoreErr(err)
	}
	return n, nil
}
