package calstore

import (
	"errors"
	"strings"
)

// Sentinel errors for the store's failure taxonomy. Callers test with
// errors.Is; the orchestrator treats ErrPermission as fatal for the whole
// run and everything else as per-calendar.
var (
	// ErrPermission indicates the store rejected access outright (e.g. a
	// read-only or inaccessible database). Aborts the entire run.
	ErrPermission = errors.New("calendar store: permission denied")

	// ErrCalendarExists is returned when creating a calendar whose name is
	// already present. Generated calendars are immutable within a run;
	// callers must delete before regenerating.
	ErrCalendarExists = errors.New("calendar store: calendar already exists")

	// ErrCalendarNotFound is returned when resolving a name or ID that is
	// not in the store.
	ErrCalendarNotFound = errors.New("calendar store: calendar not found")
)

// permission-denial patterns surfaced by modernc.org/sqlite.
var permissionPatterns = []string{
	"SQLITE_READONLY",
	"SQLITE_AUTH",
	"SQLITE_PERM",
	"attempt to write a readonly database",
	"access permission denied",
	"unable to open database file",
	"permission denied",
}

// asStoreErr maps a raw driver error onto the store taxonomy, leaving
// unrecognized errors untouched.
func asStoreErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, p := range permissionPatterns {
		if strings.Contains(msg, p) {
			return errors.Join(ErrPermission, err)
		}
	}
	if strings.Contains(msg, "UNIQUE constraint failed: calendars.name") {
		return errors.Join(ErrCalendarExists, err)
	}
	return err
}
