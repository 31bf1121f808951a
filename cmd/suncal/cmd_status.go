package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mlindgren/suncal/pkg/prefs"
	"github.com/mlindgren/suncal/pkg/task/calendars"
	"github.com/mlindgren/suncal/pkg/window"
)

func (a *app) cmdStatus(args []string) int {
	flags := flag.NewFlagSet("status", flag.ContinueOnError)
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	stored, err := a.store.ListCalendars()
	if err != nil {
		fmt.Fprintf(os.Stderr, "suncal: status: %v\n", err)
		return 1
	}

	type calStatus struct {
		Name    string `json:"name"`
		Title   string `json:"title"`
		Color   string `json:"color"`
		Events  int64  `json:"events"`
		Note    string `json:"location_note,omitempty"`
		Enabled bool   `json:"enabled"`
	}
	statuses := make([]calStatus, 0, len(stored))
	for _, c := range stored {
		n, err := a.store.CountCalendarEvents(c.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "suncal: status: %v\n", err)
			return 1
		}
		note, _ := a.prefs.Note(c.Name, prefs.NoteLocationName)
		statuses = append(statuses, calStatus{
			Name:    c.Name,
			Title:   c.Title,
			Color:   c.Color,
			Events:  n,
			Note:    note,
			Enabled: a.prefs.CalendarEnabled(c.Name),
		})
	}

	past, future := a.prefs.WindowMillis()
	win := window.ComputeMillis(time.Now(), past, future)
	locName, lat, lon, alt, hasLoc := a.prefs.Location()
	lastSync, synced := a.prefs.LastSync()

	if *jsonOut {
		out := map[string]interface{}{
			"calendars":    statuses,
			"known":        calendars.Names(),
			"window_start": win.Start.Format(time.RFC3339),
			"window_end":   win.End.Format(time.RFC3339),
		}
		if hasLoc {
			out["location"] = map[string]string{
				"name": locName, "latitude": lat, "longitude": lon, "altitude": alt,
			}
		}
		if synced {
			out["last_sync"] = lastSync.Format(time.RFC3339)
		}
		printJSON(out)
		return 0
	}

	if hasLoc {
		fmt.Printf("location: %s (%s, %s, %sm)\n", locName, lat, lon, alt)
	} else {
		fmt.Println("location: not configured")
	}
	fmt.Printf("window:   %s .. %s\n",
		win.Start.Format("2006-01-02"), win.End.Format("2006-01-02"))
	if synced {
		fmt.Printf("last sync: %s\n", lastSync.Format(time.RFC3339))
	} else {
		fmt.Println("last sync: never")
	}

	if len(statuses) == 0 {
		fmt.Println("no calendars in the store")
		return 0
	}
	fmt.Printf("%d calendar(s):\n", len(statuses))
	for _, s := range statuses {
		state := "disabled"
		if s.Enabled {
			state = "enabled"
		}
		fmt.Printf("  %-20s %6d events  %s  %s", s.Name, s.Events, s.Color, state)
		if s.Note != "" {
			fmt.Printf("  @ %s", s.Note)
		}
		fmt.Println()
	}
	return 0
}
