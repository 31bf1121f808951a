// Command suncal derives astronomical calendars (sunrise and sunset,
// twilights, golden hour, moon events, solstices) from a tabular ephemeris
// and synchronizes them into a local calendar store.
package main

import (
	"fmt"
	"os"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Println("suncal", version)
		return
	}

	a, err := newApp()
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	switch os.Args[1] {
	// Setup
	case "config":
		os.Exit(a.cmdConfig(os.Args[2:]))
	case "import":
		os.Exit(a.cmdImport(os.Args[2:]))

	// Operations
	case "sync":
		os.Exit(a.cmdSync(os.Args[2:]))
	case "clear":
		os.Exit(a.cmdClear(os.Args[2:]))
	case "reminders":
		os.Exit(a.cmdReminders(os.Args[2:]))
	case "export":
		os.Exit(a.cmdExport(os.Args[2:]))
	case "watch":
		os.Exit(a.cmdWatch(os.Args[2:]))
	case "status":
		os.Exit(a.cmdStatus(os.Args[2:]))

	default:
		fmt.Fprintf(os.Stderr, "suncal: unknown command %q\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Run 'suncal --help' for usage.")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`suncal — astronomical calendars from a tabular ephemeris

Derives recurring sun and moon events from an ephemeris database and
synchronizes them into a local calendar store, bounded by a year-aligned
sliding window.

Usage:
  suncal <command> [flags]

Setup:
  config [flags]            Show or change preferences (location, window, ...)
  import --file F           Load ephemeris records (JSON lines) into the source

Commands:
  sync [calendar ...]       Update calendars (default: all enabled)
  clear [calendar ...]      Remove calendars (default: all known)
  reminders <calendar>      Show or change a calendar's reminder slots
  export <calendar>         Write a calendar as iCalendar to stdout
  watch [--cron SPEC]       Run sync on a cron schedule
  status                    Show calendars, event counts, notes, last sync

Environment:
  SUNCAL_DB          Calendar store path (default: .suncal/calendars.db)
  SUNCAL_EPHEMERIS   Ephemeris database path (default: .suncal/ephemeris.db)
  SUNCAL_PREFS       Preferences file path (default: .suncal/prefs.yaml)

Most commands support --json for machine-readable output.

Exit codes:
  0  success
  1  error
`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "suncal: "+format+"\n", args...)
	os.Exit(1)
}
