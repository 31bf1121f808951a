package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mlindgren/suncal/pkg/task/calendars"
)

func (a *app) cmdSync(args []string) int {
	flags := flag.NewFlagSet("sync", flag.ContinueOnError)
	all := flags.Bool("all", false, "sync every known calendar, enabled or not")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	names := flags.Args()
	switch {
	case *all:
		names = calendars.Names()
	case len(names) == 0:
		names = a.enabledCalendars()
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "suncal: nothing to sync; enable calendars with 'suncal config --enable <name>'")
		return 1
	}
	for _, name := range names {
		if calendars.New(name) == nil {
			fmt.Fprintf(os.Stderr, "suncal: unknown calendar %q (known: %v)\n", name, calendars.Names())
			return 1
		}
	}

	code := a.syncCalendars(names)
	if code == 0 {
		a.prefs.MarkLaunched()
		if err := a.prefs.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "suncal: save preferences: %v\n", err)
		}
		fmt.Printf("synced %d calendar(s)\n", len(names))
	}
	return code
}
