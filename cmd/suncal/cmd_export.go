package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mlindgren/suncal/pkg/calstore"
	"github.com/mlindgren/suncal/pkg/export"
)

func (a *app) cmdExport(args []string) int {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	out := flags.String("out", "", "write to file instead of stdout")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: suncal export [--out FILE] <calendar>")
		return 1
	}
	name := flags.Arg(0)

	id, err := a.store.QueryCalendarID(name)
	if err != nil {
		if errors.Is(err, calstore.ErrCalendarNotFound) {
			fmt.Fprintf(os.Stderr, "suncal: no calendar %q in the store; run 'suncal sync %s' first\n", name, name)
		} else {
			fmt.Fprintf(os.Stderr, "suncal: export: %v\n", err)
		}
		return 1
	}
	var meta calstore.Calendar
	all, err := a.store.ListCalendars()
	if err != nil {
		fmt.Fprintf(os.Stderr, "suncal: export: %v\n", err)
		return 1
	}
	for _, c := range all {
		if c.ID == id {
			meta = c
		}
	}
	events, err := a.store.ListCalendarEvents(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "suncal: export: %v\n", err)
		return 1
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "suncal: export: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	if err := export.WriteICS(w, meta, events, time.Now().UTC()); err != nil {
		fmt.Fprintf(os.Stderr, "suncal: export: %v\n", err)
		return 1
	}
	if *out != "" {
		fmt.Fprintf(os.Stderr, "wrote %d event(s) to %s\n", len(events), *out)
	}
	return 0
}
