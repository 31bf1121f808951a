package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mlindgren/suncal/pkg/task/calendars"
)

func (a *app) cmdConfig(args []string) int {
	flags := flag.NewFlagSet("config", flag.ContinueOnError)
	location := flags.String("location", "", "observer location as name:lat:lon:alt")
	windowPast := flags.Int64("window-past", 0, "window reach into the past, in ms (0 keeps current)")
	windowFuture := flags.Int64("window-future", 0, "window reach into the future, in ms (0 keeps current)")
	enable := flags.String("enable", "", "comma-separated calendars to enable")
	disable := flags.String("disable", "", "comma-separated calendars to disable")
	color := flags.String("color", "", "calendar color as name:#rrggbb")
	title := flags.String("title", "", "event title pattern as name:pattern (%M, %cal, %loc, ...)")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	changed := false
	if *location != "" {
		parts := strings.Split(*location, ":")
		if len(parts) != 4 {
			fmt.Fprintln(os.Stderr, "suncal: --location wants name:lat:lon:alt")
			return 1
		}
		a.prefs.SetLocation(parts[0], parts[1], parts[2], parts[3])
		changed = true
	}
	if *windowPast > 0 || *windowFuture > 0 {
		past, future := a.prefs.WindowMillis()
		if *windowPast > 0 {
			past = *windowPast
		}
		if *windowFuture > 0 {
			future = *windowFuture
		}
		a.prefs.SetWindowMillis(past, future)
		changed = true
	}
	for _, name := range splitList(*enable) {
		if calendars.New(name) == nil {
			fmt.Fprintf(os.Stderr, "suncal: unknown calendar %q\n", name)
			return 1
		}
		a.prefs.SetCalendarEnabled(name, true)
		changed = true
	}
	for _, name := range splitList(*disable) {
		a.prefs.SetCalendarEnabled(name, false)
		changed = true
	}
	if *color != "" {
		name, val, ok := strings.Cut(*color, ":")
		if !ok || calendars.New(name) == nil {
			fmt.Fprintln(os.Stderr, "suncal: --color wants <calendar>:#rrggbb")
			return 1
		}
		a.prefs.SetCalendarColor(name, val)
		changed = true
	}
	if *title != "" {
		name, pattern, ok := strings.Cut(*title, ":")
		cal := calendars.New(name)
		if !ok || cal == nil {
			fmt.Fprintln(os.Stderr, "suncal: --title wants <calendar>:<pattern>")
			return 1
		}
		tpl := a.prefs.Template(name, cal.DefaultTemplate())
		tpl.Title = pattern
		a.prefs.SetTemplate(name, tpl)
		changed = true
	}

	if changed {
		if err := a.prefs.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "suncal: save preferences: %v\n", err)
			return 1
		}
		return 0
	}

	// No flags: show the effective configuration.
	locName, lat, lon, alt, hasLoc := a.prefs.Location()
	if hasLoc {
		fmt.Printf("location: %s (%s, %s, %sm)\n", locName, lat, lon, alt)
	} else {
		fmt.Println("location: not configured")
	}
	past, future := a.prefs.WindowMillis()
	fmt.Printf("window:   past %dms, future %dms\n", past, future)
	for _, name := range calendars.Names() {
		cal := calendars.New(name)
		cal.Init(a.prefs)
		state := "disabled"
		if a.prefs.CalendarEnabled(name) {
			state = "enabled"
		}
		tpl := a.prefs.Template(name, cal.DefaultTemplate())
		fmt.Printf("  %-20s %s  %s  title=%q\n", name, cal.Color(), state, tpl.Title)
	}
	return 0
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
