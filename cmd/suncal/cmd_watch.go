package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
)

func (a *app) cmdWatch(args []string) int {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)
	spec := flags.String("cron", "0 3 * * *", "cron schedule for the periodic sync")
	now := flags.Bool("now", false, "run one sync immediately before scheduling")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	runOnce := func() {
		names := a.enabledCalendars()
		if len(names) == 0 {
			fmt.Fprintln(os.Stderr, "suncal: watch: no calendars enabled, skipping")
			return
		}
		start := time.Now()
		if a.syncCalendars(names) == 0 {
			fmt.Fprintf(os.Stderr, "suncal: watch: synced %d calendar(s) in %s\n",
				len(names), time.Since(start).Round(time.Millisecond))
		}
	}

	// Firings run in their own goroutines; skip a firing while a sync is
	// still writing so two runs never overlap on the same stores.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(*spec, runOnce); err != nil {
		fmt.Fprintf(os.Stderr, "suncal: watch: bad cron spec %q: %v\n", *spec, err)
		return 1
	}

	if *now {
		runOnce()
	}

	// Handle ctrl-c gracefully.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintf(os.Stderr, "watching on schedule %q (ctrl-c to stop)\n", *spec)
	c.Start()
	<-sig
	ctx := c.Stop()
	<-ctx.Done()
	fmt.Fprintln(os.Stderr, "\nstopped")
	return 0
}
