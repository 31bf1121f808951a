package main

import (
	"flag"
	"fmt"

	"github.com/mlindgren/suncal/pkg/model"
)

func (a *app) cmdClear(args []string) int {
	flags := flag.NewFlagSet("clear", flag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return 1
	}

	names := flags.Args()
	if len(names) == 0 {
		// No names means everything, including calendars left behind by
		// variants that are no longer enabled.
		t := a.newTask(true)
		code := a.runTask(t)
		if code == 0 {
			fmt.Println("cleared all calendars")
		}
		return code
	}

	items := make([]model.TaskItem, 0, len(names))
	for _, name := range names {
		items = append(items, model.TaskItem{Calendar: name, Action: model.ActionDelete})
	}
	t := a.newTask(false, items...)
	code := a.runTask(t)
	if code == 0 {
		fmt.Printf("cleared %d calendar(s)\n", len(names))
	}
	return code
}
