package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mlindgren/suncal/pkg/model"
	"github.com/mlindgren/suncal/pkg/task/calendars"
)

func (a *app) cmdReminders(args []string) int {
	flags := flag.NewFlagSet("reminders", flag.ContinueOnError)
	add := flags.String("add", "", "append a slot as minutes[:method] (method: default, alert, email)")
	pop := flags.Bool("pop", false, "remove the newest slot")
	clear := flags.Bool("clear", false, "remove every slot")
	apply := flags.Bool("apply", false, "rewrite reminders on the stored calendar now")
	strip := flags.Bool("strip", false, "remove reminders from the stored calendar now")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: suncal reminders [flags] <calendar>")
		return 1
	}
	name := flags.Arg(0)
	if calendars.New(name) == nil {
		fmt.Fprintf(os.Stderr, "suncal: unknown calendar %q\n", name)
		return 1
	}

	changed := false
	if *add != "" {
		minutes, method, err := parseReminderSpec(*add)
		if err != nil {
			fmt.Fprintf(os.Stderr, "suncal: %v\n", err)
			return 1
		}
		a.prefs.AddReminder(name, minutes, method)
		changed = true
	}
	if *pop {
		a.prefs.RemoveLastReminder(name)
		changed = true
	}
	if *clear {
		a.prefs.RemoveAllReminders(name)
		changed = true
	}
	if changed {
		if err := a.prefs.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "suncal: save preferences: %v\n", err)
			return 1
		}
	}

	if *apply || *strip {
		action := model.ActionRemindersUpdate
		if *strip {
			action = model.ActionRemindersDelete
		}
		t := a.newTask(false, model.TaskItem{Calendar: name, Action: action})
		if code := a.runTask(t); code != 0 {
			return code
		}
	}

	slots := make([]model.Reminder, 0, a.prefs.ReminderCount(name))
	for i := 0; i < a.prefs.ReminderCount(name); i++ {
		slots = append(slots, a.prefs.Reminder(name, i))
	}
	if *jsonOut {
		printJSON(map[string]interface{}{"calendar": name, "reminders": slots})
		return 0
	}
	if len(slots) == 0 {
		fmt.Printf("%s: no reminder slots\n", name)
		return 0
	}
	fmt.Printf("%s: %d reminder slot(s):\n", name, len(slots))
	for _, r := range slots {
		fmt.Printf("  [%d] %s, %s\n", r.Index, describeMinutes(r.Minutes), describeMethod(r.Method))
	}
	return 0
}

// parseReminderSpec parses "minutes[:method]".
func parseReminderSpec(spec string) (minutes, method int, err error) {
	minStr, methodStr, hasMethod := strings.Cut(spec, ":")
	minutes, err = strconv.Atoi(minStr)
	if err != nil {
		return 0, 0, fmt.Errorf("bad minutes %q", minStr)
	}
	method = model.MethodDefault
	if hasMethod {
		switch methodStr {
		case "default":
			method = model.MethodDefault
		case "alert":
			method = model.MethodAlert
		case "email":
			method = model.MethodEmail
		case "disabled":
			method = model.MethodDisabled
		default:
			return 0, 0, fmt.Errorf("bad method %q (default, alert, email, disabled)", methodStr)
		}
	}
	return minutes, method, nil
}

func describeMinutes(m int) string {
	switch {
	case m == 0:
		return "at the event"
	case m > 0:
		return fmt.Sprintf("%d min before", m)
	default:
		return fmt.Sprintf("%d min after", -m)
	}
}

func describeMethod(m int) string {
	switch m {
	case model.MethodDisabled:
		return "disabled"
	case model.MethodAlert:
		return "alert"
	case model.MethodEmail:
		return "email"
	default:
		return "default method"
	}
}
