package task

import (
	"context"

	"github.com/mlindgren/suncal/pkg/calstore"
	"github.com/mlindgren/suncal/pkg/model"
)

const (
	// reminderBatch bounds rows per store write.
	reminderBatch = 128
	// progressEvery is the row cadence of inner progress updates.
	progressEvery = 8
)

// createCalendarReminders attaches the configured reminders to every event
// of the named calendar. Writes are batched; progress is published every
// few rows and at the end.
func (t *Task) createCalendarReminders(ctx context.Context, cal string, outer *model.Progress) error {
	var enabled []model.Reminder
	for i := 0; i < t.cfg.Prefs.ReminderCount(cal); i++ {
		if r := t.cfg.Prefs.Reminder(cal, i); r.Enabled() {
			enabled = append(enabled, r)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	id, err := t.cfg.Store.QueryCalendarID(cal)
	if err != nil {
		return err
	}
	cursor, err := t.cfg.Store.QueryCalendarEvents(id)
	if err != nil {
		return err
	}
	total := cursor.Count()
	inner := &model.Progress{Total: total, Message: cal + "\n" + msgReminders}
	t.publish(outer, inner)

	batch := make([]calstore.ReminderRow, 0, reminderBatch+len(enabled))
	c := 0
	for {
		ref, ok := cursor.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, r := range enabled {
			batch = append(batch, calstore.ReminderRow{
				EventID: ref.ID,
				Minutes: r.Minutes,
				Method:  r.Method,
			})
		}
		// Multiple slots per event can overfill a batch; drain full
		// chunks so no single write exceeds reminderBatch rows.
		for len(batch) >= reminderBatch {
			if _, err := t.cfg.Store.CreateCalendarReminders(batch[:reminderBatch]); err != nil {
				return err
			}
			batch = batch[reminderBatch:]
		}
		c++
		if c%progressEvery == 0 || c == total {
			inner.Current = c
			t.publish(outer, inner)
		}
	}
	if len(batch) > 0 {
		if _, err := t.cfg.Store.CreateCalendarReminders(batch); err != nil {
			return err
		}
	}
	return nil
}

// removeCalendarReminders strips every reminder from the named calendar's
// events and reports how many were removed.
func (t *Task) removeCalendarReminders(ctx context.Context, cal string, outer *model.Progress) (int, error) {
	id, err := t.cfg.Store.QueryCalendarID(cal)
	if err != nil {
		return 0, err
	}
	cursor, err := t.cfg.Store.QueryCalendarEvents(id)
	if err != nil {
		return 0, err
	}
	total := cursor.Count()
	inner := &model.Progress{Total: total, Message: cal + "\n" + msgReminders}
	t.publish(outer, inner)

	removed := 0
	ids := make([]int64, 0, reminderBatch)
	c := 0
	for {
		ref, ok := cursor.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		ids = append(ids, ref.ID)
		c++
		last := c == total
		if c%reminderBatch == 0 || last {
			n, err := t.cfg.Store.DeleteRemindersByEvent(ids)
			if err != nil {
				return removed, err
			}
			removed += n
			ids = ids[:0]
		}
		if c%progressEvery == 0 || last {
			inner.Current = c
			t.publish(outer, inner)
		}
	}
	return removed, nil
}

// updateCalendarReminders rebuilds reminders from current preferences by
// removing what exists and recreating it.
func (t *Task) updateCalendarReminders(ctx context.Context, cal string, outer *model.Progress) error {
	if _, err := t.removeCalendarReminders(ctx, cal, outer); err != nil {
		return err
	}
	return t.createCalendarReminders(ctx, cal, outer)
}
