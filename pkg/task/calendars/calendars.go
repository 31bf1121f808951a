// Package calendars holds the generator variants: one per calendar kind,
// all sharing a single streaming implementation that differs only in the
// ephemeris projection and in how columns map to events.
package calendars

import (
	"context"
	"errors"
	"fmt"

	"github.com/mlindgren/suncal/pkg/astro"
	"github.com/mlindgren/suncal/pkg/calstore"
	"github.com/mlindgren/suncal/pkg/model"
	"github.com/mlindgren/suncal/pkg/prefs"
	"github.com/mlindgren/suncal/pkg/task"
	"github.com/mlindgren/suncal/pkg/template"
)

const (
	eventBatch    = 128
	progressEvery = 8
)

// pairing selects how a variant turns ephemeris columns into events.
type pairing int

const (
	// points emits one instantaneous event per enabled column.
	points pairing = iota
	// spans emits up to two [start, end) events per row; the morning
	// pair occupies columns 0-1 and the evening pair columns 2-3.
	spans
)

var _ task.Calendar = (*calendar)(nil)

// calendar is the shared variant implementation. The per-kind catalog in
// registry.go is the only thing that differs between kinds.
type calendar struct {
	name    string
	dataset string
	columns []string
	mode    pairing
	title   string
	summary string
	color   string
	tpl     template.Template
	labels  model.Strings
	flags   model.Flags
}

func (c *calendar) Name() string    { return c.name }
func (c *calendar) Title() string   { return c.title }
func (c *calendar) Summary() string { return c.summary }
func (c *calendar) Color() string   { return c.color }

func (c *calendar) DefaultTemplate() template.Template { return c.tpl }
func (c *calendar) DefaultStrings() model.Strings      { return c.labels }
func (c *calendar) DefaultFlags() model.Flags          { return c.flags }

func (c *calendar) FlagLabel(i int) string {
	if i < 0 || i >= len(c.flags) {
		return ""
	}
	return c.labels.At(i)
}

// Init resolves display values against settings. Only color is
// user-overridable here; flags, labels and templates are read fresh at
// generation time so edits between runs take effect.
func (c *calendar) Init(settings *prefs.Store) {
	c.color = settings.CalendarColor(c.name, c.color)
}

func (c *calendar) InitCalendar(ctx context.Context, env *task.Env, win model.Window, outer *model.Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exists, err := env.Store.HasCalendar(c.name)
	if err != nil {
		return err
	}
	if exists {
		// Stale calendars are deleted first, never updated in place.
		return fmt.Errorf("%w: %s", calstore.ErrCalendarExists, c.name)
	}
	id, err := env.Store.CreateCalendar(c.name, c.title, c.color)
	if err != nil {
		return err
	}
	cursor, err := env.Source.Query(ctx, astro.Query{Dataset: c.dataset, Columns: c.columns, Window: win})
	if err != nil {
		return err
	}
	env.Prefs.SetNote(c.name, prefs.NoteLocationName, env.LocationName)

	flags := env.Prefs.Flags(c.name, c.flags)
	labels := env.Prefs.Strings(c.name, c.labels)
	tpl := env.Prefs.Template(c.name, c.tpl)
	tctx := env.TemplateContext(c)

	total := cursor.Count()
	inner := &model.Progress{Total: total, Message: c.title + " (" + env.LocationName + ")"}
	env.Publish(outer, inner)

	var batchErr error
	buf := make([]model.Event, 0, eventBatch*len(c.columns))
	n := 0
	for {
		row, ok := cursor.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			// Flushed batches stay; the in-flight buffer is dropped.
			return err
		}
		buf = c.emit(buf, row, id, flags, labels, tpl, tctx)
		n++
		last := n == total
		if n%eventBatch == 0 || last {
			if _, err := env.Store.CreateCalendarEvents(buf); err != nil {
				if errors.Is(err, calstore.ErrPermission) {
					return err
				}
				batchErr = err
			}
			buf = buf[:0]
		}
		if n%progressEvery == 0 || last {
			inner.Current = n
			env.Publish(outer, inner)
		}
	}

	if err := env.CreateReminders(ctx, c.name, outer); err != nil {
		if errors.Is(err, calstore.ErrPermission) || errors.Is(err, context.Canceled) {
			return err
		}
		if batchErr == nil {
			batchErr = err
		}
	}
	if batchErr != nil {
		return fmt.Errorf("calendar %s completed with errors: %w", c.name, batchErr)
	}
	return nil
}

// emit appends this row's events to buf per the variant's pairing mode.
// Null columns and disabled flags are skipped silently.
func (c *calendar) emit(buf []model.Event, row astro.Row, calID int64, flags model.Flags, labels model.Strings, tpl template.Template, tctx template.Context) []model.Event {
	switch c.mode {
	case spans:
		for pair := 0; pair < 2; pair++ {
			if pair >= len(flags) || !flags[pair] {
				continue
			}
			start, ok := row.Get(pair * 2)
			if !ok {
				continue
			}
			ectx := tctx.WithEvent(labels.At(pair))
			ev := model.Event{
				CalendarID:  calID,
				Title:       tpl.RenderTitle(ectx),
				Description: tpl.RenderDesc(ectx),
				Location:    tpl.RenderLocation(ectx),
				Start:       start,
			}
			if end, ok := row.Get(pair*2 + 1); ok {
				ev.End = end
			}
			buf = append(buf, ev)
		}
	default:
		for i := range c.columns {
			if i >= len(flags) || !flags[i] {
				continue
			}
			ts, ok := row.Get(i)
			if !ok {
				continue
			}
			ectx := tctx.WithEvent(labels.At(i))
			buf = append(buf, model.Event{
				CalendarID:  calID,
				Title:       tpl.RenderTitle(ectx),
				Description: tpl.RenderDesc(ectx),
				Location:    tpl.RenderLocation(ectx),
				Start:       ts,
			})
		}
	}
	return buf
}
