// calendar.go defines the polymorphic contract every calendar kind
// implements, and the environment a generator runs against.
package task

import (
	"context"

	"github.com/mlindgren/suncal/pkg/astro"
	"github.com/mlindgren/suncal/pkg/calstore"
	"github.com/mlindgren/suncal/pkg/model"
	"github.com/mlindgren/suncal/pkg/prefs"
	"github.com/mlindgren/suncal/pkg/template"
)

// Calendar is the event-generator contract shared by every calendar kind.
// One variant exists per kind (daylight, the twilights, golden hour, the
// moon calendars, solstices); the orchestrator selects a variant by its
// stable name and drives it through InitCalendar.
type Calendar interface {
	// Name returns the stable key identifying this calendar in the store
	// and in preferences.
	Name() string

	// Title, Summary and Color return display values. Valid after Init.
	Title() string
	Summary() string
	Color() string

	// DefaultTemplate, DefaultStrings and DefaultFlags are the variant's
	// fallbacks when no user override exists in preferences. Flags and the
	// flag-indexed prefix of Strings share an index space.
	DefaultTemplate() template.Template
	DefaultStrings() model.Strings
	DefaultFlags() model.Flags

	// FlagLabel returns the display label of flag slot i, or "" when i is
	// out of range.
	FlagLabel(i int) string

	// Init resolves the variant's display title, summary, color and
	// labels against settings. Must run once before InitCalendar.
	Init(settings *prefs.Store)

	// InitCalendar generates the calendar into env.Store for the given
	// window. It refuses to touch an already-existing calendar (delete
	// first), streams ephemeris rows into bounded batches, publishes
	// nested progress, polls ctx per row, and finally attaches reminders
	// per current preferences. A nil return means the calendar completed;
	// cancellation surfaces as a context error.
	InitCalendar(ctx context.Context, env *Env, window model.Window, outer *model.Progress) error
}

// Env is the explicit execution environment passed by reference into every
// generator operation. No component retains it beyond the call.
type Env struct {
	Store  calstore.Adapter
	Source astro.Source
	Prefs  *prefs.Store

	// Resolved observer location for this run.
	LocationName string
	Latitude     string
	Longitude    string
	Altitude     string

	// Publish emits a paired (outer, inner) progress update.
	Publish func(outer, inner *model.Progress)

	// CreateReminders attaches reminders to every event of the named
	// calendar per current preferences, batched and progress-reported.
	CreateReminders func(ctx context.Context, calendar string, outer *model.Progress) error
}

// TemplateContext builds the substitution context shared by every event a
// generator emits: location tokens plus the calendar's identity. The
// per-event label is merged in at emission time.
func (e *Env) TemplateContext(cal Calendar) template.Context {
	return template.Context{
		template.TokenCalendar:  cal.Title(),
		template.TokenSummary:   cal.Summary(),
		template.TokenLocation:  e.LocationName,
		template.TokenLatitude:  e.Latitude,
		template.TokenLongitude: e.Longitude,
		template.TokenAltitude:  e.Altitude,
	}
}

// Factory resolves a calendar name to its generator variant, or nil when
// the name is unrecognized.
type Factory func(name string) Calendar
