// Package astro provides the ephemeris data source suncal generates
// events from.
//
// The source is consumed as an opaque table of precomputed timestamps:
// one row per logical date, one nullable timestamp column per phenomenon.
// How the timestamps were computed is outside suncal's concern; a row
// either has a value for a column (the phenomenon occurs that date at
// that instant) or it does not (polar night, no moonrise that day, and
// so on). Generators query a dataset with a column projection and a time
// window, and stream the rows in date order.
package astro

import (
	"context"
	"errors"
	"time"

	"github.com/mlindgren/suncal/pkg/model"
)

// ErrUnavailable indicates a dataset or its backing storage could not be
// resolved. The failed resource is named in the wrapping error.
var ErrUnavailable = errors.New("astro source: unavailable")

// Dataset names.
const (
	DatasetSun       = "sun"
	DatasetMoon      = "moon"
	DatasetMoonPhase = "moonphase"
	DatasetMoonPos   = "moonpos"
	DatasetSeasons   = "seasons"
)

// Columns of the sun dataset.
const (
	ColSunrise       = "actual_rise"
	ColNoon          = "noon"
	ColSunset        = "actual_set"
	ColCivilRise     = "civil_rise"
	ColCivilSet      = "civil_set"
	ColNauticalRise  = "nautical_rise"
	ColNauticalSet   = "nautical_set"
	ColAstroRise     = "astro_rise"
	ColAstroSet      = "astro_set"
	ColGoldenMorning = "golden_morning"
	ColGoldenEvening = "golden_evening"
)

// Columns of the moon dataset.
const (
	ColMoonrise = "moonrise"
	ColMoonset  = "moonset"
)

// Columns of the moonphase dataset (one row per lunation).
const (
	ColPhaseNew   = "phase_new"
	ColPhaseFirst = "phase_first"
	ColPhaseFull  = "phase_full"
	ColPhaseThird = "phase_third"
)

// Columns of the moonpos dataset (one row per anomalistic month).
const (
	ColApogee  = "apogee"
	ColPerigee = "perigee"
)

// Columns of the seasons dataset (one row per year).
const (
	ColSpringEquinox  = "spring_equinox"
	ColSummerSolstice = "summer_solstice"
	ColAutumnEquinox  = "autumn_equinox"
	ColWinterSolstice = "winter_solstice"
)

// datasetColumns whitelists the queryable columns of each dataset.
var datasetColumns = map[string][]string{
	DatasetSun: {
		ColSunrise, ColNoon, ColSunset,
		ColCivilRise, ColCivilSet,
		ColNauticalRise, ColNauticalSet,
		ColAstroRise, ColAstroSet,
		ColGoldenMorning, ColGoldenEvening,
	},
	DatasetMoon:      {ColMoonrise, ColMoonset},
	DatasetMoonPhase: {ColPhaseNew, ColPhaseFirst, ColPhaseFull, ColPhaseThird},
	DatasetMoonPos:   {ColApogee, ColPerigee},
	DatasetSeasons:   {ColSpringEquinox, ColSummerSolstice, ColAutumnEquinox, ColWinterSolstice},
}

// Query selects a column projection of one dataset inside a time window.
// Rows whose logical date falls in [Window.Start, Window.End) match.
type Query struct {
	Dataset string
	Columns []string
	Window  model.Window
}

// Row is one tuple of nullable timestamps, indexed by the query's column
// order.
type Row struct {
	values []*time.Time
}

// Get returns the timestamp at column index i. ok is false for a null
// column or an out-of-range index.
func (r Row) Get(i int) (time.Time, bool) {
	if i < 0 || i >= len(r.values) || r.values[i] == nil {
		return time.Time{}, false
	}
	return *r.values[i], true
}

// NewRow builds a row from nullable timestamps in column order. Exists
// alongside NewCursor so fakes of Source can serve canned results.
func NewRow(values ...*time.Time) Row { return Row{values: values} }

// Cursor iterates query results in date order. The total count is known
// up front so generators can report determinate progress.
type Cursor struct {
	rows []Row
	pos  int
}

// NewCursor wraps preloaded rows in a cursor.
func NewCursor(rows []Row) *Cursor { return &Cursor{rows: rows} }

// Count returns the total number of rows behind the cursor.
func (c *Cursor) Count() int { return len(c.rows) }

// Next returns the next row, or ok == false at the end.
func (c *Cursor) Next() (Row, bool) {
	if c.pos >= len(c.rows) {
		return Row{}, false
	}
	row := c.rows[c.pos]
	c.pos++
	return row, true
}

// Source is the data-source contract generators consume.
type Source interface {
	// Query runs q and returns a cursor over the matching rows. A dataset
	// that cannot be resolved yields an error wrapping ErrUnavailable.
	Query(ctx context.Context, q Query) (*Cursor, error)
}
