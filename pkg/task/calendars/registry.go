package calendars

import (
	"sort"

	"github.com/mlindgren/suncal/pkg/astro"
	"github.com/mlindgren/suncal/pkg/model"
	"github.com/mlindgren/suncal/pkg/task"
	"github.com/mlindgren/suncal/pkg/template"
)

// Stable calendar names. These key the store, preferences and the CLI.
const (
	Daylight         = "daylight"
	CivilTwilight    = "twilight-civil"
	NauticalTwilight = "twilight-nautical"
	AstroTwilight    = "twilight-astro"
	GoldenHour       = "goldenhour"
	Moonrise         = "moonrise"
	MoonPhase        = "moonphase"
	MoonApsis        = "moonapsis"
	Solstice         = "solstice"
)

var (
	sunTemplate = template.Template{
		Title:    "%M",
		Desc:     "%M @ %loc",
		Location: "%loc",
	}
	pairTemplate = template.Template{
		Title:    "%cal",
		Desc:     "%M @ %loc",
		Location: "%loc",
	}
	worldTemplate = template.Template{
		Title: "%M",
		Desc:  "%M",
	}
)

// variants is the full catalog. Span variants carry four columns in
// fixed order (morning start, morning end, evening start, evening end),
// two flags and three labels, the third being the period name.
var variants = map[string]func() *calendar{
	Daylight: func() *calendar {
		return &calendar{
			name:    Daylight,
			dataset: astro.DatasetSun,
			columns: []string{astro.ColSunrise, astro.ColNoon, astro.ColSunset},
			mode:    points,
			title:   "Daylight",
			summary: "sunrise, solar noon, sunset",
			color:   "#ffca28",
			tpl:     sunTemplate,
			labels:  model.Strings{"Sunrise", "Solar Noon", "Sunset"},
			flags:   model.Flags{true, true, true},
		}
	},
	CivilTwilight: func() *calendar {
		return &calendar{
			name:    CivilTwilight,
			dataset: astro.DatasetSun,
			columns: []string{astro.ColCivilRise, astro.ColSunrise, astro.ColSunset, astro.ColCivilSet},
			mode:    spans,
			title:   "Civil Twilight",
			summary: "civil twilight, morning and evening",
			color:   "#2196f3",
			tpl:     pairTemplate,
			labels:  model.Strings{"Civil Twilight (morning)", "Civil Twilight (evening)", "Civil Twilight"},
			flags:   model.Flags{true, true},
		}
	},
	NauticalTwilight: func() *calendar {
		return &calendar{
			name:    NauticalTwilight,
			dataset: astro.DatasetSun,
			columns: []string{astro.ColNauticalRise, astro.ColCivilRise, astro.ColCivilSet, astro.ColNauticalSet},
			mode:    spans,
			title:   "Nautical Twilight",
			summary: "nautical twilight, morning and evening",
			color:   "#1565c0",
			tpl:     pairTemplate,
			labels:  model.Strings{"Nautical Twilight (morning)", "Nautical Twilight (evening)", "Nautical Twilight"},
			flags:   model.Flags{true, true},
		}
	},
	AstroTwilight: func() *calendar {
		return &calendar{
			name:    AstroTwilight,
			dataset: astro.DatasetSun,
			columns: []string{astro.ColAstroRise, astro.ColNauticalRise, astro.ColNauticalSet, astro.ColAstroSet},
			mode:    spans,
			title:   "Astronomical Twilight",
			summary: "astronomical twilight, morning and evening",
			color:   "#0d47a1",
			tpl:     pairTemplate,
			labels:  model.Strings{"Astronomical Twilight (morning)", "Astronomical Twilight (evening)", "Astronomical Twilight"},
			flags:   model.Flags{true, true},
		}
	},
	GoldenHour: func() *calendar {
		return &calendar{
			name:    GoldenHour,
			dataset: astro.DatasetSun,
			columns: []string{astro.ColCivilRise, astro.ColGoldenMorning, astro.ColGoldenEvening, astro.ColCivilSet},
			mode:    spans,
			title:   "Golden Hour",
			summary: "golden hour, morning and evening",
			color:   "#ff9800",
			tpl:     pairTemplate,
			labels:  model.Strings{"Golden Hour (morning)", "Golden Hour (evening)", "Golden Hour"},
			flags:   model.Flags{true, true},
		}
	},
	Moonrise: func() *calendar {
		return &calendar{
			name:    Moonrise,
			dataset: astro.DatasetMoon,
			columns: []string{astro.ColMoonrise, astro.ColMoonset},
			mode:    points,
			title:   "Moon",
			summary: "moonrise, moonset",
			color:   "#9e9e9e",
			tpl:     sunTemplate,
			labels:  model.Strings{"Moonrise", "Moonset"},
			flags:   model.Flags{true, true},
		}
	},
	MoonPhase: func() *calendar {
		return &calendar{
			name:    MoonPhase,
			dataset: astro.DatasetMoonPhase,
			columns: []string{astro.ColPhaseNew, astro.ColPhaseFirst, astro.ColPhaseFull, astro.ColPhaseThird},
			mode:    points,
			title:   "Moon Phases",
			summary: "major moon phases",
			color:   "#607d8b",
			tpl:     worldTemplate,
			labels:  model.Strings{"New Moon", "First Quarter", "Full Moon", "Third Quarter"},
			flags:   model.Flags{true, true, true, true},
		}
	},
	MoonApsis: func() *calendar {
		return &calendar{
			name:    MoonApsis,
			dataset: astro.DatasetMoonPos,
			columns: []string{astro.ColApogee, astro.ColPerigee},
			mode:    points,
			title:   "Moon Apsis",
			summary: "lunar apogee and perigee",
			color:   "#455a64",
			tpl:     worldTemplate,
			labels:  model.Strings{"Lunar Apogee", "Lunar Perigee"},
			flags:   model.Flags{true, true},
		}
	},
	Solstice: func() *calendar {
		return &calendar{
			name:    Solstice,
			dataset: astro.DatasetSeasons,
			columns: []string{astro.ColSpringEquinox, astro.ColSummerSolstice, astro.ColAutumnEquinox, astro.ColWinterSolstice},
			mode:    points,
			title:   "Solstices & Equinoxes",
			summary: "solstices and equinoxes",
			color:   "#8bc34a",
			tpl:     worldTemplate,
			labels:  model.Strings{"Spring Equinox", "Summer Solstice", "Autumn Equinox", "Winter Solstice"},
			flags:   model.Flags{true, true, true, true},
		}
	},
}

// New resolves name to a fresh generator, or nil when unrecognized.
// The returned value satisfies the orchestrator's Factory contract.
func New(name string) task.Calendar {
	mk, ok := variants[name]
	if !ok {
		return nil
	}
	return mk()
}

// Names returns every known calendar name in ascending order.
func Names() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
