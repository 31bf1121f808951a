// Package template renders the user-configurable text of generated events.
//
// A Template holds three pattern strings (title, description, location)
// containing substitution tokens. Rendering is a pure mapping lookup
// against a Context built from the emitted event, the resolved location,
// and the calendar identity. Unresolved tokens are left literal; there is
// no escaping and no error path.
package template

import "strings"

// Substitution tokens. Longer tokens are substituted before shorter ones
// so %loc is never clobbered by a would-be %l.
const (
	TokenEvent     = "%M"       // label of the emitted event type
	TokenCalendar  = "%cal"     // calendar title
	TokenSummary   = "%summary" // calendar summary
	TokenLocation  = "%loc"     // resolved location name
	TokenLatitude  = "%lat"
	TokenLongitude = "%lon"
	TokenAltitude  = "%alt"
)

// Template is the three renderable pattern strings of a calendar.
type Template struct {
	Title    string `yaml:"title" json:"title"`
	Desc     string `yaml:"desc" json:"desc"`
	Location string `yaml:"location" json:"location"`
}

// Context maps tokens to replacement values.
type Context map[string]string

// Merge returns a copy of c with the entries of others applied on top.
// Later maps win on key collisions. The receiver is never modified.
func (c Context) Merge(others ...Context) Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// WithEvent returns a copy of c with the per-event label set. Generators
// call this once per emitted event.
func (c Context) WithEvent(label string) Context {
	return c.Merge(Context{TokenEvent: label})
}

// RenderTitle resolves the title pattern against ctx.
func (t Template) RenderTitle(ctx Context) string { return render(t.Title, ctx) }

// RenderDesc resolves the description pattern against ctx.
func (t Template) RenderDesc(ctx Context) string { return render(t.Desc, ctx) }

// RenderLocation resolves the location pattern against ctx.
func (t Template) RenderLocation(ctx Context) string { return render(t.Location, ctx) }

// render substitutes every ctx token found in pattern. Tokens are replaced
// longest-first so that tokens sharing a prefix resolve unambiguously.
func render(pattern string, ctx Context) string {
	if pattern == "" || len(ctx) == 0 {
		return pattern
	}
	pairs := make([]string, 0, 2*len(ctx))
	for _, tok := range tokensByLength(ctx) {
		pairs = append(pairs, tok, ctx[tok])
	}
	return strings.NewReplacer(pairs...).Replace(pattern)
}

// tokensByLength returns the context's tokens sorted longest first.
func tokensByLength(ctx Context) []string {
	toks := make([]string, 0, len(ctx))
	for k := range ctx {
		toks = append(toks, k)
	}
	// Insertion sort by descending length; context maps are tiny.
	for i := 1; i < len(toks); i++ {
		for j := i; j > 0 && len(toks[j]) > len(toks[j-1]); j-- {
			toks[j], toks[j-1] = toks[j-1], toks[j]
		}
	}
	return toks
}
