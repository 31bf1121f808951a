// Package export serializes calendars from the store into iCalendar
// documents, one VCALENDAR per calendar.
package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/mlindgren/suncal/pkg/calstore"
	"github.com/mlindgren/suncal/pkg/model"
)

const productID = "-//suncal//calendar export//EN"

// WriteICS serializes one calendar and its events to w. Point events are
// emitted with DTEND equal to DTSTART. UIDs are content-derived, so
// exporting the same calendar twice yields identical documents apart from
// the stamp times.
func WriteICS(w io.Writer, meta calstore.Calendar, events []model.Event, now time.Time) error {
	doc := ical.NewCalendar()
	doc.SetMethod(ical.MethodPublish)
	doc.SetProductId(productID)
	doc.SetName(meta.Title)

	for _, ev := range events {
		ve := doc.AddEvent(eventUID(meta.Name, ev))
		ve.SetDtStampTime(now)
		ve.SetStartAt(ev.Start)
		if ev.HasEnd() {
			ve.SetEndAt(ev.End)
		} else {
			ve.SetEndAt(ev.Start)
		}
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
	}
	return doc.SerializeTo(w)
}

// eventUID derives a stable UID from the calendar name and the event's
// start and title.
func eventUID(calendar string, ev model.Event) string {
	seed := fmt.Sprintf("%s/%d/%s", calendar, ev.Start.UnixMilli(), ev.Title)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String() + "@suncal"
}
