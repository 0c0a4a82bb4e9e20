package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Event is one calendar entry to serialize as a VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Tentative   bool
}

// ICSExporter renders events into an iCalendar feed.
type ICSExporter struct {
	productID string
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter(productID string) *ICSExporter {
	if productID == "" {
		productID = "-//elimika//availability//EN"
	}
	return &ICSExporter{productID: productID}
}

// Render serializes the events into an ICS payload.
func (e *ICSExporter) Render(events []Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)

	now := time.Now().UTC()
	for _, ev := range events {
		if ev.UID == "" {
			return nil, fmt.Errorf("event %q missing uid", ev.Summary)
		}
		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(now)
		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			ve.SetAllDayEndAt(ev.End)
		} else {
			ve.SetStartAt(ev.Start.UTC())
			ve.SetEndAt(ev.End.UTC())
		}
		ve.SetSummary(ev.Summary)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Tentative {
			ve.SetStatus(ical.ObjectStatusTentative)
		} else {
			ve.SetStatus(ical.ObjectStatusConfirmed)
		}
	}

	return []byte(cal.Serialize()), nil
}
