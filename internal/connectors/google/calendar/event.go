package calendar

import (
	"hash/fnv"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/DIVT313/forensic-agent/internal/core/domain"
)

const statusCancelled = "cancelled"

// EventToRawRecord converts a Google Calendar event to a raw record keyed
// like the device calendar provider. Returns false for events that should
// not be extracted.
func EventToRawRecord(event *calendar.Event, calendarID string) (domain.RawRecord, bool) {
	if event == nil || event.Id == "" || event.Status == statusCancelled {
		return nil, false
	}
	var title any
	if event.Summary != "" {
		title = event.Summary
	}
	return domain.RawRecord{
		domain.FieldID:      EventID(calendarID, event.Id),
		domain.FieldTitle:   title,
		domain.FieldDTStart: eventTime(event.Start),
		domain.FieldDTEnd:   eventTime(event.End),
	}, true
}

// EventID derives a stable numeric id from the calendar and event ids.
// The top bit is cleared so ids stay positive.
func EventID(calendarID, eventID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(calendarID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(eventID))
	return int64(h.Sum64() &^ (1 << 63))
}

// eventTime returns epoch milliseconds for a timed or all-day boundary.
// Unparseable values are passed through as strings so the record decoder
// rejects the row.
func eventTime(dt *calendar.EventDateTime) any {
	if dt == nil {
		return nil
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return dt.DateTime
		}
		return t.UnixMilli()
	}
	if dt.Date != "" {
		loc := time.UTC
		if dt.TimeZone != "" {
			if l, err := time.LoadLocation(dt.TimeZone); err == nil {
				loc = l
			}
		}
		t, err := time.ParseInLocation(time.DateOnly, dt.Date, loc)
		if err != nil {
			return dt.Date
		}
		return t.UnixMilli()
	}
	return nil
}
