package booking

import "time"

// CalendarEvent is a booking mapped into a displayable interval. The
// mapping is pure and loses nothing: the source booking rides along in
// Booking so the original translator, start and duration are recoverable.
type CalendarEvent struct {
	ID      string
	Title   string
	Start   time.Time
	End     time.Time
	Booking Booking
}

// ToCalendarEvent maps a booking onto its [start, start+duration) interval.
func ToCalendarEvent(b Booking) CalendarEvent {
	return CalendarEvent{
		ID:      b.ID,
		Title:   b.Language + " Translation - " + string(b.Status),
		Start:   b.StartTime,
		End:     b.EndTime(),
		Booking: b,
	}
}

// Intersects reports whether the event overlaps [rangeStart, rangeEnd).
func (e CalendarEvent) Intersects(rangeStart, rangeEnd time.Time) bool {
	return e.Start.Before(rangeEnd) && rangeStart.Before(e.End)
}
