package booking

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// ValidDurations are the only slot lengths the platform accepts, in minutes.
var ValidDurations = []int{30, 60}

func ValidDuration(minutes int) bool {
	for _, d := range ValidDurations {
		if minutes == d {
			return true
		}
	}
	return false
}

// Booking is a scheduled translation session.
type Booking struct {
	ID              string    `json:"id"`
	TranslatorID    string    `json:"translator_id"`
	EmployeeID      string    `json:"employee_id"`
	CompanyID       string    `json:"company_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Language        string    `json:"language"`
	Status          Status    `json:"status"`
	RoomName        string    `json:"jitsi_room_name"`
	Notes           string    `json:"notes,omitempty"`
}

// EndTime returns the exclusive end of the booked slot.
func (b Booking) EndTime() time.Time {
	return b.StartTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// Overlaps reports whether the half-open intervals [b.StartTime, b.EndTime())
// and [start, start+minutes) intersect.
func (b Booking) Overlaps(start time.Time, minutes int) bool {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return b.StartTime.Before(end) && start.Before(b.EndTime())
}

// Blocking reports whether the booking counts against translator
// availability. Cancelled bookings free their slot.
func (b Booking) Blocking() bool {
	return b.Status != StatusCancelled
}

type Draft struct {
	TranslatorID    string    `json:"translator_id"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Language        string    `json:"language"`
	Notes           string    `json:"notes,omitempty"`
}
