package booking

import (
	"context"
	"fmt"
	"time"

	"linguacall/internal/domain/booking"
	"linguacall/internal/domain/user"
	"linguacall/pkg/logger"

	linguacall_errors "linguacall/pkg/errors"
)

// platformAPI is the slice of the API client the scheduler needs.
type platformAPI interface {
	ListBookings(ctx context.Context, rangeStart, rangeEnd time.Time) ([]booking.Booking, error)
	CreateBooking(ctx context.Context, draft booking.Draft) (*booking.Booking, error)
	ListTranslators(ctx context.Context, availableOnly bool, language string) ([]user.User, error)
}

// Scheduler computes translator availability and creates bookings. The
// authoritative overlap check is server-side; the scheduler validates
// only what would be rejected unconditionally and never retries or
// reschedules a conflicting slot on its own.
type Scheduler struct {
	api platformAPI
	log *logger.Logger
}

func NewScheduler(api platformAPI, log *logger.Logger) *Scheduler {
	return &Scheduler{api: api, log: log}
}

// ListAvailableTranslators returns translators the server considers
// bookable, optionally narrowed to one spoken language.
func (s *Scheduler) ListAvailableTranslators(ctx context.Context, language string) ([]user.User, error) {
	return s.api.ListTranslators(ctx, true, language)
}

// CreateBooking validates the draft locally and submits it. A server
// conflict surfaces as ErrConflict; the caller reports "slot unavailable"
// and lets the operator pick another slot.
func (s *Scheduler) CreateBooking(ctx context.Context, draft booking.Draft) (*booking.Booking, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	created, err := s.api.CreateBooking(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.log.Infof("booking %s created for translator %s", created.ID, created.TranslatorID)
	return created, nil
}

// ListBookingsForCalendar fetches bookings intersecting the range and
// maps them into displayable intervals.
func (s *Scheduler) ListBookingsForCalendar(ctx context.Context, rangeStart, rangeEnd time.Time) ([]booking.CalendarEvent, error) {
	bookings, err := s.api.ListBookings(ctx, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	events := make([]booking.CalendarEvent, 0, len(bookings))
	for _, b := range bookings {
		ev := booking.ToCalendarEvent(b)
		if ev.Intersects(rangeStart, rangeEnd) {
			events = append(events, ev)
		}
	}
	return events, nil
}

func validateDraft(d booking.Draft) error {
	if d.TranslatorID == "" {
		return fmt.Errorf("%w: translator is required", linguacall_errors.ErrInvalidInput)
	}
	if d.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", linguacall_errors.ErrInvalidInput)
	}
	if !booking.ValidDuration(d.DurationMinutes) {
		return fmt.Errorf("%w: duration must be 30 or 60 minutes", linguacall_errors.ErrInvalidInput)
	}
	return nil
}
