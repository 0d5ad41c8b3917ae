package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "linguacall/internal/domain/booking"
	"linguacall/internal/domain/user"
	"linguacall/pkg/logger"

	linguacall_errors "linguacall/pkg/errors"
)

type stubAPI struct {
	bookings      []domain.Booking
	created       *domain.Booking
	createErr     error
	translators   []user.User
	lastAvailable bool
	lastLanguage  string
	createdDrafts []domain.Draft
}

func (s *stubAPI) ListBookings(ctx context.Context, rangeStart, rangeEnd time.Time) ([]domain.Booking, error) {
	return s.bookings, nil
}

func (s *stubAPI) CreateBooking(ctx context.Context, draft domain.Draft) (*domain.Booking, error) {
	s.createdDrafts = append(s.createdDrafts, draft)
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.created, nil
}

func (s *stubAPI) ListTranslators(ctx context.Context, availableOnly bool, language string) ([]user.User, error) {
	s.lastAvailable = availableOnly
	s.lastLanguage = language
	return s.translators, nil
}

func at(hour int) time.Time {
	return time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
}

func validDraft() domain.Draft {
	return domain.Draft{
		TranslatorID:    "t1",
		StartTime:       at(10),
		DurationMinutes: 60,
		Language:        "SPANISH",
	}
}

func TestCreateBooking_ValidatesLocally(t *testing.T) {
	api := &stubAPI{}
	s := NewScheduler(api, logger.NewNop())

	cases := []struct {
		name   string
		mutate func(*domain.Draft)
	}{
		{"missing translator", func(d *domain.Draft) { d.TranslatorID = "" }},
		{"missing start", func(d *domain.Draft) { d.StartTime = time.Time{} }},
		{"bad duration", func(d *domain.Draft) { d.DurationMinutes = 45 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(&draft)
			if _, err := s.CreateBooking(context.Background(), draft); !errors.Is(err, linguacall_errors.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if len(api.createdDrafts) != 0 {
		t.Fatalf("invalid drafts must not be submitted")
	}
}

func TestCreateBooking_SurfacesConflict(t *testing.T) {
	api := &stubAPI{createErr: linguacall_errors.ErrConflict}
	s := NewScheduler(api, logger.NewNop())

	_, err := s.CreateBooking(context.Background(), validDraft())
	if !errors.Is(err, linguacall_errors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	// No automatic rescheduling: exactly one submission.
	if len(api.createdDrafts) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(api.createdDrafts))
	}
}

func TestCreateBooking_ReturnsServerStatus(t *testing.T) {
	created := &domain.Booking{ID: "b1", TranslatorID: "t1", Status: domain.StatusConfirmed}
	api := &stubAPI{created: created}
	s := NewScheduler(api, logger.NewNop())

	got, err := s.CreateBooking(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Status != domain.StatusConfirmed {
		t.Fatalf("status must come from the server, got %q", got.Status)
	}
}

func TestListAvailableTranslators_PassesFiltersThrough(t *testing.T) {
	api := &stubAPI{translators: []user.User{{ID: "t1"}, {ID: "t2"}}}
	s := NewScheduler(api, logger.NewNop())

	got, err := s.ListAvailableTranslators(context.Background(), "FRENCH")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !api.lastAvailable || api.lastLanguage != "FRENCH" {
		t.Fatalf("filters not forwarded: available=%v language=%q", api.lastAvailable, api.lastLanguage)
	}
	// The server's answer is returned as-is, no client-side filtering.
	if len(got) != 2 {
		t.Fatalf("expected 2 translators, got %d", len(got))
	}
}

func TestListBookingsForCalendar_MapsIntersectingIntervals(t *testing.T) {
	api := &stubAPI{bookings: []domain.Booking{
		{ID: "in", StartTime: at(10), DurationMinutes: 60},
		{ID: "out", StartTime: at(18), DurationMinutes: 30},
	}}
	s := NewScheduler(api, logger.NewNop())

	events, err := s.ListBookingsForCalendar(context.Background(), at(9), at(12))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(events) != 1 || events[0].ID != "in" {
		t.Fatalf("expected only the intersecting booking, got %+v", events)
	}
	if !events[0].End.Equal(at(11)) {
		t.Fatalf("expected end 11:00, got %v", events[0].End)
	}
}
