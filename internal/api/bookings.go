package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"linguacall/internal/domain/booking"
	"linguacall/internal/domain/user"
)

// ListBookings fetches bookings visible to the current user, optionally
// constrained to a date range. Zero times mean no bound.
func (c *Client) ListBookings(ctx context.Context, rangeStart, rangeEnd time.Time) ([]booking.Booking, error) {
	q := url.Values{}
	if !rangeStart.IsZero() {
		q.Set("start_date", rangeStart.Format(time.RFC3339))
	}
	if !rangeEnd.IsZero() {
		q.Set("end_date", rangeEnd.Format(time.RFC3339))
	}
	path := "/bookings/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []booking.Booking
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBooking submits a draft. Overlap checking is server-authoritative;
// a conflicting slot comes back as ErrConflict.
func (c *Client) CreateBooking(ctx context.Context, draft booking.Draft) (*booking.Booking, error) {
	var out booking.Booking
	if err := c.do(ctx, http.MethodPost, "/bookings/", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTranslators fetches translators. Filtering by availability and
// spoken language is server-side; the client adds none of its own to
// avoid diverging from server policy.
func (c *Client) ListTranslators(ctx context.Context, availableOnly bool, language string) ([]user.User, error) {
	q := url.Values{}
	if availableOnly {
		q.Set("available_only", "true")
	}
	if language != "" {
		q.Set("language", language)
	}
	path := "/translators/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []user.User
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTranslator updates a translator profile, availability included.
func (c *Client) UpdateTranslator(ctx context.Context, id string, update user.TranslatorUpdate) (*user.User, error) {
	var out user.User
	if err := c.do(ctx, http.MethodPut, "/translators/"+id, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
