package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"linguacall/internal/auth"
	"linguacall/internal/domain/booking"
	"linguacall/pkg/logger"

	linguacall_errors "linguacall/pkg/errors"
)

func bookingDraftFixture() booking.Draft {
	return booking.Draft{
		TranslatorID:    "t1",
		StartTime:       time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Language:        "SPANISH",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.TokenStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := auth.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	return NewClient(srv.URL, tokens, logger.NewNop()), tokens
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	if err := tokens.Save("secret-token"); err != nil {
		t.Fatalf("save token: %v", err)
	}

	if _, err := client.ActiveCalls(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("bearer not attached, got %q", gotAuth)
	}
}

func TestDo_UnauthorizedClearsTokenAndNotifies(t *testing.T) {
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	}))
	if err := tokens.Save("stale trash"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	loggedOut := false
	client.OnLogout(func() { loggedOut = true })

	_, err := client.ActiveCalls(context.Background())
	if !errors.Is(err, linguacall_errors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if tokens.Token() != "" {
		t.Fatalf("token must be cleared on 401")
	}
	if !loggedOut {
		t.Fatalf("logout hook not invoked")
	}
}

func TestDo_ConflictMapsToErrConflict(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Translator already has a booking at this time"})
	}))

	_, err := client.CreateBooking(context.Background(), bookingDraftFixture())
	if !errors.Is(err, linguacall_errors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDo_OtherStatusCarriesServerDetail(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Duration must be either 30 or 60 minutes"})
	}))

	_, err := client.CreateBooking(context.Background(), bookingDraftFixture())
	var apiErr *linguacall_errors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Duration must be either 30 or 60 minutes" {
		t.Fatalf("detail lost: %+v", apiErr)
	}
}

func TestDo_NetworkFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listens anymore
	tokens := auth.NewTokenStore(filepath.Join(t.TempDir(), "token"))
	client := NewClient(srv.URL, tokens, logger.NewNop())

	_, err := client.ActiveCalls(context.Background())
	if !errors.Is(err, linguacall_errors.ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestLogin_PersistsToken(t *testing.T) {
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fresh-token",
			"user":         map[string]string{"id": "u1", "name": "Agent"},
		})
	}))

	resp, err := client.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.User.ID != "u1" {
		t.Fatalf("user not decoded: %+v", resp.User)
	}
	if tokens.Token() != "fresh-token" {
		t.Fatalf("token not persisted, got %q", tokens.Token())
	}
}

func TestListTranslators_BuildsQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]any{})
	}))

	if _, err := client.ListTranslators(context.Background(), true, "SPANISH"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotQuery != "available_only=true&language=SPANISH" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}
