package simulator

import (
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"linguacall/internal/domain/booking"
	"linguacall/internal/domain/call"
	"linguacall/internal/domain/user"
)

// account pairs a user record with its password hash.
type account struct {
	user.User
	passwordHash []byte
}

// State is the simulator's in-memory world. Everything lives behind one
// mutex; the simulator trades throughput for a zero-dependency run story.
type State struct {
	mu       sync.RWMutex
	accounts map[string]*account // keyed by user ID
	byEmail  map[string]string   // email -> user ID
	calls    map[string]*call.Call
	order    []string // call IDs in creation order
	queue    []call.QueueItem
	bookings map[string]*booking.Booking
}

func NewState() *State {
	return &State{
		accounts: make(map[string]*account),
		byEmail:  make(map[string]string),
		calls:    make(map[string]*call.Call),
		bookings: make(map[string]*booking.Booking),
	}
}

// SeedAccount adds a user with a bcrypt-hashed password.
func (s *State) SeedAccount(u user.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	s.mu.Lock()
	s.accounts[u.ID] = &account{User: u, passwordHash: hash}
	s.byEmail[u.Email] = u.ID
	s.mu.Unlock()
	return nil
}

// Authenticate checks credentials and returns the matching user.
func (s *State) Authenticate(email, password string) (*user.User, bool) {
	s.mu.RLock()
	id, ok := s.byEmail[email]
	var acct *account
	if ok {
		acct = s.accounts[id]
	}
	s.mu.RUnlock()
	if acct == nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		return nil, false
	}
	u := acct.User
	return &u, true
}

func (s *State) UserByID(id string) (*user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	u := acct.User
	return &u, true
}

// CreateCall opens a new waiting call.
func (s *State) CreateCall(roomName, customerName, customerPhone string) call.Call {
	now := time.Now().UTC()
	c := call.Call{
		ID:            uuid.New().String(),
		RoomName:      roomName,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Status:        call.StatusWaiting,
		StartTime:     &now,
	}
	s.mu.Lock()
	s.calls[c.ID] = &c
	s.order = append(s.order, c.ID)
	s.mu.Unlock()
	return c
}

// EndCall marks the call ended and stamps its duration. The bool result
// distinguishes unknown calls from already-ended ones.
func (s *State) EndCall(callID string) (*call.Call, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calls[callID]
	if !ok {
		return nil, false, nil
	}
	if c.Status == call.StatusEnded {
		return nil, true, errAlreadyEnded
	}
	now := time.Now().UTC()
	c.Status = call.StatusEnded
	c.EndTime = &now
	if c.StartTime != nil {
		c.Duration = int(now.Sub(*c.StartTime).Seconds())
	}
	cp := *c
	return &cp, true, nil
}

// UpdateCall merges a patch into the call, for driving push events.
func (s *State) UpdateCall(callID string, patch call.Patch) (*call.Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calls[callID]
	if !ok {
		return nil, false
	}
	patch.Apply(c)
	cp := *c
	return &cp, true
}

// ActiveCalls returns live calls in creation order.
func (s *State) ActiveCalls() []call.Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []call.Call
	for _, id := range s.order {
		c := s.calls[id]
		switch c.Status {
		case call.StatusWaiting, call.StatusRinging, call.StatusActive:
			out = append(out, *c)
		}
	}
	return out
}

// CallHistory returns ended calls, most recently ended first.
func (s *State) CallHistory(limit int) []call.Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []call.Call
	for _, c := range s.calls {
		if c.Status == call.StatusEnded {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		var ti, tj time.Time
		if out[i].EndTime != nil {
			ti = *out[i].EndTime
		}
		if out[j].EndTime != nil {
			tj = *out[j].EndTime
		}
		return ti.After(tj)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Queue returns the waiting queue ordered by priority, then arrival.
func (s *State) Queue() []call.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]call.QueueItem(nil), s.queue...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// SetQueue replaces the queue contents, for tests and seeding.
func (s *State) SetQueue(items []call.QueueItem) {
	s.mu.Lock()
	s.queue = append([]call.QueueItem(nil), items...)
	s.mu.Unlock()
}

// Metrics computes the aggregate snapshot the way the platform does.
func (s *State) Metrics() call.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var m call.Metrics
	var durTotal, durCount int
	for _, c := range s.calls {
		m.TotalCalls++
		switch c.Status {
		case call.StatusActive:
			m.ActiveCalls++
		case call.StatusWaiting:
			m.WaitingCalls++
		}
		if c.Duration > 0 {
			durTotal += c.Duration
			durCount++
		}
	}
	if durCount > 0 {
		m.AverageCallDuration = float64(durTotal / durCount)
	}
	var waitTotal int
	for _, q := range s.queue {
		waitTotal += q.WaitTime
	}
	if len(s.queue) > 0 {
		m.AverageWaitTime = float64(waitTotal / len(s.queue))
	}
	return m
}

// CreateBooking validates and stores a booking, enforcing the
// no-overlap invariant per translator.
func (s *State) CreateBooking(draft booking.Draft, employeeID, companyID string) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[draft.TranslatorID]
	if !ok || acct.Role != user.RoleTranslator {
		return nil, errTranslatorNotFound
	}
	if !acct.IsAvailable {
		return nil, errTranslatorUnavailable
	}
	if !languageSupported(acct.Languages, draft.Language) {
		return nil, errLanguageUnsupported
	}
	if !booking.ValidDuration(draft.DurationMinutes) {
		return nil, errBadDuration
	}
	for _, b := range s.bookings {
		if b.TranslatorID == draft.TranslatorID && b.Blocking() && b.Overlaps(draft.StartTime, draft.DurationMinutes) {
			return nil, errBookingConflict
		}
	}

	b := booking.Booking{
		ID:              uuid.New().String(),
		TranslatorID:    draft.TranslatorID,
		EmployeeID:      employeeID,
		CompanyID:       companyID,
		StartTime:       draft.StartTime,
		DurationMinutes: draft.DurationMinutes,
		Language:        draft.Language,
		Status:          booking.StatusConfirmed,
		RoomName:        "translation-" + roomSuffix(),
		Notes:           draft.Notes,
	}
	s.bookings[b.ID] = &b
	cp := b
	return &cp, nil
}

// Bookings returns bookings within the optional date range, ordered by
// start time.
func (s *State) Bookings(rangeStart, rangeEnd time.Time) []booking.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []booking.Booking
	for _, b := range s.bookings {
		if !rangeStart.IsZero() && b.StartTime.Before(rangeStart) {
			continue
		}
		if !rangeEnd.IsZero() && b.StartTime.After(rangeEnd) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// Translators lists translator accounts with server-side filtering.
func (s *State) Translators(availableOnly bool, language string) []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []user.User
	for _, acct := range s.accounts {
		if acct.Role != user.RoleTranslator {
			continue
		}
		if availableOnly && !acct.IsAvailable {
			continue
		}
		if language != "" && !languageSupported(acct.Languages, language) {
			continue
		}
		out = append(out, acct.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UpdateTranslator applies a profile update.
func (s *State) UpdateTranslator(id string, update user.TranslatorUpdate) (*user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok || acct.Role != user.RoleTranslator {
		return nil, false
	}
	if update.Name != "" {
		acct.Name = update.Name
	}
	if update.Languages != nil {
		acct.Languages = update.Languages
	}
	if update.HourlyRate != "" {
		acct.HourlyRate = update.HourlyRate
	}
	if update.IsAvailable != nil {
		acct.IsAvailable = *update.IsAvailable
	}
	u := acct.User
	return &u, true
}

func roomSuffix() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:12]
}

func languageSupported(languages []string, language string) bool {
	for _, l := range languages {
		if l == language {
			return true
		}
	}
	return false
}
