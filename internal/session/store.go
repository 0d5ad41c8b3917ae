package session

import (
	"sync"

	"linguacall/internal/domain/call"
	"linguacall/pkg/logger"
)

// Store is the authoritative local model of calls, queue and metrics.
// It is a read cache for presentation: the server owns every
// status-bearing field and the store only merges what it is told.
// Mutations arrive from HTTP responses and from push events, which run
// on different goroutines, so all state is guarded by mu.
type Store struct {
	mu          sync.RWMutex
	activeCalls []call.Call
	queue       []call.QueueItem
	currentCall *call.Call
	metrics     *call.Metrics
	log         *logger.Logger
}

func NewStore(log *logger.Logger) *Store {
	return &Store{log: log}
}

// ReplaceActiveCalls swaps in a fresh server-ordered snapshot. The order
// is the server's; the store never re-sorts.
func (s *Store) ReplaceActiveCalls(calls []call.Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCalls = append(s.activeCalls[:0:0], calls...)
}

// SetQueue replaces the waiting queue snapshot.
func (s *Store) SetQueue(queue []call.QueueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue[:0:0], queue...)
}

// SetMetrics replaces the aggregate snapshot wholesale.
func (s *Store) SetMetrics(m call.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = &m
}

// SetCurrentCall sets the single call the agent is joined to. Passing a
// new call while one is set is allowed; ending the prior call is the
// caller's job. Passing nil clears the slot.
func (s *Store) SetCurrentCall(c *call.Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.currentCall = nil
		return
	}
	cp := *c
	s.currentCall = &cp
}

// AddCall appends a call to the active set, preserving server order.
func (s *Store) AddCall(c call.Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCalls = append(s.activeCalls, c)
}

// ApplyUpdate merges patch fields into the matching active call and, if
// it is the current call, into that too. An unknown callID is expected
// when an update races a concurrent removal; it is logged and dropped.
func (s *Store) ApplyUpdate(callID string, patch call.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.activeCalls {
		if s.activeCalls[i].ID == callID {
			patch.Apply(&s.activeCalls[i])
			found = true
			break
		}
	}
	if s.currentCall != nil && s.currentCall.ID == callID {
		patch.Apply(s.currentCall)
		found = true
	}
	if !found {
		s.log.Debugf("update for unknown call %s dropped", callID)
	}
}

// Remove drops the call from the active set and clears the current-call
// slot if it held the same call.
func (s *Store) Remove(callID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.activeCalls[:0]
	for _, c := range s.activeCalls {
		if c.ID != callID {
			kept = append(kept, c)
		}
	}
	s.activeCalls = kept
	if s.currentCall != nil && s.currentCall.ID == callID {
		s.currentCall = nil
	}
}

// Reset clears everything. Called on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCalls = nil
	s.queue = nil
	s.currentCall = nil
	s.metrics = nil
}

// ActiveCalls returns a copy of the active set in server order.
func (s *Store) ActiveCalls() []call.Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]call.Call(nil), s.activeCalls...)
}

// Queue returns a copy of the waiting queue.
func (s *Store) Queue() []call.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]call.QueueItem(nil), s.queue...)
}

// CurrentCall returns a copy of the current call, nil if none.
func (s *Store) CurrentCall() *call.Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentCall == nil {
		return nil
	}
	cp := *s.currentCall
	return &cp
}

// Metrics returns the latest aggregate snapshot, nil before first fetch.
func (s *Store) Metrics() *call.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.metrics == nil {
		return nil
	}
	cp := *s.metrics
	return &cp
}
