package call

import "time"

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusRinging Status = "ringing"
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
	StatusMissed  Status = "missed"
)

// Terminal reports whether no further status transition is possible.
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusMissed
}

// rank orders statuses along the forward-only lifecycle.
func (s Status) rank() int {
	switch s {
	case StatusWaiting:
		return 0
	case StatusRinging:
		return 1
	case StatusActive:
		return 2
	case StatusEnded, StatusMissed:
		return 3
	}
	return -1
}

// CanTransition reports whether moving from s to next respects the
// monotonic lifecycle. Terminal states accept nothing.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	return next.rank() > s.rank()
}

// Call is a single customer call as reported by the platform.
type Call struct {
	ID            string     `json:"id"`
	RoomName      string     `json:"roomName"`
	CustomerName  string     `json:"customerName,omitempty"`
	CustomerPhone string     `json:"customerPhone,omitempty"`
	AgentID       string     `json:"agentId,omitempty"`
	Status        Status     `json:"status"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	Duration      int        `json:"duration,omitempty"`
}

// Patch is a partial Call carried by a call_update push event. Nil
// fields are absent and must not overwrite existing values.
type Patch struct {
	RoomName      *string    `json:"roomName,omitempty"`
	CustomerName  *string    `json:"customerName,omitempty"`
	CustomerPhone *string    `json:"customerPhone,omitempty"`
	AgentID       *string    `json:"agentId,omitempty"`
	Status        *Status    `json:"status,omitempty"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	Duration      *int       `json:"duration,omitempty"`
}

// Apply merges the patch into c, field-level last write wins.
func (p Patch) Apply(c *Call) {
	if p.RoomName != nil {
		c.RoomName = *p.RoomName
	}
	if p.CustomerName != nil {
		c.CustomerName = *p.CustomerName
	}
	if p.CustomerPhone != nil {
		c.CustomerPhone = *p.CustomerPhone
	}
	if p.AgentID != nil {
		c.AgentID = *p.AgentID
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.StartTime != nil {
		c.StartTime = p.StartTime
	}
	if p.EndTime != nil {
		c.EndTime = p.EndTime
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
}

// QueueItem is one waiting call in the server-ordered queue. Position is
// 1-based and assigned by the server; clients never reorder.
type QueueItem struct {
	ID       string `json:"id"`
	CallID   string `json:"callId"`
	Position int    `json:"position"`
	WaitTime int    `json:"waitTime"`
	Priority int    `json:"priority"`
}

// Metrics is the aggregate queue snapshot. It is replaced wholesale on
// every fetch, never derived incrementally on the client.
type Metrics struct {
	TotalCalls          int     `json:"totalCalls"`
	ActiveCalls         int     `json:"activeCalls"`
	WaitingCalls        int     `json:"waitingCalls"`
	AverageWaitTime     float64 `json:"averageWaitTime"`
	AverageCallDuration float64 `json:"averageCallDuration"`
}
