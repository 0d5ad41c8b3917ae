package push

import "linguacall/internal/domain/call"

const EventCallUpdate = "call_update"

// Envelope is the wire shape of a push notification. The payload is
// minimal: the store is responsible for merging, not the sync client.
type Envelope struct {
	Type    string     `json:"type"`
	CallID  string     `json:"callId"`
	Updates call.Patch `json:"updates"`
}

// Observer receives call-state notifications. All registered observers
// are invoked, in registration order, for each delivered event, on the
// client's single dispatch goroutine.
type Observer interface {
	HandleCallUpdate(callID string, updates call.Patch)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(callID string, updates call.Patch)

func (f ObserverFunc) HandleCallUpdate(callID string, updates call.Patch) {
	f(callID, updates)
}
