// Package av is the boundary to the video-conferencing widget. The
// session core treats the engine as opaque: it joins and leaves rooms
// and observes membership events, nothing more.
package av

type EventType string

const (
	EventJoined            EventType = "joined"
	EventLeft              EventType = "left"
	EventParticipantJoined EventType = "participantJoined"
	EventParticipantLeft   EventType = "participantLeft"
)

type Event struct {
	Type        EventType
	RoomName    string
	Participant string
}

// Engine is an opaque AV session. Leave must be safe to call when no
// room is joined, since the owner calls it on every exit path to avoid
// leaking a live media session.
type Engine interface {
	Join(roomName, displayName string) error
	Leave() error
	Notify(fn func(Event))
}

// NopEngine is an Engine that does nothing. Used by the console when
// running headless and by tests.
type NopEngine struct{}

func (NopEngine) Join(roomName, displayName string) error { return nil }
func (NopEngine) Leave() error                            { return nil }
func (NopEngine) Notify(fn func(Event))                   {}
