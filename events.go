package aster

import (
	"github.com/akmonengine/aster/actor"
	"github.com/akmonengine/aster/sweep"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	CONTACT_ENTER EventType = iota
	CONTACT_STAY
	CONTACT_EXIT
)

type EventType uint8

// Event is one contact transition against a mesh. Enter and stay events carry
// the contact point and normal of the latest hit; exit events only identify
// the mesh.
type Event struct {
	Type   EventType
	Mesh   *actor.TriangleMesh
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

type Listener func(Event)

// Events turns the resolver's raw hits into enter/stay/exit transitions per
// contacted mesh, dispatched to subscribed listeners after each
// MoveAndCollide call. Attach one to Resolver.Events; a nil Events field
// disables the whole mechanism.
type Events struct {
	listeners map[EventType][]Listener

	previous map[*actor.TriangleMesh]Event
	current  map[*actor.TriangleMesh]Event
}

func NewEvents() *Events {
	return &Events{
		listeners: make(map[EventType][]Listener),
		previous:  make(map[*actor.TriangleMesh]Event),
		current:   make(map[*actor.TriangleMesh]Event),
	}
}

// Subscribe registers a listener for one event type
func (e *Events) Subscribe(eventType EventType, listener Listener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContact notes one hit of the current resolver call. Multiple hits on
// the same mesh within one call keep the latest point and normal.
func (e *Events) recordContact(hit sweep.Hit) {
	e.current[hit.Mesh] = Event{Mesh: hit.Mesh, Point: hit.Point, Normal: hit.Normal}
}

// flush compares the contacts of the finished call against the previous call
// and dispatches the transitions: new meshes enter, repeated meshes stay,
// vanished meshes exit
func (e *Events) flush() {
	for mesh, event := range e.current {
		if _, wasTouching := e.previous[mesh]; wasTouching {
			event.Type = CONTACT_STAY
		} else {
			event.Type = CONTACT_ENTER
		}
		e.dispatch(event)
	}

	for mesh := range e.previous {
		if _, stillTouching := e.current[mesh]; !stillTouching {
			e.dispatch(Event{Type: CONTACT_EXIT, Mesh: mesh})
		}
	}

	e.previous, e.current = e.current, e.previous
	clear(e.current)
}

func (e *Events) dispatch(event Event) {
	for _, listener := range e.listeners[event.Type] {
		listener(event)
	}
}
