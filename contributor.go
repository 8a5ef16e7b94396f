package aster

// Phase orders contributor execution within one fixed step. All contributors
// of a phase run before any contributor of a later phase.
type Phase int

const (
	PhaseInput Phase = iota
	PhasePreForce
	PhaseForce
	PhaseIntegration
	PhaseCollision
	PhasePost
	PhaseDefault
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreForce:
		return "pre-force"
	case PhaseForce:
		return "force"
	case PhaseIntegration:
		return "integration"
	case PhaseCollision:
		return "collision"
	case PhasePost:
		return "post"
	default:
		return "default"
	}
}

// Contributor is the capability for anything that acts once per fixed tick:
// thrusters, dampeners, gravity wells, AI. The scheduler holds a non-owning
// list and calls Step with exactly the fixed dt, ordered by (phase, priority,
// registration order). Within a phase, lower priority runs first.
type Contributor interface {
	Step(dt float64)
	Phase() Phase
	Priority() int
}

// registration pins a contributor to its insertion index, the stable
// tie-break for equal (phase, priority)
type registration struct {
	contributor Contributor
	order       int
}
