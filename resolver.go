package aster

import (
	"log/slog"

	"github.com/akmonengine/aster/actor"
	"github.com/akmonengine/aster/sweep"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxIterations bounds the contact sub-steps resolved within one
	// fixed step. Exhausting it leaves the remaining time unresolved, which
	// caps the per-frame collision cost in extreme multi-contact cases.
	DefaultMaxIterations = 3

	// DefaultSkinOffset lifts the body off a surface it just contacted.
	// Without it a resting or sliding contact is re-detected at t=0 forever.
	DefaultSkinOffset = 1e-3
)

// MoveResult is the outcome of one MoveAndCollide call
type MoveResult struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Collided bool
}

// Resolver advances a spherical body through the asteroid field with
// continuous collision: find the earliest contact over all meshes, advance to
// it, deflect the velocity (slide with friction, small restitution bounce),
// then spend whatever time is left on secondary contacts. The order of
// operations is load-bearing: advance, then deflect, then consume the
// sub-step time. Deflecting earlier changes the apparent sliding speed.
//
// Each call is self-contained given its inputs; the resolver holds only
// configuration.
type Resolver struct {
	Radius      float64 // sphere radius of the controlled body
	Friction    float64 // tangential damping per contact, low tenths
	Restitution float64 // normal bounce per contact, near zero hugs the surface

	MaxIterations int
	SkinOffset    float64

	// FrontFaceOnly skips faces facing away from the sweep. Enable only for
	// meshes with verified consistent winding.
	FrontFaceOnly bool

	// Workers fans the per-mesh scan across goroutines. The reduction picks
	// the global minimum time of impact, so the result stays deterministic.
	Workers int

	Events *Events
	Logger *slog.Logger
}

// NewResolver creates a resolver with the tuning used by the flight model:
// a gentle surface hug rather than a bouncy ricochet
func NewResolver(radius float64) *Resolver {
	return &Resolver{
		Radius:        radius,
		Friction:      0.15,
		Restitution:   0.05,
		MaxIterations: DefaultMaxIterations,
		SkinOffset:    DefaultSkinOffset,
		Workers:       1,
		Logger:        slog.Default(),
	}
}

// hitCandidate pairs a hit with the mesh instance index for a deterministic
// minimum reduction when ties occur
type hitCandidate struct {
	hit   sweep.Hit
	found bool
}

// MoveAndCollide moves the body from position with the given velocity over
// dt, resolving contacts against every mesh reachable from the collidables.
// Returns the corrected position and velocity, and whether any contact
// occurred. Collidables without usable meshes are skipped.
func (r *Resolver) MoveAndCollide(position, velocity mgl64.Vec3, dt float64, collidables []actor.Collidable) MoveResult {
	instances := unpack(collidables)

	p := position
	v := velocity
	remaining := dt
	collided := false

	if r.Events != nil {
		defer r.Events.flush()
	}

	iterations := max(r.MaxIterations, 1)
	for iter := 0; iter < iterations && remaining > 0; iter++ {
		target := p.Add(v.Mul(remaining))

		hit, ok := r.earliestHit(instances, sweep.Query{
			Start:         p,
			End:           target,
			Radius:        r.Radius,
			FrontFaceOnly: r.FrontFaceOnly,
		})
		if !ok {
			p = target
			remaining = 0
			break
		}

		// Advance to the contact, lifted by the skin offset along the normal
		p = p.Add(target.Sub(p).Mul(hit.T)).Add(hit.Normal.Mul(r.SkinOffset))

		// Slide/bounce response: damp the tangential component, reflect and
		// scale the normal component
		vn := hit.Normal.Mul(v.Dot(hit.Normal))
		vt := v.Sub(vn)
		v = vt.Mul(1 - r.Friction).Sub(vn.Mul(1 + r.Restitution))

		remaining *= 1 - hit.T
		collided = true

		if r.Events != nil {
			r.Events.recordContact(hit)
		}
	}

	if remaining > 0 && r.Logger != nil {
		r.Logger.Debug("collision budget exhausted, accepting partial resolution",
			"remaining", remaining,
			"iterations", iterations,
		)
	}

	return MoveResult{Position: p, Velocity: v, Collided: collided}
}

// earliestHit scans every mesh instance and keeps the globally minimum time
// of impact. Ties on t resolve to the lower instance index, independent of
// worker count.
func (r *Resolver) earliestHit(instances []actor.MeshInstance, q sweep.Query) (sweep.Hit, bool) {
	if len(instances) == 0 {
		return sweep.Hit{}, false
	}

	candidates := make([]hitCandidate, len(instances))
	task(max(r.Workers, 1), instances, func(i int, inst actor.MeshInstance) {
		hit, ok := sweep.FirstHit(inst.Mesh, inst.Transform, q)
		candidates[i] = hitCandidate{hit: hit, found: ok}
	})

	best := sweep.Hit{}
	found := false
	for _, c := range candidates {
		if !c.found {
			continue
		}
		if !found || c.hit.T < best.T {
			best = c.hit
			found = true
		}
	}
	return best, found
}

// unpack flattens composite collidables into primitive mesh instances
func unpack(collidables []actor.Collidable) []actor.MeshInstance {
	var instances []actor.MeshInstance
	for _, c := range collidables {
		if c == nil {
			continue
		}
		for _, inst := range c.TriangleMeshes() {
			if inst.Mesh == nil || len(inst.Mesh.Faces) == 0 {
				continue
			}
			instances = append(instances, inst)
		}
	}
	return instances
}
