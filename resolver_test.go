package aster

import (
	"math"
	"testing"

	"github.com/akmonengine/aster/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const testTolerance = 1e-6

// wallMesh builds one huge triangle spanning the z=depth plane, enough to
// act as a perpendicular wall for sweeps near the origin
func wallMesh(t *testing.T, depth float64) *actor.TriangleMesh {
	t.Helper()
	mesh, err := actor.NewTriangleMesh(
		[]mgl64.Vec3{{-500, -500, depth}, {500, -500, depth}, {0, 500, depth}},
		[][3]int{{0, 1, 2}},
	)
	if err != nil {
		t.Fatalf("wallMesh: %v", err)
	}
	return mesh
}

func wallBody(t *testing.T, depth float64) actor.Collidable {
	return &actor.MeshBody{Mesh: wallMesh(t, depth), Transform: actor.NewTransform()}
}

// =============================================================================
// MoveAndCollide Tests
// =============================================================================

func TestMoveAndCollide_FreeFlight(t *testing.T) {
	r := NewResolver(5)

	result := r.MoveAndCollide(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{10, 0, -5}, 0.5, nil)

	want := mgl64.Vec3{6, 2, 0.5}
	if result.Collided {
		t.Error("free flight reported a collision")
	}
	if result.Position.Sub(want).Len() > testTolerance {
		t.Errorf("position = %v, want %v", result.Position, want)
	}
	if result.Velocity.Sub(mgl64.Vec3{10, 0, -5}).Len() > testTolerance {
		t.Errorf("velocity changed without contact: %v", result.Velocity)
	}
}

func TestMoveAndCollide_PerpendicularWall(t *testing.T) {
	// Head-on wall hit at t=0.5: wall plane z=-55, radius 5, start at origin,
	// velocity (0,0,-100) over dt=1 contacts when the center is at z=-50.
	// With restitution 0.05 the normal component reverses scaled by 1.05; the
	// tangential component is zero, so friction has nothing to damp.
	r := NewResolver(5)
	r.Friction = 0.15
	r.Restitution = 0.05

	result := r.MoveAndCollide(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -100}, 1.0,
		[]actor.Collidable{wallBody(t, -55)})

	if !result.Collided {
		t.Fatal("expected a collision")
	}
	wantV := mgl64.Vec3{0, 0, 105}
	if result.Velocity.Sub(wantV).Len() > testTolerance {
		t.Errorf("velocity = %v, want %v", result.Velocity, wantV)
	}
	// Contact at z=-50 plus skin offset, then the bounce flies the remaining
	// half step away from the wall at the reflected speed
	wantZ := -50.0 + r.SkinOffset + 105.0*0.5
	if math.Abs(result.Position.Z()-wantZ) > testTolerance {
		t.Errorf("position z = %v, want %v", result.Position.Z(), wantZ)
	}
}

func TestMoveAndCollide_SlideResponse(t *testing.T) {
	// Oblique contact: tangential velocity damped by (1-friction), normal
	// reversed and scaled by (1+restitution)
	r := NewResolver(5)
	r.Friction = 0.15
	r.Restitution = 0.05

	result := r.MoveAndCollide(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{3, 4, -50}, 1.0,
		[]actor.Collidable{wallBody(t, -30)})

	if !result.Collided {
		t.Fatal("expected a collision")
	}
	wantV := mgl64.Vec3{3 * 0.85, 4 * 0.85, 50 * 1.05}
	if result.Velocity.Sub(wantV).Len() > testTolerance {
		t.Errorf("velocity = %v, want %v", result.Velocity, wantV)
	}
}

func TestMoveAndCollide_EarliestHitWins(t *testing.T) {
	// Two walls along the sweep: only the nearer one is contacted this step
	r := NewResolver(5)

	result := r.MoveAndCollide(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -100}, 1.0,
		[]actor.Collidable{wallBody(t, -80), wallBody(t, -40)})

	if !result.Collided {
		t.Fatal("expected a collision")
	}
	// Contact with z=-40 wall at center z=-35; the bounce moves away, so the
	// second wall is never reached
	if result.Position.Z() < -36 {
		t.Errorf("position z = %v, body passed the nearer wall", result.Position.Z())
	}
}

func TestMoveAndCollide_IterationBudget(t *testing.T) {
	// One iteration with a wall ahead: the hit consumes the iteration, the
	// remainder of the step stays unresolved and the call returns a partial
	// result instead of looping
	r := NewResolver(5)
	r.MaxIterations = 1

	result := r.MoveAndCollide(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -100}, 1.0,
		[]actor.Collidable{wallBody(t, -55)})

	if !result.Collided {
		t.Fatal("expected a collision")
	}
	if math.Abs(result.Position.Z()-(-50.0+r.SkinOffset)) > testTolerance {
		t.Errorf("partial result should stop at the contact, got z = %v", result.Position.Z())
	}
}

func TestMoveAndCollide_CornerSecondaryContact(t *testing.T) {
	// Sliding into a corner: the deflection off the first wall pushes the
	// body into the second within the same fixed step
	r := NewResolver(1)
	r.Friction = 0
	r.Restitution = 1.0 // full reflection keeps the geometry easy to reason about
	r.MaxIterations = 2

	// Wall at z=-10 and a second wall at z=+4 behind the start
	result := r.MoveAndCollide(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -36}, 1.0,
		[]actor.Collidable{wallBody(t, -10), flippedWall(t, 4)})

	if !result.Collided {
		t.Fatal("expected collisions")
	}
	// First contact at z=-9 after t=0.25, reflected velocity (0,0,36) over
	// the remaining 0.75 would reach z=18, but the second wall at z=4
	// (contact at center z=3) reflects again
	if result.Velocity.Z() >= 0 {
		t.Errorf("velocity = %v, want the secondary contact to reflect back to -z", result.Velocity)
	}
	if result.Position.Z() > 3+testTolerance {
		t.Errorf("position z = %v, body passed the second wall", result.Position.Z())
	}
}

// flippedWall faces -z so a body moving toward +z can contact it
func flippedWall(t *testing.T, depth float64) actor.Collidable {
	t.Helper()
	mesh, err := actor.NewTriangleMesh(
		[]mgl64.Vec3{{-500, -500, depth}, {0, 500, depth}, {500, -500, depth}},
		[][3]int{{0, 1, 2}},
	)
	if err != nil {
		t.Fatalf("flippedWall: %v", err)
	}
	return &actor.MeshBody{Mesh: mesh, Transform: actor.NewTransform()}
}

func TestMoveAndCollide_SkipsUnusableNodes(t *testing.T) {
	r := NewResolver(5)

	collidables := []actor.Collidable{
		nil,
		&actor.MeshBody{Mesh: nil},
		&actor.Group{Children: []actor.Collidable{nil, wallBody(t, -55)}},
	}
	result := r.MoveAndCollide(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -100}, 1.0, collidables)

	if !result.Collided {
		t.Error("the usable mesh inside the group should still collide")
	}
}

func TestMoveAndCollide_WorkersMatchSerial(t *testing.T) {
	// The parallel scan must produce the same result as the serial one
	serial := NewResolver(5)
	parallel := NewResolver(5)
	parallel.Workers = 4

	field := []actor.Collidable{
		wallBody(t, -80), wallBody(t, -40), wallBody(t, -60), wallBody(t, -90),
	}
	p0 := mgl64.Vec3{0, 0, 0}
	v0 := mgl64.Vec3{0, 0, -100}

	a := serial.MoveAndCollide(p0, v0, 1.0, field)
	b := parallel.MoveAndCollide(p0, v0, 1.0, field)

	if a.Position != b.Position || a.Velocity != b.Velocity || a.Collided != b.Collided {
		t.Errorf("parallel result %+v differs from serial %+v", b, a)
	}
}
