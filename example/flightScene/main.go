package main

import (
	"fmt"
	"time"

	"github.com/akmonengine/aster"
	"github.com/akmonengine/aster/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Thruster pushes the craft along a fixed direction while enabled
type Thruster struct {
	Craft     *actor.Craft
	Direction mgl64.Vec3
	Power     float64 // N
	Enabled   bool
}

func (t *Thruster) Step(dt float64) {
	if t.Enabled {
		t.Craft.ApplyForce(t.Direction.Normalize().Mul(t.Power))
	}
}
func (t *Thruster) Phase() aster.Phase { return aster.PhaseForce }
func (t *Thruster) Priority() int      { return 0 }

// Dampener bleeds off velocity, the usual inertia dampener of a flight model
type Dampener struct {
	Craft  *actor.Craft
	Factor float64
}

func (d *Dampener) Step(dt float64) {
	d.Craft.ApplyForce(d.Craft.Velocity.Mul(-d.Factor * d.Craft.Mass()))
}
func (d *Dampener) Phase() aster.Phase { return aster.PhasePreForce }
func (d *Dampener) Priority() int      { return 10 }

// asteroidMesh builds a crude octahedral asteroid of the given radius,
// standing in for the procedural generator
func asteroidMesh(radius float64, prototypeID string) *actor.TriangleMesh {
	r := radius
	mesh := &actor.TriangleMesh{
		Points: []mgl64.Vec3{
			{r, 0, 0}, {-r, 0, 0},
			{0, r, 0}, {0, -r, 0},
			{0, 0, r}, {0, 0, -r},
		},
		Faces: [][3]int{
			{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
			{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
		},
		PrototypeID: prototypeID,
	}
	return mesh
}

func main() {
	craft := actor.NewCraft(1200)
	craft.Position = mgl64.Vec3{0, 0, -120}

	scheduler := aster.NewScheduler(120, craft)

	thruster := &Thruster{Craft: craft, Direction: mgl64.Vec3{0, 0, 1}, Power: 90000, Enabled: true}
	scheduler.Register(thruster)
	scheduler.Register(&Dampener{Craft: craft, Factor: 0.05})

	// A small field: three instances of one family, one of another.
	// The cache builds one bundle per family.
	cache := aster.NewColliderCache()
	rockA := asteroidMesh(20, "crater-family-7")
	rockB := asteroidMesh(12, "spike-family-2")

	var field []actor.Collidable
	placements := []struct {
		mesh  *actor.TriangleMesh
		at    mgl64.Vec3
		scale float64
	}{
		{rockA, mgl64.Vec3{0, 0, 0}, 1.0},
		{rockA, mgl64.Vec3{60, 10, 40}, 1.5},
		{rockA, mgl64.Vec3{-45, -20, 80}, 0.8},
		{rockB, mgl64.Vec3{20, 30, -40}, 1.0},
	}
	for _, p := range placements {
		entry, err := cache.NewInstance(p.mesh, "collision-lod0", actor.NewTransformScaled(p.at, p.scale))
		if err != nil {
			panic(err)
		}
		field = append(field, entry)
	}
	fmt.Printf("field: %d instances sharing %d collider bundles\n", len(placements), cache.Len())

	events := aster.NewEvents()
	events.Subscribe(aster.CONTACT_ENTER, func(e aster.Event) {
		fmt.Printf("  contact enter at %v, normal %v\n", e.Point, e.Normal)
	})
	events.Subscribe(aster.CONTACT_EXIT, func(e aster.Event) {
		fmt.Println("  contact exit")
	})

	resolver := aster.NewResolver(5.0)
	resolver.Events = events

	// Frame-driven loop: the scheduler banks real elapsed time, the resolver
	// corrects the integrated move
	const frames = 600
	now := time.Now()
	for frame := 0; frame < frames; frame++ {
		now = now.Add(time.Second / 60)

		// Contributors and velocity integration run on the fixed clock; the
		// resolver then redoes the frame's move from the pre-tick position
		// with collision handling and owns the final position.
		prev := craft.Position
		scheduler.Tick(now)

		result := resolver.MoveAndCollide(prev, craft.Velocity, 1.0/60, field)
		craft.Position = result.Position
		craft.Velocity = result.Velocity

		if frame%60 == 0 {
			fmt.Printf("t=%4.1fs position=%6.1f %6.1f %6.1f speed=%6.1f\n",
				float64(frame)/60,
				craft.Position.X(), craft.Position.Y(), craft.Position.Z(),
				craft.Velocity.Len())
		}
	}
}
