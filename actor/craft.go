package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Craft is the one controlled moving body of the simulation. Contributors
// push forces onto it during their step; the scheduler integrates it once per
// fixed step after all contributors have run.
type Craft struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3 // m/s

	mass             float64
	accumulatedForce mgl64.Vec3
}

// NewCraft creates a craft at rest at the origin.
// A non-positive mass is clamped to 1 kg.
func NewCraft(mass float64) *Craft {
	if mass <= 0 || math.IsNaN(mass) {
		mass = 1.0
	}
	return &Craft{mass: mass}
}

// Mass returns the craft mass in kg
func (c *Craft) Mass() float64 {
	return c.mass
}

// ApplyForce accumulates a force (N) for the next integration step
func (c *Craft) ApplyForce(force mgl64.Vec3) {
	c.accumulatedForce = c.accumulatedForce.Add(force)
}

// Tick integrates the craft with semi-implicit Euler: velocity first from the
// accumulated forces, then position from the new velocity. Forces are consumed
// by the integration and cleared.
func (c *Craft) Tick(dt float64) {
	c.Velocity = c.Velocity.Add(c.accumulatedForce.Mul(dt / c.mass))
	c.Position = c.Position.Add(c.Velocity.Mul(dt))
	c.ClearForces()
}

func (c *Craft) ClearForces() {
	c.accumulatedForce = mgl64.Vec3{}
}
