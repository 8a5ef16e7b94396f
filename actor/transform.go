package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform places a mesh instance in the world: rotation, translation and a
// uniform scale factor. Asteroid instances are scaled uniformly, which keeps
// sphere radii well-defined when a sweep is expressed in local space.
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
	Scale           float64
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
		Scale:           1.0,
	}
}

// NewTransformAt creates an identity transform at the given position
func NewTransformAt(position mgl64.Vec3) Transform {
	t := NewTransform()
	t.Position = position
	return t
}

// NewTransformScaled creates a transform at the given position with a uniform scale
func NewTransformScaled(position mgl64.Vec3, scale float64) Transform {
	t := NewTransformAt(position)
	t.Scale = scale
	return t
}

// SetRotation sets the rotation and keeps the cached inverse in sync
func (t *Transform) SetRotation(q mgl64.Quat) {
	t.Rotation = q.Normalize()
	t.InverseRotation = t.Rotation.Inverse()
}

// Apply transforms a point from local space to world space (scale, rotate, translate)
func (t Transform) Apply(point mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(point.Mul(t.Scale)).Add(t.Position)
}

// ApplyInverse transforms a point from world space to local space
func (t Transform) ApplyInverse(point mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotation.Rotate(point.Sub(t.Position)).Mul(1.0 / t.Scale)
}

// ApplyDirection rotates a direction from local space to world space.
// Directions ignore translation and scale; a unit vector stays unit.
func (t Transform) ApplyDirection(dir mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(dir)
}

// ApplyInverseDirection rotates a direction from world space to local space
func (t Transform) ApplyInverseDirection(dir mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotation.Rotate(dir)
}
