package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShellBody is a composite collidable made of an outer and an inner shell
// sharing one transform, as produced by the hollow asteroid generator. Both
// shells take part in collision: the craft can fly inside the outer shell and
// still collide with the inner one.
type ShellBody struct {
	Outer     *TriangleMesh
	Inner     *TriangleMesh
	Transform Transform
}

// NewShellBody pairs an outer and inner shell mesh under one transform
func NewShellBody(outer, inner *TriangleMesh, transform Transform) (*ShellBody, error) {
	if outer == nil || inner == nil {
		return nil, fmt.Errorf("shell body requires both shells, outer=%v inner=%v", outer != nil, inner != nil)
	}
	return &ShellBody{Outer: outer, Inner: inner, Transform: transform}, nil
}

func (s *ShellBody) TriangleMeshes() []MeshInstance {
	return []MeshInstance{
		{Mesh: s.Outer, Transform: s.Transform},
		{Mesh: s.Inner, Transform: s.Transform},
	}
}

// NewFrameRing builds the collision mesh for a cockpit frame ring: a flat
// annulus in the local XY plane, normal along +Z, triangulated as two
// triangles per segment. innerRadius must be strictly smaller than
// outerRadius; an inverted ordering is a programmer error, not a runtime
// condition, and is rejected here.
func NewFrameRing(innerRadius, outerRadius float64, segments int) (*TriangleMesh, error) {
	if innerRadius <= 0 || outerRadius <= innerRadius {
		return nil, fmt.Errorf("frame ring radii must satisfy 0 < inner < outer, got inner=%v outer=%v", innerRadius, outerRadius)
	}
	if segments < 3 {
		return nil, fmt.Errorf("frame ring requires at least 3 segments, got %d", segments)
	}

	points := make([]mgl64.Vec3, 0, segments*2)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		cos, sin := math.Cos(angle), math.Sin(angle)
		points = append(points,
			mgl64.Vec3{innerRadius * cos, innerRadius * sin, 0},
			mgl64.Vec3{outerRadius * cos, outerRadius * sin, 0},
		)
	}

	// CCW winding seen from +Z
	faces := make([][3]int, 0, segments*2)
	for i := 0; i < segments; i++ {
		in0, out0 := i*2, i*2+1
		in1, out1 := ((i+1)%segments)*2, ((i+1)%segments)*2+1
		faces = append(faces,
			[3]int{in0, out0, out1},
			[3]int{in0, out1, in1},
		)
	}

	return &TriangleMesh{Points: points, Faces: faces}, nil
}
