// Package sweep implements continuous swept-sphere collision against triangle meshes.
//
// A moving sphere is described by its start and end center plus a radius, and
// tested against every triangle of a mesh for the earliest time of impact
// (TOI): the fraction t in [0,1] along the sweep at which the sphere first
// touches a triangle. The test is face-only: the sphere is swept against each
// triangle's supporting plane, offset by the radius on the approach side, and
// the plane contact point must pass an edge-function containment test to count.
//
// There is no edge or vertex sweep (no Minkowski-sum capsule test), so a fast
// sphere can tunnel through a knife-edge or a thin rim. This is a known
// approximation of the face sweep, kept deliberately; a capsule sweep against
// edges and vertices would be a drop-in extension.
//
// References:
//   - Ericson: "Real-Time Collision Detection" (2005), ch. 5.5 (moving sphere vs plane)
package sweep

import (
	"github.com/akmonengine/aster/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon rejects plane-parallel sweeps and degenerate (near zero area)
// triangles in dot-product and cross-product magnitude tests.
const Epsilon = 1e-8

// Query describes one sphere sweep in world space.
//
// FrontFaceOnly ignores faces whose normal does not oppose the sweep
// direction. Only enable it for meshes with verified consistent winding;
// with it off, both sides of every face are candidate contacts.
type Query struct {
	Start         mgl64.Vec3
	End           mgl64.Vec3
	Radius        float64
	FrontFaceOnly bool
}

// Hit is the earliest contact of a sweep against one mesh.
// T is the fraction of the sweep consumed before contact, Point the
// world-space contact on the surface, Normal the unit world-space surface
// normal on the side the sphere approached from.
type Hit struct {
	T      float64
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Mesh   *actor.TriangleMesh
}

// FirstHit computes the earliest time of impact of the swept sphere against
// the mesh placed at the given transform. The sweep is carried out in the
// mesh's local space (the radius divided by the uniform scale), and the
// resulting point and normal are transformed back to world space. Returns
// false when no triangle is touched within the sweep.
func FirstHit(mesh *actor.TriangleMesh, transform actor.Transform, q Query) (Hit, bool) {
	if mesh == nil || len(mesh.Faces) == 0 {
		return Hit{}, false
	}

	c0 := transform.ApplyInverse(q.Start)
	c1 := transform.ApplyInverse(q.End)
	radius := q.Radius / transform.Scale

	local, ok := firstHitLocal(mesh, c0, c1, radius, q.FrontFaceOnly)
	if !ok {
		return Hit{}, false
	}

	return Hit{
		T:      local.T,
		Point:  transform.Apply(local.Point),
		Normal: transform.ApplyDirection(local.Normal),
		Mesh:   mesh,
	}, true
}

// firstHitLocal runs the sweep in mesh-local space, scanning every triangle
// and keeping the minimum t
func firstHitLocal(mesh *actor.TriangleMesh, c0, c1 mgl64.Vec3, radius float64, frontFaceOnly bool) (Hit, bool) {
	d := c1.Sub(c0)

	best := Hit{T: 2.0}
	found := false

	for i := 0; i < mesh.FaceCount(); i++ {
		v0, v1, v2 := mesh.Triangle(i)

		faceNormal := v1.Sub(v0).Cross(v2.Sub(v0))
		if faceNormal.LenSqr() < Epsilon*Epsilon {
			continue // degenerate triangle, expected in generated meshes
		}
		faceNormal = faceNormal.Normalize()

		// Contact normal on the approach side. Without FrontFaceOnly the
		// normal is flipped to face the start center, so either winding works.
		n := faceNormal
		dist0 := n.Dot(c0.Sub(v0))
		if !frontFaceOnly && dist0 < 0 {
			n = n.Mul(-1)
			dist0 = -dist0
		}

		// Sphere approaches the plane only if the centers move against the normal
		nd := n.Dot(d)
		if nd >= -Epsilon {
			continue
		}

		// Plane crossing at perpendicular distance radius:
		// radius - n·(c0-v0) = t * n·d
		t := (radius - dist0) / nd
		if t < -Epsilon || t > 1+Epsilon {
			continue
		}
		t = mgl64.Clamp(t, 0, 1)
		if t >= best.T {
			continue
		}

		// Sphere-plane contact point must lie inside the triangle
		contact := c0.Add(d.Mul(t)).Sub(n.Mul(radius))
		if !containsPoint(v0, v1, v2, faceNormal, contact) {
			continue
		}

		best = Hit{T: t, Point: contact, Normal: n, Mesh: mesh}
		found = true
	}

	return best, found
}

// containsPoint runs the edge-function test: the point is inside when it lies
// on the same side of all three edges, with the face normal as the side
// reference. Using the geometric face normal keeps the test winding-agnostic.
func containsPoint(v0, v1, v2, faceNormal, p mgl64.Vec3) bool {
	edges := [3][2]mgl64.Vec3{{v0, v1}, {v1, v2}, {v2, v0}}
	for _, e := range edges {
		cross := e[1].Sub(e[0]).Cross(p.Sub(e[0]))
		if cross.Dot(faceNormal) < -Epsilon {
			return false
		}
	}
	return true
}
