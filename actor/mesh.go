package actor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// TriangleMesh is collision geometry in local space: vertex positions plus
// face index triples. Texture coordinates are optional and only needed when
// the mesh is indexed for UV picking. Meshes are immutable once built; the
// generation side rebuilds a new mesh instead of mutating one in place.
type TriangleMesh struct {
	Points []mgl64.Vec3
	Faces  [][3]int
	UVs    []mgl64.Vec2

	// PrototypeID identifies the generated shape family this mesh belongs to,
	// stable across all instances sharing the same generation parameters.
	// Empty when the generation side cannot supply one.
	PrototypeID string
}

// NewTriangleMesh validates and wraps raw geometry
func NewTriangleMesh(points []mgl64.Vec3, faces [][3]int) (*TriangleMesh, error) {
	if len(points) == 0 || len(faces) == 0 {
		return nil, fmt.Errorf("triangle mesh requires points and faces, got %d points, %d faces", len(points), len(faces))
	}
	for i, face := range faces {
		for _, idx := range face {
			if idx < 0 || idx >= len(points) {
				return nil, fmt.Errorf("face %d references vertex %d, mesh has %d points", i, idx, len(points))
			}
		}
	}

	return &TriangleMesh{Points: points, Faces: faces}, nil
}

// FaceCount returns the number of triangles in the mesh
func (m *TriangleMesh) FaceCount() int {
	return len(m.Faces)
}

// Triangle returns the three corner positions of face i, in winding order
func (m *TriangleMesh) Triangle(i int) (mgl64.Vec3, mgl64.Vec3, mgl64.Vec3) {
	face := m.Faces[i]
	return m.Points[face[0]], m.Points[face[1]], m.Points[face[2]]
}

// FaceNormal returns the unnormalized face normal of face i.
// The caller decides how to treat near-zero (degenerate) normals.
func (m *TriangleMesh) FaceNormal(i int) mgl64.Vec3 {
	v0, v1, v2 := m.Triangle(i)
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// Bounds computes the local-space bounding box of the whole mesh
func (m *TriangleMesh) Bounds() AABB {
	box := EmptyAABB()
	for _, p := range m.Points {
		box.ExtendPoint(p)
	}
	return box
}

// MeshInstance pairs a mesh with the world transform of one placed instance
type MeshInstance struct {
	Mesh      *TriangleMesh
	Transform Transform
}

// Collidable is the capability the collision resolver consumes: anything that
// can present itself as one or more transformed triangle meshes. Leaf bodies
// yield a single instance; composite bodies yield several. Nodes that carry
// no usable mesh yield none and are skipped.
type Collidable interface {
	TriangleMeshes() []MeshInstance
}

// MeshBody is the leaf Collidable: one mesh placed at one transform
type MeshBody struct {
	Mesh      *TriangleMesh
	Transform Transform
}

func (b *MeshBody) TriangleMeshes() []MeshInstance {
	if b.Mesh == nil || len(b.Mesh.Faces) == 0 {
		return nil
	}
	return []MeshInstance{{Mesh: b.Mesh, Transform: b.Transform}}
}

// Group is a composite Collidable that unpacks its children recursively
type Group struct {
	Children []Collidable
}

func (g *Group) TriangleMeshes() []MeshInstance {
	var instances []MeshInstance
	for _, child := range g.Children {
		if child == nil {
			continue
		}
		instances = append(instances, child.TriangleMeshes()...)
	}
	return instances
}
