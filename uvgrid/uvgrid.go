// Package uvgrid indexes mesh faces over texture space for interactive picking.
//
// Faces are bucketed into a uniform 2D grid spanning a doubled-U domain
// [0,2) x [0,1). The doubling handles the U=0/1 wraparound seam: any triangle
// whose vertex U-span exceeds 0.5 is assumed to straddle the seam and is
// unwrapped by shifting its low-U vertices up by 1.0, making it contiguous in
// the [1,2) half. A pick at (u,v) probes the cell at u and, when nothing
// matches, the cell at u+1 to reach faces that were unwrapped.
//
// This is a coarse uniform grid, not a hierarchy: UV coordinates are bounded
// and face density is roughly uniform, so point lookups are O(1) amortized.
package uvgrid

import (
	"fmt"
	"math"

	"github.com/akmonengine/aster/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-8

// seamSpan is the U-span above which a triangle is treated as straddling the
// wraparound seam rather than genuinely covering half the texture
const seamSpan = 0.5

// faceUV holds one face's texture triangle after seam unwrapping
type faceUV struct {
	p [3]mgl64.Vec2
}

// Index buckets the faces of one mesh into a grid over unwrapped UV space.
// Built once from the mesh's texture coordinates, immutable afterwards;
// rebuild on mesh change.
type Index struct {
	resolution int
	cellSize   float64
	// cells cover [0,2) in U (doubled) and [0,1) in V, row-major by V
	cells [][]int
	faces []faceUV
}

// NewIndex builds the picking index for a mesh carrying per-vertex texture
// coordinates. resolution is the cell count along V; U gets twice as many.
func NewIndex(mesh *actor.TriangleMesh, resolution int) (*Index, error) {
	if mesh == nil || len(mesh.UVs) == 0 {
		return nil, fmt.Errorf("uv index requires a mesh with texture coordinates")
	}
	if len(mesh.UVs) != len(mesh.Points) {
		return nil, fmt.Errorf("uv index requires one uv per vertex, got %d uvs for %d points", len(mesh.UVs), len(mesh.Points))
	}
	if resolution < 1 {
		return nil, fmt.Errorf("uv index resolution must be positive, got %d", resolution)
	}

	idx := &Index{
		resolution: resolution,
		cellSize:   1.0 / float64(resolution),
		cells:      make([][]int, 2*resolution*resolution),
		faces:      make([]faceUV, len(mesh.Faces)),
	}

	for i, face := range mesh.Faces {
		uv := faceUV{p: [3]mgl64.Vec2{mesh.UVs[face[0]], mesh.UVs[face[1]], mesh.UVs[face[2]]}}
		unwrapSeam(&uv)
		idx.faces[i] = uv
		idx.insert(i, uv)
	}

	return idx, nil
}

// unwrapSeam shifts low-U vertices up by a full wrap when the triangle's
// U-span exceeds the seam threshold, making the triangle contiguous in [1,2)
func unwrapSeam(uv *faceUV) {
	minU, maxU := uv.p[0].X(), uv.p[0].X()
	for _, p := range uv.p[1:] {
		minU = math.Min(minU, p.X())
		maxU = math.Max(maxU, p.X())
	}
	if maxU-minU <= seamSpan {
		return
	}
	for i := range uv.p {
		if uv.p[i].X() < seamSpan {
			uv.p[i][0] += 1.0
		}
	}
}

// insert adds the face to every cell its unwrapped bounding box overlaps
func (idx *Index) insert(face int, uv faceUV) {
	minU, maxU := uv.p[0].X(), uv.p[0].X()
	minV, maxV := uv.p[0].Y(), uv.p[0].Y()
	for _, p := range uv.p[1:] {
		minU = math.Min(minU, p.X())
		maxU = math.Max(maxU, p.X())
		minV = math.Min(minV, p.Y())
		maxV = math.Max(maxV, p.Y())
	}

	u0, v0 := idx.cellCoord(minU, minV)
	u1, v1 := idx.cellCoord(maxU, maxV)
	for cv := v0; cv <= v1; cv++ {
		for cu := u0; cu <= u1; cu++ {
			cell := cv*2*idx.resolution + cu
			idx.cells[cell] = append(idx.cells[cell], face)
		}
	}
}

// cellCoord clamps a UV position into the doubled-U grid
func (idx *Index) cellCoord(u, v float64) (int, int) {
	cu := int(math.Floor(u / idx.cellSize))
	cv := int(math.Floor(v / idx.cellSize))
	cu = max(0, min(cu, 2*idx.resolution-1))
	cv = max(0, min(cv, idx.resolution-1))
	return cu, cv
}

// PickFace returns the first face (in construction order) containing the
// normalized texture point (u,v), probing both the direct cell and the
// unwrapped cell one full U-wrap higher. Returns false when no face contains
// the point.
func (idx *Index) PickFace(u, v float64) (int, bool) {
	u -= math.Floor(u)
	v -= math.Floor(v)

	if face, ok := idx.pickInCell(u, v); ok {
		return face, ok
	}
	// Faces straddling the seam were unwrapped into the [1,2) half
	return idx.pickInCell(u+1.0, v)
}

func (idx *Index) pickInCell(u, v float64) (int, bool) {
	cu, cv := idx.cellCoord(u, v)
	point := mgl64.Vec2{u, v}

	best, found := -1, false
	for _, face := range idx.cells[cv*2*idx.resolution+cu] {
		if containsPoint2D(idx.faces[face].p, point) {
			if !found || face < best {
				best, found = face, true
			}
		}
	}
	return best, found
}

// containsPoint2D is the 2D edge-function test, with the triangle's signed
// area as the winding reference so either winding direction works
func containsPoint2D(tri [3]mgl64.Vec2, p mgl64.Vec2) bool {
	area := edgeFunction(tri[0], tri[1], tri[2])
	if math.Abs(area) < epsilon {
		return false // degenerate in UV space
	}

	sign := 1.0
	if area < 0 {
		sign = -1.0
	}
	for i := 0; i < 3; i++ {
		if sign*edgeFunction(tri[i], tri[(i+1)%3], p) < -epsilon {
			return false
		}
	}
	return true
}

// edgeFunction returns the signed doubled area of triangle (a, b, c)
func edgeFunction(a, b, c mgl64.Vec2) float64 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (b.Y()-a.Y())*(c.X()-a.X())
}
