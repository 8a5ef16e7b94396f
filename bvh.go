package aster

import (
	"github.com/akmonengine/aster/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultLeafSize is the triangle count below which a BVH node stays a leaf
const DefaultLeafSize = 8

// MeshBVH is a flat-array bounding-volume hierarchy over the triangles of one
// mesh: struct-of-arrays node storage (AABB per node, child indices, leaf
// triangle ranges) that refits cheaply and stays cache-friendly. Node 0 is
// the root; children always have higher indices than their parent.
//
// The hierarchy is built and refitted but not yet traversed: the sweep still
// scans every triangle. TODO: stack-based nearest-hit descent in
// sweep.FirstHit, replacing the brute-force scan without changing the Hit
// contract.
type MeshBVH struct {
	MinX, MinY, MinZ []float64
	MaxX, MaxY, MaxZ []float64

	// Left and Right are child node indices, -1 on leaves
	Left, Right []int32

	// FirstTriangle and TriCount describe a leaf's range in TriangleOrder;
	// TriCount is 0 on internal nodes
	FirstTriangle, TriCount []int32

	// TriangleOrder is the build-time permutation of mesh face indices
	TriangleOrder []int32

	leafSize int
}

// BuildMeshBVH builds the hierarchy by recursive median split of triangle
// centroids along the longest axis of each node's bounds
func BuildMeshBVH(mesh *actor.TriangleMesh, leafSize int) *MeshBVH {
	if mesh == nil || len(mesh.Faces) == 0 {
		return nil
	}
	if leafSize < 1 {
		leafSize = DefaultLeafSize
	}

	b := &MeshBVH{
		TriangleOrder: make([]int32, mesh.FaceCount()),
		leafSize:      leafSize,
	}
	for i := range b.TriangleOrder {
		b.TriangleOrder[i] = int32(i)
	}

	bounds := make([]actor.AABB, mesh.FaceCount())
	for i := 0; i < mesh.FaceCount(); i++ {
		bounds[i] = triangleBounds(mesh, i)
	}

	b.buildNode(bounds, 0, len(b.TriangleOrder))
	return b
}

// buildNode appends one node covering TriangleOrder[first:first+count] and
// recurses; returns the node index
func (b *MeshBVH) buildNode(bounds []actor.AABB, first, count int) int32 {
	box := actor.EmptyAABB()
	for _, tri := range b.TriangleOrder[first : first+count] {
		box = box.Union(bounds[tri])
	}

	node := b.appendNode(box)

	if count <= b.leafSize {
		b.FirstTriangle[node] = int32(first)
		b.TriCount[node] = int32(count)
		return node
	}

	axis := longestAxis(box)
	mid := first + count/2
	// Median split: partial sort around the centroid median on the split axis
	order := b.TriangleOrder[first : first+count]
	nthElement(order, count/2, func(a, c int32) bool {
		return bounds[a].Center()[axis] < bounds[c].Center()[axis]
	})

	b.Left[node] = b.buildNode(bounds, first, mid-first)
	b.Right[node] = b.buildNode(bounds, mid, first+count-mid)
	return node
}

func (b *MeshBVH) appendNode(box actor.AABB) int32 {
	b.MinX = append(b.MinX, box.Min.X())
	b.MinY = append(b.MinY, box.Min.Y())
	b.MinZ = append(b.MinZ, box.Min.Z())
	b.MaxX = append(b.MaxX, box.Max.X())
	b.MaxY = append(b.MaxY, box.Max.Y())
	b.MaxZ = append(b.MaxZ, box.Max.Z())
	b.Left = append(b.Left, -1)
	b.Right = append(b.Right, -1)
	b.FirstTriangle = append(b.FirstTriangle, 0)
	b.TriCount = append(b.TriCount, 0)
	return int32(len(b.Left) - 1)
}

// NodeCount returns the number of nodes in the hierarchy
func (b *MeshBVH) NodeCount() int {
	return len(b.Left)
}

// IsLeaf reports whether node i holds triangles directly
func (b *MeshBVH) IsLeaf(i int32) bool {
	return b.TriCount[i] > 0
}

// NodeBounds returns the AABB of node i
func (b *MeshBVH) NodeBounds(i int32) actor.AABB {
	return actor.AABB{
		Min: mgl64.Vec3{b.MinX[i], b.MinY[i], b.MinZ[i]},
		Max: mgl64.Vec3{b.MaxX[i], b.MaxY[i], b.MaxZ[i]},
	}
}

// Refit recomputes all node bounds from the mesh without changing the tree
// topology. Children always follow their parent in the arrays, so one reverse
// pass updates leaves before the internal nodes that union them.
func (b *MeshBVH) Refit(mesh *actor.TriangleMesh) {
	for i := int32(len(b.Left)) - 1; i >= 0; i-- {
		var box actor.AABB
		if b.IsLeaf(i) {
			box = actor.EmptyAABB()
			for _, tri := range b.TriangleOrder[b.FirstTriangle[i] : b.FirstTriangle[i]+b.TriCount[i]] {
				box = box.Union(triangleBounds(mesh, int(tri)))
			}
		} else {
			box = b.NodeBounds(b.Left[i]).Union(b.NodeBounds(b.Right[i]))
		}
		b.MinX[i], b.MinY[i], b.MinZ[i] = box.Min.X(), box.Min.Y(), box.Min.Z()
		b.MaxX[i], b.MaxY[i], b.MaxZ[i] = box.Max.X(), box.Max.Y(), box.Max.Z()
	}
}

func triangleBounds(mesh *actor.TriangleMesh, i int) actor.AABB {
	v0, v1, v2 := mesh.Triangle(i)
	box := actor.EmptyAABB()
	box.ExtendPoint(v0)
	box.ExtendPoint(v1)
	box.ExtendPoint(v2)
	return box
}

func longestAxis(box actor.AABB) int {
	size := box.Max.Sub(box.Min)
	axis := 0
	if size.Y() > size.X() {
		axis = 1
	}
	if size.Z() > size[axis] {
		axis = 2
	}
	return axis
}

// nthElement partially sorts order so that order[n] is the element that would
// land there under a full sort, with smaller elements before it. Classic
// quickselect partitioning, enough for a median split.
func nthElement(order []int32, n int, less func(a, b int32) bool) {
	lo, hi := 0, len(order)-1
	for lo < hi {
		pivot := order[(lo+hi)/2]
		i, j := lo, hi
		for i <= j {
			for less(order[i], pivot) {
				i++
			}
			for less(pivot, order[j]) {
				j--
			}
			if i <= j {
				order[i], order[j] = order[j], order[i]
				i++
				j--
			}
		}
		if n <= j {
			hi = j
		} else if n >= i {
			lo = i
		} else {
			return
		}
	}
}
