package aster

import (
	"testing"

	"github.com/akmonengine/aster/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// gridMesh builds a flat grid of n*n quads (2 triangles each) in the z=0 plane
func gridMesh(t *testing.T, n int) *actor.TriangleMesh {
	t.Helper()

	var points []mgl64.Vec3
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			points = append(points, mgl64.Vec3{float64(x), float64(y), 0})
		}
	}

	var faces [][3]int
	stride := n + 1
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a := y*stride + x
			b := a + 1
			c := a + stride
			d := c + 1
			faces = append(faces, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}

	mesh, err := actor.NewTriangleMesh(points, faces)
	if err != nil {
		t.Fatalf("gridMesh: %v", err)
	}
	return mesh
}

func TestBuildMeshBVH_Structure(t *testing.T) {
	mesh := gridMesh(t, 8) // 128 triangles
	bvh := BuildMeshBVH(mesh, 4)
	if bvh == nil {
		t.Fatal("BuildMeshBVH returned nil for a valid mesh")
	}

	// Triangle order must be a permutation of the mesh faces
	seen := make(map[int32]bool, len(bvh.TriangleOrder))
	for _, tri := range bvh.TriangleOrder {
		if tri < 0 || int(tri) >= mesh.FaceCount() {
			t.Fatalf("triangle index %d out of range", tri)
		}
		if seen[tri] {
			t.Fatalf("triangle %d appears twice in the order", tri)
		}
		seen[tri] = true
	}
	if len(seen) != mesh.FaceCount() {
		t.Errorf("order covers %d triangles, mesh has %d", len(seen), mesh.FaceCount())
	}

	// Leaves partition the order: every triangle in exactly one leaf range,
	// children follow their parent, leaves respect the leaf size
	covered := make([]int, mesh.FaceCount())
	for i := int32(0); i < int32(bvh.NodeCount()); i++ {
		if bvh.IsLeaf(i) {
			if bvh.TriCount[i] > 4 {
				t.Errorf("leaf %d holds %d triangles, max 4", i, bvh.TriCount[i])
			}
			for j := bvh.FirstTriangle[i]; j < bvh.FirstTriangle[i]+bvh.TriCount[i]; j++ {
				covered[j]++
			}
		} else {
			if bvh.Left[i] <= i || bvh.Right[i] <= i {
				t.Errorf("node %d has children (%d, %d) not after it", i, bvh.Left[i], bvh.Right[i])
			}
			childUnion := bvh.NodeBounds(bvh.Left[i]).Union(bvh.NodeBounds(bvh.Right[i]))
			bounds := bvh.NodeBounds(i)
			if !bounds.ContainsPoint(childUnion.Min) || !bounds.ContainsPoint(childUnion.Max) {
				t.Errorf("node %d bounds do not contain its children", i)
			}
		}
	}
	for slot, count := range covered {
		if count != 1 {
			t.Errorf("order slot %d covered by %d leaves, want 1", slot, count)
		}
	}

	// Root bounds must contain the whole mesh
	root := bvh.NodeBounds(0)
	meshBounds := mesh.Bounds()
	if !root.ContainsPoint(meshBounds.Min) || !root.ContainsPoint(meshBounds.Max) {
		t.Errorf("root bounds %+v do not contain mesh bounds %+v", root, meshBounds)
	}
}

func TestBuildMeshBVH_EmptyMesh(t *testing.T) {
	if bvh := BuildMeshBVH(nil, 4); bvh != nil {
		t.Error("nil mesh should produce no BVH")
	}
	if bvh := BuildMeshBVH(&actor.TriangleMesh{}, 4); bvh != nil {
		t.Error("faceless mesh should produce no BVH")
	}
}

func TestMeshBVH_RefitIsStable(t *testing.T) {
	mesh := gridMesh(t, 4)
	bvh := BuildMeshBVH(mesh, 4)

	before := make([]actor.AABB, bvh.NodeCount())
	for i := range before {
		before[i] = bvh.NodeBounds(int32(i))
	}

	// Refitting against the unchanged mesh must reproduce the same bounds
	bvh.Refit(mesh)

	for i := range before {
		after := bvh.NodeBounds(int32(i))
		if before[i] != after {
			t.Errorf("node %d bounds changed on refit: %+v -> %+v", i, before[i], after)
		}
	}
}
