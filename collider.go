package aster

import (
	"fmt"
	"sync"

	"github.com/akmonengine/aster/actor"
)

// ColliderKey is the stable identity a collision representation is shared
// under. Many asteroid instances of one generated family reference the same
// key and therefore the same bundle.
type ColliderKey string

// KeyFor derives the key for a mesh at the given LOD. It prefers the mesh's
// explicit prototype id, which is stable across instances by construction.
// Without one it falls back to a structural fingerprint: vertex and face
// counts plus the mesh's pointer identity. The fallback is weaker, it only
// dedupes instances sharing the exact same mesh object; the generation side
// should supply prototype ids whenever it can.
func KeyFor(mesh *actor.TriangleMesh, lod string) ColliderKey {
	if mesh.PrototypeID != "" {
		return ColliderKey(fmt.Sprintf("proto:%s/%s", mesh.PrototypeID, lod))
	}
	return ColliderKey(fmt.Sprintf("struct:%d-%d-%p/%s", len(mesh.Points), len(mesh.Faces), mesh, lod))
}

// ColliderBundle is the shared, read-only collision payload of one key: the
// collision mesh plus its bounding-volume hierarchy. One bundle is shared by
// every instance referencing the key; no instance mutates it.
type ColliderBundle struct {
	Key ColliderKey
	LOD *actor.TriangleMesh
	BVH *MeshBVH
}

// ColliderCache memoizes collider bundles by key with an at-most-one-build
// guarantee. The first requester of a key pays the build cost, later
// requesters get the identical bundle. The mutex makes the guarantee hold
// under concurrent first access (background mesh loading); in the
// single-threaded frame loop it is uncontended.
type ColliderCache struct {
	mu      sync.Mutex
	bundles map[ColliderKey]*ColliderBundle
}

func NewColliderCache() *ColliderCache {
	return &ColliderCache{bundles: make(map[ColliderKey]*ColliderBundle)}
}

// GetOrBuild returns the bundle for the key, building it from the exemplar
// mesh only on first request. The exemplar should already be the collision
// LOD the generation side wants instances to collide against.
func (c *ColliderCache) GetOrBuild(key ColliderKey, exemplar *actor.TriangleMesh) (*ColliderBundle, error) {
	if exemplar == nil || len(exemplar.Faces) == 0 {
		return nil, fmt.Errorf("collider bundle %q requires a non-empty exemplar mesh", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if bundle, ok := c.bundles[key]; ok {
		return bundle, nil
	}

	bundle := &ColliderBundle{
		Key: key,
		LOD: exemplar,
		BVH: BuildMeshBVH(exemplar, DefaultLeafSize),
	}
	c.bundles[key] = bundle
	return bundle, nil
}

// Len returns the number of distinct bundles built so far
func (c *ColliderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bundles)
}

// InstanceEntry binds one placed asteroid instance to its shared bundle.
// Created when the instance is placed in the field, discarded with it.
// It is a Collidable: the resolver sweeps against the shared collision LOD
// at the instance's own transform.
type InstanceEntry struct {
	Key       ColliderKey
	Bundle    *ColliderBundle
	Transform actor.Transform
}

// NewInstance keys the mesh, builds or reuses its bundle, and binds it to the
// instance transform
func (c *ColliderCache) NewInstance(mesh *actor.TriangleMesh, lod string, transform actor.Transform) (*InstanceEntry, error) {
	key := KeyFor(mesh, lod)
	bundle, err := c.GetOrBuild(key, mesh)
	if err != nil {
		return nil, err
	}
	return &InstanceEntry{Key: key, Bundle: bundle, Transform: transform}, nil
}

func (e *InstanceEntry) TriangleMeshes() []actor.MeshInstance {
	return []actor.MeshInstance{{Mesh: e.Bundle.LOD, Transform: e.Transform}}
}
