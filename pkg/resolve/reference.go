package resolve

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/tree"
)

// ResolveReference turns a symbolic role reference into a concrete
// geometric reference against a read-only tree snapshot. It is a pure
// function: identical snapshot and role always yield the identical
// reference.
func ResolveReference(ref intent.RoleRef, snap tree.Snapshot) (tree.GeometricReference, error) {
	switch ref.Role {
	case intent.RoleBasePlane:
		return tree.OriginReference(ref.Plane, ref), nil

	case intent.RoleFaceOfPrevious:
		last, ok := snap.Last()
		if !ok {
			return tree.GeometricReference{}, ReferenceNotFoundError{
				Ref: ref, Reason: "no previous feature in the tree"}
		}
		if ref.Axis.Length() == 0 {
			return tree.GeometricReference{}, ReferenceNotFoundError{
				Ref: ref, Reason: "zero direction axis"}
		}
		idx, ok := bestFace(last, ref.Axis)
		if !ok {
			return tree.GeometricReference{}, ReferenceNotFoundError{
				Ref: ref, Reason: "previous feature has no planar faces"}
		}
		return tree.FaceReference(last.Order, idx, ref), nil

	case intent.RoleFeature:
		node, ok := snap.ByID(ref.FeatureID)
		if !ok {
			return tree.GeometricReference{}, ReferenceNotFoundError{
				Ref: ref, Reason: "no such feature in the tree"}
		}
		// An explicit feature reference resolves to the feature; for use as
		// a support we pick its face the same way a directional reference
		// would, defaulting to the upward-facing one. Non-planar-only
		// features keep face 0 and fail later if a sketch is required.
		idx, ok := bestFace(node, v3.Vec{Z: 1})
		if !ok {
			idx = 0
		}
		return tree.FaceReference(node.Order, idx, ref), nil

	default:
		return tree.GeometricReference{}, ReferenceNotFoundError{
			Ref: ref, Reason: "unknown role"}
	}
}

// bestFace returns the index of the planar face whose outward normal
// maximizes the dot product with axis. Ties break to the lowest local face
// index, so resolution is stable under identical snapshots.
func bestFace(n tree.FeatureNode, axis v3.Vec) (int, bool) {
	unit := axis.Normalize()
	best, bestDot := -1, math.Inf(-1)
	for i, f := range n.Faces {
		if !f.Planar {
			continue
		}
		if d := f.Normal.Dot(unit); d > bestDot {
			best, bestDot = i, d
		}
	}
	return best, best >= 0
}
