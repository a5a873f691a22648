package tree

import (
	"fmt"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/kernel"
)

// GeometricReference is a resolved pointer to a specific face or datum
// plane, tagged with the role it was resolved from. It is a relation
// (creation-order index + local face index), never an owning pointer, so it
// can go stale if the referenced node is invalidated and must be checked
// before use.
type GeometricReference struct {
	Node      int                // creation-order index; NoParent for an origin plane
	Plane     kernel.OriginPlane // valid when Node == NoParent
	FaceIndex int                // local face index within the node
	Role      intent.RoleRef     // the symbolic role this was resolved from
}

// OriginReference returns a reference to a fixed datum plane.
func OriginReference(p kernel.OriginPlane, role intent.RoleRef) GeometricReference {
	return GeometricReference{Node: NoParent, Plane: p, Role: role}
}

// FaceReference returns a reference to a face of a confirmed feature.
func FaceReference(order, faceIndex int, role intent.RoleRef) GeometricReference {
	return GeometricReference{Node: order, FaceIndex: faceIndex, Role: role}
}

// IsOrigin reports whether the reference names a fixed datum plane.
func (r GeometricReference) IsOrigin() bool { return r.Node == NoParent }

// Valid reports whether the reference still points at an existing face in
// the snapshot. Origin planes are always valid.
func (r GeometricReference) Valid(s Snapshot) bool {
	if r.IsOrigin() {
		return true
	}
	n, ok := s.Node(r.Node)
	if !ok {
		return false
	}
	return r.FaceIndex >= 0 && r.FaceIndex < len(n.Faces)
}

// Face returns the referenced face from the snapshot.
func (r GeometricReference) Face(s Snapshot) (Face, bool) {
	if r.IsOrigin() || !r.Valid(s) {
		return Face{}, false
	}
	n, _ := s.Node(r.Node)
	return n.Faces[r.FaceIndex], true
}

func (r GeometricReference) String() string {
	if r.IsOrigin() {
		return fmt.Sprintf("plane:%s", r.Plane)
	}
	return fmt.Sprintf("node:%d/face:%d", r.Node, r.FaceIndex)
}
