package intent

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/forgecad/mandrel/pkg/kernel"
)

// PlaneNormal returns the outward normal of an origin datum plane.
func PlaneNormal(p kernel.OriginPlane) v3.Vec {
	switch p {
	case kernel.PlaneYZ:
		return v3.Vec{X: 1}
	case kernel.PlaneZX:
		return v3.Vec{Y: 1}
	default:
		return v3.Vec{Z: 1}
	}
}

// RoleKind enumerates the closed set of symbolic support references.
// Ambiguous references ("the top face") are modelled as explicit resolution
// rules rather than free-form string matching, so resolution stays
// deterministic and testable.
type RoleKind int

const (
	// RoleBasePlane resolves to a fixed origin datum plane.
	RoleBasePlane RoleKind = iota
	// RoleFaceOfPrevious resolves to the face of the most-recently-created
	// feature whose outward normal best matches the requested axis.
	RoleFaceOfPrevious
	// RoleFeature resolves directly to an explicitly named feature.
	RoleFeature
)

// RoleRef is a symbolic, unresolved reference to a support.
// It carries no entity handles; resolution against a tree snapshot turns it
// into a concrete geometric reference.
type RoleRef struct {
	Role      RoleKind
	Plane     kernel.OriginPlane // RoleBasePlane: which datum
	Axis      v3.Vec             // RoleFaceOfPrevious: requested outward direction
	FeatureID string             // RoleFeature: explicit feature handle
}

// BasePlane returns a reference to a fixed origin datum plane.
func BasePlane(p kernel.OriginPlane) RoleRef {
	return RoleRef{Role: RoleBasePlane, Plane: p}
}

// TopOfPrevious returns a reference to the upward-facing face of the
// most-recently-created feature.
func TopOfPrevious() RoleRef {
	return FaceOfPrevious(v3.Vec{Z: 1})
}

// FaceOfPrevious returns a reference to the face of the most-recently-created
// feature whose outward normal best matches axis.
func FaceOfPrevious(axis v3.Vec) RoleRef {
	return RoleRef{Role: RoleFaceOfPrevious, Axis: axis}
}

// Feature returns a reference to an explicitly named feature.
func Feature(id string) RoleRef {
	return RoleRef{Role: RoleFeature, FeatureID: id}
}

func (r RoleRef) String() string {
	switch r.Role {
	case RoleBasePlane:
		return fmt.Sprintf("base-plane:%s", r.Plane)
	case RoleFaceOfPrevious:
		return fmt.Sprintf("face-of-previous:(%g,%g,%g)", r.Axis.X, r.Axis.Y, r.Axis.Z)
	case RoleFeature:
		return fmt.Sprintf("feature:%s", r.FeatureID)
	default:
		return "unknown-role"
	}
}

// Direction qualifies the sign of an extrusion or cut relative to the
// outward normal of the support face.
type Direction int

const (
	DirectionOutward   Direction = iota // along the support's outward normal
	DirectionInward                     // against the support's outward normal
	DirectionSymmetric                  // both ways from the sketch plane
)

func (d Direction) String() string {
	switch d {
	case DirectionOutward:
		return "outward"
	case DirectionInward:
		return "inward"
	case DirectionSymmetric:
		return "symmetric"
	default:
		return "unknown"
	}
}
