// Package resolve turns planned features into fully resolved ones: concrete
// support references, concrete extrusion directions and signs, and a
// continuity check against the parent's boundary. Resolution is pure over a
// tree snapshot; the mirror evolves between calls, never during one.
package resolve

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/kernel"
	"github.com/forgecad/mandrel/pkg/plan"
	"github.com/forgecad/mandrel/pkg/tree"
)

// DefaultContinuityTolerance is the default allowed overhang, in mm,
// between a chained profile and its parent's boundary.
const DefaultContinuityTolerance = 0.01

// Config carries the resolution configuration points.
type Config struct {
	// ContinuityTolerance is the allowed overhang in mm. Zero means
	// DefaultContinuityTolerance.
	ContinuityTolerance float64
}

func (c Config) tolerance() float64 {
	if c.ContinuityTolerance > 0 {
		return c.ContinuityTolerance
	}
	return DefaultContinuityTolerance
}

// ResolvedFeature is a planned feature with concrete geometry: the exact
// support, the exact parent node, and the signed direction. Invariant: the
// parent always exists in the snapshot the feature was resolved against;
// resolution never produces forward references.
type ResolvedFeature struct {
	Planned plan.PlannedFeature
	Kind    intent.Kind
	Name    string

	Support tree.GeometricReference
	Parent  int // creation-order index, tree.NoParent for datum supports

	Profile   kernel.Profile
	Length    float64 // pad length or pocket depth; 0 for a through pocket
	Through   bool
	Direction v3.Vec // signed unit extrusion/cut direction
	Sign      int    // +1 along the support normal, -1 against, 0 symmetric

	Axis  v3.Vec  // revolve only
	Angle float64 // revolve only, degrees

	FilletRadius float64 // fillet only
	FilletFace   int     // fillet only: local face index on the parent
}

// Resolve resolves one planned feature against a snapshot of the tree.
// Callers apply it in plan order and must stop at the first error: a broken
// parent reference invalidates every descendant, so there is no speculative
// continuation.
func Resolve(pf plan.PlannedFeature, snap tree.Snapshot, cfg Config) (ResolvedFeature, error) {
	switch s := pf.Spec.(type) {
	case intent.PadSpec:
		return resolvePad(pf, s, snap, cfg)
	case intent.PocketSpec:
		return resolvePocket(pf, s, snap, cfg)
	case intent.RevolveSpec:
		return resolveRevolve(pf, s, snap)
	case intent.FilletSpec:
		return resolveFillet(pf, s, snap)
	default:
		return ResolvedFeature{}, InvalidSupportError{
			Reason: "composite feature reached resolution undecomposed"}
	}
}

func resolvePad(pf plan.PlannedFeature, s intent.PadSpec, snap tree.Snapshot, cfg Config) (ResolvedFeature, error) {
	ref, normal, err := sketchSupport(s.Support, snap)
	if err != nil {
		return ResolvedFeature{}, err
	}
	if err := checkContinuity(ref, snap, s.Radius, s.CX, s.CY, cfg); err != nil {
		return ResolvedFeature{}, err
	}

	sign, dir := directionSign(normal, s.Direction)
	return ResolvedFeature{
		Planned:   pf,
		Kind:      intent.KindPad,
		Name:      s.Name,
		Support:   ref,
		Parent:    ref.Node,
		Profile:   kernel.Profile{Radius: s.Radius, CX: s.CX, CY: s.CY},
		Length:    s.Height,
		Direction: dir,
		Sign:      sign,
	}, nil
}

func resolvePocket(pf plan.PlannedFeature, s intent.PocketSpec, snap tree.Snapshot, cfg Config) (ResolvedFeature, error) {
	ref, normal, err := sketchSupport(s.Support, snap)
	if err != nil {
		return ResolvedFeature{}, err
	}
	if ref.IsOrigin() && snap.Len() == 0 {
		return ResolvedFeature{}, InvalidSupportError{
			Ref: ref, Reason: "cut requires an existing solid"}
	}
	if err := checkContinuity(ref, snap, s.Radius, s.CX, s.CY, cfg); err != nil {
		return ResolvedFeature{}, err
	}

	// A cut always removes material: its direction is forced antiparallel
	// to the retained solid regardless of any qualifier.
	return ResolvedFeature{
		Planned:   pf,
		Kind:      intent.KindPocket,
		Name:      s.Name,
		Support:   ref,
		Parent:    ref.Node,
		Profile:   kernel.Profile{Radius: s.Radius, CX: s.CX, CY: s.CY},
		Length:    s.Depth,
		Through:   s.Through,
		Direction: normal.Neg(),
		Sign:      -1,
	}, nil
}

func resolveRevolve(pf plan.PlannedFeature, s intent.RevolveSpec, snap tree.Snapshot) (ResolvedFeature, error) {
	ref, normal, err := sketchSupport(s.Support, snap)
	if err != nil {
		return ResolvedFeature{}, err
	}
	angle := s.Angle
	if angle == 0 {
		angle = 360
	}
	return ResolvedFeature{
		Planned: pf,
		Kind:    intent.KindRevolve,
		Name:    s.Name,
		Support: ref,
		Parent:  ref.Node,
		Profile: kernel.Profile{Radius: s.ProfileRadius, CX: s.Offset},
		Axis:    normal,
		Angle:   angle,
	}, nil
}

func resolveFillet(pf plan.PlannedFeature, s intent.FilletSpec, snap tree.Snapshot) (ResolvedFeature, error) {
	ref, err := ResolveReference(s.Support, snap)
	if err != nil {
		return ResolvedFeature{}, err
	}
	if ref.IsOrigin() {
		return ResolvedFeature{}, InvalidSupportError{
			Ref: ref, Reason: "fillet requires a face of an existing feature"}
	}
	if !ref.Valid(snap) {
		return ResolvedFeature{}, InvalidSupportError{
			Ref: ref, Reason: "support reference is stale"}
	}
	return ResolvedFeature{
		Planned:      pf,
		Kind:         intent.KindFillet,
		Name:         s.Name,
		Support:      ref,
		Parent:       ref.Node,
		FilletRadius: s.Radius,
		FilletFace:   ref.FaceIndex,
	}, nil
}

// sketchSupport resolves a role reference and validates it as a sketch
// plane: the face must exist in the snapshot and must be planar.
func sketchSupport(role intent.RoleRef, snap tree.Snapshot) (tree.GeometricReference, v3.Vec, error) {
	ref, err := ResolveReference(role, snap)
	if err != nil {
		return tree.GeometricReference{}, v3.Vec{}, err
	}
	if ref.IsOrigin() {
		return ref, intent.PlaneNormal(ref.Plane), nil
	}
	if !ref.Valid(snap) {
		return tree.GeometricReference{}, v3.Vec{}, InvalidSupportError{
			Ref: ref, Reason: "support reference is stale"}
	}
	face, _ := ref.Face(snap)
	if !face.Planar {
		return tree.GeometricReference{}, v3.Vec{}, InvalidSupportError{
			Ref: ref, Reason: "sketch requires a planar support face"}
	}
	return ref, face.Normal, nil
}

// checkContinuity verifies that a chained profile does not overhang its
// parent's boundary: the profile's outer reach on the support face must not
// exceed the support boundary radius by more than the tolerance. Supports
// without a boundary radius (datum planes, rectangular faces) skip the
// check.
func checkContinuity(ref tree.GeometricReference, snap tree.Snapshot, radius, cx, cy float64, cfg Config) error {
	face, ok := ref.Face(snap)
	if !ok || !face.HasRadius {
		return nil
	}
	tol := cfg.tolerance()
	contact := math.Hypot(cx, cy) + radius
	if contact > face.BoundaryRadius+tol {
		return ContinuityError{
			ContactRadius: contact,
			SupportRadius: face.BoundaryRadius,
			Tolerance:     tol,
		}
	}
	return nil
}

// directionSign maps a direction qualifier onto the support's outward
// normal. Outward extrudes along the normal, inward against it; symmetric
// keeps the normal as the nominal direction with sign 0 and leaves the
// two-sided extent to the kernel.
func directionSign(normal v3.Vec, d intent.Direction) (int, v3.Vec) {
	switch d {
	case intent.DirectionInward:
		return -1, normal.Neg()
	case intent.DirectionSymmetric:
		return 0, normal
	default:
		return 1, normal
	}
}
