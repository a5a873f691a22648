// Package plan converts a structured intent into an ordered feature plan.
// Building a plan is a pure function of the intent: it decomposes composite
// intents into primitive features in the order the kernel's feature tree
// requires (supports before dependents) and validates structural
// completeness. It performs no geometric resolution and touches no state.
package plan

import (
	"fmt"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/kernel"
)

// PlannedFeature is one entry in the ordered plan: a primitive feature
// intent whose support and direction are still symbolic. Planned features
// are never mutated after creation; resolution produces new values so the
// plan stays auditable.
type PlannedFeature struct {
	Index int // position in the plan, 0-based
	Spec  intent.FeatureSpec
}

// PlanningError reports a structurally incomplete or malformed intent.
// The caller may correct the intent and resubmit; no partial plan is ever
// returned alongside it.
type PlanningError struct {
	Feature int    // index of the offending feature in the intent, -1 for intent-level
	Field   string // offending parameter, empty for structural problems
	Reason  string
}

func (e PlanningError) Error() string {
	switch {
	case e.Feature < 0:
		return fmt.Sprintf("planning: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("planning: feature %d: %s", e.Feature, e.Reason)
	default:
		return fmt.Sprintf("planning: feature %d: %s: %s", e.Feature, e.Field, e.Reason)
	}
}

// Build decomposes an intent into an ordered sequence of planned features.
// When an intent implies multiple unordered sub-features, their order is the
// order they were specified in the intent.
func Build(in *intent.Intent) ([]PlannedFeature, error) {
	if in == nil || len(in.Features) == 0 {
		return nil, PlanningError{Feature: -1, Reason: "intent has no features"}
	}

	var planned []PlannedFeature
	for i, spec := range in.Features {
		prims, err := decompose(i, spec)
		if err != nil {
			return nil, err
		}
		planned = append(planned, prims...)
	}

	for i := range planned {
		planned[i].Index = i
	}
	return planned, nil
}

// decompose validates one intent feature and expands composites into
// primitives. The returned features carry Index 0; Build renumbers.
func decompose(i int, spec intent.FeatureSpec) ([]PlannedFeature, error) {
	switch s := spec.(type) {
	case intent.PadSpec:
		if err := checkPositive(i, "radius", s.Radius); err != nil {
			return nil, err
		}
		if err := checkPositive(i, "height", s.Height); err != nil {
			return nil, err
		}
		return []PlannedFeature{{Spec: s}}, nil

	case intent.PocketSpec:
		if err := checkPositive(i, "radius", s.Radius); err != nil {
			return nil, err
		}
		if !s.Through {
			if err := checkPositive(i, "depth", s.Depth); err != nil {
				return nil, err
			}
		}
		return []PlannedFeature{{Spec: s}}, nil

	case intent.RevolveSpec:
		if err := checkPositive(i, "profile-radius", s.ProfileRadius); err != nil {
			return nil, err
		}
		if s.Offset < s.ProfileRadius {
			return nil, PlanningError{Feature: i, Field: "offset",
				Reason: fmt.Sprintf("profile (radius %g) crosses the revolution axis at offset %g", s.ProfileRadius, s.Offset)}
		}
		if s.Angle == 0 {
			s.Angle = 360
		}
		if s.Angle < 0 || s.Angle > 360 {
			return nil, PlanningError{Feature: i, Field: "angle",
				Reason: fmt.Sprintf("sweep angle %g outside (0, 360]", s.Angle)}
		}
		return []PlannedFeature{{Spec: s}}, nil

	case intent.FilletSpec:
		if err := checkPositive(i, "radius", s.Radius); err != nil {
			return nil, err
		}
		return []PlannedFeature{{Spec: s}}, nil

	case intent.SteppedCylinderSpec:
		return decomposeSteppedCylinder(i, s)

	default:
		return nil, PlanningError{Feature: i, Reason: fmt.Sprintf("unsupported feature kind %T", spec)}
	}
}

// decomposeSteppedCylinder expands the flange composite: a base pad on the
// datum plane, a step pad stacked on the base's top face, then an optional
// centred through hole cut from the step's top face. The order is fixed by
// the support chain; each feature depends only on the one before it.
func decomposeSteppedCylinder(i int, s intent.SteppedCylinderSpec) ([]PlannedFeature, error) {
	for _, p := range []struct {
		field string
		value float64
	}{
		{"base-radius", s.BaseRadius},
		{"base-height", s.BaseHeight},
		{"step-radius", s.StepRadius},
		{"step-height", s.StepHeight},
	} {
		if err := checkPositive(i, p.field, p.value); err != nil {
			return nil, err
		}
	}
	if s.ThroughHoleRadius < 0 {
		return nil, PlanningError{Feature: i, Field: "hole-radius",
			Reason: fmt.Sprintf("negative radius %g", s.ThroughHoleRadius)}
	}

	name := s.Name
	if name == "" {
		name = "stepped-cylinder"
	}

	planned := []PlannedFeature{
		{Spec: intent.PadSpec{
			Name:      name + "-base",
			Radius:    s.BaseRadius,
			Height:    s.BaseHeight,
			Support:   intent.BasePlane(kernel.PlaneXY),
			Direction: intent.DirectionOutward,
		}},
		{Spec: intent.PadSpec{
			Name:      name + "-step",
			Radius:    s.StepRadius,
			Height:    s.StepHeight,
			Support:   intent.TopOfPrevious(),
			Direction: intent.DirectionOutward,
		}},
	}
	if s.ThroughHoleRadius > 0 {
		planned = append(planned, PlannedFeature{Spec: intent.PocketSpec{
			Name:    name + "-hole",
			Radius:  s.ThroughHoleRadius,
			Through: true,
			Support: intent.TopOfPrevious(),
		}})
	}
	return planned, nil
}

func checkPositive(feature int, field string, v float64) error {
	if v <= 0 {
		return PlanningError{Feature: feature, Field: field,
			Reason: fmt.Sprintf("missing or non-positive value %g", v)}
	}
	return nil
}
