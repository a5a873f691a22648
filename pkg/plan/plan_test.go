package plan

import (
	"errors"
	"testing"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/kernel"
)

func TestBuildEmptyIntent(t *testing.T) {
	tests := []struct {
		name string
		in   *intent.Intent
	}{
		{"nil intent", nil},
		{"no features", &intent.Intent{Name: "empty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.in)
			var pe PlanningError
			if !errors.As(err, &pe) {
				t.Fatalf("expected PlanningError, got %v", err)
			}
			if pe.Feature != -1 {
				t.Errorf("Feature = %d, want -1 for intent-level error", pe.Feature)
			}
		})
	}
}

func TestBuildSinglePad(t *testing.T) {
	in := &intent.Intent{Features: []intent.FeatureSpec{
		intent.PadSpec{Name: "base", Radius: 30, Height: 10,
			Support: intent.BasePlane(kernel.PlaneXY)},
	}}

	planned, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(planned) != 1 {
		t.Fatalf("expected 1 planned feature, got %d", len(planned))
	}
	if planned[0].Index != 0 {
		t.Errorf("Index = %d, want 0", planned[0].Index)
	}
	if planned[0].Spec.Kind() != intent.KindPad {
		t.Errorf("Kind = %v, want pad", planned[0].Spec.Kind())
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name      string
		spec      intent.FeatureSpec
		wantField string
	}{
		{"zero pad radius", intent.PadSpec{Radius: 0, Height: 10}, "radius"},
		{"negative pad height", intent.PadSpec{Radius: 5, Height: -1}, "height"},
		{"zero blind pocket depth", intent.PocketSpec{Radius: 5, Depth: 0}, "depth"},
		{"zero pocket radius", intent.PocketSpec{Radius: 0, Through: true}, "radius"},
		{"revolve profile crossing axis", intent.RevolveSpec{ProfileRadius: 10, Offset: 4}, "offset"},
		{"revolve sweep too large", intent.RevolveSpec{ProfileRadius: 2, Offset: 10, Angle: 400}, "angle"},
		{"zero fillet radius", intent.FilletSpec{Radius: 0}, "radius"},
		{"negative hole radius", intent.SteppedCylinderSpec{
			BaseRadius: 30, BaseHeight: 10, StepRadius: 20, StepHeight: 15,
			ThroughHoleRadius: -1}, "hole-radius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(&intent.Intent{Features: []intent.FeatureSpec{tt.spec}})
			var pe PlanningError
			if !errors.As(err, &pe) {
				t.Fatalf("expected PlanningError, got %v", err)
			}
			if pe.Feature != 0 {
				t.Errorf("Feature = %d, want 0", pe.Feature)
			}
			if pe.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", pe.Field, tt.wantField)
			}
		})
	}
}

func TestBuildThroughPocketNeedsNoDepth(t *testing.T) {
	in := &intent.Intent{Features: []intent.FeatureSpec{
		intent.PadSpec{Radius: 30, Height: 10, Support: intent.BasePlane(kernel.PlaneXY)},
		intent.PocketSpec{Radius: 5, Through: true, Support: intent.TopOfPrevious()},
	}}
	planned, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(planned) != 2 {
		t.Fatalf("expected 2 planned features, got %d", len(planned))
	}
}

func TestSteppedCylinderDecomposition(t *testing.T) {
	in := &intent.Intent{Name: "flange", Features: []intent.FeatureSpec{
		intent.SteppedCylinderSpec{
			Name:              "flange",
			BaseRadius:        30,
			BaseHeight:        10,
			StepRadius:        20,
			StepHeight:        15,
			ThroughHoleRadius: 5,
		},
	}}

	planned, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(planned) != 3 {
		t.Fatalf("expected 3 planned features, got %d", len(planned))
	}

	base, ok := planned[0].Spec.(intent.PadSpec)
	if !ok {
		t.Fatalf("step 0: expected PadSpec, got %T", planned[0].Spec)
	}
	if base.Name != "flange-base" || base.Radius != 30 || base.Height != 10 {
		t.Errorf("base = %+v, want flange-base r=30 h=10", base)
	}
	if base.Support.Role != intent.RoleBasePlane || base.Support.Plane != kernel.PlaneXY {
		t.Errorf("base support = %v, want XY datum", base.Support)
	}

	step, ok := planned[1].Spec.(intent.PadSpec)
	if !ok {
		t.Fatalf("step 1: expected PadSpec, got %T", planned[1].Spec)
	}
	if step.Name != "flange-step" || step.Radius != 20 || step.Height != 15 {
		t.Errorf("step = %+v, want flange-step r=20 h=15", step)
	}
	if step.Support.Role != intent.RoleFaceOfPrevious {
		t.Errorf("step support role = %v, want face-of-previous", step.Support.Role)
	}

	hole, ok := planned[2].Spec.(intent.PocketSpec)
	if !ok {
		t.Fatalf("step 2: expected PocketSpec, got %T", planned[2].Spec)
	}
	if hole.Name != "flange-hole" || hole.Radius != 5 || !hole.Through {
		t.Errorf("hole = %+v, want flange-hole r=5 through", hole)
	}

	for i, pf := range planned {
		if pf.Index != i {
			t.Errorf("planned[%d].Index = %d, want %d", i, pf.Index, i)
		}
	}
}

func TestSteppedCylinderWithoutHole(t *testing.T) {
	in := &intent.Intent{Features: []intent.FeatureSpec{
		intent.SteppedCylinderSpec{
			BaseRadius: 30, BaseHeight: 10, StepRadius: 20, StepHeight: 15,
		},
	}}
	planned, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(planned) != 2 {
		t.Fatalf("expected 2 planned features without a hole, got %d", len(planned))
	}
	base := planned[0].Spec.(intent.PadSpec)
	if base.Name != "stepped-cylinder-base" {
		t.Errorf("unnamed composite base = %q, want stepped-cylinder-base", base.Name)
	}
}

func TestBuildDeterministic(t *testing.T) {
	in := &intent.Intent{Features: []intent.FeatureSpec{
		intent.SteppedCylinderSpec{
			BaseRadius: 30, BaseHeight: 10, StepRadius: 20, StepHeight: 15,
			ThroughHoleRadius: 5,
		},
		intent.FilletSpec{Radius: 2, Support: intent.TopOfPrevious()},
	}}

	first, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Build(in)
		if err != nil {
			t.Fatalf("iteration %d: Build() error = %v", i, err)
		}
		if len(again) != len(first) {
			t.Fatalf("iteration %d: plan length %d, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].Index != first[j].Index || again[j].Spec.Kind() != first[j].Spec.Kind() {
				t.Errorf("iteration %d: step %d differs", i, j)
			}
		}
	}
}

func TestBuildPreservesIntentOrder(t *testing.T) {
	in := &intent.Intent{Features: []intent.FeatureSpec{
		intent.PadSpec{Name: "a", Radius: 30, Height: 10, Support: intent.BasePlane(kernel.PlaneXY)},
		intent.PocketSpec{Name: "b", Radius: 5, Depth: 3, Support: intent.TopOfPrevious()},
		intent.FilletSpec{Name: "c", Radius: 1, Support: intent.Feature("a")},
	}}
	planned, err := Build(in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	wantKinds := []intent.Kind{intent.KindPad, intent.KindPocket, intent.KindFillet}
	for i, k := range wantKinds {
		if planned[i].Spec.Kind() != k {
			t.Errorf("step %d kind = %v, want %v", i, planned[i].Spec.Kind(), k)
		}
	}
}
