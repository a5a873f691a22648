package engine

import (
	"testing"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(pad :radius 30)`,
			expect: `(pad "__kw_radius" 30)`,
		},
		{
			name:   "multiple keywords",
			input:  `(pad :radius 30 :height 10)`,
			expect: `(pad "__kw_radius" 30 "__kw_height" 10)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(stepped-cylinder :base-radius 30)`,
			expect: `(stepped_cylinder "__kw_base-radius" 30)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:hole-radius`,
			expect: `"__kw_hole-radius"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Feature builtins
// ---------------------------------------------------------------------------

func evalIntent(t *testing.T, source string) *intent.Intent {
	t.Helper()
	eng := NewEngine()
	in, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if in == nil {
		t.Fatal("expected non-nil intent")
	}
	return in
}

func TestPadBuiltin(t *testing.T) {
	in := evalIntent(t, `
(design "plate")
(pad :name "base" :radius 30 :height 10 :at-x 2 :at-y 3 :support :xy :direction :outward)
`)
	if in.Name != "plate" {
		t.Errorf("Name = %q, want plate", in.Name)
	}
	if len(in.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(in.Features))
	}

	pad, ok := in.Features[0].(intent.PadSpec)
	if !ok {
		t.Fatalf("expected PadSpec, got %T", in.Features[0])
	}
	if pad.Name != "base" {
		t.Errorf("Name = %q, want base", pad.Name)
	}
	if pad.Radius != 30 || pad.Height != 10 {
		t.Errorf("Radius=%g Height=%g, want 30 10", pad.Radius, pad.Height)
	}
	if pad.CX != 2 || pad.CY != 3 {
		t.Errorf("CX=%g CY=%g, want 2 3", pad.CX, pad.CY)
	}
	if pad.Support.Role != intent.RoleBasePlane || pad.Support.Plane != kernel.PlaneXY {
		t.Errorf("Support = %v, want XY base plane", pad.Support)
	}
	if pad.Direction != intent.DirectionOutward {
		t.Errorf("Direction = %v, want outward", pad.Direction)
	}
}

func TestPadDefaults(t *testing.T) {
	in := evalIntent(t, `(pad :radius 5 :height 2)`)
	if len(in.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(in.Features))
	}
	pad := in.Features[0].(intent.PadSpec)
	if pad.Support.Role != intent.RoleFaceOfPrevious {
		t.Errorf("default support = %v, want face-of-previous", pad.Support.Role)
	}
	if pad.Direction != intent.DirectionOutward {
		t.Errorf("default direction = %v, want outward", pad.Direction)
	}
}

func TestPocketBuiltin(t *testing.T) {
	in := evalIntent(t, `
(pad :name "base" :radius 30 :height 10 :support :xy)
(pocket :name "bore" :radius 5 :through true :support :previous)
`)
	if len(in.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(in.Features))
	}
	pk, ok := in.Features[1].(intent.PocketSpec)
	if !ok {
		t.Fatalf("expected PocketSpec, got %T", in.Features[1])
	}
	if pk.Radius != 5 {
		t.Errorf("Radius = %g, want 5", pk.Radius)
	}
	if !pk.Through {
		t.Error("Through = false, want true")
	}
	if pk.Support.Role != intent.RoleFaceOfPrevious {
		t.Errorf("Support.Role = %v, want face-of-previous", pk.Support.Role)
	}
}

func TestBlindPocket(t *testing.T) {
	in := evalIntent(t, `(pocket :radius 8 :depth 3)`)
	pk := in.Features[0].(intent.PocketSpec)
	if pk.Depth != 3 {
		t.Errorf("Depth = %g, want 3", pk.Depth)
	}
	if pk.Through {
		t.Error("Through = true, want false")
	}
}

func TestRevolveBuiltin(t *testing.T) {
	in := evalIntent(t, `(revolve :name "rim" :profile-radius 4 :offset 26 :angle 180)`)
	rv, ok := in.Features[0].(intent.RevolveSpec)
	if !ok {
		t.Fatalf("expected RevolveSpec, got %T", in.Features[0])
	}
	if rv.ProfileRadius != 4 || rv.Offset != 26 || rv.Angle != 180 {
		t.Errorf("got %+v, want profile 4 offset 26 angle 180", rv)
	}
}

func TestRevolveDefaultAngle(t *testing.T) {
	in := evalIntent(t, `(revolve :profile-radius 4 :offset 10)`)
	rv := in.Features[0].(intent.RevolveSpec)
	if rv.Angle != 360 {
		t.Errorf("default Angle = %g, want 360", rv.Angle)
	}
}

func TestFilletBuiltin(t *testing.T) {
	in := evalIntent(t, `
(pad :name "boss" :radius 20 :height 15 :support :xy)
(fillet :name "round" :radius 2 :on "boss")
`)
	fl, ok := in.Features[1].(intent.FilletSpec)
	if !ok {
		t.Fatalf("expected FilletSpec, got %T", in.Features[1])
	}
	if fl.Radius != 2 {
		t.Errorf("Radius = %g, want 2", fl.Radius)
	}
	if fl.Support.Role != intent.RoleFeature || fl.Support.FeatureID != "boss" {
		t.Errorf("Support = %v, want feature ref to boss", fl.Support)
	}
}

func TestSteppedCylinderBuiltin(t *testing.T) {
	in := evalIntent(t, `
(design "flange")
(stepped-cylinder :name "flange" :base-radius 30 :base-height 10
                  :step-radius 20 :step-height 15 :hole-radius 5)
`)
	sc, ok := in.Features[0].(intent.SteppedCylinderSpec)
	if !ok {
		t.Fatalf("expected SteppedCylinderSpec, got %T", in.Features[0])
	}
	if sc.BaseRadius != 30 || sc.BaseHeight != 10 {
		t.Errorf("base %gx%g, want 30x10", sc.BaseRadius, sc.BaseHeight)
	}
	if sc.StepRadius != 20 || sc.StepHeight != 15 {
		t.Errorf("step %gx%g, want 20x15", sc.StepRadius, sc.StepHeight)
	}
	if sc.ThroughHoleRadius != 5 {
		t.Errorf("hole radius %g, want 5", sc.ThroughHoleRadius)
	}
}

func TestFeatureOrderFollowsCallOrder(t *testing.T) {
	in := evalIntent(t, `
(pad :name "a" :radius 30 :height 10 :support :xy)
(pad :name "b" :radius 20 :height 5)
(pocket :name "c" :radius 2 :through true)
`)
	if len(in.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(in.Features))
	}
	wantKinds := []intent.Kind{intent.KindPad, intent.KindPad, intent.KindPocket}
	for i, k := range wantKinds {
		if in.Features[i].Kind() != k {
			t.Errorf("feature %d kind = %v, want %v", i, in.Features[i].Kind(), k)
		}
	}
}

func TestInvalidSupportKeyword(t *testing.T) {
	eng := NewEngine()
	in, evalErrs, err := eng.Evaluate(`(pad :radius 5 :height 2 :support :upside-down)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if in != nil {
		t.Fatal("expected nil intent on builtin error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for invalid support keyword")
	}
}

func TestInvalidDirectionKeyword(t *testing.T) {
	eng := NewEngine()
	in, evalErrs, err := eng.Evaluate(`(pad :radius 5 :height 2 :direction :sideways)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if in != nil {
		t.Fatal("expected nil intent on builtin error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for invalid direction keyword")
	}
}

// ---------------------------------------------------------------------------
// Argument parsing helpers
// ---------------------------------------------------------------------------

func TestToSupportFeatureName(t *testing.T) {
	in := evalIntent(t, `(fillet :radius 1 :on "base")`)
	fl := in.Features[0].(intent.FilletSpec)
	if fl.Support.Role != intent.RoleFeature || fl.Support.FeatureID != "base" {
		t.Errorf("Support = %v, want feature ref to base", fl.Support)
	}
}

func TestDatumPlaneSupports(t *testing.T) {
	tests := []struct {
		kw   string
		want kernel.OriginPlane
	}{
		{"xy", kernel.PlaneXY},
		{"yz", kernel.PlaneYZ},
		{"zx", kernel.PlaneZX},
	}
	for _, tt := range tests {
		t.Run(tt.kw, func(t *testing.T) {
			in := evalIntent(t, `(pad :radius 5 :height 2 :support :`+tt.kw+`)`)
			pad := in.Features[0].(intent.PadSpec)
			if pad.Support.Role != intent.RoleBasePlane || pad.Support.Plane != tt.want {
				t.Errorf("Support = %v, want %v base plane", pad.Support, tt.want)
			}
		})
	}
}
