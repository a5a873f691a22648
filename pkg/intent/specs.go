package intent

// All dimensions are millimetres. Specs are plain values; the planner never
// mutates them and resolution produces new values instead of annotating
// these in place.

// ---------------------------------------------------------------------------
// Pad
// ---------------------------------------------------------------------------

// PadSpec requests a solid extrusion of a circular profile.
type PadSpec struct {
	Name      string  // optional feature name for later explicit reference
	Radius    float64 // profile radius
	Height    float64 // extrusion length
	CX, CY    float64 // profile centre in sketch-local coordinates
	Support   RoleRef
	Direction Direction
}

func (PadSpec) featureSpec() {}

// Kind returns KindPad.
func (PadSpec) Kind() Kind { return KindPad }

// ---------------------------------------------------------------------------
// Pocket
// ---------------------------------------------------------------------------

// PocketSpec requests material removal by cutting a circular profile into
// the supporting solid. Depth 0 with Through set cuts through everything.
type PocketSpec struct {
	Name    string
	Radius  float64
	Depth   float64
	Through bool
	CX, CY  float64
	Support RoleRef
}

func (PocketSpec) featureSpec() {}

// Kind returns KindPocket.
func (PocketSpec) Kind() Kind { return KindPocket }

// ---------------------------------------------------------------------------
// Revolve
// ---------------------------------------------------------------------------

// RevolveSpec requests a solid of revolution: a circular profile at a radial
// offset from the revolution axis, swept by Angle degrees.
type RevolveSpec struct {
	Name          string
	ProfileRadius float64
	Offset        float64 // radial distance from the axis to the profile centre
	Angle         float64 // sweep in degrees, 360 for a full revolution
	Support       RoleRef // sketch support; the axis is the support normal
}

func (RevolveSpec) featureSpec() {}

// Kind returns KindRevolve.
func (RevolveSpec) Kind() Kind { return KindRevolve }

// ---------------------------------------------------------------------------
// Fillet
// ---------------------------------------------------------------------------

// FilletSpec requests rounding of the boundary edge ring of a support face.
type FilletSpec struct {
	Name    string
	Radius  float64
	Support RoleRef // the face whose boundary edges are rounded
}

func (FilletSpec) featureSpec() {}

// Kind returns KindFillet.
func (FilletSpec) Kind() Kind { return KindFillet }

// ---------------------------------------------------------------------------
// Stepped cylinder (composite)
// ---------------------------------------------------------------------------

// SteppedCylinderSpec is the composite flange intent: a base cylinder, a
// reduced-diameter step stacked on top, and an optional centred through
// hole. The planner decomposes it into primitive features.
type SteppedCylinderSpec struct {
	Name              string
	BaseRadius        float64
	BaseHeight        float64
	StepRadius        float64
	StepHeight        float64
	ThroughHoleRadius float64 // 0 = no hole
}

func (SteppedCylinderSpec) featureSpec() {}

// Kind returns KindSteppedCylinder.
func (SteppedCylinderSpec) Kind() Kind { return KindSteppedCylinder }
