// Package intent defines the structured CAD intent data model for mandrel.
// An Intent is the already-parsed description of desired geometry, produced
// upstream of this engine (by a language-model collaborator or an intent
// script). It is immutable after creation.
package intent

// Kind enumerates the feature kinds an intent may request.
type Kind int

const (
	KindPad             Kind = iota // solid extrusion of a sketch profile
	KindPocket                      // material removal (cut)
	KindRevolve                     // solid of revolution (shaft)
	KindFillet                      // edge rounding on an existing feature
	KindSteppedCylinder             // composite: base pad + step pad + through hole
)

func (k Kind) String() string {
	switch k {
	case KindPad:
		return "pad"
	case KindPocket:
		return "pocket"
	case KindRevolve:
		return "revolve"
	case KindFillet:
		return "fillet"
	case KindSteppedCylinder:
		return "stepped-cylinder"
	default:
		return "unknown"
	}
}

// Intent is one user request: an ordered list of feature specifications.
// The order is significant; when sub-features are otherwise unordered the
// planner preserves the order they were specified here.
type Intent struct {
	Name     string
	Features []FeatureSpec
}

// FeatureSpec is the interface for kind-specific intent payloads.
type FeatureSpec interface {
	featureSpec() // marker method restricting implementations to this package
	Kind() Kind
}
