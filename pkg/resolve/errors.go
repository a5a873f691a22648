package resolve

import (
	"fmt"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/tree"
)

// ReferenceNotFoundError reports a symbolic reference that cannot be
// resolved against the current tree snapshot.
type ReferenceNotFoundError struct {
	Ref    intent.RoleRef
	Reason string
}

func (e ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("reference %s not found: %s", e.Ref, e.Reason)
}

// InvalidSupportError reports a resolved support that cannot carry the
// requested feature (a sketch on a curved face, a cut with nothing to cut).
type InvalidSupportError struct {
	Ref    tree.GeometricReference
	Reason string
}

func (e InvalidSupportError) Error() string {
	return fmt.Sprintf("invalid support %s: %s", e.Ref, e.Reason)
}

// ContinuityError reports a chained feature whose profile overhangs its
// parent's boundary beyond the configured tolerance. Dimensions are never
// auto-corrected; the intent must be fixed upstream.
type ContinuityError struct {
	ContactRadius float64 // outer reach of the new profile on the support
	SupportRadius float64 // boundary radius of the support face
	Tolerance     float64
}

func (e ContinuityError) Error() string {
	return fmt.Sprintf("profile reaches %gmm but support boundary is %gmm (tolerance %gmm)",
		e.ContactRadius, e.SupportRadius, e.Tolerance)
}
