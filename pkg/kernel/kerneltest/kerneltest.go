// Package kerneltest provides a scripted kernel.Session for tests.
//
// The fake hands out deterministic handles, records every call in order,
// and can be told to fail the Nth state-changing call. Features expose a
// configurable face set so callers can exercise face matching and the
// empty-feature abort path without a geometry backend.
package kerneltest

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/forgecad/mandrel/pkg/kernel"
)

var _ kernel.Session = (*Session)(nil)

// Face describes one scripted face.
type Face struct {
	Normal    v3.Vec
	Planar    bool
	Radius    float64
	HasRadius bool
}

// Call records one invocation against the fake.
type Call struct {
	Op   string
	Args string
}

// Session is a scripted in-memory kernel session.
type Session struct {
	// FailAt makes the Nth state-changing call (1-based, sketches and
	// features both count) return FailErr. Zero disables injection.
	FailAt  int
	FailErr error

	// FacelessFeatures makes features created at these 1-based feature
	// ordinals report no faces, simulating a degenerate result.
	FacelessFeatures map[int]bool

	// NextFaces, when non-nil, overrides the face set of the next created
	// feature. Reset to nil after use.
	NextFaces []Face

	Calls []Call

	faces    map[kernel.FaceHandle]Face
	features map[kernel.FeatureHandle][]kernel.FaceHandle
	sketches map[kernel.SketchHandle]bool
	creates  int
	featSeq  int
	seq      int
}

// NewSession returns an empty scripted session.
func NewSession() *Session {
	return &Session{
		FailErr:  fmt.Errorf("kerneltest: injected failure"),
		faces:    make(map[kernel.FaceHandle]Face),
		features: make(map[kernel.FeatureHandle][]kernel.FaceHandle),
		sketches: make(map[kernel.SketchHandle]bool),
	}
}

// Ops returns the recorded operation names in call order.
func (s *Session) Ops() []string {
	out := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		out[i] = c.Op
	}
	return out
}

func (s *Session) record(op, args string) {
	s.Calls = append(s.Calls, Call{Op: op, Args: args})
}

func (s *Session) failNow() error {
	s.creates++
	if s.FailAt != 0 && s.creates == s.FailAt {
		return s.FailErr
	}
	return nil
}

func (s *Session) next(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *Session) CreateSketch(plane kernel.PlaneRef, profile kernel.Profile) (kernel.SketchHandle, error) {
	s.record("CreateSketch", fmt.Sprintf("plane=%v r=%g", plane, profile.Radius))
	if err := s.failNow(); err != nil {
		return "", err
	}
	h := kernel.SketchHandle(s.next("sketch"))
	s.sketches[h] = true
	return h, nil
}

func (s *Session) CreatePad(sk kernel.SketchHandle, length float64, dir v3.Vec) (kernel.FeatureHandle, error) {
	s.record("CreatePad", fmt.Sprintf("sketch=%s len=%g dir=%v", sk, length, dir))
	if err := s.failNow(); err != nil {
		return "", err
	}
	if !s.sketches[sk] {
		return "", fmt.Errorf("kerneltest: unknown sketch %q", sk)
	}
	return s.newFeature("pad", defaultPadFaces()), nil
}

func (s *Session) CreatePocket(sk kernel.SketchHandle, depth float64, dir v3.Vec) (kernel.FeatureHandle, error) {
	s.record("CreatePocket", fmt.Sprintf("sketch=%s depth=%g dir=%v", sk, depth, dir))
	if err := s.failNow(); err != nil {
		return "", err
	}
	if !s.sketches[sk] {
		return "", fmt.Errorf("kerneltest: unknown sketch %q", sk)
	}
	faces := []Face{{Planar: false}}
	if depth > 0 {
		faces = append(faces, Face{Normal: v3.Vec{Z: 1}, Planar: true})
	}
	return s.newFeature("pocket", faces), nil
}

func (s *Session) CreateShaft(sk kernel.SketchHandle, axis v3.Vec, angle float64) (kernel.FeatureHandle, error) {
	s.record("CreateShaft", fmt.Sprintf("sketch=%s axis=%v angle=%g", sk, axis, angle))
	if err := s.failNow(); err != nil {
		return "", err
	}
	if !s.sketches[sk] {
		return "", fmt.Errorf("kerneltest: unknown sketch %q", sk)
	}
	return s.newFeature("shaft", []Face{{Planar: false}}), nil
}

func (s *Session) CreateEdgeFillet(f kernel.FeatureHandle, faceIndex int, radius float64) (kernel.FeatureHandle, error) {
	s.record("CreateEdgeFillet", fmt.Sprintf("feature=%s face=%d r=%g", f, faceIndex, radius))
	if err := s.failNow(); err != nil {
		return "", err
	}
	parent, ok := s.features[f]
	if !ok {
		return "", fmt.Errorf("kerneltest: unknown feature %q", f)
	}
	if faceIndex < 0 || faceIndex >= len(parent) {
		return "", fmt.Errorf("kerneltest: face index %d out of range", faceIndex)
	}
	faces := make([]Face, 0, len(parent))
	for _, fh := range parent {
		faces = append(faces, s.faces[fh])
	}
	return s.newFeature("fillet", faces), nil
}

func (s *Session) ListFaces(f kernel.FeatureHandle) ([]kernel.FaceHandle, error) {
	s.record("ListFaces", string(f))
	faces, ok := s.features[f]
	if !ok {
		return nil, fmt.Errorf("kerneltest: unknown feature %q", f)
	}
	out := make([]kernel.FaceHandle, len(faces))
	copy(out, faces)
	return out, nil
}

func (s *Session) FaceNormal(face kernel.FaceHandle) (v3.Vec, bool, error) {
	rec, ok := s.faces[face]
	if !ok {
		return v3.Vec{}, false, fmt.Errorf("kerneltest: unknown face %q", face)
	}
	return rec.Normal, rec.Planar, nil
}

func (s *Session) FaceBoundaryRadius(face kernel.FaceHandle) (float64, bool, error) {
	rec, ok := s.faces[face]
	if !ok {
		return 0, false, fmt.Errorf("kerneltest: unknown face %q", face)
	}
	return rec.Radius, rec.HasRadius, nil
}

func (s *Session) newFeature(prefix string, faces []Face) kernel.FeatureHandle {
	s.featSeq++
	if s.NextFaces != nil {
		faces = s.NextFaces
		s.NextFaces = nil
	}
	if s.FacelessFeatures[s.featSeq] {
		faces = nil
	}
	fh := kernel.FeatureHandle(s.next(prefix))
	handles := make([]kernel.FaceHandle, 0, len(faces))
	for _, f := range faces {
		h := kernel.FaceHandle(s.next("face"))
		s.faces[h] = f
		handles = append(handles, h)
	}
	s.features[fh] = handles
	return fh
}

// defaultPadFaces mirrors a cylindrical pad: bottom, top, lateral. Radii
// are unset so continuity checks treat the faces as unbounded planes.
func defaultPadFaces() []Face {
	return []Face{
		{Normal: v3.Vec{Z: -1}, Planar: true},
		{Normal: v3.Vec{Z: 1}, Planar: true},
		{Planar: false},
	}
}
