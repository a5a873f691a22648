// Package sdfx implements the kernel.Session collaborator in-process using
// the github.com/deadsy/sdfx SDF-based CAD library. It exists for tests,
// dry runs and previews: the same plans that drive a live kernel binding
// can execute here with no CAD application running.
//
// The backend models the stacked-construction subset this engine plans:
// sketches on the XY datum or on Z-normal planar faces, pads and pockets
// along ±Z, revolutions about the Z axis. Anything else is rejected with an
// error rather than silently mis-built.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/forgecad/mandrel/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Session = (*Session)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 120

// faceRec is the backend's analytic bookkeeping for one face.
type faceRec struct {
	normal    v3.Vec
	planar    bool
	radius    float64
	hasRadius bool
	z         float64 // plane offset along Z, planar faces only
}

// sketchRec records a sketch's plane offset and profile.
type sketchRec struct {
	z       float64
	profile kernel.Profile
}

// Session is an offline, in-process kernel session holding one document.
// Like a live session it is stateful and must not be driven by two
// construction sequences concurrently.
type Session struct {
	solid    sdf.SDF3
	sketches map[kernel.SketchHandle]sketchRec
	faces    map[kernel.FaceHandle]faceRec
	features map[kernel.FeatureHandle][]kernel.FaceHandle
	seq      int
}

// NewSession returns a session with an empty document.
func NewSession() *Session {
	return &Session{
		sketches: make(map[kernel.SketchHandle]sketchRec),
		faces:    make(map[kernel.FaceHandle]faceRec),
		features: make(map[kernel.FeatureHandle][]kernel.FaceHandle),
	}
}

func (s *Session) next(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// CreateSketch draws a profile on the XY datum or on a Z-normal planar face.
func (s *Session) CreateSketch(plane kernel.PlaneRef, profile kernel.Profile) (kernel.SketchHandle, error) {
	if profile.Radius <= 0 {
		return "", fmt.Errorf("sdfx: profile radius %g must be positive", profile.Radius)
	}

	var z float64
	if plane.OnFace {
		rec, ok := s.faces[plane.Face]
		if !ok {
			return "", fmt.Errorf("sdfx: unknown face %q", plane.Face)
		}
		if !rec.planar {
			return "", fmt.Errorf("sdfx: face %q is not planar", plane.Face)
		}
		if math.Abs(math.Abs(rec.normal.Z)-1) > 1e-9 {
			return "", fmt.Errorf("sdfx: face %q normal is not Z-aligned (offline backend builds stacked solids only)", plane.Face)
		}
		z = rec.z
	} else if plane.Origin != kernel.PlaneXY {
		return "", fmt.Errorf("sdfx: datum plane %s unsupported (offline backend sketches on XY only)", plane.Origin)
	}

	h := kernel.SketchHandle(s.next("sketch"))
	s.sketches[h] = sketchRec{z: z, profile: profile}
	return h, nil
}

// CreatePad extrudes a sketch into a cylinder and unions it with the
// document solid.
func (s *Session) CreatePad(sk kernel.SketchHandle, length float64, dir v3.Vec) (kernel.FeatureHandle, error) {
	rec, ok := s.sketches[sk]
	if !ok {
		return "", fmt.Errorf("sdfx: unknown sketch %q", sk)
	}
	if length <= 0 {
		return "", fmt.Errorf("sdfx: pad length %g must be positive", length)
	}
	sign, err := zSign(dir)
	if err != nil {
		return "", err
	}

	cyl, err := sdf.Cylinder3D(length, rec.profile.Radius, 0)
	if err != nil {
		return "", fmt.Errorf("sdfx: pad cylinder: %w", err)
	}
	mid := rec.z + sign*length/2
	solid := sdf.Transform3D(cyl, sdf.Translate3d(v3.Vec{X: rec.profile.CX, Y: rec.profile.CY, Z: mid}))
	if s.solid == nil {
		s.solid = solid
	} else {
		s.solid = sdf.Union3D(s.solid, solid)
	}

	lo, hi := rec.z, rec.z+sign*length
	if lo > hi {
		lo, hi = hi, lo
	}
	r := rec.profile.Radius
	return s.newFeature("pad",
		faceRec{normal: v3.Vec{Z: -1}, planar: true, radius: r, hasRadius: true, z: lo},
		faceRec{normal: v3.Vec{Z: 1}, planar: true, radius: r, hasRadius: true, z: hi},
		faceRec{normal: v3.Vec{}, planar: false},
	), nil
}

// CreatePocket cuts a cylinder out of the document solid. Depth <= 0 cuts
// through everything below (or above) the sketch plane.
func (s *Session) CreatePocket(sk kernel.SketchHandle, depth float64, dir v3.Vec) (kernel.FeatureHandle, error) {
	rec, ok := s.sketches[sk]
	if !ok {
		return "", fmt.Errorf("sdfx: unknown sketch %q", sk)
	}
	if s.solid == nil {
		return "", fmt.Errorf("sdfx: pocket into an empty document")
	}
	sign, err := zSign(dir)
	if err != nil {
		return "", err
	}

	// Overshoot the cut slightly past both limits so the boolean is robust
	// against coincident surfaces.
	const overshoot = 1.0
	var lo, hi float64
	if depth <= 0 {
		bb := s.solid.BoundingBox()
		if sign < 0 {
			lo, hi = bb.Min.Z-overshoot, rec.z+overshoot
		} else {
			lo, hi = rec.z-overshoot, bb.Max.Z+overshoot
		}
	} else {
		if sign < 0 {
			lo, hi = rec.z-depth, rec.z+overshoot
		} else {
			lo, hi = rec.z-overshoot, rec.z+depth
		}
	}

	cut, err := sdf.Cylinder3D(hi-lo, rec.profile.Radius, 0)
	if err != nil {
		return "", fmt.Errorf("sdfx: pocket cylinder: %w", err)
	}
	cut = sdf.Transform3D(cut, sdf.Translate3d(v3.Vec{X: rec.profile.CX, Y: rec.profile.CY, Z: (lo + hi) / 2}))
	s.solid = sdf.Difference3D(s.solid, cut)

	recs := []faceRec{{normal: v3.Vec{}, planar: false}} // cylindrical wall
	if depth > 0 {
		// Blind pockets expose a floor facing back out of the cut.
		floorZ := rec.z - depth
		floorN := v3.Vec{Z: 1}
		if sign > 0 {
			floorZ = rec.z + depth
			floorN = v3.Vec{Z: -1}
		}
		recs = append([]faceRec{{normal: floorN, planar: true, radius: rec.profile.Radius, hasRadius: true, z: floorZ}}, recs...)
	}
	return s.newFeature("pocket", recs...), nil
}

// CreateShaft revolves a sketch profile about the Z axis.
func (s *Session) CreateShaft(sk kernel.SketchHandle, axis v3.Vec, angle float64) (kernel.FeatureHandle, error) {
	rec, ok := s.sketches[sk]
	if !ok {
		return "", fmt.Errorf("sdfx: unknown sketch %q", sk)
	}
	if _, err := zSign(axis); err != nil {
		return "", fmt.Errorf("sdfx: revolution axis must be Z-aligned: %w", err)
	}
	if angle <= 0 || angle > 360 {
		return "", fmt.Errorf("sdfx: sweep angle %g outside (0, 360]", angle)
	}

	circle, err := sdf.Circle2D(rec.profile.Radius)
	if err != nil {
		return "", fmt.Errorf("sdfx: revolve profile: %w", err)
	}
	// 2D X is the radial distance from the axis, 2D Y becomes Z.
	profile := sdf.Transform2D(circle, sdf.Translate2d(v2.Vec{X: rec.profile.CX, Y: rec.z}))
	solid, err := sdf.RevolveTheta3D(profile, angle*math.Pi/180)
	if err != nil {
		return "", fmt.Errorf("sdfx: revolve: %w", err)
	}
	if s.solid == nil {
		s.solid = solid
	} else {
		s.solid = sdf.Union3D(s.solid, solid)
	}

	return s.newFeature("shaft", faceRec{normal: v3.Vec{}, planar: false}), nil
}

// CreateEdgeFillet registers a fillet feature. The SDF preview keeps the
// sharp edge: a single-edge-ring round is not expressible with the
// primitives this backend composes, so the fillet contributes a confirmed
// feature inheriting the parent's faces without altering the preview solid.
func (s *Session) CreateEdgeFillet(f kernel.FeatureHandle, faceIndex int, radius float64) (kernel.FeatureHandle, error) {
	faces, ok := s.features[f]
	if !ok {
		return "", fmt.Errorf("sdfx: unknown feature %q", f)
	}
	if faceIndex < 0 || faceIndex >= len(faces) {
		return "", fmt.Errorf("sdfx: face index %d out of range for feature %q", faceIndex, f)
	}
	if radius <= 0 {
		return "", fmt.Errorf("sdfx: fillet radius %g must be positive", radius)
	}

	recs := make([]faceRec, 0, len(faces))
	for _, fh := range faces {
		recs = append(recs, s.faces[fh])
	}
	return s.newFeature("fillet", recs...), nil
}

// ListFaces returns the faces owned by a feature in creation order.
func (s *Session) ListFaces(f kernel.FeatureHandle) ([]kernel.FaceHandle, error) {
	faces, ok := s.features[f]
	if !ok {
		return nil, fmt.Errorf("sdfx: unknown feature %q", f)
	}
	out := make([]kernel.FaceHandle, len(faces))
	copy(out, faces)
	return out, nil
}

// FaceNormal returns the outward normal of a face.
func (s *Session) FaceNormal(face kernel.FaceHandle) (v3.Vec, bool, error) {
	rec, ok := s.faces[face]
	if !ok {
		return v3.Vec{}, false, fmt.Errorf("sdfx: unknown face %q", face)
	}
	return rec.normal, rec.planar, nil
}

// FaceBoundaryRadius returns the boundary radius of a circular face.
func (s *Session) FaceBoundaryRadius(face kernel.FaceHandle) (float64, bool, error) {
	rec, ok := s.faces[face]
	if !ok {
		return 0, false, fmt.Errorf("sdfx: unknown face %q", face)
	}
	return rec.radius, rec.hasRadius, nil
}

// Mesh tessellates the current document solid with marching cubes.
func (s *Session) Mesh() (*kernel.Mesh, error) {
	if s.solid == nil {
		return &kernel.Mesh{}, nil
	}

	renderer := render.NewMarchingCubesUniform(defaultMeshCells)
	triangles := render.ToTriangles(s.solid, renderer)

	vertices := make([]float32, 0, len(triangles)*9)
	normals := make([]float32, 0, len(triangles)*9)
	indices := make([]uint32, 0, len(triangles)*3)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}, nil
}

// newFeature registers face records under fresh handles and a new feature.
func (s *Session) newFeature(prefix string, recs ...faceRec) kernel.FeatureHandle {
	fh := kernel.FeatureHandle(s.next(prefix))
	handles := make([]kernel.FaceHandle, 0, len(recs))
	for _, rec := range recs {
		h := kernel.FaceHandle(s.next("face"))
		s.faces[h] = rec
		handles = append(handles, h)
	}
	s.features[fh] = handles
	return fh
}

// zSign validates a Z-aligned unit direction and returns its sign.
func zSign(dir v3.Vec) (float64, error) {
	if math.Abs(dir.X) > 1e-9 || math.Abs(dir.Y) > 1e-9 || math.Abs(math.Abs(dir.Z)-1) > 1e-9 {
		return 0, fmt.Errorf("sdfx: direction (%g,%g,%g) is not Z-aligned", dir.X, dir.Y, dir.Z)
	}
	if dir.Z < 0 {
		return -1, nil
	}
	return 1, nil
}
