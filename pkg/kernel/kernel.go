// Package kernel defines the capability set the engine requires from a CAD
// automation binding. Implementations (the offline sdfx backend, a live
// session binding, test fakes) provide feature construction behind this
// interface; the engine never talks to a kernel any other way.
//
// Every call is synchronous, may be slow, and may fail with a
// collaborator-defined error. The engine treats any failure as a run abort;
// timeouts are the implementation's responsibility.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SketchHandle is an opaque handle to a sketch in the live document.
type SketchHandle string

// FeatureHandle is an opaque, kernel-assigned handle to a created feature.
type FeatureHandle string

// FaceHandle is an opaque handle to a face of a created feature.
type FaceHandle string

// OriginPlane identifies one of the three fixed datum planes.
type OriginPlane int

const (
	PlaneXY OriginPlane = iota
	PlaneYZ
	PlaneZX
)

func (p OriginPlane) String() string {
	switch p {
	case PlaneXY:
		return "xy"
	case PlaneYZ:
		return "yz"
	case PlaneZX:
		return "zx"
	default:
		return "unknown"
	}
}

// PlaneRef names the support a sketch is drawn on: either a fixed origin
// datum plane or a planar face of an existing feature.
type PlaneRef struct {
	Origin OriginPlane
	Face   FaceHandle
	OnFace bool
}

// OnOrigin returns a PlaneRef for a fixed datum plane.
func OnOrigin(p OriginPlane) PlaneRef {
	return PlaneRef{Origin: p}
}

// OnFace returns a PlaneRef for a planar face of an existing feature.
func OnFace(f FaceHandle) PlaneRef {
	return PlaneRef{Face: f, OnFace: true}
}

// Profile is a closed circular sketch profile in sketch-local coordinates.
// The profile travels with the sketch because a sketch without a profile
// cannot drive a pad or pocket.
type Profile struct {
	Radius float64
	CX, CY float64
}

// Session is the abstract kernel collaborator for one active document.
// A session holds mutable, document-wide state; callers must not issue two
// construction sequences against the same session concurrently.
type Session interface {
	// CreateSketch draws a closed profile on the given support plane.
	CreateSketch(plane PlaneRef, profile Profile) (SketchHandle, error)

	// CreatePad extrudes a sketch by length along dir (a unit vector).
	CreatePad(sk SketchHandle, length float64, dir v3.Vec) (FeatureHandle, error)

	// CreatePocket cuts a sketch into the solid by depth along dir.
	// Depth <= 0 means cut through everything.
	CreatePocket(sk SketchHandle, depth float64, dir v3.Vec) (FeatureHandle, error)

	// CreateShaft revolves a sketch around axis by angle degrees.
	CreateShaft(sk SketchHandle, axis v3.Vec, angle float64) (FeatureHandle, error)

	// CreateEdgeFillet rounds the boundary edge ring of one face of an
	// existing feature.
	CreateEdgeFillet(f FeatureHandle, faceIndex int, radius float64) (FeatureHandle, error)

	// ListFaces returns the faces owned by a feature, in the kernel's
	// stable local order.
	ListFaces(f FeatureHandle) ([]FaceHandle, error)

	// FaceNormal returns the outward normal of a face. planar is false for
	// curved faces, whose normal is undefined.
	FaceNormal(face FaceHandle) (n v3.Vec, planar bool, err error)

	// FaceBoundaryRadius returns the boundary radius of a circular face.
	// ok is false when the face has no single boundary radius.
	FaceBoundaryRadius(face FaceHandle) (r float64, ok bool, err error)
}
