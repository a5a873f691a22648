// Package run applies a resolved feature plan step by step against the
// kernel collaborator and keeps the feature-tree mirror in lock-step with
// the live model.
//
// One sequencer owns one kernel session for the duration of a run; feature
// construction is strictly sequential because every kernel call mutates the
// one active document and later resolution depends on the just-confirmed
// result. Independent runs against different sessions share no state and
// may proceed in parallel.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/kernel"
	"github.com/forgecad/mandrel/pkg/observability"
	"github.com/forgecad/mandrel/pkg/plan"
	"github.com/forgecad/mandrel/pkg/resolve"
	"github.com/forgecad/mandrel/pkg/tree"
)

// Options configures a sequencer.
type Options struct {
	// ContinuityTolerance overrides resolve.DefaultContinuityTolerance (mm).
	ContinuityTolerance float64
	// Mirror seeds the run with a snapshot of an already-populated document.
	// Nil starts from an empty document.
	Mirror *tree.Mirror
	// Logger receives structured step logs. Nil discards them.
	Logger *slog.Logger
}

// Sequencer executes feature plans against a single kernel session.
// It is not safe for concurrent use: a second plan must not be issued
// against the same session while one is in flight.
type Sequencer struct {
	session kernel.Session
	mirror  *tree.Mirror
	cfg     resolve.Config
	log     *slog.Logger
}

// NewSequencer returns a sequencer holding the session exclusively for its
// runs.
func NewSequencer(session kernel.Session, opts Options) *Sequencer {
	m := opts.Mirror
	if m == nil {
		m = tree.NewMirror()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Sequencer{
		session: session,
		mirror:  m,
		cfg:     resolve.Config{ContinuityTolerance: opts.ContinuityTolerance},
		log:     log,
	}
}

// Mirror exposes the sequencer's tree mirror (for inspection after a run).
func (s *Sequencer) Mirror() *tree.Mirror { return s.mirror }

// Run builds a plan from the intent and executes it. A PlanningError is
// returned directly with no report: nothing was dispatched, the caller can
// correct the intent and resubmit. Execution failures are reported in the
// Report, not as an error.
func (s *Sequencer) Run(ctx context.Context, in *intent.Intent) (*Report, error) {
	planned, err := plan.Build(in)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, planned), nil
}

// Execute applies an already-built plan. Each step walks
// Pending → Resolving → Executing → Confirmed; the first failure aborts the
// run with no rollback of confirmed features and no automatic retry
// (geometry mutation retries are unsafe without rollback).
func (s *Sequencer) Execute(ctx context.Context, planned []plan.PlannedFeature) *Report {
	start := time.Now()
	report := &Report{RunID: uuid.NewString(), Status: StatusCompleted}
	log := s.log.With("run_id", report.RunID)

	log.Info("run_started", "steps", len(planned))

	for i, pf := range planned {
		kind := pf.Spec.Kind().String()

		// Cancellation is checked only between steps: a kernel call, once
		// dispatched, is not preemptible.
		if err := ctx.Err(); err != nil {
			s.abort(report, log, i, kind, StepPending, err)
			break
		}

		log.Debug("step_state", "step", i, "kind", kind, "state", StepResolving)
		snap := s.mirror.Snapshot()
		rf, err := resolve.Resolve(pf, snap, s.cfg)
		if err != nil {
			s.abort(report, log, i, kind, StepResolving, err)
			break
		}

		log.Debug("step_state", "step", i, "kind", kind, "state", StepExecuting)
		node, err := s.dispatch(rf, snap)
		if err != nil {
			s.abort(report, log, i, kind, StepExecuting, err)
			break
		}

		// Confirmation is the mirror's only mutation point.
		order, err := s.mirror.Append(node)
		if err != nil {
			s.abort(report, log, i, kind, StepExecuting, err)
			break
		}
		node.Order = order

		report.Resolved = append(report.Resolved, rf)
		report.Confirmed = append(report.Confirmed, node)
		observability.RecordStep(kind, StepConfirmed.String())
		log.Info("step_confirmed", "step", i, "kind", kind,
			"handle", string(node.Handle), "order", order)
	}

	report.Duration = time.Since(start)
	observability.RecordRun(report.Status.String(), int(report.Duration.Milliseconds()))
	log.Info("run_finished", "status", report.Status.String(),
		"confirmed", len(report.Confirmed), "duration_ms", report.Duration.Milliseconds())
	return report
}

// abort marks the run as partially failed at the given step. Confirmed
// kernel features stay in the live model; resuming is the caller's call
// after inspecting the report.
func (s *Sequencer) abort(report *Report, log *slog.Logger, i int, kind string, at StepState, err error) {
	report.Status = StatusPartialFailure
	report.Failing = &StepFailure{Index: i, Err: err}
	observability.RecordStep(kind, StepAborted.String())
	log.Error("step_aborted", "step", i, "kind", kind, "state", at.String(), "error", err)
}

// dispatch issues the kernel calls for one resolved feature and queries the
// resulting geometry for the mirror. The snapshot is the one the feature
// was resolved against, used only to translate parent indices to handles.
func (s *Sequencer) dispatch(rf resolve.ResolvedFeature, snap tree.Snapshot) (tree.FeatureNode, error) {
	var (
		fh  kernel.FeatureHandle
		err error
	)

	switch rf.Kind {
	case intent.KindPad, intent.KindPocket, intent.KindRevolve:
		plane, perr := s.planeRef(rf.Support, snap)
		if perr != nil {
			return tree.FeatureNode{}, perr
		}
		sk, serr := s.session.CreateSketch(plane, rf.Profile)
		observability.RecordKernelCall("create_sketch", serr)
		if serr != nil {
			return tree.FeatureNode{}, KernelCallError{Op: "createSketch", Err: serr}
		}

		switch rf.Kind {
		case intent.KindPad:
			fh, err = s.session.CreatePad(sk, rf.Length, rf.Direction)
			observability.RecordKernelCall("create_pad", err)
			if err != nil {
				return tree.FeatureNode{}, KernelCallError{Op: "createPad", Err: err}
			}
		case intent.KindPocket:
			depth := rf.Length
			if rf.Through {
				depth = 0
			}
			fh, err = s.session.CreatePocket(sk, depth, rf.Direction)
			observability.RecordKernelCall("create_pocket", err)
			if err != nil {
				return tree.FeatureNode{}, KernelCallError{Op: "createPocket", Err: err}
			}
		case intent.KindRevolve:
			fh, err = s.session.CreateShaft(sk, rf.Axis, rf.Angle)
			observability.RecordKernelCall("create_shaft", err)
			if err != nil {
				return tree.FeatureNode{}, KernelCallError{Op: "createShaft", Err: err}
			}
		}

	case intent.KindFillet:
		parent, ok := snap.Node(rf.Parent)
		if !ok {
			return tree.FeatureNode{}, fmt.Errorf("run: fillet parent %d missing from snapshot", rf.Parent)
		}
		fh, err = s.session.CreateEdgeFillet(parent.Handle, rf.FilletFace, rf.FilletRadius)
		observability.RecordKernelCall("create_edge_fillet", err)
		if err != nil {
			return tree.FeatureNode{}, KernelCallError{Op: "createEdgeFillet", Err: err}
		}

	default:
		return tree.FeatureNode{}, fmt.Errorf("run: unsupported feature kind %s", rf.Kind)
	}

	faces, err := s.queryFaces(fh)
	if err != nil {
		return tree.FeatureNode{}, err
	}
	// Post-condition: a confirmed feature must own at least one face.
	// A faceless handle means the kernel produced a zero-volume result.
	if len(faces) == 0 {
		return tree.FeatureNode{}, fmt.Errorf("run: feature %q failed post-condition: no faces (zero-volume result)", fh)
	}

	return tree.FeatureNode{
		Handle: fh,
		Name:   rf.Name,
		Kind:   rf.Kind,
		Faces:  faces,
		Parent: rf.Parent,
	}, nil
}

// queryFaces mirrors a new feature's geometry: one round of kernel queries
// at confirmation time, cached for all later resolution.
func (s *Sequencer) queryFaces(fh kernel.FeatureHandle) ([]tree.Face, error) {
	handles, err := s.session.ListFaces(fh)
	observability.RecordKernelCall("list_faces", err)
	if err != nil {
		return nil, KernelCallError{Op: "listFaces", Err: err}
	}

	faces := make([]tree.Face, 0, len(handles))
	for _, h := range handles {
		n, planar, err := s.session.FaceNormal(h)
		observability.RecordKernelCall("face_normal", err)
		if err != nil {
			return nil, KernelCallError{Op: "faceNormal", Err: err}
		}
		r, ok, err := s.session.FaceBoundaryRadius(h)
		observability.RecordKernelCall("face_boundary_radius", err)
		if err != nil {
			return nil, KernelCallError{Op: "faceBoundaryRadius", Err: err}
		}
		faces = append(faces, tree.Face{
			Handle:         h,
			Normal:         n,
			Planar:         planar,
			BoundaryRadius: r,
			HasRadius:      ok,
		})
	}
	return faces, nil
}

// planeRef translates a resolved support into the kernel's plane reference.
func (s *Sequencer) planeRef(ref tree.GeometricReference, snap tree.Snapshot) (kernel.PlaneRef, error) {
	if ref.IsOrigin() {
		return kernel.OnOrigin(ref.Plane), nil
	}
	face, ok := ref.Face(snap)
	if !ok {
		return kernel.PlaneRef{}, fmt.Errorf("run: support %s missing from snapshot", ref)
	}
	return kernel.OnFace(face.Handle), nil
}
