// Package tree holds the engine's feature-tree state mirror: its own
// authoritative record of what has been created in the live kernel model.
// The kernel's feature tree is externally owned and reachable only through
// round-trip calls; mirroring it locally lets dependency and direction
// resolution run as pure functions over a snapshot instead of live queries.
package tree

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/forgecad/mandrel/pkg/intent"
	"github.com/forgecad/mandrel/pkg/kernel"
)

// NoParent marks a feature built directly on a datum plane.
const NoParent = -1

// Face is the mirror's cached view of one face of a confirmed feature.
// Normals and boundary radii are queried from the kernel once, at
// confirmation time, and never re-polled.
type Face struct {
	Handle         kernel.FaceHandle
	Normal         v3.Vec
	Planar         bool
	BoundaryRadius float64
	HasRadius      bool
}

// FeatureNode is one feature successfully created in the live kernel.
// Nodes are owned exclusively by the Mirror, created only after the
// sequencer confirms the corresponding kernel call, and never deleted
// during a run.
type FeatureNode struct {
	Handle kernel.FeatureHandle // stable, kernel-assigned identity
	Name   string               // optional intent-assigned name
	Kind   intent.Kind
	Faces  []Face // ordered owned faces, available as future supports
	Parent int    // creation-order index of the parent, NoParent for datum
	Order  int    // creation-order index, assigned by Append
}

// Mirror is the append-only arena of confirmed features, indexed by
// creation order and by kernel handle. It must stay in lock-step with the
// live model: exactly one Append per confirmed kernel feature.
type Mirror struct {
	nodes    []FeatureNode
	byHandle map[kernel.FeatureHandle]int
	byName   map[string]int
}

// NewMirror returns an empty mirror for a fresh document.
func NewMirror() *Mirror {
	return &Mirror{
		byHandle: make(map[kernel.FeatureHandle]int),
		byName:   make(map[string]int),
	}
}

// Append records a newly confirmed feature and returns its creation-order
// index. The parent must already exist (no forward references); duplicate
// handles indicate the mirror and the live model have diverged.
func (m *Mirror) Append(n FeatureNode) (int, error) {
	if n.Handle == "" {
		return 0, fmt.Errorf("tree: empty feature handle")
	}
	if _, dup := m.byHandle[n.Handle]; dup {
		return 0, fmt.Errorf("tree: duplicate feature handle %q", n.Handle)
	}
	if n.Parent != NoParent && (n.Parent < 0 || n.Parent >= len(m.nodes)) {
		return 0, fmt.Errorf("tree: parent index %d out of range (have %d nodes)", n.Parent, len(m.nodes))
	}
	n.Order = len(m.nodes)
	m.nodes = append(m.nodes, n)
	m.byHandle[n.Handle] = n.Order
	if n.Name != "" {
		m.byName[n.Name] = n.Order
	}
	return n.Order, nil
}

// Len returns the number of confirmed features.
func (m *Mirror) Len() int { return len(m.nodes) }

// Snapshot returns an immutable read view of the current mirror state.
// The backing slice is copied so later Appends cannot leak into a snapshot
// held by a resolver.
func (m *Mirror) Snapshot() Snapshot {
	nodes := make([]FeatureNode, len(m.nodes))
	copy(nodes, m.nodes)
	byHandle := make(map[kernel.FeatureHandle]int, len(m.byHandle))
	for h, i := range m.byHandle {
		byHandle[h] = i
	}
	byName := make(map[string]int, len(m.byName))
	for n, i := range m.byName {
		byName[n] = i
	}
	return Snapshot{nodes: nodes, byHandle: byHandle, byName: byName}
}

// Snapshot is a read-only view of the mirror at one point in time.
// The zero value is an empty document.
type Snapshot struct {
	nodes    []FeatureNode
	byHandle map[kernel.FeatureHandle]int
	byName   map[string]int
}

// Len returns the number of features in the snapshot.
func (s Snapshot) Len() int { return len(s.nodes) }

// Node returns the feature with the given creation-order index.
func (s Snapshot) Node(order int) (FeatureNode, bool) {
	if order < 0 || order >= len(s.nodes) {
		return FeatureNode{}, false
	}
	return s.nodes[order], true
}

// Last returns the most-recently-created feature.
func (s Snapshot) Last() (FeatureNode, bool) {
	if len(s.nodes) == 0 {
		return FeatureNode{}, false
	}
	return s.nodes[len(s.nodes)-1], true
}

// ByID looks a feature up by kernel handle or intent-assigned name.
func (s Snapshot) ByID(id string) (FeatureNode, bool) {
	if i, ok := s.byHandle[kernel.FeatureHandle(id)]; ok {
		return s.nodes[i], true
	}
	if i, ok := s.byName[id]; ok {
		return s.nodes[i], true
	}
	return FeatureNode{}, false
}
