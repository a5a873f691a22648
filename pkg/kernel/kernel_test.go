package kernel

import "testing"

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Plane and reference tests ---

func TestOriginPlaneString(t *testing.T) {
	tests := []struct {
		plane OriginPlane
		want  string
	}{
		{PlaneXY, "xy"},
		{PlaneYZ, "yz"},
		{PlaneZX, "zx"},
		{OriginPlane(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.plane.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPlaneRefConstructors(t *testing.T) {
	t.Run("origin", func(t *testing.T) {
		ref := OnOrigin(PlaneYZ)
		if ref.OnFace {
			t.Error("OnOrigin() set OnFace")
		}
		if ref.Origin != PlaneYZ {
			t.Errorf("Origin = %v, want PlaneYZ", ref.Origin)
		}
	})
	t.Run("face", func(t *testing.T) {
		ref := OnFace(FaceHandle("face-7"))
		if !ref.OnFace {
			t.Error("OnFace() did not set OnFace")
		}
		if ref.Face != "face-7" {
			t.Errorf("Face = %q, want face-7", ref.Face)
		}
	})
}
