// Package export serializes preview meshes to interchange formats.
package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/forgecad/mandrel/pkg/kernel"
)

// stlHeaderSize is the fixed binary STL header length.
const stlHeaderSize = 80

// WriteSTL writes a mesh as binary STL. The name is embedded in the header
// and truncated to fit; a nil or empty mesh produces a valid zero-triangle
// file.
func WriteSTL(w io.Writer, name string, m *kernel.Mesh) error {
	bw := bufio.NewWriter(w)

	var header [stlHeaderSize]byte
	copy(header[:], name)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("stl header: %w", err)
	}

	var triCount uint32
	if m != nil {
		triCount = uint32(m.TriangleCount())
	}
	if err := binary.Write(bw, binary.LittleEndian, triCount); err != nil {
		return fmt.Errorf("stl triangle count: %w", err)
	}

	for t := uint32(0); t < triCount; t++ {
		i0, i1, i2 := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]

		// Per-triangle normal: the tessellator stores one normal per vertex,
		// identical across a flat-shaded triangle, so the first vertex's
		// normal stands for the facet.
		rec := make([]float32, 0, 12)
		rec = append(rec, m.Normals[i0*3], m.Normals[i0*3+1], m.Normals[i0*3+2])
		for _, idx := range []uint32{i0, i1, i2} {
			rec = append(rec, m.Vertices[idx*3], m.Vertices[idx*3+1], m.Vertices[idx*3+2])
		}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return fmt.Errorf("stl facet %d: %w", t, err)
		}
		// Attribute byte count, unused.
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("stl facet %d attributes: %w", t, err)
		}
	}

	return bw.Flush()
}

// SaveSTL writes a mesh as binary STL to a file path.
func SaveSTL(path, name string, m *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteSTL(f, name, m); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
