package model

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// WriteOBJ writes geometry with the first uv channel. Skeleton and
// animations have no OBJ counterpart and are dropped.
func (m *Model) WriteOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s: %d vertices, %d triangles\n", m.Name, m.VertexCount(), m.TriangleCount())
	fmt.Fprintf(bw, "o %s\n", m.Name)

	for i := 0; i+2 < len(m.Vertices); i += 3 {
		fmt.Fprintf(bw, "v %g %g %g\n", m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2])
	}

	var uvs []float32
	var faceUVs []uint32
	if len(m.UVs) != 0 {
		uvs = m.UVs[0]
		if len(m.FaceUVs) != 0 {
			faceUVs = m.FaceUVs[0]
		}
	}
	for i := 0; i+1 < len(uvs); i += 2 {
		// obj v axis points up
		fmt.Fprintf(bw, "vt %g %g\n", uvs[i], 1-uvs[i+1])
	}

	currentMaterial := -1
	for iFace := 0; iFace*3+2 < len(m.Faces); iFace++ {
		if iFace < len(m.FaceMaterials) && m.FaceMaterials[iFace] != currentMaterial {
			currentMaterial = m.FaceMaterials[iFace]
			if currentMaterial >= 0 && currentMaterial < len(m.Materials) {
				fmt.Fprintf(bw, "usemtl %s\n", m.Materials[currentMaterial].Name)
			}
		}

		bw.WriteString("f")
		for k := 0; k < 3; k++ {
			corner := iFace*3 + k
			v := m.Faces[corner]
			if int(v) >= m.VertexCount() {
				return errors.Errorf("Model '%s' face %d vertex %d out of range", m.Name, iFace, v)
			}
			switch {
			case faceUVs != nil && corner < len(faceUVs):
				fmt.Fprintf(bw, " %d/%d", v+1, faceUVs[corner]+1)
			case uvs != nil && len(uvs) == m.VertexCount()*2:
				fmt.Fprintf(bw, " %d/%d", v+1, v+1)
			default:
				fmt.Fprintf(bw, " %d", v+1)
			}
		}
		bw.WriteString("\n")
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "Failed to write obj")
	}
	return nil
}
