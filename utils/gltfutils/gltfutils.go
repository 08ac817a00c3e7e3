package gltfutils

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ExportBinary writes doc as .glb. An empty default scene gets every node
// that is nobody's child.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{})
		doc.Scene = gltf.Index(0)
	}
	if len(doc.Scenes[0].Nodes) == 0 {
		doc.Scenes[0].Nodes = RootNodes(doc)
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

func RootNodes(doc *gltf.Document) []uint32 {
	isChild := make(map[uint32]bool)
	for _, n := range doc.Nodes {
		for _, child := range n.Children {
			isChild[child] = true
		}
	}
	roots := make([]uint32, 0)
	for iNode := range doc.Nodes {
		if !isChild[uint32(iNode)] {
			roots = append(roots, uint32(iNode))
		}
	}
	return roots
}

// WriteMatrices stores column major 4x4 matrices as one MAT4 accessor. The
// buffer view has no target, as required for inverse bind matrices.
func WriteMatrices(doc *gltf.Document, mats []mgl32.Mat4) uint32 {
	data := make([][4][4]float32, len(mats))
	for i, m := range mats {
		for c := 0; c < 4; c++ {
			data[i][c] = [4]float32{m[c*4], m[c*4+1], m[c*4+2], m[c*4+3]}
		}
	}
	return modeler.WriteAccessor(doc, gltf.TargetNone, data)
}
