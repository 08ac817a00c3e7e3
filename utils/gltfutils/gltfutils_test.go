package gltfutils

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func TestWriteMatrices(t *testing.T) {
	doc := gltf.NewDocument()
	acc := WriteMatrices(doc, []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(1, 2, 3)})

	a := doc.Accessors[acc]
	if a.Type != gltf.AccessorMat4 || a.ComponentType != gltf.ComponentFloat || a.Count != 2 {
		t.Fatalf("accessor=%+v", a)
	}
	if bv := doc.BufferViews[*a.BufferView]; bv.Target != gltf.TargetNone || bv.ByteStride != 0 {
		t.Errorf("buffer view target=%v stride=%d; expected no target and packed data", bv.Target, bv.ByteStride)
	}

	data, err := modeler.ReadAccessor(doc, a, nil)
	if err != nil {
		t.Fatal(err)
	}
	mats := data.([][4][4]float32)
	// translation lives in the last column
	if mats[1][3] != [4]float32{1, 2, 3, 1} {
		t.Errorf("matrix 1 column 3=%v; expected [1 2 3 1]", mats[1][3])
	}
	if mats[0][0] != [4]float32{1, 0, 0, 0} {
		t.Errorf("matrix 0 column 0=%v", mats[0][0])
	}
}

func TestRootNodes(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Children: []uint32{1}}, {}, {}}
	roots := RootNodes(doc)
	if len(roots) != 2 || roots[0] != 0 || roots[1] != 2 {
		t.Errorf("RootNodes()=%v; expected [0 2]", roots)
	}
}
