package model

import (
	"bytes"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
)

func TestExportGLTFStatic(t *testing.T) {
	m, err := FromLWO("pane", testLWOObject(), nil)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := m.ExportGLTF()
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("meshes=%d", len(doc.Meshes))
	}
	prim := doc.Meshes[0].Primitives[0]
	if _, ok := prim.Attributes["JOINTS_0"]; ok {
		t.Errorf("static model must not carry joints")
	}
	if len(doc.Skins) != 0 || len(doc.Animations) != 0 {
		t.Errorf("skins=%d animations=%d; expected none", len(doc.Skins), len(doc.Animations))
	}
	if mat := doc.Materials[0]; mat.AlphaMode != gltf.AlphaBlend || !mat.DoubleSided {
		t.Errorf("material=%+v", mat)
	}

	var buf bytes.Buffer
	if err := m.WriteGLB(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Errorf("glb output does not start with the glTF magic")
	}
}

func TestExportGLTFSkinned(t *testing.T) {
	mesh, anim := parseTestMD5(t)
	m, err := FromMD5("soldier", mesh, []NamedAnim{{Name: "walk", Anim: anim}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := m.ExportGLTF()
	if err != nil {
		t.Fatal(err)
	}

	// one primitive per mesh material
	if len(doc.Meshes[0].Primitives) != 2 {
		t.Errorf("primitives=%d; expected 2", len(doc.Meshes[0].Primitives))
	}
	for _, attr := range []string{"POSITION", "TEXCOORD_0", "JOINTS_0", "WEIGHTS_0"} {
		if _, ok := doc.Meshes[0].Primitives[0].Attributes[attr]; !ok {
			t.Errorf("attribute %s missing", attr)
		}
	}

	if len(doc.Skins) != 1 || len(doc.Skins[0].Joints) != 2 {
		t.Fatalf("skins=%+v", doc.Skins)
	}
	ibm := doc.Accessors[*doc.Skins[0].InverseBindMatrices]
	if ibm.Type != gltf.AccessorMat4 || ibm.Count != 2 {
		t.Errorf("inverse bind matrices accessor=%+v", ibm)
	}
	if bv := doc.BufferViews[*ibm.BufferView]; bv.Target != gltf.TargetNone {
		t.Errorf("inverse bind matrices buffer view target=%v", bv.Target)
	}

	// bone nodes, then the mesh node
	if len(doc.Nodes) != 3 || doc.Nodes[2].Skin == nil {
		t.Fatalf("nodes=%d", len(doc.Nodes))
	}
	if len(doc.Nodes[0].Children) != 1 || doc.Nodes[0].Children[0] != 1 {
		t.Errorf("root bone children=%v", doc.Nodes[0].Children)
	}

	if len(doc.Animations) != 2 {
		t.Fatalf("animations=%d; expected raw and locked", len(doc.Animations))
	}
	if doc.Animations[1].Name != "walk"+lockedAnimationSuffix {
		t.Errorf("animation 1=%q", doc.Animations[1].Name)
	}
	// translation and rotation per bone
	if len(doc.Animations[0].Channels) != 4 {
		t.Errorf("channels=%d; expected 4", len(doc.Animations[0].Channels))
	}
}

func TestWriteOBJ(t *testing.T) {
	mesh, _ := parseTestMD5(t)
	m, err := FromMD5("soldier", mesh, nil, []string{"body"})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := m.WriteOBJ(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if n := strings.Count(out, "\nv "); n != 6 {
		t.Errorf("vertex lines=%d; expected 6", n)
	}
	if n := strings.Count(out, "\nvt "); n != 6 {
		t.Errorf("uv lines=%d; expected 6", n)
	}
	for _, line := range []string{"usemtl body\n", "usemtl eyes\n", "f 1/1 2/2 3/3\n", "f 6/6 5/5 4/4\n"} {
		if !strings.Contains(out, line) {
			t.Errorf("obj output missing %q:\n%s", line, out)
		}
	}
}

func TestWriteOBJFaceUVs(t *testing.T) {
	m := &Model{
		Name:          "quad",
		Vertices:      []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:         []uint32{0, 1, 2},
		FaceMaterials: []int{0},
		UVs:           [][]float32{{0, 0, 1, 0, 0, 1, 0.5, 0.5}},
		FaceUVs:       [][]uint32{{0, 1, 3}},
		Materials:     []Material{DefaultMaterial("default")},
	}

	var buf bytes.Buffer
	if err := m.WriteOBJ(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "f 1/1 2/2 3/4\n") {
		t.Errorf("obj output=%s", buf.String())
	}

	doc, err := m.ExportGLTF()
	if err != nil {
		t.Fatal(err)
	}
	// unwelded: one vertex per corner
	if pos := doc.Accessors[doc.Meshes[0].Primitives[0].Attributes["POSITION"]]; pos.Count != 3 {
		t.Errorf("position count=%d", pos.Count)
	}
}
