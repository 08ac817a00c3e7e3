package model

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/pack/lwo"
	"github.com/mogaika/model_browser/pack/md5"
)

const testMesh = `MD5Version 10
joints {
	"root"	-1 ( 0 0 0 ) ( 0 0 0 )
	"tip"	0 ( 0 1 0 ) ( 0 0 0 )
}
mesh {
	shader "skin"
	vert 0 ( 0 0 ) 0 1
	vert 1 ( 1 0 ) 1 1
	vert 2 ( 0 1 ) 2 3
	tri 0 0 1 2
	weight 0 0 1 ( 0 0 0 )
	weight 1 1 1 ( 1 0 0 )
	weight 2 0 0.5 ( 0 0 1 )
	weight 3 1 0.3 ( 0 0 1 )
	weight 4 0 0.2 ( 0 0 1 )
}
mesh {
	shader "eyes"
	vert 0 ( 0 0 ) 0 1
	vert 1 ( 0 0 ) 0 1
	vert 2 ( 0 0 ) 0 1
	tri 0 2 1 0
	weight 0 1 1 ( 0 0 0 )
}
`

const testAnim = `frameRate 30
hierarchy {
	"root"	-1 7 0
	"tip"	0 0 3
}
baseframe {
	( 0 0 0 ) ( 0 0 0 )
	( 0 1 0 ) ( 0 0 0 )
}
frame 0 {
	0 0 0
}
frame 1 {
	1 2 3
}
frame 2 {
	2 4 6
}
`

func testLWOObject() *lwo.Object {
	color := lwo.NewSurface("glass")
	color.Transparency = 0.25
	color.Sidedness = 3
	color.AdditiveTransparency = 1

	return &lwo.Object{
		Tags: []string{"glass"},
		Layers: []*lwo.Layer{{
			Points: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Polygons: []lwo.Polygon{
				{Indices: [3]uint32{0, 1, 2}, MaterialTag: 0},
			},
		}},
		Surfaces: []*lwo.Surface{color},
		Warnings: []string{"skipped chunk"},
	}
}

func TestFromLWO(t *testing.T) {
	m, err := FromLWO("pane", testLWOObject(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "pane" || m.VertexCount() != 3 || m.TriangleCount() != 1 {
		t.Errorf("model=%s vertices=%d triangles=%d", m.Name, m.VertexCount(), m.TriangleCount())
	}
	if expected := []uint32{2, 1, 0}; !reflect.DeepEqual(m.Faces, expected) {
		t.Errorf("Faces=%v; expected %v", m.Faces, expected)
	}

	expected := Material{
		Name:        "glass",
		Color:       [3]float32{0.784, 0.784, 0.784},
		Opacity:     0.75,
		Transparent: true,
		Visible:     true,
		DoubleSided: true,
		Blending:    BlendingAdditive,
	}
	if len(m.Materials) != 1 || m.Materials[0] != expected {
		t.Errorf("Materials=%+v; expected %+v", m.Materials, expected)
	}
	if m.Skinned() || len(m.Animations) != 0 {
		t.Errorf("lwo model must not be skinned")
	}
	if len(m.Warnings) != 1 {
		t.Errorf("Warnings=%q", m.Warnings)
	}
}

func parseTestMD5(t *testing.T) (*md5.MeshFile, *md5.AnimFile) {
	mesh, err := md5.ParseMesh([]byte(testMesh))
	if err != nil {
		t.Fatal(err)
	}
	anim, err := md5.ParseAnim([]byte(testAnim))
	if err != nil {
		t.Fatal(err)
	}
	return mesh, anim
}

func TestFromMD5(t *testing.T) {
	mesh, anim := parseTestMD5(t)

	m, err := FromMD5("soldier", mesh, []NamedAnim{{Name: "walk", Anim: anim}}, []string{"body"})
	if err != nil {
		t.Fatal(err)
	}

	if m.VertexCount() != 6 {
		t.Fatalf("VertexCount()=%d; expected 6", m.VertexCount())
	}
	// second mesh indices are offset by the first mesh vertex count
	if expected := []uint32{0, 1, 2, 5, 4, 3}; !reflect.DeepEqual(m.Faces, expected) {
		t.Errorf("Faces=%v; expected %v", m.Faces, expected)
	}
	if expected := []int{0, 1}; !reflect.DeepEqual(m.FaceMaterials, expected) {
		t.Errorf("FaceMaterials=%v; expected %v", m.FaceMaterials, expected)
	}
	if m.Materials[0].Name != "body" || m.Materials[1].Name != "eyes" {
		t.Errorf("Materials=%+v", m.Materials)
	}
	if len(m.UVs) != 1 || len(m.UVs[0]) != 12 {
		t.Errorf("UVs=%v", m.UVs)
	}

	if !m.Skinned() || len(m.SkinWeights) != 12 {
		t.Fatalf("skin indices=%d weights=%d", len(m.SkinIndices), len(m.SkinWeights))
	}
	// vertex 2 keeps joints 0 and 1 renormalized
	if m.SkinIndices[4] != 0 || m.SkinIndices[5] != 1 {
		t.Errorf("vertex 2 skin indices=%v", m.SkinIndices[4:6])
	}
	if sum := m.SkinWeights[4] + m.SkinWeights[5]; sum < 0.9999 || sum > 1.0001 {
		t.Errorf("vertex 2 weights sum=%v", sum)
	}
	// single weight vertex pads with joint 0 weight 0
	if m.SkinIndices[1] != 0 || m.SkinWeights[1] != 0 {
		t.Errorf("vertex 0 second influence=%d %v", m.SkinIndices[1], m.SkinWeights[1])
	}

	if len(m.Bones) != 2 || m.Bones[1].Parent != 0 || m.Bones[1].Position != [3]float32{0, 1, 0} {
		t.Errorf("Bones=%+v", m.Bones)
	}
	if m.Bones[0].Rotation[3] != -1 {
		t.Errorf("root rotation=%v; expected w=-1", m.Bones[0].Rotation)
	}

	a := m.Animation("walk")
	if a == nil {
		t.Fatalf("animation walk not found")
	}
	if a.FPS != 30 || a.Length != 100 || len(a.Tracks) != 2 || len(a.Tracks[0].Keys) != 3 {
		t.Errorf("animation=%+v", a)
	}
	if a.Tracks[0].Keys[2].Position != [3]float32{2, 4, 6} {
		t.Errorf("root key 2=%+v", a.Tracks[0].Keys[2])
	}
	if a.LockedTracks[0].Keys[2].Position != [3]float32{} || a.LockedTracks[0].Keys[2].Rotation != [4]float32{0, 0, 0, 1} {
		t.Errorf("locked root key 2=%+v", a.LockedTracks[0].Keys[2])
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"name", "vertices", "faces", "uvs", "materials", "bones", "skinIndices", "skinWeights", "animations"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("json field %q missing", key)
		}
	}
}

func TestFromMD5WithoutAnimations(t *testing.T) {
	mesh, _ := parseTestMD5(t)
	m, err := FromMD5("soldier", mesh, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Materials[0].Name != "skin" {
		t.Errorf("material 0=%q; expected shader name", m.Materials[0].Name)
	}
	for i, b := range m.Bones {
		if b.Position != [3]float32{} || b.Rotation != [4]float32{0, 0, 0, 1} {
			t.Errorf("bone %d=%+v; expected identity", i, b)
		}
	}
	if len(m.Animations) != 0 {
		t.Errorf("Animations=%d; expected none", len(m.Animations))
	}
}

func TestFromMD5BadTriangle(t *testing.T) {
	mesh, _ := parseTestMD5(t)
	mesh.Meshes[1].Triangles[0][0] = 9
	if _, err := FromMD5("soldier", mesh, nil, nil); !asseterr.Is(err, asseterr.ErrMissingReference) {
		t.Errorf("error=%v; expected missing reference", err)
	}
}
