package model

import (
	"github.com/pkg/errors"

	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/pack/lwo"
	"github.com/mogaika/model_browser/pack/md5"
	"github.com/mogaika/model_browser/utils"
)

type NamedAnim struct {
	Name string
	Anim *md5.AnimFile
}

func materialFromSurface(s *lwo.Surface) Material {
	m := Material{
		Name:        s.Name,
		Color:       [3]float32(s.Color),
		Opacity:     1 - s.Transparency,
		Transparent: s.Transparency > 0,
		Visible:     true,
		DoubleSided: s.DoubleSided(),
		Blending:    BlendingNormal,
	}
	if s.AdditiveTransparency > 0 {
		m.Blending = BlendingAdditive
	}
	return m
}

func FromLWO(name string, obj *lwo.Object, exlog *utils.Logger) (*Model, error) {
	g, err := obj.Geometry(exlog)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to compose geometry of '%s'", name)
	}

	m := &Model{
		Name:          name,
		Vertices:      g.Vertices,
		Faces:         g.Faces,
		FaceMaterials: g.FaceMaterials,
		UVs:           g.UVs,
		FaceUVs:       g.FaceUVs,
		Materials:     make([]Material, len(g.Materials)),
	}
	if m.UVs == nil {
		m.UVs = make([][]float32, 0)
	}
	for i, s := range g.Materials {
		m.Materials[i] = materialFromSurface(s)
	}
	m.Warnings = append(m.Warnings, obj.Warnings...)
	m.Warnings = append(m.Warnings, g.Warnings...)
	return m, nil
}

// FromMD5 binds the mesh with the first animation (identity pose without
// any) and composes every animation. materials name the meshes in order,
// meshes past the list keep their shader name.
func FromMD5(name string, mesh *md5.MeshFile, anims []NamedAnim, materials []string) (*Model, error) {
	var bindAnim *md5.AnimFile
	if len(anims) != 0 {
		bindAnim = anims[0].Anim
	}

	bs, err := md5.BindPose(mesh, bindAnim)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to bind '%s'", name)
	}

	m := &Model{
		Name:          name,
		Vertices:      utils.Vec3sToFlat(bs.Positions),
		Faces:         make([]uint32, 0),
		FaceMaterials: make([]int, 0),
		Materials:     make([]Material, 0, len(mesh.Meshes)),
		Bones:         make([]Bone, len(mesh.Joints)),
		SkinIndices:   make([]int, 0, len(bs.SkinIndices)*md5.MaxInfluences),
		SkinWeights:   make([]float32, 0, len(bs.SkinWeights)*md5.MaxInfluences),
		Animations:    make([]Animation, 0, len(anims)),
	}

	uvs := make([]float32, 0, len(bs.UVs)*2)
	for _, uv := range bs.UVs {
		uvs = append(uvs, uv[0], uv[1])
	}
	m.UVs = [][]float32{uvs}

	vertexOffset := uint32(0)
	for iMesh, mm := range mesh.Meshes {
		for iTri, tri := range mm.Triangles {
			for _, v := range tri {
				if int(v) >= len(mm.Vertices) {
					return nil, asseterr.MissingReference("'%s' mesh %d tri %d vertex %d, %d vertices",
						name, iMesh, iTri, v, len(mm.Vertices))
				}
				m.Faces = append(m.Faces, vertexOffset+v)
			}
			m.FaceMaterials = append(m.FaceMaterials, iMesh)
		}
		vertexOffset += uint32(len(mm.Vertices))

		matName := mm.Shader
		if iMesh < len(materials) && materials[iMesh] != "" {
			matName = materials[iMesh]
		}
		m.Materials = append(m.Materials, DefaultMaterial(matName))
	}

	for i, j := range mesh.Joints {
		b := bs.Bones[i]
		m.Bones[i] = Bone{
			Name:     j.Name,
			Parent:   j.Parent,
			Position: [3]float32(b.Position),
			Rotation: utils.QuatToArray(b.Orientation),
		}
	}

	for i := range bs.SkinIndices {
		for k := 0; k < md5.MaxInfluences; k++ {
			m.SkinIndices = append(m.SkinIndices, bs.SkinIndices[i][k])
			m.SkinWeights = append(m.SkinWeights, bs.SkinWeights[i][k])
		}
	}

	for _, na := range anims {
		a, err := md5.ComposeAnimation(na.Name, na.Anim)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to compose animation '%s' of '%s'", na.Name, name)
		}
		m.Animations = append(m.Animations, animationFromMD5(a))
	}

	return m, nil
}

func tracksFromMD5(tracks []md5.JointTrack) []Track {
	result := make([]Track, len(tracks))
	for i, t := range tracks {
		keys := make([]Keyframe, len(t.Keys))
		for iKey, k := range t.Keys {
			keys[iKey] = Keyframe{
				Time:     k.Time,
				Position: [3]float32(k.Position),
				Rotation: utils.QuatToArray(k.Rotation),
			}
		}
		result[i] = Track{Joint: t.Joint, Name: t.Name, Keys: keys}
	}
	return result
}

func animationFromMD5(a *md5.Animation) Animation {
	return Animation{
		Name:         a.Name,
		Length:       a.Length(),
		FPS:          a.FrameRate,
		Tracks:       tracksFromMD5(a.Tracks),
		LockedTracks: tracksFromMD5(a.LockedTracks),
	}
}
