package model

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/model_browser/utils/gltfutils"
)

const lockedAnimationSuffix = "_locked"

// vertexStream is the per vertex layout glTF wants. Models with per corner
// uv indices are unwelded, one vertex per face corner.
type vertexStream struct {
	positions [][3]float32
	uvs       [][][2]float32
	// per face corner
	indices []uint32
	joints  [][4]uint16
	weights [][4]float32
}

func (m *Model) vertexStream() (*vertexStream, error) {
	vs := &vertexStream{}
	vertexCount := m.VertexCount()
	for _, f := range m.Faces {
		if int(f) >= vertexCount {
			return nil, errors.Errorf("Face index %d, %d vertices", f, vertexCount)
		}
	}

	if len(m.FaceUVs) != 0 {
		vs.positions = make([][3]float32, len(m.Faces))
		vs.indices = make([]uint32, len(m.Faces))
		for i, f := range m.Faces {
			copy(vs.positions[i][:], m.Vertices[f*3:f*3+3])
			vs.indices[i] = uint32(i)
		}
		for iChannel, faceUVs := range m.FaceUVs {
			uvs := make([][2]float32, len(m.Faces))
			for i, uvi := range faceUVs {
				if int(uvi)*2+1 >= len(m.UVs[iChannel]) {
					return nil, errors.Errorf("Channel %d uv index %d out of range", iChannel, uvi)
				}
				uvs[i] = [2]float32{m.UVs[iChannel][uvi*2], m.UVs[iChannel][uvi*2+1]}
			}
			vs.uvs = append(vs.uvs, uvs)
		}
		return vs, nil
	}

	vs.positions = make([][3]float32, vertexCount)
	for i := range vs.positions {
		copy(vs.positions[i][:], m.Vertices[i*3:i*3+3])
	}
	vs.indices = m.Faces
	for _, channel := range m.UVs {
		if len(channel) != vertexCount*2 {
			continue
		}
		uvs := make([][2]float32, vertexCount)
		for i := range uvs {
			uvs[i] = [2]float32{channel[i*2], channel[i*2+1]}
		}
		vs.uvs = append(vs.uvs, uvs)
	}

	if m.Skinned() {
		vs.joints = make([][4]uint16, vertexCount)
		vs.weights = make([][4]float32, vertexCount)
		for i := 0; i < vertexCount; i++ {
			for k := 0; k < 2; k++ {
				if w := m.SkinWeights[i*2+k]; w != 0 {
					vs.joints[i][k] = uint16(m.SkinIndices[i*2+k])
					vs.weights[i][k] = w
				}
			}
		}
	}
	return vs, nil
}

func exportMaterial(mat *Material) *gltf.Material {
	color := &[4]float32{mat.Color[0], mat.Color[1], mat.Color[2], mat.Opacity}
	gm := &gltf.Material{
		Name:        mat.Name,
		DoubleSided: mat.DoubleSided,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: color,
		},
	}
	if mat.Transparent {
		gm.AlphaMode = gltf.AlphaBlend
	}
	return gm
}

func boneQuat(r [4]float32) mgl32.Quat {
	q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	if q.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}

// exportSkeleton adds one node per bone and returns node indices by bone.
func (m *Model) exportSkeleton(doc *gltf.Document) ([]uint32, uint32) {
	nodes := make([]uint32, len(m.Bones))
	world := make([]mgl32.Mat4, len(m.Bones))
	inverse := make([]mgl32.Mat4, len(m.Bones))

	for i, b := range m.Bones {
		q := boneQuat(b.Rotation)
		local := mgl32.Translate3D(b.Position[0], b.Position[1], b.Position[2]).Mul4(q.Mat4())
		if b.Parent >= 0 && b.Parent < i {
			world[i] = world[b.Parent].Mul4(local)
		} else {
			world[i] = local
		}
		inverse[i] = world[i].Inv()

		rotation := [4]float32{q.V[0], q.V[1], q.V[2], q.W}
		nodes[i] = uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        b.Name,
			Translation: b.Position,
			Rotation:    rotation,
			Scale:       [3]float32{1, 1, 1},
		})
	}
	for i, b := range m.Bones {
		if b.Parent >= 0 && b.Parent < i {
			parent := doc.Nodes[nodes[b.Parent]]
			parent.Children = append(parent.Children, nodes[i])
		}
	}

	doc.Skins = append(doc.Skins, &gltf.Skin{
		Name:                m.Name + "_skin",
		Joints:              nodes,
		InverseBindMatrices: gltf.Index(gltfutils.WriteMatrices(doc, inverse)),
	})
	return nodes, uint32(len(doc.Skins) - 1)
}

func exportAnimation(doc *gltf.Document, name string, tracks []Track, boneNodes []uint32) {
	ga := &gltf.Animation{Name: name}

	for _, t := range tracks {
		if len(t.Keys) == 0 || t.Joint < 0 || t.Joint >= len(boneNodes) {
			continue
		}
		times := make([]float32, len(t.Keys))
		translations := make([][3]float32, len(t.Keys))
		rotations := make([][4]float32, len(t.Keys))
		for i, k := range t.Keys {
			times[i] = k.Time / 1000
			translations[i] = k.Position
			q := boneQuat(k.Rotation)
			rotations[i] = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
		}

		input := modeler.WriteAccessor(doc, gltf.TargetNone, times)
		for _, out := range []struct {
			path gltf.TRSProperty
			data interface{}
		}{
			{gltf.TRSTranslation, translations},
			{gltf.TRSRotation, rotations},
		} {
			ga.Samplers = append(ga.Samplers, &gltf.AnimationSampler{
				Input:         gltf.Index(input),
				Output:        gltf.Index(modeler.WriteAccessor(doc, gltf.TargetNone, out.data)),
				Interpolation: gltf.InterpolationLinear,
			})
			ga.Channels = append(ga.Channels, &gltf.Channel{
				Sampler: gltf.Index(uint32(len(ga.Samplers) - 1)),
				Target: gltf.ChannelTarget{
					Node: gltf.Index(boneNodes[t.Joint]),
					Path: out.path,
				},
			})
		}
	}

	if len(ga.Channels) != 0 {
		doc.Animations = append(doc.Animations, ga)
	}
}

func (m *Model) ExportGLTF() (*gltf.Document, error) {
	vs, err := m.vertexStream()
	if err != nil {
		return nil, errors.Wrapf(err, "Model '%s'", m.Name)
	}

	doc := gltf.NewDocument()

	attributes := make(map[string]uint32)
	attributes["POSITION"] = modeler.WritePosition(doc, vs.positions)
	for iLayer, uvs := range vs.uvs {
		attributes[fmt.Sprintf("TEXCOORD_%d", iLayer)] = modeler.WriteTextureCoord(doc, uvs)
	}
	if vs.joints != nil {
		attributes["JOINTS_0"] = modeler.WriteJoints(doc, vs.joints)
		attributes["WEIGHTS_0"] = modeler.WriteWeights(doc, vs.weights)
	}

	for i := range m.Materials {
		doc.Materials = append(doc.Materials, exportMaterial(&m.Materials[i]))
	}
	if len(doc.Materials) == 0 {
		doc.Materials = append(doc.Materials, &gltf.Material{Name: "default", DoubleSided: true})
	}

	// one primitive per material, faces keep their order inside it
	perMaterial := make([][]uint32, len(doc.Materials))
	for iFace := 0; iFace*3+2 < len(vs.indices); iFace++ {
		mat := 0
		if iFace < len(m.FaceMaterials) {
			mat = m.FaceMaterials[iFace]
		}
		if mat < 0 || mat >= len(perMaterial) {
			return nil, errors.Errorf("Model '%s' face %d material %d out of range", m.Name, iFace, mat)
		}
		perMaterial[mat] = append(perMaterial[mat], vs.indices[iFace*3:iFace*3+3]...)
	}

	mesh := &gltf.Mesh{Name: m.Name}
	for iMat, indices := range perMaterial {
		if len(indices) == 0 {
			continue
		}
		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
			Attributes: attributes,
			Material:   gltf.Index(uint32(iMat)),
		})
	}
	doc.Meshes = append(doc.Meshes, mesh)

	meshNode := &gltf.Node{Name: m.Name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))}

	if vs.joints != nil {
		boneNodes, skin := m.exportSkeleton(doc)
		meshNode.Skin = gltf.Index(skin)

		for i := range m.Animations {
			a := &m.Animations[i]
			exportAnimation(doc, a.Name, a.Tracks, boneNodes)
			exportAnimation(doc, a.Name+lockedAnimationSuffix, a.LockedTracks, boneNodes)
		}
	}
	doc.Nodes = append(doc.Nodes, meshNode)

	return doc, nil
}

func (m *Model) WriteGLB(w io.Writer) error {
	doc, err := m.ExportGLTF()
	if err != nil {
		return err
	}
	return gltfutils.ExportBinary(w, doc)
}
