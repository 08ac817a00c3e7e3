// Package model holds the renderer facing record every decoded asset ends
// up as, plus its loaders and exporters.
package model

const (
	BlendingNormal   = "normal"
	BlendingAdditive = "additive"
)

type Material struct {
	Name        string     `json:"name"`
	Color       [3]float32 `json:"color"`
	Opacity     float32    `json:"opacity"`
	Transparent bool       `json:"transparent"`
	Visible     bool       `json:"visible"`
	DoubleSided bool       `json:"doubleSided"`
	Blending    string     `json:"blending"`
}

func DefaultMaterial(name string) Material {
	return Material{
		Name:     name,
		Color:    [3]float32{1, 1, 1},
		Opacity:  1,
		Visible:  true,
		Blending: BlendingNormal,
	}
}

type Bone struct {
	Name     string     `json:"name"`
	Parent   int        `json:"parent"`
	Position [3]float32 `json:"position"`
	// x, y, z, w
	Rotation [4]float32 `json:"rotation"`
}

type Keyframe struct {
	// milliseconds
	Time     float32    `json:"time"`
	Position [3]float32 `json:"pos"`
	Rotation [4]float32 `json:"rot"`
}

type Track struct {
	Joint int        `json:"joint"`
	Name  string     `json:"name"`
	Keys  []Keyframe `json:"keys"`
}

type Animation struct {
	Name string `json:"name"`
	// milliseconds
	Length       float32 `json:"length"`
	FPS          float32 `json:"fps"`
	Tracks       []Track `json:"tracks"`
	LockedTracks []Track `json:"lockedTracks"`
}

type Model struct {
	Name string `json:"name"`

	Vertices      []float32 `json:"vertices"`
	Faces         []uint32  `json:"faces"`
	FaceMaterials []int     `json:"faceMaterials"`

	UVs     [][]float32 `json:"uvs"`
	FaceUVs [][]uint32  `json:"faceUvs,omitempty"`

	Materials []Material `json:"materials"`

	Bones       []Bone      `json:"bones,omitempty"`
	SkinIndices []int       `json:"skinIndices,omitempty"`
	SkinWeights []float32   `json:"skinWeights,omitempty"`
	Animations  []Animation `json:"animations,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

func (m *Model) VertexCount() int {
	return len(m.Vertices) / 3
}

func (m *Model) TriangleCount() int {
	return len(m.Faces) / 3
}

func (m *Model) Skinned() bool {
	return len(m.Bones) != 0 && len(m.SkinIndices) == m.VertexCount()*2
}

func (m *Model) Animation(name string) *Animation {
	for i := range m.Animations {
		if m.Animations[i].Name == name {
			return &m.Animations[i]
		}
	}
	return nil
}
