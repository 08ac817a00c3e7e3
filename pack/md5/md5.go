// Package md5 decodes text skeletal meshes (.md5mesh) and animations
// (.md5anim), binds mesh vertices to the joint hierarchy and turns animation
// frames into per joint keyframe tracks.
package md5

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/model_browser/pack"
	"github.com/mogaika/model_browser/utils"
)

const DefaultFrameRate = 24

type Joint struct {
	Name        string
	Parent      int
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

type Vertex struct {
	UV          mgl32.Vec2
	WeightStart int
	WeightCount int
}

type Weight struct {
	Joint    int
	Bias     float32
	Position mgl32.Vec3
}

type Mesh struct {
	Shader    string
	Vertices  []Vertex
	Triangles [][3]uint32
	Weights   []Weight
}

type MeshFile struct {
	Joints []Joint
	Meshes []*Mesh
}

// Channel flags of a hierarchy entry, in the order their values follow
// each other in a frame.
const (
	FLAG_POS_X = 1 << iota
	FLAG_POS_Y
	FLAG_POS_Z
	FLAG_ORIENT_X
	FLAG_ORIENT_Y
	FLAG_ORIENT_Z
)

type HierarchyEntry struct {
	Name       string
	Parent     int
	Flags      int
	StartIndex int
}

type BaseFrameJoint struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

type Frame struct {
	Index  int
	Values []float32
}

type AnimFile struct {
	FrameRate float32
	NumFrames int
	Hierarchy []HierarchyEntry
	BaseFrame []BaseFrameJoint
	// sorted by Index
	Frames []Frame
}

func (a *AnimFile) Frame(index int) (*Frame, bool) {
	i := sort.Search(len(a.Frames), func(i int) bool { return a.Frames[i].Index >= index })
	if i < len(a.Frames) && a.Frames[i].Index == index {
		return &a.Frames[i], true
	}
	return nil, false
}

type BoneTransform struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

func IdentityTransform() BoneTransform {
	return BoneTransform{Orientation: mgl32.QuatIdent()}
}

func init() {
	pack.SetHandler(".MD5MESH", func(name string, data []byte, exlog *utils.Logger) (interface{}, error) {
		return ParseMesh(data)
	})
	pack.SetHandler(".MD5ANIM", func(name string, data []byte, exlog *utils.Logger) (interface{}, error) {
		return ParseAnim(data)
	})
}
