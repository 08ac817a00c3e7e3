// Package lwo decodes LightWave object files (FORM/LWO2) into layers of
// triangles, UV maps and surfaces, and composes the first layer into flat
// renderer arrays.
package lwo

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/model_browser/pack"
	"github.com/mogaika/model_browser/utils"
)

const (
	TAG_FORM = "FORM"
	TAG_LWO2 = "LWO2"

	TAG_TAGS = "TAGS"
	TAG_LAYR = "LAYR"
	TAG_PNTS = "PNTS"
	TAG_BBOX = "BBOX"
	TAG_VMAP = "VMAP"
	TAG_VMAD = "VMAD"
	TAG_POLS = "POLS"
	TAG_PTAG = "PTAG"
	TAG_SURF = "SURF"

	// vertex map, polygon and polygon tag sub types
	VMAP_TXUV = "TXUV"
	POLS_FACE = "FACE"
	PTAG_SURF = "SURF"

	HEADER_SIZE       = 12
	CHUNK_HEADER_SIZE = 8
	LAYR_PREAMBLE     = 16
	POINT_SIZE        = 12

	polygonCountMask = 0x3ff

	MaterialUnassigned = -1
)

type BoundingBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

type Polygon struct {
	Indices [3]uint32
	// index into Object.Tags, MaterialUnassigned until a PTAG chunk says otherwise
	MaterialTag int
	// per corner UV from VMAD chunks: map name -> point index -> uv
	UVOverrides map[string]map[uint32]mgl32.Vec2 `json:",omitempty"`
}

type VertexMap struct {
	Type       string
	Name       string
	Dimension  uint16
	PerPolygon bool

	Points   []uint32
	Polygons []uint32 `json:",omitempty"`
	UVs      []mgl32.Vec2
}

type Layer struct {
	Number uint16
	Flags  uint16
	Pivot  mgl32.Vec3
	Name   string
	Parent int

	Points     []mgl32.Vec3
	BBox       *BoundingBox `json:",omitempty"`
	VertexMaps []*VertexMap
	Polygons   []Polygon
}

type Surface struct {
	Name   string
	Source string

	Color        mgl32.Vec3
	Transparency float32

	Diffuse              float32
	Luminosity           float32
	Specular             float32
	Reflection           float32
	Glossiness           float32
	Translucency         float32
	Bump                 float32
	SmoothingAngle       float32
	RefractiveIndex      float32
	ColorHighlights      float32
	ColorFilter          float32
	AdditiveTransparency float32
	DiffuseSharpness     float32
	Sidedness            uint16
	AlphaMode            uint16
	AlphaValue           float32
	LineFlags            uint16
	LineSize             float32
}

// DoubleSided reports the SIDE attribute "front and back".
func (s *Surface) DoubleSided() bool {
	return s.Sidedness&3 == 3
}

func NewSurface(name string) *Surface {
	return &Surface{
		Name:      name,
		Color:     mgl32.Vec3{0.784, 0.784, 0.784},
		Diffuse:   1,
		Sidedness: 1,
	}
}

// Object is the immutable result of one decode.
type Object struct {
	Tags     []string
	Layers   []*Layer
	Surfaces []*Surface
	Warnings []string `json:",omitempty"`
}

func (o *Object) Surface(name string) *Surface {
	for _, s := range o.Surfaces {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func init() {
	pack.SetHandler(".LWO", func(name string, data []byte, exlog *utils.Logger) (interface{}, error) {
		return NewFromData(data, exlog)
	})
}
