package lwo

import (
	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/utils"
)

// Geometry is the first layer of an object flattened for the renderer:
// y-up right handed axes, front faces kept front facing.
type Geometry struct {
	Vertices      []float32
	Faces         []uint32
	FaceMaterials []int

	UVNames []string
	UVs     [][]float32
	// per channel, one uv index per entry of Faces
	FaceUVs [][]uint32

	Materials []*Surface
	Warnings  []string `json:",omitempty"`
}

type uvChannel struct {
	name    string
	uvs     []float32
	indices []uint32
}

func (o *Object) Geometry(exlog *utils.Logger) (*Geometry, error) {
	if len(o.Layers) == 0 {
		return nil, asseterr.MissingLayer("object has no layers")
	}
	layer := o.Layers[0]
	g := &Geometry{}

	g.Vertices = make([]float32, 0, len(layer.Points)*3)
	for _, p := range layer.Points {
		g.Vertices = append(g.Vertices, p[0], p[2], -p[1])
	}

	g.Materials = o.materialTable(g, exlog)

	channels := make([]*uvChannel, 0)
	channelByName := make(map[string]*uvChannel)
	for _, vm := range layer.VertexMaps {
		ch, ok := channelByName[vm.Name]
		if !ok {
			ch = &uvChannel{
				name: vm.Name,
				uvs:  make([]float32, len(layer.Points)*2),
			}
			channelByName[vm.Name] = ch
			channels = append(channels, ch)
		}
		if !vm.PerPolygon {
			for i, point := range vm.Points {
				ch.uvs[point*2] = vm.UVs[i][0]
				ch.uvs[point*2+1] = vm.UVs[i][1]
			}
		}
	}

	g.Faces = make([]uint32, 0, len(layer.Polygons)*3)
	g.FaceMaterials = make([]int, 0, len(layer.Polygons))
	for iPoly := range layer.Polygons {
		poly := &layer.Polygons[iPoly]
		a, b, c := poly.Indices[0], poly.Indices[1], poly.Indices[2]
		corners := [3]uint32{c, b, a}
		g.Faces = append(g.Faces, corners[:]...)

		material := 0
		if poly.MaterialTag != MaterialUnassigned {
			if poly.MaterialTag >= len(g.Materials) {
				return nil, asseterr.MissingReference("polygon %d material tag %d, %d materials",
					iPoly, poly.MaterialTag, len(g.Materials))
			}
			material = poly.MaterialTag
		}
		g.FaceMaterials = append(g.FaceMaterials, material)

		for _, ch := range channels {
			overrides := poly.UVOverrides[ch.name]
			for _, corner := range corners {
				if uv, ok := overrides[corner]; ok {
					ch.uvs = append(ch.uvs, uv[0], uv[1])
					ch.indices = append(ch.indices, uint32(len(ch.uvs)/2-1))
				} else {
					// TODO: corners of polygons sharing a vertex alias the per point uv
					// slot here; split vertices once a model needs distinct seams
					ch.indices = append(ch.indices, corner)
				}
			}
		}
	}

	for _, ch := range channels {
		g.UVNames = append(g.UVNames, ch.name)
		g.UVs = append(g.UVs, ch.uvs)
		g.FaceUVs = append(g.FaceUVs, ch.indices)
	}

	return g, nil
}

// materialTable resolves every tag to a surface of the same name, in tag order.
func (o *Object) materialTable(g *Geometry, exlog *utils.Logger) []*Surface {
	if len(o.Tags) == 0 {
		return []*Surface{NewSurface("default")}
	}

	materials := make([]*Surface, len(o.Tags))
	for i, tag := range o.Tags {
		if s := o.Surface(tag); s != nil {
			materials[i] = s
		} else {
			msg := asseterr.Unresolved(tag)
			g.Warnings = append(g.Warnings, msg)
			exlog.Printf("[lwo] warning: %s, using default material", msg)
			materials[i] = NewSurface(tag)
		}
	}
	return materials
}
