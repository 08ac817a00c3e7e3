package lwo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/pack/chunk"
	"github.com/mogaika/model_browser/utils"
)

// parser holds the state of one NewFromData call.
type parser struct {
	r     *chunk.Reader
	exlog *utils.Logger
	obj   *Object

	layer *Layer
	// first polygon of the latest POLS chunk, PTAG and VMAD indices are relative to it
	polsStart   int
	polsSkipped bool
}

func NewFromData(buf []byte, exlog *utils.Logger) (*Object, error) {
	p := &parser{
		r:     chunk.NewReader(buf),
		exlog: exlog,
		obj:   &Object{},
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.obj, nil
}

func (p *parser) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.obj.Warnings = append(p.obj.Warnings, msg)
	p.exlog.Printf("[lwo] warning: %s", msg)
}

func (p *parser) parse() error {
	form, err := p.r.Tag(0)
	if err != nil {
		return err
	}
	if form != TAG_FORM {
		return asseterr.Unsupported("magic %q, expected %q", utils.DumpToOneLineString([]byte(form)), TAG_FORM)
	}
	formSize, err := p.r.U32(4)
	if err != nil {
		return err
	}
	kind, err := p.r.Tag(8)
	if err != nil {
		return err
	}
	if kind != TAG_LWO2 {
		return asseterr.Unsupported("form type %q, expected %q", utils.DumpToOneLineString([]byte(kind)), TAG_LWO2)
	}

	end := int64(8) + int64(formSize)
	if end > int64(p.r.Len()) {
		return asseterr.Truncated("FORM declares 0x%x bytes, buffer holds 0x%x", formSize, p.r.Len()-8)
	}
	if end < HEADER_SIZE {
		return asseterr.Truncated("FORM size 0x%x is smaller than its header", formSize)
	}

	p.exlog.Printf("[lwo] FORM %s size 0x%x", kind, formSize)

	for off := int64(HEADER_SIZE); off < end; {
		if off+CHUNK_HEADER_SIZE > end {
			return asseterr.Truncated("chunk header at 0x%x crosses FORM end 0x%x", off, end)
		}
		tag, _ := p.r.Tag(int(off))
		size, _ := p.r.U32(int(off) + 4)
		body := off + CHUNK_HEADER_SIZE
		if body+int64(size) > end {
			return asseterr.Truncated("chunk %q at 0x%x declares 0x%x bytes past FORM end 0x%x",
				utils.DumpToOneLineString([]byte(tag)), off, size, end)
		}

		data, _ := p.r.Slice(int(body), int(size))
		p.exlog.Printf("[lwo]  chunk %s at 0x%.8x size 0x%x", tag, off, size)

		if err := p.parseChunk(tag, chunk.NewReader(data)); err != nil {
			return errors.Wrapf(err, "chunk %s at 0x%x", tag, off)
		}

		off = body + int64(size) + int64(size&1)
	}

	return nil
}

func (p *parser) parseChunk(tag string, cr *chunk.Reader) error {
	switch tag {
	case TAG_TAGS:
		return p.parseTags(cr)
	case TAG_LAYR:
		return p.parseLayer(cr)
	case TAG_SURF:
		return p.parseSurface(cr)
	case TAG_PNTS, TAG_BBOX, TAG_VMAP, TAG_VMAD, TAG_POLS, TAG_PTAG:
		if p.layer == nil {
			return asseterr.MissingLayer("%s chunk before any LAYR", tag)
		}
	default:
		p.warn("skipping unknown chunk %q (%d bytes)", utils.DumpToOneLineString([]byte(tag)), cr.Len())
		return nil
	}

	switch tag {
	case TAG_PNTS:
		return p.parsePoints(cr)
	case TAG_BBOX:
		return p.parseBoundingBox(cr)
	case TAG_VMAP:
		return p.parseVertexMap(cr, false)
	case TAG_VMAD:
		return p.parseVertexMap(cr, true)
	case TAG_POLS:
		return p.parsePolygons(cr)
	default:
		return p.parsePolygonTags(cr)
	}
}

// readS0 reads a name field. An empty name still occupies its terminator
// and pad byte.
func readS0(cr *chunk.Reader, off int) (string, int, error) {
	s, n, err := cr.ReadCString(off)
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		n = 2
		if off+n > cr.Len() {
			n = cr.Len() - off
		}
	}
	return s, n, nil
}

func (p *parser) parseTags(cr *chunk.Reader) error {
	for off := 0; off < cr.Len(); {
		s, n, err := cr.ReadCString(off)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		p.obj.Tags = append(p.obj.Tags, s)
		off += n
	}
	return nil
}

func (p *parser) parseLayer(cr *chunk.Reader) error {
	number, err := cr.U16(0)
	if err != nil {
		return err
	}
	flags, err := cr.U16(2)
	if err != nil {
		return err
	}
	pivot, err := cr.ReadVec3(4)
	if err != nil {
		return err
	}
	name, n, err := readS0(cr, LAYR_PREAMBLE)
	if err != nil {
		return err
	}

	layer := &Layer{
		Number: number,
		Flags:  flags,
		Pivot:  pivot,
		Name:   name,
		Parent: -1,
	}
	if off := LAYR_PREAMBLE + n; off+2 <= cr.Len() {
		parent, _ := cr.I16(off)
		layer.Parent = int(parent)
	}

	p.obj.Layers = append(p.obj.Layers, layer)
	p.layer = layer
	p.polsStart = 0
	p.polsSkipped = false
	return nil
}

func (p *parser) parsePoints(cr *chunk.Reader) error {
	if cr.Len()%POINT_SIZE != 0 {
		return asseterr.Truncated("PNTS size %d is not a multiple of %d", cr.Len(), POINT_SIZE)
	}
	count := cr.Len() / POINT_SIZE
	points := make([]mgl32.Vec3, count)
	for i := range points {
		v, err := cr.ReadVec3(i * POINT_SIZE)
		if err != nil {
			return err
		}
		points[i] = v
	}
	p.layer.Points = append(p.layer.Points, points...)
	return nil
}

func (p *parser) parseBoundingBox(cr *chunk.Reader) error {
	min, err := cr.ReadVec3(0)
	if err != nil {
		return err
	}
	max, err := cr.ReadVec3(12)
	if err != nil {
		return err
	}
	p.layer.BBox = &BoundingBox{Min: min, Max: max}
	return nil
}

func (p *parser) polygonIndex(rel uint32) (int, error) {
	abs := p.polsStart + int(rel)
	if abs >= len(p.layer.Polygons) {
		return 0, asseterr.MissingReference("polygon %d, layer %q has %d polygons",
			abs, p.layer.Name, len(p.layer.Polygons))
	}
	return abs, nil
}

func (p *parser) parseVertexMap(cr *chunk.Reader, perPolygon bool) error {
	kind, err := cr.Tag(0)
	if err != nil {
		return err
	}
	dimension, err := cr.U16(4)
	if err != nil {
		return err
	}
	name, n, err := readS0(cr, 6)
	if err != nil {
		return err
	}

	if kind != VMAP_TXUV || dimension != 2 {
		p.warn("skipping vertex map %q of type %q with dimension %d", name, kind, dimension)
		return nil
	}
	if perPolygon && p.polsSkipped {
		p.warn("skipping per polygon map %q of an unsupported polygon chunk", name)
		return nil
	}

	vm := &VertexMap{
		Type:       kind,
		Name:       name,
		Dimension:  dimension,
		PerPolygon: perPolygon,
	}

	for off := 6 + n; off < cr.Len(); {
		point, w, err := cr.ReadIndex(off)
		if err != nil {
			return err
		}
		off += w
		if int(point) >= len(p.layer.Points) {
			return asseterr.MissingReference("map %q point %d, layer %q has %d points",
				name, point, p.layer.Name, len(p.layer.Points))
		}

		poly := -1
		if perPolygon {
			rel, w, err := cr.ReadIndex(off)
			if err != nil {
				return err
			}
			off += w
			if poly, err = p.polygonIndex(rel); err != nil {
				return errors.Wrapf(err, "map %q", name)
			}
		}

		u, err := cr.F32(off)
		if err != nil {
			return err
		}
		v, err := cr.F32(off + 4)
		if err != nil {
			return err
		}
		off += 8
		uv := mgl32.Vec2{u, v}

		vm.Points = append(vm.Points, point)
		vm.UVs = append(vm.UVs, uv)
		if perPolygon {
			vm.Polygons = append(vm.Polygons, uint32(poly))
			p.overrideCornerUV(name, poly, point, uv)
		}
	}

	p.layer.VertexMaps = append(p.layer.VertexMaps, vm)
	return nil
}

func (p *parser) overrideCornerUV(name string, poly int, point uint32, uv mgl32.Vec2) {
	polygon := &p.layer.Polygons[poly]
	if polygon.Indices[0] != point && polygon.Indices[1] != point && polygon.Indices[2] != point {
		p.warn("map %q: point %d is not a corner of polygon %d", name, point, poly)
		return
	}
	if polygon.UVOverrides == nil {
		polygon.UVOverrides = make(map[string]map[uint32]mgl32.Vec2)
	}
	corners := polygon.UVOverrides[name]
	if corners == nil {
		corners = make(map[uint32]mgl32.Vec2, 3)
		polygon.UVOverrides[name] = corners
	}
	corners[point] = uv
}

func (p *parser) parsePolygons(cr *chunk.Reader) error {
	kind, err := cr.Tag(0)
	if err != nil {
		return err
	}

	p.polsStart = len(p.layer.Polygons)
	if kind != POLS_FACE {
		p.polsSkipped = true
		p.warn("skipping %q polygons", kind)
		return nil
	}
	p.polsSkipped = false

	for off := 4; off < cr.Len(); {
		header, err := cr.U16(off)
		if err != nil {
			return err
		}
		off += 2

		count := header & polygonCountMask
		if count != 3 {
			return asseterr.Unsupported("polygon %d has %d vertices, only triangles are supported",
				len(p.layer.Polygons)-p.polsStart, count)
		}

		poly := Polygon{MaterialTag: MaterialUnassigned}
		for i := range poly.Indices {
			index, w, err := cr.ReadIndex(off)
			if err != nil {
				return err
			}
			off += w
			if int(index) >= len(p.layer.Points) {
				return asseterr.MissingReference("polygon %d point %d, layer %q has %d points",
					len(p.layer.Polygons)-p.polsStart, index, p.layer.Name, len(p.layer.Points))
			}
			poly.Indices[i] = index
		}
		p.layer.Polygons = append(p.layer.Polygons, poly)
	}
	return nil
}

func (p *parser) parsePolygonTags(cr *chunk.Reader) error {
	kind, err := cr.Tag(0)
	if err != nil {
		return err
	}
	if kind != PTAG_SURF {
		p.warn("skipping %q polygon tags", kind)
		return nil
	}
	if p.polsSkipped {
		p.warn("skipping surface tags of an unsupported polygon chunk")
		return nil
	}

	for off := 4; off < cr.Len(); {
		rel, w, err := cr.ReadIndex(off)
		if err != nil {
			return err
		}
		off += w
		tag, err := cr.U16(off)
		if err != nil {
			return err
		}
		off += 2

		poly, err := p.polygonIndex(rel)
		if err != nil {
			return err
		}
		if int(tag) >= len(p.obj.Tags) {
			return asseterr.MissingReference("polygon %d tag %d, %d tags declared", poly, tag, len(p.obj.Tags))
		}
		p.layer.Polygons[poly].MaterialTag = int(tag)
	}
	return nil
}
