package lwo

import (
	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/pack/chunk"
	"github.com/mogaika/model_browser/utils"
)

const SUBCHUNK_HEADER_SIZE = 6

// scalar surface attributes, every one starts with a float32 (then an
// envelope index which is ignored)
var surfaceFloatAttributes = map[string]func(s *Surface) *float32{
	"TRAN": func(s *Surface) *float32 { return &s.Transparency },
	"DIFF": func(s *Surface) *float32 { return &s.Diffuse },
	"LUMI": func(s *Surface) *float32 { return &s.Luminosity },
	"SPEC": func(s *Surface) *float32 { return &s.Specular },
	"REFL": func(s *Surface) *float32 { return &s.Reflection },
	"GLOS": func(s *Surface) *float32 { return &s.Glossiness },
	"TRNL": func(s *Surface) *float32 { return &s.Translucency },
	"BUMP": func(s *Surface) *float32 { return &s.Bump },
	"SMAN": func(s *Surface) *float32 { return &s.SmoothingAngle },
	"RIND": func(s *Surface) *float32 { return &s.RefractiveIndex },
	"CLRH": func(s *Surface) *float32 { return &s.ColorHighlights },
	"CLRF": func(s *Surface) *float32 { return &s.ColorFilter },
	"ADTR": func(s *Surface) *float32 { return &s.AdditiveTransparency },
	"SHRP": func(s *Surface) *float32 { return &s.DiffuseSharpness },
}

func (p *parser) parseSurface(cr *chunk.Reader) error {
	name, n, err := readS0(cr, 0)
	if err != nil {
		return err
	}
	off := n
	source, n, err := readS0(cr, off)
	if err != nil {
		return err
	}
	off += n

	surf := NewSurface(name)
	surf.Source = source

	for off+SUBCHUNK_HEADER_SIZE <= cr.Len() {
		id, _ := cr.Tag(off)
		size, _ := cr.U16(off + 4)
		body := off + SUBCHUNK_HEADER_SIZE
		data, err := cr.Slice(body, int(size))
		if err != nil {
			return asseterr.Truncated("surface %q sub-chunk %q at 0x%x declares %d bytes", name, id, off, size)
		}
		if err := p.parseSurfaceAttribute(surf, id, chunk.NewReader(data)); err != nil {
			return err
		}
		off = body + int(size) + int(size&1)
	}

	if p.exlog != nil {
		p.exlog.Printf("[lwo] surface %q:\n%s", name, utils.SDump(surf))
	}
	p.obj.Surfaces = append(p.obj.Surfaces, surf)
	return nil
}

func (p *parser) parseSurfaceAttribute(surf *Surface, id string, sr *chunk.Reader) (err error) {
	if field, ok := surfaceFloatAttributes[id]; ok {
		*field(surf), err = sr.F32(0)
		return err
	}

	switch id {
	case "COLR":
		surf.Color, err = sr.ReadVec3(0)
	case "SIDE":
		surf.Sidedness, err = sr.U16(0)
	case "ALPH":
		if surf.AlphaMode, err = sr.U16(0); err == nil {
			surf.AlphaValue, err = sr.F32(2)
		}
	case "LINE":
		if surf.LineFlags, err = sr.U16(0); err == nil && sr.Len() >= 6 {
			surf.LineSize, err = sr.F32(2)
		}
	default:
		// texture blocks, image references and the rest of the optional attributes
		p.exlog.Printf("[lwo]   surface %q: ignoring sub-chunk %s (%d bytes)", surf.Name, id, sr.Len())
	}
	return err
}
