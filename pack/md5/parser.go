package md5

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/utils"
)

var (
	reJoints    = regexp.MustCompile(`(?s)\bjoints\s*\{(.*?)\}`)
	reMesh      = regexp.MustCompile(`(?s)\bmesh\s*\{(.*?)\}`)
	reFrameRate = regexp.MustCompile(`\bframeRate\s+([\+\-]?[0-9]*\.?[0-9]+)`)
	reNumFrames = regexp.MustCompile(`\bnumFrames\s+([0-9]+)`)
	reHierarchy = regexp.MustCompile(`(?s)\bhierarchy\s*\{(.*?)\}`)
	reBaseFrame = regexp.MustCompile(`(?s)\bbaseframe\s*\{(.*?)\}`)
	reFrame     = regexp.MustCompile(`(?s)\bframe\s+([0-9]+)\s*\{(.*?)\}`)
)

var (
	shapeJoint     = newShape(`S N ( N N N ) ( N N N )`)
	shapeShader    = newShape(`shader S`)
	shapeVert      = newShape(`vert N ( N N ) N N`)
	shapeTri       = newShape(`tri N N N N`)
	shapeWeight    = newShape(`weight N N N ( N N N )`)
	shapeHierarchy = newShape(`S N N N`)
	shapeBaseFrame = newShape(`( N N N ) ( N N N )`)
)

// matchLines tokenizes a block body and calls cb for every line of the given shape.
func matchLines(body []byte, s shape, cb func(c *captures) error) error {
	lines, err := tokenizeLines(body)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if c, ok := s.match(line); ok {
			if err := cb(c); err != nil {
				return errors.Wrapf(err, "line %d", line[0].Line)
			}
		}
	}
	return nil
}

func checkIndex(what string, index int) error {
	if index < 0 {
		return asseterr.MissingReference("negative %s index %d", what, index)
	}
	return nil
}

func ParseMesh(text []byte) (*MeshFile, error) {
	mf := &MeshFile{
		Joints: make([]Joint, 0),
		Meshes: make([]*Mesh, 0),
	}

	if m := reJoints.FindSubmatch(text); m != nil {
		if err := matchLines(m[1], shapeJoint, func(c *captures) error {
			parent := c.int(0)
			if parent < -1 || parent >= len(mf.Joints) {
				return asseterr.MissingReference("joint %q parent %d, joint index %d",
					c.strings[0], parent, len(mf.Joints))
			}
			mf.Joints = append(mf.Joints, Joint{
				Name:        c.strings[0],
				Parent:      parent,
				Position:    mgl32.Vec3{c.float(1), c.float(2), c.float(3)},
				Orientation: utils.QuatFromXYZ(c.float(4), c.float(5), c.float(6)),
			})
			return nil
		}); err != nil {
			return nil, errors.Wrapf(err, "joints")
		}
	}

	for iMesh, m := range reMesh.FindAllSubmatch(text, -1) {
		mesh, err := parseMeshBlock(m[1])
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %d", iMesh)
		}
		mf.Meshes = append(mf.Meshes, mesh)
	}

	return mf, nil
}

// placeIndex checks a declared element index against the number of lines of
// that kind in the block, so sparse or hostile indices can not size the slice.
func placeIndex(what string, index, lines int) error {
	if err := checkIndex(what, index); err != nil {
		return err
	}
	if index >= lines {
		return asseterr.MissingReference("%s index %d, block has %d %s lines", what, index, lines, what)
	}
	return nil
}

func parseMeshBlock(body []byte) (*Mesh, error) {
	mesh := &Mesh{}

	lines, err := tokenizeLines(body)
	if err != nil {
		return nil, err
	}

	var verts, tris, weights []*captures
	for _, line := range lines {
		if c, ok := shapeShader.match(line); ok {
			mesh.Shader = c.strings[0]
		} else if c, ok := shapeVert.match(line); ok {
			verts = append(verts, c)
		} else if c, ok := shapeTri.match(line); ok {
			tris = append(tris, c)
		} else if c, ok := shapeWeight.match(line); ok {
			weights = append(weights, c)
		}
	}

	mesh.Vertices = make([]Vertex, len(verts))
	for _, c := range verts {
		i := c.int(0)
		if err := placeIndex("vert", i, len(verts)); err != nil {
			return nil, err
		}
		mesh.Vertices[i] = Vertex{
			UV:          mgl32.Vec2{c.float(1), c.float(2)},
			WeightStart: c.int(3),
			WeightCount: c.int(4),
		}
	}

	mesh.Triangles = make([][3]uint32, len(tris))
	for _, c := range tris {
		i := c.int(0)
		if err := placeIndex("tri", i, len(tris)); err != nil {
			return nil, err
		}
		for j := 0; j < 3; j++ {
			if c.int(j+1) < 0 {
				return nil, asseterr.MissingReference("tri %d negative vertex index", i)
			}
			mesh.Triangles[i][j] = uint32(c.int(j + 1))
		}
	}

	mesh.Weights = make([]Weight, len(weights))
	for _, c := range weights {
		i := c.int(0)
		if err := placeIndex("weight", i, len(weights)); err != nil {
			return nil, err
		}
		mesh.Weights[i] = Weight{
			Joint:    c.int(1),
			Bias:     c.float(2),
			Position: mgl32.Vec3{c.float(3), c.float(4), c.float(5)},
		}
	}

	return mesh, nil
}

func ParseAnim(text []byte) (*AnimFile, error) {
	af := &AnimFile{
		FrameRate: DefaultFrameRate,
		Hierarchy: make([]HierarchyEntry, 0),
		BaseFrame: make([]BaseFrameJoint, 0),
		Frames:    make([]Frame, 0),
	}

	if m := reFrameRate.FindSubmatch(text); m != nil {
		if fps, err := strconv.ParseFloat(string(m[1]), 32); err == nil && fps > 0 {
			af.FrameRate = float32(fps)
		}
	}
	if m := reNumFrames.FindSubmatch(text); m != nil {
		af.NumFrames, _ = strconv.Atoi(string(m[1]))
	}

	if m := reHierarchy.FindSubmatch(text); m != nil {
		if err := matchLines(m[1], shapeHierarchy, func(c *captures) error {
			parent := c.int(0)
			if parent < -1 || parent >= len(af.Hierarchy) {
				return asseterr.MissingReference("hierarchy %q parent %d, joint index %d",
					c.strings[0], parent, len(af.Hierarchy))
			}
			af.Hierarchy = append(af.Hierarchy, HierarchyEntry{
				Name:       c.strings[0],
				Parent:     parent,
				Flags:      c.int(1),
				StartIndex: c.int(2),
			})
			return nil
		}); err != nil {
			return nil, errors.Wrapf(err, "hierarchy")
		}
	}

	if m := reBaseFrame.FindSubmatch(text); m != nil {
		if err := matchLines(m[1], shapeBaseFrame, func(c *captures) error {
			af.BaseFrame = append(af.BaseFrame, BaseFrameJoint{
				Position:    mgl32.Vec3{c.float(0), c.float(1), c.float(2)},
				Orientation: utils.QuatFromXYZ(c.float(3), c.float(4), c.float(5)),
			})
			return nil
		}); err != nil {
			return nil, errors.Wrapf(err, "baseframe")
		}
	}

	for _, m := range reFrame.FindAllSubmatch(text, -1) {
		index, err := strconv.Atoi(string(m[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "frame index %q", m[1])
		}
		values, err := numbers(m[2])
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", index)
		}
		af.Frames = append(af.Frames, Frame{Index: index, Values: values})
	}
	sort.SliceStable(af.Frames, func(i, j int) bool {
		return af.Frames[i].Index < af.Frames[j].Index
	})

	return af, nil
}

// Parse decodes both views of a text; blocks of the other kind are simply absent.
func Parse(text []byte) (*MeshFile, *AnimFile, error) {
	mesh, err := ParseMesh(text)
	if err != nil {
		return nil, nil, err
	}
	anim, err := ParseAnim(text)
	if err != nil {
		return nil, nil, err
	}
	return mesh, anim, nil
}
