package md5

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/model_browser/pack/asseterr"
)

// Influences kept per vertex.
const MaxInfluences = 2

type BindSkeleton struct {
	// bind pose vertex positions of every mesh, in mesh order
	Positions   []mgl32.Vec3
	UVs         []mgl32.Vec2
	SkinIndices [][MaxInfluences]int
	SkinWeights [][MaxInfluences]float32
	// local bind transform per joint
	Bones []BoneTransform
}

// WorldTransforms composes parent relative joint transforms root to leaf.
// Parents must precede their children.
func WorldTransforms(joints []Joint) ([]BoneTransform, error) {
	world := make([]BoneTransform, len(joints))
	for i, j := range joints {
		if j.Parent < 0 {
			world[i] = BoneTransform{Position: j.Position, Orientation: j.Orientation}
			continue
		}
		if j.Parent >= i {
			return nil, asseterr.MissingReference("joint %d %q parent %d", i, j.Name, j.Parent)
		}
		p := world[j.Parent]
		world[i] = BoneTransform{
			Position:    p.Position.Add(p.Orientation.Rotate(j.Position)),
			Orientation: p.Orientation.Mul(j.Orientation),
		}
	}
	return world, nil
}

// SelectInfluences keeps the two highest bias weights, earlier ones winning ties.
// Only a pruned set is renormalized.
func SelectInfluences(weights []Weight) (joints [MaxInfluences]int, biases [MaxInfluences]float32) {
	best, second := -1, -1
	for i := range weights {
		if best < 0 || weights[i].Bias > weights[best].Bias {
			second = best
			best = i
		} else if second < 0 || weights[i].Bias > weights[second].Bias {
			second = i
		}
	}

	if best >= 0 {
		joints[0], biases[0] = weights[best].Joint, weights[best].Bias
	}
	if second >= 0 {
		joints[1], biases[1] = weights[second].Joint, weights[second].Bias
	}

	if len(weights) > MaxInfluences {
		if sum := biases[0] + biases[1]; sum > 0 {
			biases[0] /= sum
			biases[1] /= sum
		}
	}
	return
}

func BindPose(mesh *MeshFile, anim *AnimFile) (*BindSkeleton, error) {
	world, err := WorldTransforms(mesh.Joints)
	if err != nil {
		return nil, err
	}

	bs := &BindSkeleton{}

	if anim != nil {
		if len(anim.Hierarchy) != len(mesh.Joints) {
			return nil, asseterr.MissingReference("animation has %d joints, mesh has %d",
				len(anim.Hierarchy), len(mesh.Joints))
		}
		if bs.Bones, err = FrameTransforms(anim, 0); err != nil {
			return nil, err
		}
	} else {
		bs.Bones = make([]BoneTransform, len(mesh.Joints))
		for i := range bs.Bones {
			bs.Bones[i] = IdentityTransform()
		}
	}

	for iMesh, m := range mesh.Meshes {
		for iVertex, v := range m.Vertices {
			if v.WeightCount <= 0 {
				return nil, asseterr.MissingReference("mesh %d vertex %d has no weights", iMesh, iVertex)
			}
			if v.WeightStart < 0 || v.WeightStart+v.WeightCount > len(m.Weights) {
				return nil, asseterr.MissingReference("mesh %d vertex %d weights [%d:%d], %d weights",
					iMesh, iVertex, v.WeightStart, v.WeightStart+v.WeightCount, len(m.Weights))
			}
			weights := m.Weights[v.WeightStart : v.WeightStart+v.WeightCount]

			var pos mgl32.Vec3
			for _, w := range weights {
				if w.Joint < 0 || w.Joint >= len(world) {
					return nil, asseterr.MissingReference("mesh %d vertex %d weight joint %d, %d joints",
						iMesh, iVertex, w.Joint, len(world))
				}
				j := world[w.Joint]
				pos = pos.Add(j.Position.Add(j.Orientation.Rotate(w.Position)).Mul(w.Bias))
			}

			joints, biases := SelectInfluences(weights)
			bs.Positions = append(bs.Positions, pos)
			bs.UVs = append(bs.UVs, v.UV)
			bs.SkinIndices = append(bs.SkinIndices, joints)
			bs.SkinWeights = append(bs.SkinWeights, biases)
		}
	}

	return bs, nil
}
