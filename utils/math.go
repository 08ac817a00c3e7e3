package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// QuatFromXYZ rebuilds a unit quaternion stored as its vector part only.
// The scalar part always takes the negative root, |1-x²-y²-z²| guards
// against rounding pushing the sum slightly over one.
func QuatFromXYZ(x, y, z float32) mgl32.Quat {
	t := float64(1 - x*x - y*y - z*z)
	return mgl32.Quat{
		W: -float32(math.Sqrt(math.Abs(t))),
		V: mgl32.Vec3{x, y, z},
	}
}

// QuatToArray returns components in x, y, z, w order (glTF and JSON layout).
func QuatToArray(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

func Vec3sToFlat(vs []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}
