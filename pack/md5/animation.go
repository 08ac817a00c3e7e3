package md5

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/utils"
)

type Keyframe struct {
	// milliseconds
	Time     float32
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

type JointTrack struct {
	Joint int
	Name  string
	Keys  []Keyframe
}

type Animation struct {
	Name      string
	FrameRate float32
	Frames    int
	Tracks    []JointTrack
	// same as Tracks with root joints held at the origin
	LockedTracks []JointTrack
}

// Length in milliseconds.
func (a *Animation) Length() float32 {
	return float32(a.Frames) * 1000 / a.FrameRate
}

func FrameTime(frameIndex int, frameRate float32) float32 {
	return float32(frameIndex) * (1000 / frameRate)
}

func validateAnim(anim *AnimFile) error {
	if len(anim.BaseFrame) != len(anim.Hierarchy) {
		return asseterr.Truncated("baseframe has %d joints, hierarchy has %d",
			len(anim.BaseFrame), len(anim.Hierarchy))
	}
	return nil
}

// FrameTransforms returns the local transform of every joint at a frame:
// baseframe values overridden by the channels the joint flags select.
func FrameTransforms(anim *AnimFile, frameIndex int) ([]BoneTransform, error) {
	if err := validateAnim(anim); err != nil {
		return nil, err
	}
	frame, ok := anim.Frame(frameIndex)
	if !ok {
		return nil, asseterr.MissingReference("frame %d", frameIndex)
	}
	return frameTransforms(anim, frame)
}

func frameTransforms(anim *AnimFile, frame *Frame) ([]BoneTransform, error) {
	result := make([]BoneTransform, len(anim.Hierarchy))
	for iJoint, h := range anim.Hierarchy {
		base := anim.BaseFrame[iJoint]
		pos := base.Position
		orient := base.Orientation.V

		components := [6]*float32{&pos[0], &pos[1], &pos[2], &orient[0], &orient[1], &orient[2]}
		k := 0
		for bit, dst := range components {
			if h.Flags&(1<<uint(bit)) == 0 {
				continue
			}
			idx := h.StartIndex + k
			if idx < 0 || idx >= len(frame.Values) {
				return nil, asseterr.Truncated("frame %d joint %d %q value %d, frame has %d values",
					frame.Index, iJoint, h.Name, idx, len(frame.Values))
			}
			*dst = frame.Values[idx]
			k++
		}

		result[iJoint] = BoneTransform{
			Position:    pos,
			Orientation: utils.QuatFromXYZ(orient[0], orient[1], orient[2]),
		}
	}
	return result, nil
}

func ComposeAnimation(name string, anim *AnimFile) (*Animation, error) {
	if err := validateAnim(anim); err != nil {
		return nil, err
	}

	a := &Animation{
		Name:         name,
		FrameRate:    anim.FrameRate,
		Frames:       len(anim.Frames),
		Tracks:       make([]JointTrack, len(anim.Hierarchy)),
		LockedTracks: make([]JointTrack, len(anim.Hierarchy)),
	}
	if a.FrameRate <= 0 {
		a.FrameRate = DefaultFrameRate
	}

	for iJoint, h := range anim.Hierarchy {
		a.Tracks[iJoint] = JointTrack{Joint: iJoint, Name: h.Name, Keys: make([]Keyframe, 0, len(anim.Frames))}
		a.LockedTracks[iJoint] = JointTrack{Joint: iJoint, Name: h.Name, Keys: make([]Keyframe, 0, len(anim.Frames))}
	}

	for iFrame := range anim.Frames {
		frame := &anim.Frames[iFrame]
		transforms, err := frameTransforms(anim, frame)
		if err != nil {
			return nil, err
		}
		t := FrameTime(frame.Index, a.FrameRate)

		for iJoint, tr := range transforms {
			key := Keyframe{Time: t, Position: tr.Position, Rotation: tr.Orientation}
			a.Tracks[iJoint].Keys = append(a.Tracks[iJoint].Keys, key)

			if anim.Hierarchy[iJoint].Parent == -1 {
				key.Position = mgl32.Vec3{}
				key.Rotation = mgl32.QuatIdent()
			}
			a.LockedTracks[iJoint].Keys = append(a.LockedTracks[iJoint].Keys, key)
		}
	}

	return a, nil
}
