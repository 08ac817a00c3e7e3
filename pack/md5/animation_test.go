package md5

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/model_browser/pack/asseterr"
)

func TestFrameTransformsChannelFlags(t *testing.T) {
	af, err := ParseAnim([]byte(testAnim))
	if err != nil {
		t.Fatal(err)
	}

	for _, frame := range af.Frames {
		tr, err := FrameTransforms(af, frame.Index)
		if err != nil {
			t.Fatal(err)
		}
		base := af.BaseFrame[0]
		// only pos.y is animated on the root
		if tr[0].Position[0] != base.Position[0] || tr[0].Position[2] != base.Position[2] {
			t.Errorf("frame %d root position=%v; x and z must stay %v", frame.Index, tr[0].Position, base.Position)
		}
		if tr[0].Position[1] != frame.Values[0] {
			t.Errorf("frame %d root pos.y=%v; expected %v", frame.Index, tr[0].Position[1], frame.Values[0])
		}
		if tr[0].Orientation != base.Orientation {
			t.Errorf("frame %d root orientation=%v; expected %v", frame.Index, tr[0].Orientation, base.Orientation)
		}
		if tr[1] != (BoneTransform{Position: af.BaseFrame[1].Position, Orientation: af.BaseFrame[1].Orientation}) {
			t.Errorf("frame %d arm=%+v; expected baseframe", frame.Index, tr[1])
		}
	}
}

func TestFrameTransformsCounter(t *testing.T) {
	af := &AnimFile{
		FrameRate: 24,
		Hierarchy: []HierarchyEntry{
			{Name: "root", Parent: -1, Flags: FLAG_POS_X | FLAG_POS_Z | FLAG_ORIENT_Y, StartIndex: 1},
		},
		BaseFrame: []BaseFrameJoint{{Position: mgl32.Vec3{9, 9, 9}, Orientation: mgl32.Quat{W: -1}}},
		Frames:    []Frame{{Index: 0, Values: []float32{100, 1, 2, 0.6}}},
	}
	tr, err := FrameTransforms(af, 0)
	if err != nil {
		t.Fatal(err)
	}
	if tr[0].Position != (mgl32.Vec3{1, 9, 2}) {
		t.Errorf("position=%v; expected [1 9 2]", tr[0].Position)
	}
	if tr[0].Orientation.V != (mgl32.Vec3{0, 0.6, 0}) || !near(tr[0].Orientation.W, -0.8) {
		t.Errorf("orientation=%v; expected y=0.6 w=-0.8", tr[0].Orientation)
	}

	af.Frames[0].Values = af.Frames[0].Values[:3]
	if _, err := FrameTransforms(af, 0); !asseterr.Is(err, asseterr.ErrTruncatedInput) {
		t.Errorf("short frame error=%v; expected truncated input", err)
	}
	if _, err := FrameTransforms(af, 5); !asseterr.Is(err, asseterr.ErrMissingReference) {
		t.Errorf("missing frame error=%v; expected missing reference", err)
	}
	af.BaseFrame = nil
	if _, err := FrameTransforms(af, 0); !asseterr.Is(err, asseterr.ErrTruncatedInput) {
		t.Errorf("baseframe mismatch error=%v; expected truncated input", err)
	}
}

func TestFrameTime(t *testing.T) {
	for _, tc := range []struct {
		frame int
		fps   float32
		ms    float32
	}{
		{0, 24, 0},
		{10, 24, 10 * 1000.0 / 24},
		{3, 30, 100},
	} {
		if ms := FrameTime(tc.frame, tc.fps); !near(ms/1000, tc.ms/1000) {
			t.Errorf("FrameTime(%d, %v)=%v; expected %v", tc.frame, tc.fps, ms, tc.ms)
		}
	}
}

func TestComposeAnimation(t *testing.T) {
	af, err := ParseAnim([]byte(testAnim))
	if err != nil {
		t.Fatal(err)
	}
	a, err := ComposeAnimation("idle", af)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "idle" || a.FrameRate != 24 || a.Frames != 2 {
		t.Errorf("animation=%s fps=%v frames=%d", a.Name, a.FrameRate, a.Frames)
	}
	if !near(a.Length()/1000, 2*1000.0/24/1000) {
		t.Errorf("Length()=%v", a.Length())
	}
	if len(a.Tracks) != 2 || len(a.LockedTracks) != 2 {
		t.Fatalf("tracks=%d locked=%d", len(a.Tracks), len(a.LockedTracks))
	}

	root := a.Tracks[0]
	if root.Name != "origin" || len(root.Keys) != 2 {
		t.Fatalf("root track=%+v", root)
	}
	if root.Keys[1].Position != (mgl32.Vec3{1, 7, 3}) || !near(root.Keys[1].Time, 1000.0/24) {
		t.Errorf("root key 1=%+v", root.Keys[1])
	}

	for _, key := range a.LockedTracks[0].Keys {
		if key.Position != (mgl32.Vec3{}) || key.Rotation != mgl32.QuatIdent() {
			t.Errorf("locked root key=%+v; expected identity", key)
		}
	}
	for i, key := range a.LockedTracks[1].Keys {
		if key != a.Tracks[1].Keys[i] {
			t.Errorf("locked arm key %d=%+v; expected %+v", i, key, a.Tracks[1].Keys[i])
		}
	}
}

func TestAnimFileFrame(t *testing.T) {
	af := &AnimFile{Frames: []Frame{{Index: 0}, {Index: 2}, {Index: 5}}}
	for _, tc := range []struct {
		index int
		found bool
	}{
		{0, true}, {1, false}, {2, true}, {5, true}, {6, false}, {-1, false},
	} {
		f, ok := af.Frame(tc.index)
		if ok != tc.found || (ok && f.Index != tc.index) {
			t.Errorf("Frame(%d)=%v,%v; expected found=%v", tc.index, f, ok, tc.found)
		}
	}
}

func TestComposeAnimationLong(t *testing.T) {
	const frames = 5000
	af := &AnimFile{
		FrameRate: 30,
		Hierarchy: []HierarchyEntry{{Name: "root", Parent: -1, Flags: FLAG_POS_X}},
		BaseFrame: []BaseFrameJoint{{Orientation: mgl32.QuatIdent()}},
		Frames:    make([]Frame, frames),
	}
	for i := range af.Frames {
		af.Frames[i] = Frame{Index: i, Values: []float32{float32(i)}}
	}

	a, err := ComposeAnimation("run", af)
	if err != nil {
		t.Fatal(err)
	}
	keys := a.Tracks[0].Keys
	if len(keys) != frames {
		t.Fatalf("keys=%d; expected %d", len(keys), frames)
	}
	if last := keys[frames-1]; last.Position[0] != frames-1 || !near(last.Time/1000, FrameTime(frames-1, 30)/1000) {
		t.Errorf("last key=%+v", last)
	}
}
