package viewport

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

type fakePointer struct {
	frames []PointerState
}

func (f *fakePointer) Pointer() PointerState {
	if len(f.frames) == 0 {
		return PointerState{}
	}
	p := f.frames[0]
	f.frames = f.frames[1:]
	return p
}

func newCam() *Camera {
	return NewCamera(45, 16.0/9.0, 0.1, 100, rl.NewVector3(3, 2, 0))
}

func TestResizeUpdatesCameraAndSurface(t *testing.T) {
	cam := newCam()
	v := New(cam, 1280, 720, 1, 2)

	cases := []struct {
		w, h      int
		dpr       float32
		wantRatio float32
	}{
		{800, 600, 1, 1},
		{1920, 1080, 1.5, 1.5},
		{2560, 1440, 3, 2},
		{300, 900, 0, 1},
	}
	for _, c := range cases {
		assert.True(t, v.Resize(c.w, c.h, c.dpr))
		assert.InDelta(t, float32(c.w)/float32(c.h), cam.Aspect, 1e-6)
		assert.Equal(t, c.w, v.Surface.Width)
		assert.Equal(t, c.h, v.Surface.Height)
		assert.Equal(t, c.wantRatio, v.Surface.PixelRatio)
		pw, ph := v.Surface.PixelSize()
		assert.Equal(t, int(float32(c.w)*c.wantRatio), pw)
		assert.Equal(t, int(float32(c.h)*c.wantRatio), ph)
		// Projection was refreshed with the new aspect.
		p := cam.Projection()
		assert.InDelta(t, p.M5/cam.Aspect, p.M0, 1e-4)
	}
}

func TestProjectionFrustum(t *testing.T) {
	cam := newCam()
	cot := 1 / math.Tan(22.5*math.Pi/180)
	p := cam.Projection()
	assert.InDelta(t, cot, p.M5, 1e-4)
	assert.InDelta(t, cot/(16.0/9.0), p.M0, 1e-4)
	assert.Zero(t, p.M8)
	assert.Zero(t, p.M9)

	// The view centre lands in the middle of the screen.
	centre := cam.NDC(cam.Target)
	assert.InDelta(t, 0, centre.X, 1e-5)
	assert.InDelta(t, 0, centre.Y, 1e-5)

	// From (3,2,0) toward the origin, a point 22.5° above the view axis sits on the top edge.
	fwd := rl.Vector3Normalize(rl.Vector3Subtract(cam.Target, cam.Position))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(fwd, cam.Up))
	up := rl.Vector3CrossProduct(right, fwd)
	d := float32(10)
	top := rl.Vector3Add(cam.Position, rl.Vector3Add(rl.Vector3Scale(fwd, d), rl.Vector3Scale(up, d*float32(math.Tan(22.5*math.Pi/180)))))
	edge := cam.NDC(top)
	assert.InDelta(t, 0, edge.X, 1e-4)
	assert.InDelta(t, 1, edge.Y, 1e-4)

	// Near and far planes map to -1 and 1.
	assert.InDelta(t, -1, cam.NDC(rl.Vector3Add(cam.Position, rl.Vector3Scale(fwd, 0.1))).Z, 1e-3)
	assert.InDelta(t, 1, cam.NDC(rl.Vector3Add(cam.Position, rl.Vector3Scale(fwd, 100))).Z, 1e-3)

	// Points to the camera's right go right on screen.
	assert.Greater(t, cam.NDC(rl.Vector3Add(cam.Target, right)).X, float32(0))
}

func TestResizeIgnoresEmpty(t *testing.T) {
	cam := newCam()
	v := New(cam, 1280, 720, 1, 2)
	assert.False(t, v.Resize(0, 720, 1))
	assert.Equal(t, 1280, v.Surface.Width)
	assert.InDelta(t, 1280.0/720.0, cam.Aspect, 1e-6)
}

func TestRaylibCamera(t *testing.T) {
	c := newCam().Raylib()
	assert.Equal(t, float32(45), c.Fovy)
	assert.Equal(t, rl.NewVector3(3, 2, 0), c.Position)
	assert.Equal(t, rl.CameraPerspective, c.Projection)
}

func TestOrbitKeepsDistance(t *testing.T) {
	cam := newCam()
	o := NewOrbitControls(cam, &fakePointer{frames: []PointerState{
		{Delta: rl.NewVector2(100, 0), Rotate: true},
	}})
	start := rl.Vector3Length(cam.Position)
	assert.True(t, o.Update())
	assert.InDelta(t, start, rl.Vector3Length(cam.Position), 1e-4)
	assert.NotEqual(t, rl.NewVector3(3, 2, 0), cam.Position)
}

func TestDampingNeedsUpdateEachFrame(t *testing.T) {
	cam := newCam()
	o := NewOrbitControls(cam, &fakePointer{frames: []PointerState{
		{Delta: rl.NewVector2(200, 0), Rotate: true},
	}})
	o.EnableDamping = true

	o.Update()
	first := cam.Position
	assert.True(t, o.Moving())

	// Without further Update calls the camera does not move on its own.
	assert.Equal(t, first, cam.Position)

	o.Update()
	second := cam.Position
	assert.NotEqual(t, first, second)

	for i := 0; i < 600; i++ {
		o.Update()
	}
	assert.False(t, o.Moving())
	settled := cam.Position
	o.Update()
	assert.InDelta(t, settled.X, cam.Position.X, 1e-4)
	assert.InDelta(t, settled.Z, cam.Position.Z, 1e-4)
}

func TestDampedMotionReachesUndampedAngle(t *testing.T) {
	undamped := newCam()
	o1 := NewOrbitControls(undamped, nil)
	o1.RotateLeft(0.5)
	o1.Update()

	damped := newCam()
	o2 := NewOrbitControls(damped, nil)
	o2.EnableDamping = true
	o2.RotateLeft(0.5)
	for i := 0; i < 1000; i++ {
		o2.Update()
	}
	assert.InDelta(t, undamped.Position.X, damped.Position.X, 1e-3)
	assert.InDelta(t, undamped.Position.Z, damped.Position.Z, 1e-3)
}

func TestPolarClamp(t *testing.T) {
	cam := newCam()
	o := NewOrbitControls(cam, nil)
	o.RotateUp(10)
	o.Update()
	assert.Greater(t, cam.Position.Y, float32(0))
	o.RotateUp(-20)
	o.Update()
	assert.Less(t, cam.Position.Y, float32(0))
	assert.InDelta(t, rl.Vector3Length(rl.NewVector3(3, 2, 0)), rl.Vector3Length(cam.Position), 1e-3)
}

func TestZoomAndDistanceLimits(t *testing.T) {
	cam := newCam()
	o := NewOrbitControls(cam, &fakePointer{frames: []PointerState{{Wheel: 1}, {Wheel: -1}}})
	start := rl.Vector3Length(cam.Position)

	o.Update()
	closer := rl.Vector3Length(cam.Position)
	assert.Less(t, closer, start)

	o.Update()
	assert.InDelta(t, start, rl.Vector3Length(cam.Position), 1e-3)

	o.MaxDistance = 5
	o.Dolly(10)
	o.Update()
	assert.InDelta(t, 5, rl.Vector3Length(cam.Position), 1e-4)
}

func TestPanMovesTarget(t *testing.T) {
	cam := newCam()
	o := NewOrbitControls(cam, &fakePointer{frames: []PointerState{{Delta: rl.NewVector2(50, 0), Pan: true}}})
	o.Update()
	assert.NotEqual(t, rl.Vector3Zero(), o.Target)
	assert.Equal(t, o.Target, cam.Target)
}
