package viewport

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// PointerState is one frame of pointer input. Delta is in pixels since the last frame.
type PointerState struct {
	Delta  rl.Vector2
	Rotate bool // primary button held
	Pan    bool // secondary button held
	Wheel  float32
}

// PointerInput supplies pointer state once per frame.
type PointerInput interface {
	Pointer() PointerState
}

const polarEps = 1e-6

// OrbitControls orbits a camera around Target on a sphere. With EnableDamping, input adds to
// a velocity that decays by DampingFactor each Update, so Update must run every frame for the
// motion to play out.
type OrbitControls struct {
	Camera *Camera
	Input  PointerInput
	Target rl.Vector3

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32
	PanSpeed      float32
	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float32
	MaxPolarAngle float32
	// ViewportHeight scales pointer pixels to angles; a full-height drag is one turn.
	ViewportHeight float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
	panOffset  rl.Vector3
}

// NewOrbitControls returns controls orbiting cam around the origin with unbounded distance and a full polar range.
func NewOrbitControls(cam *Camera, input PointerInput) *OrbitControls {
	return &OrbitControls{
		Camera:         cam,
		Input:          input,
		Target:         cam.Target,
		DampingFactor:  0.05,
		RotateSpeed:    1,
		ZoomSpeed:      1,
		PanSpeed:       1,
		MinDistance:    0,
		MaxDistance:    math32.Inf(1),
		MinPolarAngle:  0,
		MaxPolarAngle:  math32.Pi,
		ViewportHeight: 720,
		scale:          1,
	}
}

// RotateLeft queues a rotation about the up axis, in radians.
func (o *OrbitControls) RotateLeft(angle float32) {
	o.deltaTheta -= angle
}

// RotateUp queues a rotation toward the pole, in radians.
func (o *OrbitControls) RotateUp(angle float32) {
	o.deltaPhi -= angle
}

// Dolly scales the distance to the target by factor (<1 moves closer) on the next Update.
func (o *OrbitControls) Dolly(factor float32) {
	if factor > 0 {
		o.scale *= factor
	}
}

// Pan queues a move of camera and target in the view plane, in pixels.
func (o *OrbitControls) Pan(dx, dy float32) {
	offset := rl.Vector3Subtract(o.Camera.Position, o.Target)
	dist := rl.Vector3Length(offset) * math32.Tan(o.Camera.Fov*0.5*rl.Deg2rad)
	h := max(o.ViewportHeight, 1)

	forward := rl.Vector3Normalize(rl.Vector3Subtract(o.Target, o.Camera.Position))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, o.Camera.Up))
	up := rl.Vector3CrossProduct(right, forward)

	move := rl.Vector3Add(
		rl.Vector3Scale(right, -2*dx*dist/h*o.PanSpeed),
		rl.Vector3Scale(up, 2*dy*dist/h*o.PanSpeed),
	)
	o.panOffset = rl.Vector3Add(o.panOffset, move)
}

// HandleInput reads one frame of pointer input and queues the resulting motion.
func (o *OrbitControls) HandleInput() {
	if o.Input == nil {
		return
	}
	p := o.Input.Pointer()
	h := max(o.ViewportHeight, 1)
	if p.Rotate {
		o.RotateLeft(2 * math32.Pi * p.Delta.X / h * o.RotateSpeed)
		o.RotateUp(2 * math32.Pi * p.Delta.Y / h * o.RotateSpeed)
	}
	if p.Pan {
		o.Pan(p.Delta.X, p.Delta.Y)
	}
	if p.Wheel != 0 {
		step := math32.Pow(0.95, o.ZoomSpeed)
		if p.Wheel > 0 {
			o.Dolly(step)
		} else {
			o.Dolly(1 / step)
		}
	}
}

// Moving reports whether queued motion remains.
func (o *OrbitControls) Moving() bool {
	const eps = 1e-6
	return math32.Abs(o.deltaTheta) > eps || math32.Abs(o.deltaPhi) > eps ||
		rl.Vector3Length(o.panOffset) > eps || math32.Abs(o.scale-1) > eps
}

// Update applies queued motion to the camera and looks at the target. Returns true if the
// camera moved.
func (o *OrbitControls) Update() bool {
	o.HandleInput()

	offset := rl.Vector3Subtract(o.Camera.Position, o.Target)
	radius := rl.Vector3Length(offset)
	theta := math32.Atan2(offset.X, offset.Z)
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(rl.Clamp(offset.Y/radius, -1, 1))
	}

	factor := float32(1)
	if o.EnableDamping {
		factor = o.DampingFactor
	}
	theta += o.deltaTheta * factor
	phi += o.deltaPhi * factor
	phi = rl.Clamp(phi, max(o.MinPolarAngle, polarEps), min(o.MaxPolarAngle, math32.Pi-polarEps))

	radius = rl.Clamp(radius*o.scale, o.MinDistance, o.MaxDistance)

	o.Target = rl.Vector3Add(o.Target, rl.Vector3Scale(o.panOffset, factor))

	sinPhi := math32.Sin(phi)
	next := rl.Vector3Add(o.Target, rl.NewVector3(
		radius*sinPhi*math32.Sin(theta),
		radius*math32.Cos(phi),
		radius*sinPhi*math32.Cos(theta),
	))
	moved := rl.Vector3Distance(next, o.Camera.Position) > 1e-6 || o.Camera.Target != o.Target
	o.Camera.Position = next
	o.Camera.Target = o.Target

	if o.EnableDamping {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
		o.panOffset = rl.Vector3Scale(o.panOffset, 1-o.DampingFactor)
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
		o.panOffset = rl.Vector3Zero()
	}
	o.scale = 1
	return moved
}
