package viewport

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Camera is a perspective camera. Aspect changes only take effect in Projection after
// UpdateProjection.
type Camera struct {
	Fov      float32 // vertical, degrees
	Near     float32
	Far      float32
	Aspect   float32
	Position rl.Vector3
	Target   rl.Vector3
	Up       rl.Vector3

	projection rl.Matrix
}

// NewCamera returns a camera looking at the origin from position with Y up.
func NewCamera(fov, aspect, near, far float32, position rl.Vector3) *Camera {
	c := &Camera{
		Fov:      fov,
		Near:     near,
		Far:      far,
		Aspect:   aspect,
		Position: position,
		Up:       rl.NewVector3(0, 1, 0),
	}
	c.UpdateProjection()
	return c
}

// UpdateProjection recomputes the cached projection matrix from Fov, Aspect, Near, Far: a
// symmetric OpenGL frustum mapping the view-space -Z axis into clip space.
// raymath's MatrixPerspective is not used since MatrixFrustum skews off-centre.
func (c *Camera) UpdateProjection() {
	f := 1 / math32.Tan(c.Fov*rl.Deg2rad/2)
	var m rl.Matrix
	m.M0 = f / c.Aspect
	m.M5 = f
	m.M10 = (c.Far + c.Near) / (c.Near - c.Far)
	m.M11 = -1
	m.M14 = 2 * c.Far * c.Near / (c.Near - c.Far)
	c.projection = m
}

// Projection returns the matrix from the last UpdateProjection.
func (c *Camera) Projection() rl.Matrix {
	return c.projection
}

// View returns the look-at view matrix, laid out for Vector3Transform (the camera looks down
// its -Z axis).
func (c *Camera) View() rl.Matrix {
	z := rl.Vector3Normalize(rl.Vector3Subtract(c.Position, c.Target))
	x := rl.Vector3Normalize(rl.Vector3CrossProduct(c.Up, z))
	y := rl.Vector3CrossProduct(z, x)
	m := rl.MatrixIdentity()
	m.M0, m.M4, m.M8 = x.X, x.Y, x.Z
	m.M1, m.M5, m.M9 = y.X, y.Y, y.Z
	m.M2, m.M6, m.M10 = z.X, z.Y, z.Z
	m.M12 = -rl.Vector3DotProduct(x, c.Position)
	m.M13 = -rl.Vector3DotProduct(y, c.Position)
	m.M14 = -rl.Vector3DotProduct(z, c.Position)
	return m
}

// NDC projects a world-space point to normalized device coordinates.
func (c *Camera) NDC(p rl.Vector3) rl.Vector3 {
	v := rl.Vector3Transform(p, c.View())
	m := c.projection
	w := m.M3*v.X + m.M7*v.Y + m.M11*v.Z + m.M15
	clip := rl.Vector3Transform(v, m)
	return rl.NewVector3(clip.X/w, clip.Y/w, clip.Z/w)
}

// Raylib converts to the camera type raylib's BeginMode3D takes. raylib derives the aspect
// from the current render size itself.
func (c *Camera) Raylib() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position,
		Target:     c.Target,
		Up:         c.Up,
		Fovy:       c.Fov,
		Projection: rl.CameraPerspective,
	}
}

// Surface is the drawing target size: logical size times pixel ratio gives the pixel size.
type Surface struct {
	Width, Height int
	PixelRatio    float32
}

// PixelSize returns the framebuffer size in device pixels.
func (s Surface) PixelSize() (int, int) {
	return int(float32(s.Width) * s.PixelRatio), int(float32(s.Height) * s.PixelRatio)
}

// Viewport keeps the camera aspect and the surface size in step.
type Viewport struct {
	Camera        *Camera
	Surface       Surface
	MaxPixelRatio float32
}

// New returns a viewport sized to w×h at the given device pixel ratio. The camera's aspect is
// set from the size.
func New(cam *Camera, w, h int, devicePixelRatio, maxPixelRatio float32) *Viewport {
	v := &Viewport{Camera: cam, MaxPixelRatio: maxPixelRatio}
	v.Resize(w, h, devicePixelRatio)
	return v
}

// Resize sets the camera aspect to w/h, updates its projection, and sets the surface size and
// pixel ratio (capped at MaxPixelRatio). Both happen together so the next render never sees a
// camera and surface that disagree. Non-positive sizes are ignored (minimized window).
func (v *Viewport) Resize(w, h int, devicePixelRatio float32) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	ratio := devicePixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	if v.MaxPixelRatio > 0 {
		ratio = min(ratio, v.MaxPixelRatio)
	}
	v.Camera.Aspect = float32(w) / float32(h)
	v.Camera.UpdateProjection()
	v.Surface = Surface{Width: w, Height: h, PixelRatio: ratio}
	return true
}
