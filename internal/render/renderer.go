// Package render draws the scene with raylib: floor and noodle meshes through the lit shader,
// into an offscreen target sized by the pixel ratio, then onto the window.
package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"noodle-demo/internal/asset"
	"noodle-demo/internal/config"
	"noodle-demo/internal/envmap"
	"noodle-demo/internal/logger"
	"noodle-demo/internal/primitives"
	"noodle-demo/internal/scene"
	"noodle-demo/internal/viewport"
)

// Settings are the renderer's fixed output options.
type Settings struct {
	Antialias       bool
	ToneMapping     primitives.ToneMapping
	Exposure        float32
	OutputSRGB      bool
	Background      rl.Color
	ShowEnvironment bool
	ShowGrid        bool
	ShowBody        bool
}

// SettingsFrom maps the config sections the renderer reads.
func SettingsFrom(cfg config.Demo) Settings {
	g := cfg.Renderer.BackgroundGray
	return Settings{
		Antialias:       cfg.Window.Antialias,
		ToneMapping:     primitives.ParseToneMapping(cfg.Renderer.ToneMapping),
		Exposure:        cfg.Renderer.Exposure,
		OutputSRGB:      cfg.Renderer.OutputSRGB,
		Background:      rl.NewColor(g, g, g, 255),
		ShowEnvironment: cfg.Renderer.ShowEnvironment,
		ShowGrid:        cfg.Debug.ShowGrid,
		ShowBody:        cfg.Debug.ShowBody,
	}
}

// Renderer owns GPU resources for one window. All methods must run on the thread that opened
// the window. Resources are created lazily inside Render, after the GL context exists.
type Renderer struct {
	Settings Settings
	Log      *logger.Logger
	// Overlay, when set, draws 2D content on top of the frame (debug text).
	Overlay func()
	// Body, when set and ShowBody is on, is drawn as a translucent sphere marker.
	Body func() (center rl.Vector3, radius float32)

	prims *primitives.Registry

	width, height int
	pixelRatio    float32

	target       rl.RenderTexture2D
	targetW      int32
	targetH      int32
	targetLoaded bool

	env           envmap.Map
	envPending    bool
	envRadiance   rl.Texture2D
	envIrradiance rl.Texture2D

	asset       *asset.Result
	model       *model
	modelFailed string

	sky background
}

// New returns a renderer drawing at w×h logical pixels.
func New(s Settings, w, h int, log *logger.Logger) *Renderer {
	return &Renderer{
		Settings:   s,
		Log:        log,
		prims:      primitives.NewRegistry(),
		width:      w,
		height:     h,
		pixelRatio: 1,
	}
}

// SetSize sets the logical output size. The offscreen target follows on the next Render.
func (r *Renderer) SetSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	r.width, r.height = w, h
}

// SetPixelRatio sets how many target pixels back one logical pixel.
func (r *Renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 {
		ratio = 1
	}
	r.pixelRatio = ratio
}

// Size returns the logical size and pixel ratio.
func (r *Renderer) Size() (int, int, float32) {
	return r.width, r.height, r.pixelRatio
}

// SetEnvironment queues the environment map for upload on the next Render.
func (r *Renderer) SetEnvironment(m envmap.Map) {
	r.env = m
	r.envPending = m.Radiance != nil && m.Irradiance != nil
}

// SetAsset queues the loaded asset's geometry for loading on the next Render. A failed result
// clears the model.
func (r *Renderer) SetAsset(res asset.Result) {
	if r.model != nil {
		r.model.unload()
		r.model = nil
	}
	r.modelFailed = ""
	if res.Err != nil || res.Path == "" {
		r.asset = nil
		return
	}
	r.asset = &res
}

// TargetSize returns the offscreen target dimensions for a logical size and pixel ratio.
func TargetSize(w, h int, ratio float32) (int32, int32) {
	if ratio <= 0 {
		ratio = 1
	}
	tw := int32(float32(w) * ratio)
	th := int32(float32(h) * ratio)
	return max(tw, 1), max(th, 1)
}

// Lighting derives the frame's shader lighting from the scene lights and camera.
func Lighting(s *scene.Scene, cam *viewport.Camera, settings Settings) primitives.Lighting {
	l := primitives.DefaultLighting()
	l.ViewPos = cam.Position
	l.LightDir = s.Directional.Direction()
	l.LightColor = scaled(s.Directional.Color, s.Directional.Intensity)
	l.Ambient = scaled(s.Ambient.Color, s.Ambient.Intensity)
	l.Exposure = settings.Exposure
	l.ToneMapping = settings.ToneMapping
	l.OutputSRGB = settings.OutputSRGB
	return l
}

func scaled(c rl.Color, intensity float32) [3]float32 {
	return [3]float32{
		float32(c.R) / 255 * intensity,
		float32(c.G) / 255 * intensity,
		float32(c.B) / 255 * intensity,
	}
}

// FloorTransform maps raylib's XZ unit plane onto the floor node. The node carries the -π/2
// X rotation that lays an XY plane flat, so the mesh is first stood up into XY.
func FloorTransform(f *scene.Floor) rl.Matrix {
	size := rl.MatrixScale(f.Width, 1, f.Depth)
	standUp := scene.RotationXYZ(rl.NewVector3(rl.Pi*0.5, 0, 0))
	return rl.MatrixMultiply(rl.MatrixMultiply(size, standUp), f.Node.WorldMatrix())
}

// Render draws one frame of s seen from cam.
func (r *Renderer) Render(s *scene.Scene, cam *viewport.Camera) {
	r.ensureTarget()
	r.ensureEnvironment()
	r.ensureModel()
	r.prims.SetLighting(Lighting(s, cam, r.Settings))

	rl.BeginTextureMode(r.target)
	rl.ClearBackground(r.Settings.Background)
	rl.BeginMode3D(cam.Raylib())
	// BeginMode3D clips at raylib's default planes; the camera carries its own near/far.
	rl.SetMatrixProjection(cam.Projection())
	if r.Settings.ShowEnvironment {
		r.sky.draw(cam.Position, r.envRadiance)
	}
	if r.Settings.ShowGrid {
		drawGrid()
	}
	if s.Floor != nil && s.Floor.Node.Visible {
		m := s.Floor.Material
		r.prims.Draw("plane", FloorTransform(s.Floor), primitives.Material{
			Color:     m.Color,
			Metalness: m.Metalness,
			Roughness: m.Roughness,
		})
	}
	if r.model != nil {
		r.model.draw(s, r.prims)
	}
	if r.Settings.ShowBody && r.Body != nil {
		center, radius := r.Body()
		d := 2 * radius
		r.prims.Draw("sphere", primitives.Transform(center, rl.NewVector3(d, d, d), rl.Vector3Zero()), primitives.Material{
			Color:     rl.NewColor(200, 60, 60, 255),
			Roughness: 0.6,
		})
	}
	rl.EndMode3D()
	rl.EndTextureMode()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	// Render textures are stored bottom-up; a negative source height flips them.
	src := rl.NewRectangle(0, 0, float32(r.targetW), -float32(r.targetH))
	dst := rl.NewRectangle(0, 0, float32(r.width), float32(r.height))
	rl.DrawTexturePro(r.target.Texture, src, dst, rl.NewVector2(0, 0), 0, rl.White)
	if r.Overlay != nil {
		r.Overlay()
	}
	rl.EndDrawing()
}

// ensureTarget (re)creates the offscreen target when the pixel size changed.
func (r *Renderer) ensureTarget() {
	tw, th := TargetSize(r.width, r.height, r.pixelRatio)
	if r.targetLoaded && tw == r.targetW && th == r.targetH {
		return
	}
	if r.targetLoaded {
		rl.UnloadRenderTexture(r.target)
	}
	r.target = rl.LoadRenderTexture(tw, th)
	r.targetW, r.targetH = tw, th
	r.targetLoaded = true
	if r.Settings.Antialias {
		rl.SetTextureFilter(r.target.Texture, rl.FilterBilinear)
	}
}

// ensureEnvironment uploads a pending environment map and rebinds every lit material to it.
func (r *Renderer) ensureEnvironment() {
	if !r.envPending {
		return
	}
	r.envPending = false
	if rl.IsTextureValid(r.envRadiance) {
		rl.UnloadTexture(r.envRadiance)
	}
	if rl.IsTextureValid(r.envIrradiance) {
		rl.UnloadTexture(r.envIrradiance)
	}
	r.envRadiance = uploadImage(r.env.Radiance)
	r.envIrradiance = uploadImage(r.env.Irradiance)
	r.prims.SetEnvironment(r.envRadiance, r.envIrradiance)
	if r.model != nil {
		r.model.rebind(r.prims)
	}
	r.infof("render: environment %dx%d uploaded", r.envRadiance.Width, r.envRadiance.Height)
}

// ensureModel loads the queued asset geometry once.
func (r *Renderer) ensureModel() {
	if r.asset == nil || r.model != nil || r.modelFailed == r.asset.Path {
		return
	}
	m, ok := loadModel(r.asset.Path, r.asset.Surfaces, r.prims)
	if !ok {
		r.modelFailed = r.asset.Path
		if r.Log != nil {
			r.Log.Errorf("render: no geometry loaded from %s", r.asset.Path)
		}
		return
	}
	if len(m.meshes) != r.asset.MeshCount && r.Log != nil {
		r.Log.Warnf("render: %s has %d meshes, node graph expects %d", r.asset.Path, len(m.meshes), r.asset.MeshCount)
	}
	r.model = m
	r.infof("render: loaded %s (%d meshes)", m.path, len(m.meshes))
}

// Unload releases every GPU resource. Call before the window closes.
func (r *Renderer) Unload() {
	if r.model != nil {
		r.model.unload()
		r.model = nil
	}
	r.sky.unload()
	if rl.IsTextureValid(r.envRadiance) {
		rl.UnloadTexture(r.envRadiance)
	}
	if rl.IsTextureValid(r.envIrradiance) {
		rl.UnloadTexture(r.envIrradiance)
	}
	if r.targetLoaded {
		rl.UnloadRenderTexture(r.target)
		r.targetLoaded = false
	}
	r.prims.Unload()
}

func (r *Renderer) infof(format string, args ...any) {
	if r.Log != nil {
		r.Log.Infof(format, args...)
	}
}
