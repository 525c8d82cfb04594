package render

import (
	"image"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	gridExtent     = 5
	gridMinorStep  = 1
	gridMajorStep  = 5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
	skyboxScale    = 50
)

// background draws the environment panorama behind the scene. GPU resources are created on
// the first draw after the window/GL context exists.
type background struct {
	mesh      rl.Mesh
	mtl       rl.Material
	camPosLoc int32
	texLoc    int32
	loaded    bool
	failed    bool
}

// Equirectangular skybox shader: samples a 2D panorama by view direction, same mapping as the
// lit shader's environment lookups.
const (
	equirectVS = `#version 330
in vec3 vertexPosition;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragWorldPos;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragWorldPos = worldPos.xyz;
  gl_Position = matProjection * matView * worldPos;
}
`
	equirectFS = `#version 330
in vec3 fragWorldPos;
out vec4 finalColor;
uniform sampler2D skybox;
uniform vec3 cameraPosition;
void main() {
  vec3 dir = normalize(fragWorldPos - cameraPosition);
  float lon = atan(dir.z, dir.x);
  float lat = asin(clamp(dir.y, -1.0, 1.0));
  float u = lon / 6.28318530718 + 0.5;
  float v = 0.5 - lat / 3.14159265359;
  finalColor = texture(skybox, vec2(u, v));
}
`
)

func (b *background) ensureLoaded() bool {
	if b.loaded || b.failed {
		return b.loaded
	}
	shader := rl.LoadShaderFromMemory(equirectVS, equirectFS)
	if !rl.IsShaderValid(shader) {
		b.failed = true
		return false
	}
	b.mesh = rl.GenMeshCube(1, 1, 1)
	b.mtl = rl.LoadMaterialDefault()
	b.mtl.Shader = shader
	b.camPosLoc = rl.GetShaderLocation(shader, "cameraPosition")
	b.texLoc = rl.GetShaderLocation(shader, "skybox")
	b.loaded = true
	return true
}

// draw renders tex as a large cube centered on the camera, without writing depth.
// Must be called first inside BeginMode3D.
func (b *background) draw(camPos rl.Vector3, tex rl.Texture2D) {
	if !rl.IsTextureValid(tex) || !b.ensureLoaded() {
		return
	}
	rl.DisableDepthMask()
	rl.DisableBackfaceCulling()
	scale := rl.MatrixScale(skyboxScale, skyboxScale, skyboxScale)
	trans := rl.MatrixTranslate(camPos.X, camPos.Y, camPos.Z)
	if b.camPosLoc >= 0 {
		rl.SetShaderValueV(b.mtl.Shader, b.camPosLoc, []float32{camPos.X, camPos.Y, camPos.Z}, rl.ShaderUniformVec3, 1)
	}
	if b.texLoc >= 0 {
		rl.SetShaderValueTexture(b.mtl.Shader, b.texLoc, tex)
	}
	rl.DrawMesh(b.mesh, b.mtl, rl.MatrixMultiply(scale, trans))
	rl.EnableBackfaceCulling()
	rl.EnableDepthMask()
}

func (b *background) unload() {
	if !b.loaded {
		return
	}
	rl.UnloadShader(b.mtl.Shader)
	rl.UnloadMesh(&b.mesh)
	b.loaded = false
}

// uploadImage copies a Go image into a bilinear-filtered GPU texture.
func uploadImage(img image.Image) rl.Texture2D {
	rimg := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rimg)
	rl.UnloadImage(rimg)
	if rl.IsTextureValid(tex) {
		rl.SetTextureFilter(tex, rl.FilterBilinear)
	}
	return tex
}

// drawGrid draws a grid over the floor area with major/minor lines and axis lines.
// Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func drawGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	// Lift slightly off the floor plane so lines don't z-fight with it.
	const y = 0.002
	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), y, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), y, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), y, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), y, float32(z)
		rl.DrawLine3D(start, end, c)
	}

	// Axis lines through origin (X=red, Y=green, Z=blue)
	rl.DrawLine3D(rl.NewVector3(-gridExtent, y, 0), rl.NewVector3(gridExtent, y, 0), axisX)
	rl.DrawLine3D(rl.NewVector3(0, -gridExtent, 0), rl.NewVector3(0, gridExtent, 0), axisY)
	rl.DrawLine3D(rl.NewVector3(0, y, -gridExtent), rl.NewVector3(0, y, gridExtent), axisZ)
}
