package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// cached holds mesh and material for a primitive type. Created lazily on first Draw.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Registry maps primitive type names to mesh+material and owns the lit shader shared with
// model meshes. Meshes and the shader are created on first use so that GPU resources are
// allocated after the window/OpenGL context exists.
type Registry struct {
	cache    map[string]cached
	shader   rl.Shader
	lighting Lighting

	envRadiance   rl.Texture2D
	envIrradiance rl.Texture2D
}

// NewRegistry returns a registry with no primitives.
func NewRegistry() *Registry {
	return &Registry{
		cache:    make(map[string]cached),
		lighting: DefaultLighting(),
	}
}

// SetLighting sets the frame's camera position, light, and output settings. Call once per
// frame before drawing.
func (r *Registry) SetLighting(l Lighting) {
	r.lighting = l
}

// Lighting returns the current frame lighting.
func (r *Registry) Lighting() Lighting {
	return r.lighting
}

// SetEnvironment sets the equirect radiance and irradiance textures sampled by the lit shader.
// Materials already prepared pick them up on their next draw.
func (r *Registry) SetEnvironment(radiance, irradiance rl.Texture2D) {
	r.envRadiance = radiance
	r.envIrradiance = irradiance
	for k, c := range r.cache {
		r.bindEnvironment(&c.mtl)
		r.cache[k] = c
	}
}

const (
	defaultSphereRings  = 16
	defaultSphereSlices = 16
	defaultPlaneResX    = 1
	defaultPlaneResZ    = 1
)

// Shader returns the lit shader, compiling it on first call.
func (r *Registry) Shader() rl.Shader {
	if r.shader.ID == 0 {
		r.shader = loadLitShader()
	}
	return r.shader
}

// Prepare switches mtl to the lit shader and binds the environment maps. Used for model
// materials so they shade like the primitives.
func (r *Registry) Prepare(mtl *rl.Material) {
	if shader := r.Shader(); rl.IsShaderValid(shader) {
		mtl.Shader = shader
	}
	r.bindEnvironment(mtl)
}

func (r *Registry) bindEnvironment(mtl *rl.Material) {
	if rl.IsTextureValid(r.envRadiance) {
		rl.SetMaterialTexture(mtl, envRadianceMap, r.envRadiance)
	}
	if rl.IsTextureValid(r.envIrradiance) {
		rl.SetMaterialTexture(mtl, envIrradianceMap, r.envIrradiance)
	}
}

func (r *Registry) newMaterial() rl.Material {
	mtl := rl.LoadMaterialDefault()
	r.Prepare(&mtl)
	return mtl
}

// ensureSphere creates the sphere mesh and material if not yet cached.
// Radius 0.5 so diameter = 1; scale by 2r to match a physics sphere.
func (r *Registry) ensureSphere() {
	if _, ok := r.cache["sphere"]; ok {
		return
	}
	mesh := rl.GenMeshSphere(0.5, defaultSphereRings, defaultSphereSlices)
	r.cache["sphere"] = cached{mesh: mesh, mtl: r.newMaterial()}
}

// ensurePlane creates the plane (quad) mesh and material if not yet cached.
// 1×1 in XZ, centered at origin, normal +Y.
func (r *Registry) ensurePlane() {
	if _, ok := r.cache["plane"]; ok {
		return
	}
	mesh := rl.GenMeshPlane(1, 1, defaultPlaneResX, defaultPlaneResZ)
	r.cache["plane"] = cached{mesh: mesh, mtl: r.newMaterial()}
}

// setLitShaderUniforms uploads the frame lighting and the draw's surface parameters
// (cgo-safe: local arrays).
func (r *Registry) setLitShaderUniforms(shader rl.Shader, m Material) {
	if !rl.IsShaderValid(shader) {
		return
	}
	u := uniformsFor(r.lighting, m)
	for _, v := range u.vec3 {
		if loc := rl.GetShaderLocation(shader, v.name); loc >= 0 {
			val := [3]float32{v.value[0], v.value[1], v.value[2]}
			rl.SetShaderValueV(shader, loc, val[:], rl.ShaderUniformVec3, 1)
		}
	}
	for _, v := range u.float {
		if loc := rl.GetShaderLocation(shader, v.name); loc >= 0 {
			rl.SetShaderValue(shader, loc, []float32{v.value}, rl.ShaderUniformFloat)
		}
	}
}

// DrawMesh draws an arbitrary mesh with a material already passed through Prepare.
// m's color replaces the material's albedo tint only when alpha is non-zero.
// Must be called between BeginMode3D and EndMode3D.
func (r *Registry) DrawMesh(mesh rl.Mesh, mtl rl.Material, transform rl.Matrix, m Material) {
	if m.Color.A != 0 {
		if albedo := mtl.GetMap(rl.MapAlbedo); albedo != nil {
			albedo.Color = m.Color
		}
	}
	r.setLitShaderUniforms(mtl.Shader, m)
	rl.DrawMesh(mesh, mtl, transform)
}

// Draw draws one instance of the given type with the given model transform.
// Must be called between BeginMode3D and EndMode3D.
// Unknown types are skipped. "sphere" and "plane" are created on first use.
func (r *Registry) Draw(primType string, transform rl.Matrix, m Material) {
	switch primType {
	case "sphere":
		r.ensureSphere()
	case "plane":
		r.ensurePlane()
	default:
		return
	}
	c := r.cache[primType]
	r.DrawMesh(c.mesh, c.mtl, transform, m)
}

// Unload releases cached meshes and the shader. Call before closing the window.
func (r *Registry) Unload() {
	for k, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		delete(r.cache, k)
	}
	if r.shader.ID != 0 {
		rl.UnloadShader(r.shader)
		r.shader = rl.Shader{}
	}
}

// Transform builds a model matrix: offset (center mesh), then scale, then translate to
// position. Zero scale components are treated as 1.
func Transform(position, scale, offset rl.Vector3) rl.Matrix {
	if scale.X == 0 {
		scale.X = 1
	}
	if scale.Y == 0 {
		scale.Y = 1
	}
	if scale.Z == 0 {
		scale.Z = 1
	}
	scaleM := rl.MatrixScale(scale.X, scale.Y, scale.Z)
	transM := rl.MatrixTranslate(position.X, position.Y, position.Z)
	offsetM := rl.MatrixTranslate(offset.X, offset.Y, offset.Z)
	return rl.MatrixMultiply(rl.MatrixMultiply(offsetM, scaleM), transM)
}

type namedVec3 struct {
	name  string
	value [3]float32
}

type namedFloat struct {
	name  string
	value float32
}

type uniforms struct {
	vec3  []namedVec3
	float []namedFloat
}

func uniformsFor(l Lighting, m Material) uniforms {
	dir := rl.Vector3Normalize(l.LightDir)
	srgb := float32(0)
	if l.OutputSRGB {
		srgb = 1
	}
	return uniforms{
		vec3: []namedVec3{
			{"viewPos", [3]float32{l.ViewPos.X, l.ViewPos.Y, l.ViewPos.Z}},
			{"lightDir", [3]float32{dir.X, dir.Y, dir.Z}},
			{"lightColor", l.LightColor},
			{"ambient", l.Ambient},
		},
		float: []namedFloat{
			{"metalness", rl.Clamp(m.Metalness, 0, 1)},
			{"roughness", rl.Clamp(m.Roughness, 0, 1)},
			{"envIntensity", l.EnvIntensity},
			{"exposure", l.Exposure},
			// Flags go up as floats: SetShaderValue only takes float data.
			{"toneMapping", float32(l.ToneMapping)},
			{"outputSRGB", srgb},
		},
	}
}
