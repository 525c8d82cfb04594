package primitives

import rl "github.com/gen2brain/raylib-go/raylib"

// Environment textures ride in material slots DrawMesh binds as plain 2D textures. The
// irradiance/prefilter slots would be bound as cubemaps, and these maps are equirectangular.
const (
	envRadianceMap    = rl.MapEmission
	envIrradianceMap  = rl.MapHeight
	envRadianceLoc    = rl.ShaderLocMapEmission
	envIrradianceLoc  = rl.ShaderLocMapHeight
	envRadianceName   = "envRadiance"
	envIrradianceName = "envIrradiance"
)

// loadLitShader compiles the lit shader and points the environment sampler locations at it.
// Uses the raylib mesh attributes: vertexPosition, vertexTexCoord, vertexNormal.
func loadLitShader() rl.Shader {
	shader := rl.LoadShaderFromMemory(litVS, litFS)
	if !rl.IsShaderValid(shader) {
		return shader
	}
	shader.UpdateLocation(envRadianceLoc, rl.GetShaderLocation(shader, envRadianceName))
	shader.UpdateLocation(envIrradianceLoc, rl.GetShaderLocation(shader, envIrradianceName))
	return shader
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec2 fragTexCoord;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragTexCoord = vertexTexCoord;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	// litFS: albedo texture * colDiffuse, one directional light, ambient, and equirect
	// environment lighting (irradiance for diffuse, radiance blended toward irradiance by
	// roughness for reflections). Output goes through exposure, optional ACES and sRGB encoding.
	litFS = `#version 330
in vec3 fragPosition;
in vec2 fragTexCoord;
in vec3 fragNormal;
uniform sampler2D texture0;
uniform sampler2D envRadiance;
uniform sampler2D envIrradiance;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec3 lightColor;
uniform vec3 ambient;
uniform float metalness;
uniform float roughness;
uniform float envIntensity;
uniform float exposure;
uniform float toneMapping;
uniform float outputSRGB;
out vec4 finalColor;

const float PI = 3.14159265359;

vec2 equirect(vec3 d) {
  return vec2(atan(d.z, d.x) / (2.0 * PI) + 0.5, 0.5 - asin(clamp(d.y, -1.0, 1.0)) / PI);
}

vec3 toLinear(vec3 c) {
  return pow(c, vec3(2.2));
}

vec3 aces(vec3 color) {
  const mat3 inM = mat3(
    vec3(0.59719, 0.07600, 0.02840),
    vec3(0.35458, 0.90834, 0.13383),
    vec3(0.04823, 0.01566, 0.83777));
  const mat3 outM = mat3(
    vec3(1.60475, -0.10208, -0.00327),
    vec3(-0.53108, 1.10813, -0.07276),
    vec3(-0.07367, -0.00605, 1.07602));
  color /= 0.6;
  color = inM * color;
  vec3 a = color * (color + 0.0245786) - 0.000090537;
  vec3 b = color * (0.983729 * color + 0.4329510) + 0.238081;
  return clamp(outM * (a / b), 0.0, 1.0);
}

vec3 encodeSRGB(vec3 c) {
  vec3 lo = c * 12.92;
  vec3 hi = pow(c, vec3(0.41666)) * 1.055 - 0.055;
  return mix(hi, lo, vec3(lessThanEqual(c, vec3(0.0031308))));
}

void main() {
  vec4 base = texture(texture0, fragTexCoord) * colDiffuse;
  vec3 albedo = toLinear(base.rgb);
  vec3 N = normalize(fragNormal);
  vec3 V = normalize(viewPos - fragPosition);
  vec3 L = normalize(lightDir);
  vec3 H = normalize(L + V);
  float NdotL = max(dot(N, L), 0.0);
  float NdotV = max(dot(N, V), 0.0);

  vec3 F0 = mix(vec3(0.04), albedo, metalness);
  vec3 F = F0 + (1.0 - F0) * pow(1.0 - NdotV, 5.0);
  vec3 kd = (1.0 - F) * (1.0 - metalness);

  float r4 = max(roughness * roughness * roughness * roughness, 0.001);
  float shininess = 2.0 / r4 - 2.0;
  float spec = pow(max(dot(N, H), 0.0), shininess) * (shininess + 8.0) / (8.0 * PI);
  vec3 direct = (kd * albedo + F0 * spec) * NdotL * lightColor;

  vec3 R = reflect(-V, N);
  vec3 irr = toLinear(texture(envIrradiance, equirect(N)).rgb);
  vec3 sharp = toLinear(texture(envRadiance, equirect(R)).rgb);
  vec3 soft = toLinear(texture(envIrradiance, equirect(R)).rgb);
  vec3 indirect = (kd * albedo * irr + F * mix(sharp, soft, roughness)) * envIntensity;

  vec3 color = (direct + indirect + ambient * kd * albedo) * exposure;
  if (toneMapping > 0.5) {
    color = aces(color);
  } else {
    color = clamp(color, 0.0, 1.0);
  }
  if (outputSRGB > 0.5) {
    color = encodeSRGB(color);
  }
  finalColor = vec4(color, base.a);
}
`
)
