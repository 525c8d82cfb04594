package primitives

import rl "github.com/gen2brain/raylib-go/raylib"

// Material is the per-draw surface description passed to the lit shader.
type Material struct {
	Color     rl.Color
	Metalness float32
	Roughness float32
}

// ToneMapping selects the shader's output curve.
type ToneMapping int32

const (
	ToneMappingNone ToneMapping = iota
	ToneMappingACES
)

// ParseToneMapping maps a config name ("aces", "none") to a mode. Unknown names map to none.
func ParseToneMapping(name string) ToneMapping {
	if name == "aces" || name == "ACES" {
		return ToneMappingACES
	}
	return ToneMappingNone
}

// Lighting is the per-frame state every lit draw shares.
// LightDir points toward the light. Colors are already scaled by their intensities.
type Lighting struct {
	ViewPos      rl.Vector3
	LightDir     rl.Vector3
	LightColor   [3]float32
	Ambient      [3]float32
	EnvIntensity float32
	Exposure     float32
	ToneMapping  ToneMapping
	OutputSRGB   bool
}

// DefaultLighting is a neutral setup for drawing before any scene lighting is known.
func DefaultLighting() Lighting {
	return Lighting{
		LightDir:     rl.Vector3Normalize(rl.NewVector3(0.5, 1, 0.5)),
		LightColor:   [3]float32{1, 1, 1},
		Ambient:      [3]float32{0.1, 0.1, 0.1},
		EnvIntensity: 1,
		Exposure:     1,
		ToneMapping:  ToneMappingACES,
		OutputSRGB:   true,
	}
}
