package primitives

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func TestTransformOrder(t *testing.T) {
	m := Transform(rl.NewVector3(1, 2, 3), rl.NewVector3(2, 2, 2), rl.NewVector3(0, -0.5, 0))
	// Mesh origin is offset, then scaled, then moved to position.
	got := rl.Vector3Transform(rl.Vector3Zero(), m)
	assert.InDelta(t, 1, got.X, 1e-6)
	assert.InDelta(t, 1, got.Y, 1e-6)
	assert.InDelta(t, 3, got.Z, 1e-6)
}

func TestTransformZeroScaleIsOne(t *testing.T) {
	m := Transform(rl.Vector3Zero(), rl.Vector3Zero(), rl.Vector3Zero())
	assert.Equal(t, rl.MatrixIdentity(), m)
}

func TestParseToneMapping(t *testing.T) {
	assert.Equal(t, ToneMappingACES, ParseToneMapping("aces"))
	assert.Equal(t, ToneMappingNone, ParseToneMapping("none"))
	assert.Equal(t, ToneMappingNone, ParseToneMapping("filmic"))
}

func TestUniformsFor(t *testing.T) {
	l := DefaultLighting()
	l.LightDir = rl.NewVector3(0, 5, 0)
	l.Exposure = 1.5
	u := uniformsFor(l, Material{Metalness: 2, Roughness: -1})

	vec := map[string][3]float32{}
	for _, v := range u.vec3 {
		vec[v.name] = v.value
	}
	assert.Equal(t, [3]float32{0, 1, 0}, vec["lightDir"])

	f := map[string]float32{}
	for _, v := range u.float {
		f[v.name] = v.value
	}
	assert.Equal(t, float32(1), f["metalness"])
	assert.Equal(t, float32(0), f["roughness"])
	assert.Equal(t, float32(1.5), f["exposure"])
	assert.Equal(t, float32(ToneMappingACES), f["toneMapping"])
	assert.Equal(t, float32(1), f["outputSRGB"])
}
