package envmap

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionUVRoundTrip(t *testing.T) {
	for _, uv := range [][2]float32{{0.25, 0.5}, {0.6, 0.3}, {0.9, 0.8}} {
		u, v := UV(Direction(uv[0], uv[1]))
		assert.InDelta(t, uv[0], u, 1e-4)
		assert.InDelta(t, uv[1], v, 1e-4)
	}
}

func TestRadianceCeilingLightBrightest(t *testing.T) {
	r := NeutralRoom()
	up := r.Radiance(rl.NewVector3(0, 1, 0))
	down := r.Radiance(rl.NewVector3(0, -1, 0))
	side := r.Radiance(rl.NewVector3(0.3, 0.1, -1))
	assert.Equal(t, float32(1), up)
	assert.Equal(t, r.Floor, down)
	assert.Greater(t, up, side)
	assert.Greater(t, side, float32(0))
}

func TestEquirectSize(t *testing.T) {
	img := Equirect(NeutralRoom(), 64)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
	// Top row looks at the ceiling panel.
	assert.Equal(t, uint8(255), img.RGBAAt(10, 0).R)
}

func TestGenerateSmoothsIrradiance(t *testing.T) {
	m := Generate(NeutralRoom(), 128, 4)
	require.NotNil(t, m.Radiance)
	require.NotNil(t, m.Irradiance)
	assert.Equal(t, 32, m.Irradiance.Bounds().Dx())
	assert.Equal(t, 16, m.Irradiance.Bounds().Dy())

	minR, maxR := uint8(255), uint8(0)
	for y := 0; y < m.Irradiance.Bounds().Dy(); y++ {
		for x := 0; x < m.Irradiance.Bounds().Dx(); x++ {
			c := m.Irradiance.RGBAAt(x, y).R
			minR, maxR = min(minR, c), max(maxR, c)
		}
	}
	assert.Less(t, int(maxR)-int(minR), 255)
	assert.Greater(t, maxR, minR)
}

func TestSample(t *testing.T) {
	img := Equirect(NeutralRoom(), 64)
	c := Sample(img, rl.NewVector3(0, 1, 0))
	assert.Equal(t, uint8(255), c.R)
	c = Sample(img, rl.NewVector3(0, -1, 0))
	assert.Equal(t, uint8(51), c.R)
}
