package render

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noodle-demo/internal/config"
	"noodle-demo/internal/primitives"
	"noodle-demo/internal/scene"
	"noodle-demo/internal/viewport"
)

func TestTargetSize(t *testing.T) {
	w, h := TargetSize(1280, 720, 2)
	assert.Equal(t, int32(2560), w)
	assert.Equal(t, int32(1440), h)

	w, h = TargetSize(800, 600, 0)
	assert.Equal(t, int32(800), w)
	assert.Equal(t, int32(600), h)

	w, h = TargetSize(0, 0, 1)
	assert.Equal(t, int32(1), w)
	assert.Equal(t, int32(1), h)
}

func TestSettingsFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.BackgroundGray = 16
	s := SettingsFrom(cfg)
	assert.Equal(t, primitives.ToneMappingACES, s.ToneMapping)
	assert.Equal(t, float32(1), s.Exposure)
	assert.True(t, s.OutputSRGB)
	assert.True(t, s.Antialias)
	assert.Equal(t, rl.NewColor(16, 16, 16, 255), s.Background)
}

func TestLightingFromScene(t *testing.T) {
	s := scene.New(1024)
	cam := viewport.NewCamera(45, 1, 0.1, 100, rl.NewVector3(3, 2, 0))
	l := Lighting(s, cam, SettingsFrom(config.Default()))

	assert.Equal(t, cam.Position, l.ViewPos)
	assert.InDelta(t, 0.1, l.LightColor[0], 1e-6)
	assert.InDelta(t, 0.1, l.Ambient[1], 1e-6)
	// Light sits at (5,5,5) looking at the origin.
	assert.Greater(t, l.LightDir.Y, float32(0))
	assert.InDelta(t, l.LightDir.X, l.LightDir.Z, 1e-6)
}

func TestFloorTransformLiesFlat(t *testing.T) {
	s := scene.New(1024)
	m := FloorTransform(s.Floor)

	// raylib's XZ plane is stood up into XY, then the floor node lays it back down, so
	// corners keep their sides and the normal keeps pointing up.
	cases := []struct{ in, want rl.Vector3 }{
		{rl.NewVector3(0.5, 0, 0.5), rl.NewVector3(2.5, 0, 2.5)},
		{rl.NewVector3(-0.5, 0, 0.5), rl.NewVector3(-2.5, 0, 2.5)},
		{rl.NewVector3(0.5, 0, -0.5), rl.NewVector3(2.5, 0, -2.5)},
		{rl.NewVector3(0, 1, 0), rl.NewVector3(0, 1, 0)},
	}
	for _, c := range cases {
		got := rl.Vector3Transform(c.in, m)
		assert.InDelta(t, c.want.X, got.X, 1e-5)
		assert.InDelta(t, c.want.Y, got.Y, 1e-5)
		assert.InDelta(t, c.want.Z, got.Z, 1e-5)
	}

	// The stand-up step alone must map the mesh normal onto the node's local +Z.
	standUp := scene.RotationXYZ(rl.NewVector3(rl.Pi*0.5, 0, 0))
	n := rl.Vector3Transform(rl.NewVector3(0, 1, 0), standUp)
	assert.InDelta(t, 1, n.Z, 1e-5)
	assert.InDelta(t, 0, n.Y, 1e-5)
}

func TestDrawListExpandsMeshRefs(t *testing.T) {
	s := scene.New(1024)
	asset := scene.NewNode("asset")
	bowl := scene.NewNode("bowl")
	bowl.Mesh = scene.MeshRef{First: 0, Count: 2}
	noodle := scene.NewNode("noodle")
	noodle.Position = rl.NewVector3(0, 0.5, 0)
	noodle.Mesh = scene.MeshRef{First: 2, Count: 1, Bind: rl.MatrixInvert(noodle.WorldMatrix())}
	asset.Add(bowl)
	asset.Add(noodle)

	noodles, err := scene.BuildNoodles(s, asset, "noodle", []float32{0.7, -0.7})
	require.NoError(t, err)

	items := drawList(s, 3)
	// Three noodles, one mesh each. The bowl was not added to the scene.
	require.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, 2, it.Mesh)
	}

	// Baked vertices at the original position end up at the node's current position.
	noodles.Primary.Position = rl.NewVector3(1, 2, 0)
	items = drawList(s, 3)
	baked := rl.NewVector3(0, 0.5, 0)
	got := rl.Vector3Transform(baked, items[0].Transform)
	assert.InDelta(t, 1, got.X, 1e-5)
	assert.InDelta(t, 2, got.Y, 1e-5)
	assert.InDelta(t, 0, got.Z, 1e-5)
}

func TestDrawListSkipsMissingMeshes(t *testing.T) {
	s := scene.New(1024)
	n := scene.NewNode("noodle")
	n.Mesh = scene.MeshRef{First: 1, Count: 2}
	s.Add(n)

	items := drawList(s, 2)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Mesh)

	n.Visible = false
	assert.Empty(t, drawList(s, 2))
}
