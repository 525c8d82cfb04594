package loop

import (
	"context"
	"errors"
	"strings"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noodle-demo/internal/asset"
	"noodle-demo/internal/config"
	"noodle-demo/internal/logger"
	"noodle-demo/internal/scene"
	"noodle-demo/internal/viewport"
)

type fakeClock struct {
	times []float64
	i     int
}

func (c *fakeClock) Elapsed() float64 {
	if c.i >= len(c.times) {
		return c.times[len(c.times)-1]
	}
	t := c.times[c.i]
	c.i++
	return t
}

type stepClock struct {
	now, step float64
}

func (c *stepClock) Elapsed() float64 {
	c.now += c.step
	return c.now
}

type countingRenderer struct {
	calls int
}

func (r *countingRenderer) Render(*scene.Scene, *viewport.Camera) {
	r.calls++
}

type countingControls struct {
	calls int
}

func (c *countingControls) Update() bool {
	c.calls++
	return false
}

func noodleAsset() *scene.Node {
	root := scene.NewNode("asset")
	root.Add(scene.NewNode("bowl"))
	root.Add(scene.NewNode("noodle"))
	return root
}

func newLoop(t *testing.T, cfg config.Demo) (*Loop, *countingRenderer, *countingControls) {
	t.Helper()
	r := &countingRenderer{}
	c := &countingControls{}
	pos := cfg.Camera.Position
	cam := viewport.NewCamera(cfg.Camera.Fov, 16.0/9.0, cfg.Camera.Near, cfg.Camera.Far, rl.NewVector3(pos[0], pos[1], pos[2]))
	return New(cfg, NewState(cfg), cam, c, r, logger.NewAt("")), r, c
}

func loaded(t *testing.T, l *Loop) {
	t.Helper()
	require.NoError(t, l.State.Apply(asset.Result{Root: noodleAsset()}, l.Node, l.CloneZ))
}

func TestTickCopiesBodyPositionWithOverride(t *testing.T) {
	l, r, c := newLoop(t, config.Default())
	loaded(t, l)

	for i := 1; i <= 120; i++ {
		require.NoError(t, l.Tick(float64(i)/60))
		n := l.State.Noodles.Primary
		assert.Equal(t, float32(1), n.Position.X)
		assert.Equal(t, l.State.Body.Position.Y, n.Position.Y)
		assert.Equal(t, l.State.Body.Position.Z, n.Position.Z)
	}
	assert.Equal(t, 120, r.calls)
	assert.Equal(t, 120, c.calls)
	assert.Less(t, l.State.Body.Position.Y, float32(3))
}

func TestTickWithoutOverrideTracksBodyX(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.OverrideXEnabled = false
	l, _, _ := newLoop(t, cfg)
	loaded(t, l)
	l.State.Body.Position.X = 0.25

	require.NoError(t, l.Tick(1.0/60))
	assert.Equal(t, l.State.Body.Position.X, l.State.Noodles.Primary.Position.X)
}

func TestTickElapsedNeverRunsBackwards(t *testing.T) {
	l, _, _ := newLoop(t, config.Default())
	require.NoError(t, l.Tick(1))
	steps := l.State.World.Steps()
	simTime := l.State.World.Time

	// Going backwards counts as zero elapsed time: one internal step, not a huge catch-up.
	require.NoError(t, l.Tick(0.5))
	assert.Equal(t, steps+1, l.State.World.Steps())
	assert.GreaterOrEqual(t, l.State.World.Time, simTime)

	require.NoError(t, l.Tick(1+1.0/60))
	assert.GreaterOrEqual(t, l.State.World.Time, simTime)
}

func TestTickUnsetNodeGuarded(t *testing.T) {
	l, r, _ := newLoop(t, config.Default())
	for i := 1; i <= 3; i++ {
		require.NoError(t, l.Tick(float64(i)/60))
	}
	assert.Equal(t, 3, r.calls)
	assert.False(t, l.State.Noodles.Loaded())

	warnings := 0
	for _, line := range l.Log.Lines() {
		if strings.Contains(line, "not loaded yet") {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestTickUnsetNodeStrict(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.StrictTracking = true
	l, r, _ := newLoop(t, cfg)

	err := l.Tick(1.0 / 60)
	assert.ErrorIs(t, err, ErrTrackedNodeUnset)
	assert.Equal(t, 0, r.calls)

	err = l.Run(context.Background(), &stepClock{step: 1.0 / 60}, &CountFrames{N: 10})
	assert.ErrorIs(t, err, ErrTrackedNodeUnset)
	assert.Equal(t, uint64(0), l.Ticks())
}

func TestRunAppliesAssetMidRun(t *testing.T) {
	l, r, _ := newLoop(t, config.Default())
	pending := make(chan asset.Result, 1)
	l.Pending = pending

	var got []error
	l.OnAsset = func(_ asset.Result, err error) { got = append(got, err) }

	clock := &stepClock{step: 1.0 / 60}
	require.NoError(t, l.Run(context.Background(), clock, &CountFrames{N: 5}))
	assert.False(t, l.State.Noodles.Loaded())
	assert.Empty(t, got)

	pending <- asset.Result{Root: noodleAsset()}
	close(pending)
	require.NoError(t, l.Run(context.Background(), clock, &CountFrames{N: 5}))
	require.True(t, l.State.Noodles.Loaded())
	assert.Len(t, got, 1)
	assert.NoError(t, got[0])
	assert.Nil(t, l.Pending)
	assert.Equal(t, float32(1), l.State.Noodles.Primary.Position.X)
	assert.Len(t, l.State.Noodles.Group.Children, 3)
	assert.Equal(t, 10, r.calls)
}

func TestRunAssetFailureKeepsRunning(t *testing.T) {
	l, _, _ := newLoop(t, config.Default())
	pending := make(chan asset.Result, 1)
	pending <- asset.Result{Err: errors.New("boom")}
	l.Pending = pending

	require.NoError(t, l.Run(context.Background(), &stepClock{step: 1.0 / 60}, &CountFrames{N: 4}))
	assert.Equal(t, uint64(4), l.Ticks())
	assert.Error(t, l.State.AssetErr)
	assert.False(t, l.State.Noodles.Loaded())
}

func TestRunMissingNodeReported(t *testing.T) {
	l, _, _ := newLoop(t, config.Default())
	pending := make(chan asset.Result, 1)
	root := scene.NewNode("asset")
	root.Add(scene.NewNode("bowl"))
	pending <- asset.Result{Root: root}
	l.Pending = pending

	var applyErr error
	l.OnAsset = func(_ asset.Result, err error) { applyErr = err }
	require.NoError(t, l.Run(context.Background(), &stepClock{step: 1.0 / 60}, &CountFrames{N: 2}))
	assert.ErrorIs(t, applyErr, scene.ErrNodeNotFound)
	// Only the floor.
	assert.Len(t, l.State.Scene.Root.Children, 1)
}

func TestRunCancelled(t *testing.T) {
	l, _, _ := newLoop(t, config.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Run(ctx, &fakeClock{times: []float64{0}}, &CountFrames{N: 100})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), l.Ticks())
}

func TestRunStopsWhenFramesEnd(t *testing.T) {
	l, _, _ := newLoop(t, config.Default())
	clock := &fakeClock{times: []float64{0.1, 0.2, 0.15, 0.3}}
	require.NoError(t, l.Run(context.Background(), clock, &CountFrames{N: 4}))
	assert.Equal(t, uint64(4), l.Ticks())
}
