package loop

import (
	"context"
	"errors"
	"time"

	"noodle-demo/internal/asset"
	"noodle-demo/internal/config"
	"noodle-demo/internal/logger"
	"noodle-demo/internal/scene"
	"noodle-demo/internal/viewport"
)

// ErrTrackedNodeUnset is returned by Tick in strict mode when no asset has supplied the tracked
// node yet (still loading, failed, or missing the named child).
var ErrTrackedNodeUnset = errors.New("loop: tracked node is not loaded")

// Clock reports seconds since the loop started.
type Clock interface {
	Elapsed() float64
}

// Frames is the host's refresh source. Next blocks until the next frame may be drawn and
// returns false when no more frames will come (window closed).
type Frames interface {
	Next(ctx context.Context) bool
}

// Renderer draws the scene from the camera. Called once per tick.
type Renderer interface {
	Render(s *scene.Scene, cam *viewport.Camera)
}

// Controls advances camera motion. Called once per tick.
type Controls interface {
	Update() bool
}

// AssetHandler runs on the frame thread after a load result has been applied to the state.
type AssetHandler func(res asset.Result, applyErr error)

// Loop is the per-frame driver: physics step, copy body position to the tracked node,
// camera controls, render.
type Loop struct {
	State    *State
	Camera   *viewport.Camera
	Controls Controls
	Renderer Renderer
	Log      *logger.Logger

	FixedStep   float32
	MaxSubSteps int
	// OverrideX, when set, replaces the tracked node's X after the position copy on every tick.
	OverrideX *float32
	// Strict makes an unset tracked node fail the tick instead of being skipped.
	Strict bool

	// Pending is polled without blocking before each tick; its single result is applied to State.
	Pending <-chan asset.Result
	Node    string
	CloneZ  []float32
	OnAsset AssetHandler

	prevElapsed float64
	ticks       uint64
	warnedUnset bool
}

// New wires a loop from cfg. Controls and Renderer may be nil (headless).
func New(cfg config.Demo, st *State, cam *viewport.Camera, controls Controls, r Renderer, log *logger.Logger) *Loop {
	l := &Loop{
		State:       st,
		Camera:      cam,
		Controls:    controls,
		Renderer:    r,
		Log:         log,
		FixedStep:   cfg.Physics.FixedStep,
		MaxSubSteps: cfg.Physics.MaxSubSteps,
		Strict:      cfg.Loop.StrictTracking,
		Node:        cfg.Model.Node,
		CloneZ:      cfg.Model.CloneZ,
	}
	if cfg.Loop.OverrideXEnabled {
		x := cfg.Loop.OverrideX
		l.OverrideX = &x
	}
	return l
}

// Ticks returns how many ticks completed.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// Tick advances one frame at the given elapsed time. Elapsed time never runs backwards: a
// smaller value than last time is treated as no time passing.
func (l *Loop) Tick(elapsed float64) error {
	if elapsed < l.prevElapsed {
		elapsed = l.prevElapsed
	}
	delta := elapsed - l.prevElapsed
	l.prevElapsed = elapsed

	l.State.World.Step(l.FixedStep, float32(delta), l.MaxSubSteps)

	if tracked := l.State.Noodles.Primary; tracked != nil {
		tracked.Position = l.State.Body.Position
		if l.OverrideX != nil {
			tracked.Position.X = *l.OverrideX
		}
	} else if l.Strict {
		return ErrTrackedNodeUnset
	} else if !l.warnedUnset {
		l.warnedUnset = true
		l.logf("loop: tracked node %q not loaded yet, skipping position copy", l.Node)
	}

	if l.Controls != nil {
		l.Controls.Update()
	}
	if l.Renderer != nil {
		l.Renderer.Render(l.State.Scene, l.Camera)
	}
	l.ticks++
	return nil
}

// Poll applies a finished asset load, if one is waiting. Never blocks.
func (l *Loop) Poll() {
	if l.Pending == nil {
		return
	}
	select {
	case res, ok := <-l.Pending:
		l.Pending = nil
		if !ok {
			return
		}
		err := l.State.Apply(res, l.Node, l.CloneZ)
		if err != nil && l.Log != nil {
			l.Log.Errorf("%v", err)
		}
		if err == nil {
			l.warnedUnset = false
			l.logf("loop: tracking %q", l.Node)
		}
		if l.OnAsset != nil {
			l.OnAsset(res, err)
		}
	default:
	}
}

// Run ticks once per frame until frames stop, ctx is cancelled, or a tick fails. A failed tick
// halts the loop and its error is returned; cancellation returns ctx.Err().
func (l *Loop) Run(ctx context.Context, clock Clock, frames Frames) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !frames.Next(ctx) {
			return ctx.Err()
		}
		l.Poll()
		if err := l.Tick(clock.Elapsed()); err != nil {
			if l.Log != nil {
				l.Log.Errorf("loop: halted after %d ticks: %v", l.ticks, err)
			}
			return err
		}
	}
}

func (l *Loop) logf(format string, args ...any) {
	if l.Log != nil {
		l.Log.Infof(format, args...)
	}
}

// WallClock measures elapsed time from its creation.
type WallClock struct {
	start time.Time
}

// NewWallClock starts a clock now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// Elapsed returns seconds since NewWallClock.
func (c *WallClock) Elapsed() float64 {
	return time.Since(c.start).Seconds()
}

// CountFrames yields a fixed number of frames, for headless runs and tests.
type CountFrames struct {
	N int
}

// Next returns true N times.
func (f *CountFrames) Next(ctx context.Context) bool {
	if f.N <= 0 || ctx.Err() != nil {
		return false
	}
	f.N--
	return true
}
