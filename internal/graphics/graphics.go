package graphics

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"

	"noodle-demo/internal/config"
)

// Window describes the window Run opens.
type Window struct {
	Width     int
	Height    int
	Title     string
	TargetFPS int
	Resizable bool
	Antialias bool
}

// WindowFrom maps the config window section.
func WindowFrom(cfg config.Window) Window {
	return Window{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Title:     cfg.Title,
		TargetFPS: cfg.TargetFPS,
		Resizable: cfg.Resizable,
		Antialias: cfg.Antialias,
	}
}

func (w Window) flags() uint32 {
	var flags uint32
	if w.Resizable {
		flags |= rl.FlagWindowResizable
	}
	if w.Antialias {
		flags |= rl.FlagMsaa4xHint
	}
	return flags
}

// Run opens the window, hands body a frame source, and closes the window when body returns.
// body runs on the calling goroutine, which owns the GL context; every raylib call must stay
// on it.
func Run(w Window, body func(frames *Frames) error) error {
	rl.SetConfigFlags(w.flags())
	rl.InitWindow(int32(w.Width), int32(w.Height), w.Title)
	defer rl.CloseWindow()

	if w.TargetFPS > 0 {
		rl.SetTargetFPS(int32(w.TargetFPS))
	}
	return body(&Frames{})
}

// Frames paces the loop to the window. The renderer's EndDrawing waits for the target frame
// time and polls input; Next only decides whether another frame should run.
type Frames struct {
	// OnResize is called before a frame whenever the window size or DPI scale changed,
	// including the first frame.
	OnResize func(w, h int, dpr float32)

	size sizeTracker
}

// Next returns false once the window was asked to close or ctx is done.
func (f *Frames) Next(ctx context.Context) bool {
	if ctx.Err() != nil || rl.WindowShouldClose() {
		return false
	}
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	dpr := rl.GetWindowScaleDPI().X
	if f.size.Observe(w, h, dpr) && f.OnResize != nil {
		f.OnResize(w, h, dpr)
	}
	return true
}

// sizeTracker reports when the observed window size changes.
type sizeTracker struct {
	w, h   int
	dpr    float32
	primed bool
}

// Observe records the size and returns true on the first call and on every change.
func (s *sizeTracker) Observe(w, h int, dpr float32) bool {
	if s.primed && s.w == w && s.h == h && s.dpr == dpr {
		return false
	}
	s.w, s.h, s.dpr, s.primed = w, h, dpr, true
	return true
}
