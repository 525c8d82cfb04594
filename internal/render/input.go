package render

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"noodle-demo/internal/viewport"
)

// RaylibInput reads the mouse for orbit controls: left drag rotates, right drag pans, the
// wheel zooms.
type RaylibInput struct{}

// Pointer returns this frame's mouse state.
func (RaylibInput) Pointer() viewport.PointerState {
	return viewport.PointerState{
		Delta:  rl.GetMouseDelta(),
		Rotate: rl.IsMouseButtonDown(rl.MouseLeftButton),
		Pan:    rl.IsMouseButtonDown(rl.MouseRightButton),
		Wheel:  rl.GetMouseWheelMove(),
	}
}
