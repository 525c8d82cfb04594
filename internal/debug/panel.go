package debug

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	panelFontSize   = 16
	panelLineHeight = panelFontSize + 4
	panelPadding    = 8
	panelWidth      = 240
)

// Param is one tweakable float on the panel.
type Param struct {
	Name     string
	Value    *float32
	Min, Max float32
	Step     float32
}

// Panel is a list of tweakable float parameters. The demo creates it empty; callers register
// values with Add.
type Panel struct {
	Title  string
	params []Param
}

// NewPanel returns an empty panel.
func NewPanel(title string) *Panel {
	return &Panel{Title: title}
}

// Add registers v under name, clamped to [min, max] and nudged by step. Duplicate names and
// empty ranges are rejected.
func (p *Panel) Add(name string, v *float32, min, max, step float32) error {
	if v == nil {
		return fmt.Errorf("debug: param %q: nil value", name)
	}
	if !(min < max) {
		return fmt.Errorf("debug: param %q: empty range [%g, %g]", name, min, max)
	}
	for _, q := range p.params {
		if q.Name == name {
			return fmt.Errorf("debug: param %q already added", name)
		}
	}
	if step <= 0 {
		step = (max - min) / 100
	}
	*v = rl.Clamp(*v, min, max)
	p.params = append(p.params, Param{Name: name, Value: v, Min: min, Max: max, Step: step})
	return nil
}

// Len returns the number of registered params.
func (p *Panel) Len() int {
	return len(p.params)
}

// Nudge moves the named param by steps increments, clamped to its range. Returns false for
// unknown names.
func (p *Panel) Nudge(name string, steps int) bool {
	for _, q := range p.params {
		if q.Name == name {
			*q.Value = rl.Clamp(*q.Value+float32(steps)*q.Step, q.Min, q.Max)
			return true
		}
	}
	return false
}

// Lines returns the panel text: the title, then one "name: value" line per param.
func (p *Panel) Lines() []string {
	out := make([]string, 0, len(p.params)+1)
	out = append(out, p.Title)
	for _, q := range p.params {
		out = append(out, fmt.Sprintf("%s: %.3f", q.Name, *q.Value))
	}
	return out
}

// Draw renders the panel at (x, y) in screen pixels.
func (p *Panel) Draw(x, y int32) {
	lines := p.Lines()
	h := int32(len(lines))*panelLineHeight + 2*panelPadding
	rl.DrawRectangle(x, y, panelWidth, h, rl.NewColor(0, 0, 0, 160))
	rl.DrawRectangleLines(x, y, panelWidth, h, rl.NewColor(255, 255, 255, 60))
	for i, line := range lines {
		c := rl.LightGray
		if i == 0 {
			c = rl.White
		}
		rl.DrawText(line, x+panelPadding, y+panelPadding+int32(i)*panelLineHeight, panelFontSize, c)
	}
}
