package ui

import (
	"math"

	"winter-stage/internal/core"
	"winter-stage/internal/stage"
)

// Chrome geometry in screen pixels.
const (
	Inset        = 24.0
	ButtonRadius = 22.0
	LabelHeight  = 16.0
	glyphAdvance = 7.0 // basicfont 7x13
	letterGap    = 3.9 // 0.3em at 13px
	iconSize     = 16.0
	iconGap      = 8.0
)

// ButtonCenter returns the centre of the upload button for viewport vp.
func ButtonCenter(vp core.Size) (float64, float64) {
	return float64(vp.W) - Inset - ButtonRadius, Inset + ButtonRadius
}

// LabelWidth returns the width taken by the snowflake icon and label text.
func LabelWidth(label string) float64 {
	n := len([]rune(label))
	if n == 0 {
		return iconSize
	}
	return iconSize + iconGap + float64(n)*glyphAdvance + float64(n-1)*letterGap
}

// Chrome tracks pointer feedback for the interactive controls drawn above
// every decorative layer.
type Chrome struct {
	label   string
	vp      core.Size
	hovered bool
	pressed bool
}

// NewChrome returns chrome showing label in the top-left corner.
func NewChrome(label string) *Chrome {
	return &Chrome{label: label}
}

// Resize records the viewport the chrome is laid out in.
func (c *Chrome) Resize(vp core.Size) { c.vp = vp }

// HitTest reports which target a pointer at (x, y) is over. The label does
// not capture the pointer, but it is reported so callers can tell it apart.
func (c *Chrome) HitTest(x, y float64) stage.Target {
	bx, by := ButtonCenter(c.vp)
	if math.Hypot(x-bx, y-by) <= ButtonRadius {
		return stage.TargetUpload
	}
	if x >= Inset && x <= Inset+LabelWidth(c.label) && y >= Inset && y <= Inset+LabelHeight {
		return stage.TargetLabel
	}
	return stage.TargetStage
}

// Pointer updates hover and press feedback for a pointer at (x, y).
func (c *Chrome) Pointer(x, y float64, down bool) {
	c.hovered = c.HitTest(x, y) == stage.TargetUpload
	c.pressed = c.hovered && down
}

// Hovered reports whether the pointer is over the upload button.
func (c *Chrome) Hovered() bool { return c.hovered }

// Pressed reports whether the upload button is held down.
func (c *Chrome) Pressed() bool { return c.pressed }

// ButtonScale is the upload button's scale for the current press state.
func (c *Chrome) ButtonScale() float64 {
	if c.pressed {
		return 0.95
	}
	return 1
}
