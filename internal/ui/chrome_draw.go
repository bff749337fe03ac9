//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var (
	slate400   = color.NRGBA{R: 148, G: 163, B: 184, A: 255}
	labelFace  = text.NewGoXFace(basicfont.Face7x13)
	labelAlpha = float32(0.3)
)

func withAlpha(c color.NRGBA, a float32) color.NRGBA {
	c.A = uint8(float32(c.A) * a)
	return c
}

// Draw renders the upload button and the label onto screen.
func (c *Chrome) Draw(screen *ebiten.Image) {
	c.drawButton(screen)
	c.drawLabel(screen)
}

func (c *Chrome) drawButton(screen *ebiten.Image) {
	bx, by := ButtonCenter(c.vp)
	cx, cy := float32(bx), float32(by)
	r := float32(ButtonRadius * c.ButtonScale())

	fill := color.NRGBA{R: 255, G: 255, B: 255, A: 13}
	icon := slate400
	if c.hovered {
		fill.A = 26
		icon = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	vector.DrawFilledCircle(screen, cx, cy, r, fill, true)
	vector.StrokeCircle(screen, cx, cy, r, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 26}, true)

	// Upload glyph: an arrow over an open tray.
	s := r / ButtonRadius * 10
	vector.StrokeLine(screen, cx, cy+s*0.5, cx, cy-s*0.9, 1.6, icon, true)
	vector.StrokeLine(screen, cx, cy-s*0.9, cx-s*0.5, cy-s*0.4, 1.6, icon, true)
	vector.StrokeLine(screen, cx, cy-s*0.9, cx+s*0.5, cy-s*0.4, 1.6, icon, true)
	vector.StrokeLine(screen, cx-s*0.9, cy+s*0.3, cx-s*0.9, cy+s*0.9, 1.6, icon, true)
	vector.StrokeLine(screen, cx-s*0.9, cy+s*0.9, cx+s*0.9, cy+s*0.9, 1.6, icon, true)
	vector.StrokeLine(screen, cx+s*0.9, cy+s*0.9, cx+s*0.9, cy+s*0.3, 1.6, icon, true)
}

func (c *Chrome) drawLabel(screen *ebiten.Image) {
	col := withAlpha(slate400, labelAlpha)

	// Snowflake: three crossing strokes.
	fcx := float32(Inset + iconSize/2)
	fcy := float32(Inset + LabelHeight/2)
	arm := float32(iconSize / 2)
	for i := 0; i < 3; i++ {
		a := float64(i) * math.Pi / 3
		dx := arm * float32(math.Cos(a))
		dy := arm * float32(math.Sin(a))
		vector.StrokeLine(screen, fcx-dx, fcy-dy, fcx+dx, fcy+dy, 1.2, col, true)
	}

	x := Inset + iconSize + iconGap
	for _, r := range c.label {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x, Inset+2)
		op.ColorScale.ScaleWithColor(col)
		text.Draw(screen, string(r), labelFace, op)
		x += glyphAdvance + letterGap
	}
}
