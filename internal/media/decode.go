package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for data no registered decoder recognises.
var ErrUnsupported = errors.New("media: unsupported image format")

const (
	// MinFrameDelay is the shortest delay honoured. Shorter delays are
	// replaced with DefaultFrameDelay, matching how browsers play GIFs.
	MinFrameDelay = 20 * time.Millisecond
	// DefaultFrameDelay replaces delays below MinFrameDelay.
	DefaultFrameDelay = 100 * time.Millisecond
)

// Animation is a decoded image as a sequence of full-canvas frames.
// Still images have a single frame and a zero delay.
type Animation struct {
	Format string
	Frames []*image.RGBA
	Delays []time.Duration
}

// Size returns the canvas dimensions.
func (a *Animation) Size() (int, int) {
	if a == nil || len(a.Frames) == 0 {
		return 0, 0
	}
	b := a.Frames[0].Bounds()
	return b.Dx(), b.Dy()
}

// Animated reports whether there is more than one frame.
func (a *Animation) Animated() bool { return a != nil && len(a.Frames) > 1 }

// Decode reads a GIF with all its frames, or any other registered still
// format as a single frame.
func Decode(data []byte) (*Animation, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("media: read header: %w", err)
	}
	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("media: decode gif: %w", err)
		}
		return composeGIF(g), nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode %s: %w", format, err)
	}
	b := img.Bounds()
	frame := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(frame, image.Point{}, img, b, draw.Src, nil)
	return &Animation{Format: format, Frames: []*image.RGBA{frame}, Delays: []time.Duration{0}}, nil
}

// composeGIF flattens GIF sub-frames onto a full canvas, applying each
// frame's disposal before the next one is drawn.
func composeGIF(g *gif.GIF) *Animation {
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		var union image.Rectangle
		for _, f := range g.Image {
			union = union.Union(f.Bounds())
		}
		w, h = union.Max.X, union.Max.Y
	}
	canvasRect := image.Rect(0, 0, w, h)
	canvas := image.NewRGBA(canvasRect)

	anim := &Animation{
		Format: "gif",
		Frames: make([]*image.RGBA, 0, len(g.Image)),
		Delays: make([]time.Duration, 0, len(g.Image)),
	}
	for i, frame := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var restore *image.RGBA
		if disposal == gif.DisposalPrevious {
			restore = cloneRGBA(canvas)
		}

		fb := frame.Bounds().Intersect(canvasRect)
		draw.Draw(canvas, fb, frame, fb.Min, draw.Over)
		anim.Frames = append(anim.Frames, cloneRGBA(canvas))

		delay := time.Duration(0)
		if i < len(g.Delay) {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		if len(g.Image) > 1 && delay < MinFrameDelay {
			delay = DefaultFrameDelay
		}
		anim.Delays = append(anim.Delays, delay)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, fb, image.NewUniform(color.Transparent), image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = restore
		}
	}
	return anim
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// Bound returns an animation whose frames fit within maxSide pixels on their
// longer edge, resampled with Catmull-Rom. Smaller animations are returned
// unchanged. This keeps texture memory bounded for large uploads; fitting to
// the window happens at draw time.
func (a *Animation) Bound(maxSide int) *Animation {
	w, h := a.Size()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return a
	}
	scale := float64(maxSide) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	out := &Animation{
		Format: a.Format,
		Frames: make([]*image.RGBA, len(a.Frames)),
		Delays: append([]time.Duration(nil), a.Delays...),
	}
	for i, f := range a.Frames {
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), f, f.Bounds(), draw.Src, nil)
		out.Frames[i] = dst
	}
	return out
}

// FitWithin returns the scale that makes a w*h image fit inside maxW*maxH
// while keeping its aspect ratio. Images are never enlarged.
func FitWithin(w, h int, maxW, maxH float64) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	s := min(1, maxW/float64(w), maxH/float64(h))
	if s < 0 {
		return 0
	}
	return s
}
