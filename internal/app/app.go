//go:build ebiten

package app

import (
	"fmt"

	"winter-stage/internal/core"
	"winter-stage/internal/media"
	"winter-stage/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog/log"
)

// Game adapts the stage controller to the ebiten.Game interface.
type Game struct {
	ctl  *Controller
	comp *render.Compositor
	step *core.FrameStep

	frames   map[*media.Animation][]*ebiten.Image
	touchIDs []ebiten.TouchID
}

// New constructs a Game for cfg drawn with th.
func New(cfg *Config, th render.Theme) (*Game, error) {
	comp, err := render.NewCompositor(th, cfg.Seed)
	if err != nil {
		return nil, err
	}
	g := &Game{
		ctl:    NewController(cfg, th.Label, DialogPicker{Title: "Choose an image"}, nil),
		comp:   comp,
		step:   core.NewFrameStep(nil),
		frames: map[*media.Animation][]*ebiten.Image{},
	}
	if cfg.Image != "" {
		f, err := ReadFile(cfg.Image)
		if err != nil {
			return nil, fmt.Errorf("initial image: %w", err)
		}
		g.ctl.Select(f)
	}
	return g, nil
}

// Update handles per-frame input and advances the stage.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() ||
		inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	x, y := ebiten.CursorPosition()
	g.ctl.Chrome().Pointer(float64(x), float64(y), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.ctl.Click(float64(x), float64(y))
	}
	g.touchIDs = inpututil.AppendJustReleasedTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		tx, ty := inpututil.TouchPositionInPreviousTick(id)
		g.ctl.Click(float64(tx), float64(ty))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.ctl.Stage().Restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.ctl.OpenPicker()
	}
	if dropped := ebiten.DroppedFiles(); dropped != nil {
		f, err := FirstImage(dropped)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("dropped files")
		case f != nil:
			g.ctl.Select(f)
		default:
			log.Warn().Msg("dropped files contain no image")
		}
	}

	g.ctl.Tick(g.step.Next())
	g.pruneFrames()
	return nil
}

// frameImage returns the texture for frame i of anim, uploading it on first use.
func (g *Game) frameImage(anim *media.Animation, i int) *ebiten.Image {
	if anim == nil || i < 0 || i >= len(anim.Frames) {
		return nil
	}
	imgs, ok := g.frames[anim]
	if !ok {
		imgs = make([]*ebiten.Image, len(anim.Frames))
		g.frames[anim] = imgs
	}
	if imgs[i] == nil {
		imgs[i] = ebiten.NewImageFromImage(anim.Frames[i])
	}
	return imgs[i]
}

// pruneFrames frees textures of animations that are no longer on stage.
func (g *Game) pruneFrames() {
	current, _, _ := g.ctl.Actor()
	for anim, imgs := range g.frames {
		if anim == current {
			continue
		}
		for _, img := range imgs {
			if img != nil {
				img.Deallocate()
			}
		}
		delete(g.frames, anim)
	}
}

// Draw renders the stage.
func (g *Game) Draw(screen *ebiten.Image) {
	st := g.ctl.Stage()
	anim, frame, broken := g.ctl.Actor()
	g.comp.Draw(screen, render.Frame{
		Field:   st.Field(),
		Elapsed: st.Elapsed().Seconds(),
		Actor:   g.frameImage(anim, frame),
		Broken:  broken,
		Bump:    st.Scale(),
		Chrome:  g.ctl.Chrome().Draw,
	})
}

// Layout returns the logical screen size, which tracks the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.ctl.Resize(core.Size{W: outsideWidth, H: outsideHeight})
	return outsideWidth, outsideHeight
}

// Close releases the stage's resources.
func (g *Game) Close() {
	g.ctl.Close()
	for anim, imgs := range g.frames {
		for _, img := range imgs {
			if img != nil {
				img.Deallocate()
			}
		}
		delete(g.frames, anim)
	}
}
