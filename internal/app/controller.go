package app

import (
	"context"
	"time"

	"winter-stage/internal/core"
	"winter-stage/internal/media"
	"winter-stage/internal/stage"
	"winter-stage/internal/ui"

	"github.com/rs/zerolog/log"
)

type pickResult struct {
	file *stage.File
	err  error
}

// Controller is the display-independent half of the game: it routes input
// to the stage, keeps the actor loaded and advances playback. Every method
// runs on the UI goroutine; background work reports back over channels that
// Tick drains.
type Controller struct {
	stage  *stage.Stage
	chrome *ui.Chrome
	assets *Assets
	player media.Player

	picker  Picker
	picks   chan pickResult
	picking bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewController wires a stage for cfg. A nil clock uses the system clock.
func NewController(cfg *Config, label string, picker Picker, clock core.Clock) *Controller {
	refs := media.NewRefStore()
	st := stage.New(stage.Config{
		Clock:      clock,
		Refs:       refs,
		DefaultURI: cfg.DefaultURI,
		Seed:       cfg.Seed,
		Particles:  cfg.Particles,
	})
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		stage:  st,
		chrome: ui.NewChrome(label),
		assets: NewAssets(media.NewFetcher(cfg.FetchTimeout), refs, cfg.MaxSide),
		picker: picker,
		picks:  make(chan pickResult, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Stage returns the stage.
func (c *Controller) Stage() *stage.Stage { return c.stage }

// Chrome returns the interactive chrome.
func (c *Controller) Chrome() *ui.Chrome { return c.chrome }

// Player returns the actor player.
func (c *Controller) Player() *media.Player { return &c.player }

// Resize lays the chrome out for vp.
func (c *Controller) Resize(vp core.Size) { c.chrome.Resize(vp) }

// Click dispatches a primary click at (x, y). A click on the upload button
// opens the picker and stops there; it never reaches the stage.
func (c *Controller) Click(x, y float64) {
	target := c.chrome.HitTest(x, y)
	if target == stage.TargetUpload {
		c.OpenPicker()
		return
	}
	c.stage.OnStageClick(target)
}

// OpenPicker asks the picker for a file in the background. Only one dialog
// is open at a time.
func (c *Controller) OpenPicker() {
	if c.picker == nil || c.picking {
		return
	}
	c.picking = true
	go func() {
		f, err := c.picker.Pick(c.ctx)
		select {
		case c.picks <- pickResult{file: f, err: err}:
		case <-c.ctx.Done():
		}
	}()
}

// Picking reports whether a picker dialog is open.
func (c *Controller) Picking() bool { return c.picking }

// Select hands a chosen file (or nil for a cancelled choice) to the stage.
func (c *Controller) Select(f *stage.File) {
	if err := c.stage.OnFileSelected(f); err != nil {
		log.Error().Err(err).Msg("image not accepted")
	}
}

// Tick advances the controller by dt.
func (c *Controller) Tick(dt time.Duration) {
	c.drainPicks()
	c.stage.Update(dt)

	c.assets.Drain()
	c.forgetReleased()
	h := c.stage.Handle()
	c.assets.Request(c.ctx, h.Source)
	if anim, ready, err := c.assets.Lookup(h.Source); ready && err == nil {
		c.player.Sync(h, anim)
	}
	c.player.Advance(dt)
}

func (c *Controller) drainPicks() {
	for {
		select {
		case res := <-c.picks:
			c.picking = false
			if res.err != nil {
				log.Error().Err(res.err).Msg("file picker failed")
				continue
			}
			c.Select(res.file)
		default:
			return
		}
	}
}

// forgetReleased evicts decoded images whose reference has been released.
func (c *Controller) forgetReleased() {
	refs := c.stage.Refs()
	for _, src := range c.assets.Sources() {
		if refs.Released(src) {
			c.assets.Forget(src)
		}
	}
}

// Actor returns the animation and frame to draw. broken is set when the
// current source failed to load.
func (c *Controller) Actor() (anim *media.Animation, frame int, broken bool) {
	h := c.stage.Handle()
	a, ready, err := c.assets.Lookup(h.Source)
	if !ready {
		return nil, -1, false
	}
	if err != nil {
		return nil, -1, true
	}
	if c.player.Handle() != h || c.player.Animation() != a {
		return nil, -1, false
	}
	return a, c.player.Frame(), false
}

// Close cancels background work and tears the stage down.
func (c *Controller) Close() {
	c.cancel()
	c.stage.Close()
}
