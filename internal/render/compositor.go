//go:build ebiten

package render

import (
	_ "embed"
	"fmt"
	"image/color"

	"winter-stage/internal/core"
	"winter-stage/internal/particles"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

//go:embed grain.kage
var grainShaderSrc []byte

// screenBlend brightens the destination by the source: d + s - d*s with a
// premultiplied source.
var screenBlend = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOne,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// Frame carries everything that changes from one draw to the next.
type Frame struct {
	Field   *particles.Field
	Elapsed float64 // seconds since the stage was mounted

	Actor  *ebiten.Image // current animation frame, nil while loading
	Broken bool          // the actor failed to load
	Bump   float64       // actor scale from the bump tween

	Chrome func(screen *ebiten.Image)
}

// Compositor draws the stage layers in LayerOrder. Size-dependent layers are
// rasterised on the CPU once per viewport size and cached as textures.
type Compositor struct {
	theme  Theme
	grid   *core.ByteGrid
	shader *ebiten.Shader

	size core.Size
	geom Geometry

	scene    *ebiten.Image
	floor    *ebiten.Image
	shadow   *ebiten.Image
	light    *ebiten.Image
	vignette *ebiten.Image
	grain    *ebiten.Image

	sprites []particles.Sprite
}

// NewCompositor compiles the grain shader and seeds the grain texture.
func NewCompositor(th Theme, seed int64) (*Compositor, error) {
	shader, err := ebiten.NewShader(grainShaderSrc)
	if err != nil {
		return nil, fmt.Errorf("render: compile grain shader: %w", err)
	}
	tile := max(th.GrainTile, 8)
	grid := core.NewByteGrid(tile, tile)
	grid.FillNoise(core.NewRNG(seed))
	return &Compositor{
		theme:   th,
		grid:    grid,
		shader:  shader,
		sprites: make([]particles.Sprite, 0, particles.Count),
	}, nil
}

func deallocate(imgs ...*ebiten.Image) {
	for _, img := range imgs {
		if img != nil {
			img.Deallocate()
		}
	}
}

// Resize re-rasterises every size-dependent layer when vp changes.
func (c *Compositor) Resize(vp core.Size) {
	if vp == c.size || vp.Empty() {
		return
	}
	deallocate(c.scene, c.floor, c.shadow, c.light, c.vignette, c.grain)

	th := c.theme
	ds := max(th.Downsample, 1)
	c.size = vp
	c.geom = Layout(th, vp)

	c.scene = ebiten.NewImage(vp.W, vp.H)
	c.floor = ebiten.NewImageFromImage(PaintFloor(th.Floor, Downscaled(c.geom.Floor.W, ds)))
	c.shadow = ebiten.NewImageFromImage(PaintShadow(th.Shadow, Downscaled(c.geom.ActorBox.W, ds)))
	c.light = ebiten.NewImageFromImage(PaintLight(th.Beam, Downscaled(float64(vp.W), ds), Downscaled(float64(vp.H), ds)))
	c.vignette = ebiten.NewImageFromImage(PaintVignette(th.Vignette, Downscaled(float64(vp.W), ds), Downscaled(float64(vp.H), ds)))
	c.grain = ebiten.NewImageFromImage(PaintGrain(c.grid, vp.W, vp.H))
}

// stretch draws img scaled to fill r.
func stretch(dst, img *ebiten.Image, r Rect, blend ebiten.Blend) {
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(r.W/float64(b.Dx()), r.H/float64(b.Dy()))
	op.GeoM.Translate(r.X, r.Y)
	op.Filter = ebiten.FilterLinear
	op.Blend = blend
	dst.DrawImage(img, op)
}

// Draw composes the whole stage onto screen.
func (c *Compositor) Draw(screen *ebiten.Image, f Frame) {
	b := screen.Bounds()
	c.Resize(core.Size{W: b.Dx(), H: b.Dy()})
	if c.scene == nil {
		return
	}
	full := Rect{W: float64(c.size.W), H: float64(c.size.H)}

	for _, layer := range LayerOrder {
		switch layer {
		case LayerBackground:
			c.scene.Fill(c.theme.Background)
		case LayerParticles:
			c.drawParticles(f)
		case LayerFloor:
			stretch(c.scene, c.floor, c.geom.Floor, ebiten.BlendSourceOver)
		case LayerActor:
			stretch(c.scene, c.shadow, c.geom.ActorBox, ebiten.BlendSourceOver)
			c.drawActor(f)
		case LayerLight:
			stretch(c.scene, c.light, full, screenBlend)
		case LayerVignette:
			stretch(c.scene, c.vignette, full, ebiten.BlendSourceOver)
		case LayerGrain:
			op := &ebiten.DrawRectShaderOptions{}
			op.Images[0] = c.scene
			op.Images[1] = c.grain
			op.Uniforms = map[string]any{"Opacity": float32(c.theme.GrainOpacity)}
			screen.DrawRectShader(c.size.W, c.size.H, c.shader, op)
		case LayerChrome:
			if f.Chrome != nil {
				f.Chrome(screen)
			}
		}
	}
}

func (c *Compositor) drawParticles(f Frame) {
	if f.Field == nil {
		return
	}
	c.sprites = f.Field.Sprites(c.sprites, f.Elapsed, c.size)
	flake := c.theme.Flake
	for _, s := range c.sprites {
		col := color.NRGBA{R: flake.R, G: flake.G, B: flake.B, A: uint8(clamp01(s.Alpha)*float64(flake.A) + 0.5)}
		vector.DrawFilledCircle(c.scene, float32(s.X), float32(s.Y), float32(s.Radius), col, true)
	}
}

// dropShadow offsets approximate a 20px blur under the actor.
var dropShadow = [][2]float64{{-4, 6}, {4, 6}, {-4, 14}, {4, 14}}

func (c *Compositor) drawActor(f Frame) {
	if f.Broken {
		c.drawBroken()
		return
	}
	if f.Actor == nil {
		return
	}
	bump := f.Bump
	if bump <= 0 {
		bump = 1
	}
	ib := f.Actor.Bounds()
	p := c.geom.PlaceActor(ib.Dx(), ib.Dy(), bump)

	for _, off := range dropShadow {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(p.Scale, p.Scale)
		op.GeoM.Translate(p.X+off[0], p.Y+off[1])
		op.ColorScale.Scale(0, 0, 0, 0.125)
		op.Filter = ebiten.FilterLinear
		c.scene.DrawImage(f.Actor, op)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(p.Scale, p.Scale)
	op.GeoM.Translate(p.X, p.Y)
	op.Filter = ebiten.FilterLinear
	c.scene.DrawImage(f.Actor, op)
}

// drawBroken is the placeholder shown when the actor cannot be loaded.
func (c *Compositor) drawBroken() {
	const side = 96
	x := float32(c.geom.CenterX - side/2)
	y := float32(c.geom.CenterY - side/2)
	col := color.NRGBA{R: 148, G: 163, B: 184, A: 160}
	vector.StrokeRect(c.scene, x, y, side, side, 2, col, true)
	vector.StrokeLine(c.scene, x+side*0.2, y+side*0.8, x+side*0.45, y+side*0.45, 2, col, true)
	vector.StrokeLine(c.scene, x+side*0.45, y+side*0.45, x+side*0.6, y+side*0.65, 2, col, true)
	vector.StrokeLine(c.scene, x+side*0.6, y+side*0.65, x+side*0.8, y+side*0.3, 2, col, true)
}
