package render

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"winter-stage/internal/core"
)

func TestLayerOrder(t *testing.T) {
	want := []string{"background", "particles", "floor", "actor", "light", "vignette", "grain", "chrome"}
	var got []string
	for _, l := range LayerOrder {
		got = append(got, l.String())
	}
	if !slices.Equal(got, want) {
		t.Fatalf("LayerOrder = %v, want %v", got, want)
	}
	for _, l := range LayerOrder {
		if l.Interactive() != (l == LayerChrome) {
			t.Fatalf("layer %v interactive = %v", l, l.Interactive())
		}
	}
}

func TestSampleStops(t *testing.T) {
	stops := []Stop{
		{0.2, Color{A: 0}},
		{0.5, Color{R: 255, A: 255}},
	}
	if p := sampleStops(stops, 0); p.a != 0 {
		t.Fatalf("before first stop alpha = %v", p.a)
	}
	if p := sampleStops(stops, 1); p.a != 1 || p.r != 1 {
		t.Fatalf("after last stop = %+v", p)
	}
	mid := sampleStops(stops, 0.35)
	if math.Abs(mid.a-0.5) > 1e-9 || math.Abs(mid.r-0.5) > 1e-9 {
		t.Fatalf("mid = %+v, want premultiplied half red", mid)
	}
	if p := sampleStops(nil, 0.5); p != (premul{}) {
		t.Fatalf("empty stops = %+v", p)
	}
}

func TestPaintFloorFadesOut(t *testing.T) {
	th := DefaultTheme()
	img := PaintFloor(th.Floor, 64)
	centre := getPremul(img, 32, 32)
	corner := getPremul(img, 0, 0)
	if centre.a <= 0 {
		t.Fatal("floor centre should glow")
	}
	if corner.a != 0 {
		t.Fatalf("floor corner alpha = %v, want 0", corner.a)
	}
	if centre.a > 0.25*0.6+0.01 {
		t.Fatalf("floor centre alpha %v exceeds stop*opacity", centre.a)
	}
}

func TestPaintShadowCentre(t *testing.T) {
	th := DefaultTheme()
	img := PaintShadow(th.Shadow, 100)
	c := getPremul(img, 40, 65)
	if c.a < 0.6 {
		t.Fatalf("shadow centre alpha = %v, want dark", c.a)
	}
	if p := getPremul(img, 95, 5); p.a != 0 {
		t.Fatalf("far corner alpha = %v", p.a)
	}
}

func TestConicAngle(t *testing.T) {
	cases := []struct {
		dx, dy, want float64
	}{
		{0, -1, 0},
		{1, 0, 90},
		{0, 1, 180},
		{-1, 0, 270},
	}
	for _, c := range cases {
		if got := conicAngle(c.dx, c.dy); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("conicAngle(%v,%v) = %v, want %v", c.dx, c.dy, got, c.want)
		}
	}
}

func TestPaintLightBeamPointsAtStage(t *testing.T) {
	th := DefaultTheme().Beam
	th.BloomOpacity = 0
	th.StreakOpacity = 0
	img := PaintLight(th, 160, 90)
	// 16:9 viewport: the line from the top-right corner to the centre sits
	// at ~240 degrees, inside the bright part of the cone.
	onAxis := getPremul(img, 120, 22)
	offAxis := getPremul(img, 150, 80)
	if onAxis.a <= offAxis.a {
		t.Fatalf("beam alpha on axis %v <= off axis %v", onAxis.a, offAxis.a)
	}
}

func TestPaintVignetteDarkensEdges(t *testing.T) {
	th := DefaultTheme().Vignette
	img := PaintVignette(th, 100, 100)
	if p := getPremul(img, 55, 45); p.a != 0 {
		t.Fatalf("focus alpha = %v, want clear", p.a)
	}
	if p := getPremul(img, 0, 99); p.a < 0.9 {
		t.Fatalf("far corner alpha = %v, want near black", p.a)
	}
}

func TestPaintGrainTiles(t *testing.T) {
	grid := core.NewByteGrid(4, 4)
	grid.FillNoise(core.NewRNG(3))
	img := PaintGrain(grid, 9, 9)
	if img.Pix[img.PixOffset(0, 0)] != img.Pix[img.PixOffset(4, 8)] {
		t.Fatal("grain does not tile with the grid period")
	}
	if img.Pix[img.PixOffset(2, 3)+3] != 0xff {
		t.Fatal("grain should be opaque")
	}
}

func TestOverlayBlend(t *testing.T) {
	if got := Overlay(0.25, 0.5, 1); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("mid grey over dark = %v", got)
	}
	if got := Overlay(0.75, 1, 1); got != 1 {
		t.Fatalf("white over light = %v", got)
	}
	if got := Overlay(0.4, 1, 0); got != 0.4 {
		t.Fatalf("zero opacity changed base: %v", got)
	}
}

func TestLayoutAndPlacement(t *testing.T) {
	th := DefaultTheme()
	g := Layout(th, core.Size{W: 1600, H: 900})
	if g.Floor.W != 800 || g.ActorBox.W != 672 {
		t.Fatalf("floor=%v box=%v", g.Floor.W, g.ActorBox.W)
	}
	if g.ActorMax.H != 450 || g.ActorMax.W != 1280 {
		t.Fatalf("actor max = %+v", g.ActorMax)
	}

	p := g.PlaceActor(900, 900, 1)
	if p.Scale != 0.5 || p.X != 800-225 || p.Y != 450-225 {
		t.Fatalf("placement = %+v", p)
	}
	bumped := g.PlaceActor(900, 900, 0.95)
	if bumped.Scale >= p.Scale || bumped.X <= p.X {
		t.Fatalf("bumped placement %+v should shrink around centre", bumped)
	}

	small := Layout(th, core.Size{W: 500, H: 800})
	if math.Abs(small.Floor.W-600) > 1e-9 || small.ActorBox.W != 500 {
		t.Fatalf("small viewport floor=%v box=%v", small.Floor.W, small.ActorBox.W)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#0a0b0c")
	if err != nil || c != (Color{R: 10, G: 11, B: 12, A: 255}) {
		t.Fatalf("ParseColor = %v, %v", c, err)
	}
	if c, err := ParseColor("#abc"); err != nil || c != (Color{R: 0xaa, G: 0xbb, B: 0xcc, A: 0xff}) {
		t.Fatalf("short form = %v, %v", c, err)
	}
	if _, err := ParseColor("#fff8"); err == nil {
		t.Fatal("four digit form should be rejected")
	}
	if _, err := ParseColor("nope"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadThemeMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	doc := "background: \"#101820\"\ngrain_opacity: 0.2\nfloor:\n  opacity: 0.9\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	th, err := LoadTheme(path)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if th.Background != (Color{R: 0x10, G: 0x18, B: 0x20, A: 0xff}) {
		t.Fatalf("background = %v", th.Background)
	}
	if th.GrainOpacity != 0.2 || th.Floor.Opacity != 0.9 {
		t.Fatalf("overrides not applied: %+v", th)
	}
	def := DefaultTheme()
	if th.Floor.Size != def.Floor.Size || len(th.Floor.Stops) != len(def.Floor.Stops) {
		t.Fatal("unspecified keys lost their defaults")
	}
	if th.Label != def.Label {
		t.Fatalf("label = %q", th.Label)
	}
}

func TestLoadThemeRejectsBadColour(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	if err := os.WriteFile(path, []byte("flake: \"#zz\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTheme(path); err == nil {
		t.Fatal("expected error for bad colour")
	}
}
