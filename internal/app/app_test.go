package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"winter-stage/internal/core"
	"winter-stage/internal/media"
	"winter-stage/internal/stage"
	"winter-stage/internal/ui"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type fakePicker struct {
	file  *stage.File
	err   error
	calls int
}

func (p *fakePicker) Pick(ctx context.Context) (*stage.File, error) {
	p.calls++
	return p.file, p.err
}

func gifBytes(t *testing.T, frames int) []byte {
	t.Helper()
	pal := color.Palette{color.Black, color.White}
	g := &gif.GIF{}
	for i := 0; i < frames; i++ {
		img := image.NewPaletted(image.Rect(0, 0, 8, 8), pal)
		img.Pix[i%len(img.Pix)] = 1
		g.Image = append(g.Image, img)
		g.Delay = append(g.Delay, 5)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestController(t *testing.T, picker Picker) (*Controller, *core.ManualClock) {
	t.Helper()
	def := filepath.Join(t.TempDir(), "default.gif")
	if err := os.WriteFile(def, gifBytes(t, 3), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewConfig()
	cfg.DefaultURI = def
	cfg.Seed = 1
	clock := core.NewManualClock(time.Unix(1_700_000_000, 0))
	c := NewController(cfg, "WINTER STAGE", picker, clock)
	c.Resize(core.Size{W: 800, H: 600})
	t.Cleanup(c.Close)
	return c, clock
}

// tickUntil ticks until cond holds or the deadline passes.
func tickUntil(t *testing.T, c *Controller, clock *core.ManualClock, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		clock.Advance(10 * time.Millisecond)
		c.Tick(10 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
}

func TestControllerLoadsDefaultActor(t *testing.T) {
	c, clock := newTestController(t, nil)
	st := c.Stage().State()
	if st.ImageSource != nil || st.RestartToken != 0 {
		t.Fatalf("mount state = %+v", st)
	}
	tickUntil(t, c, clock, func() bool {
		anim, _, _ := c.Actor()
		return anim != nil
	})
	anim, frame, broken := c.Actor()
	if broken || len(anim.Frames) != 3 || frame < 0 {
		t.Fatalf("actor frames=%d frame=%d broken=%v", len(anim.Frames), frame, broken)
	}
}

func TestControllerClickRestartsActor(t *testing.T) {
	c, clock := newTestController(t, nil)
	tickUntil(t, c, clock, func() bool {
		anim, _, _ := c.Actor()
		return anim != nil
	})
	gens := c.Player().Generations()

	c.Click(400, 300)
	if c.Stage().Token() != 1 || !c.Stage().State().IsBumping {
		t.Fatalf("after click state = %+v", c.Stage().State())
	}
	clock.Advance(10 * time.Millisecond)
	c.Tick(10 * time.Millisecond)
	if c.Player().Generations() != gens+1 || c.Player().Frame() != 0 {
		t.Fatalf("player not restarted: generations %d -> %d", gens, c.Player().Generations())
	}
}

func TestControllerUploadClickOnlyOpensPicker(t *testing.T) {
	picker := &fakePicker{file: &stage.File{Name: "new.gif", Data: gifBytes(t, 2)}}
	c, clock := newTestController(t, picker)

	bx, by := ui.ButtonCenter(core.Size{W: 800, H: 600})
	c.Click(bx, by)
	if c.Stage().Token() != 0 {
		t.Fatalf("upload click restarted the stage: token %d", c.Stage().Token())
	}
	if !c.Picking() {
		t.Fatal("picker not opened")
	}
	c.OpenPicker()

	tickUntil(t, c, clock, func() bool { return c.Stage().State().ImageSource != nil })
	if c.Stage().Token() != 1 {
		t.Fatalf("token = %d, want exactly 1", c.Stage().Token())
	}
	if picker.calls != 1 {
		t.Fatalf("picker called %d times", picker.calls)
	}
	src := *c.Stage().State().ImageSource
	tickUntil(t, c, clock, func() bool {
		anim, _, _ := c.Actor()
		return anim != nil && c.Player().Handle().Source == src
	})
}

func TestControllerCancelledPick(t *testing.T) {
	picker := &fakePicker{}
	c, clock := newTestController(t, picker)
	c.OpenPicker()
	tickUntil(t, c, clock, func() bool { return !c.Picking() })
	st := c.Stage().State()
	if st.ImageSource != nil || st.RestartToken != 0 {
		t.Fatalf("cancel changed state: %+v", st)
	}
}

func TestControllerPickerError(t *testing.T) {
	picker := &fakePicker{err: errors.New("no display")}
	c, clock := newTestController(t, picker)
	c.OpenPicker()
	tickUntil(t, c, clock, func() bool { return !c.Picking() })
	if c.Stage().Token() != 0 {
		t.Fatal("failed pick changed the stage")
	}
}

func TestControllerReplacesAndEvicts(t *testing.T) {
	c, clock := newTestController(t, nil)
	c.Select(&stage.File{Name: "a.gif", Data: gifBytes(t, 2)})
	first := *c.Stage().State().ImageSource
	tickUntil(t, c, clock, func() bool {
		anim, _, _ := c.Actor()
		return anim != nil && c.Player().Handle().Source == first
	})

	c.Select(&stage.File{Name: "b.gif", Data: gifBytes(t, 4)})
	clock.Advance(10 * time.Millisecond)
	c.Tick(10 * time.Millisecond)
	if !c.Stage().Refs().Released(first) {
		t.Fatal("first upload not released")
	}
	for _, src := range c.assets.Sources() {
		if src == first {
			t.Fatal("released source still cached")
		}
	}
}

func TestControllerBrokenImage(t *testing.T) {
	c, clock := newTestController(t, nil)
	c.Select(&stage.File{Name: "bad.gif", Data: []byte("definitely not a gif")})
	tickUntil(t, c, clock, func() bool {
		_, _, broken := c.Actor()
		return broken
	})
}

func TestControllerEmptyFileShowsBroken(t *testing.T) {
	c, clock := newTestController(t, nil)
	c.Select(&stage.File{Name: "empty.gif"})
	st := c.Stage().State()
	if st.ImageSource == nil || st.RestartToken != 1 {
		t.Fatalf("empty file not staged: %+v", st)
	}
	tickUntil(t, c, clock, func() bool {
		_, _, broken := c.Actor()
		return broken
	})
}

func TestControllerCloseReleases(t *testing.T) {
	c, _ := newTestController(t, nil)
	c.Select(&stage.File{Name: "a.gif", Data: gifBytes(t, 2)})
	src := *c.Stage().State().ImageSource
	c.Close()
	if !c.Stage().Refs().Released(src) {
		t.Fatal("Close did not release the upload")
	}
}

func TestAssetsUnknownRef(t *testing.T) {
	a := NewAssets(media.NewFetcher(time.Second), media.NewRefStore(), 0)
	a.Request(context.Background(), "blob:missing")
	_, ready, err := a.Lookup("blob:missing")
	if !ready || !errors.Is(err, media.ErrUnknownRef) {
		t.Fatalf("ready=%v err=%v", ready, err)
	}
}

func TestAccepts(t *testing.T) {
	for _, name := range []string{"a.gif", "B.PNG", "dir/c.jpeg", "d.webp"} {
		if !Accepts(name) {
			t.Fatalf("%s rejected", name)
		}
	}
	for _, name := range []string{"a.txt", "gif", "movie.mp4"} {
		if Accepts(name) {
			t.Fatalf("%s accepted", name)
		}
	}
}

func TestFirstImage(t *testing.T) {
	fsys := fstest.MapFS{
		"notes.txt":      {Data: []byte("hi")},
		"photos/cat.gif": {Data: []byte("GIF89a")},
	}
	f, err := FirstImage(fsys)
	if err != nil {
		t.Fatal(err)
	}
	if f == nil || f.Name != "cat.gif" || string(f.Data) != "GIF89a" {
		t.Fatalf("FirstImage = %+v", f)
	}

	none, err := FirstImage(fstest.MapFS{"a.txt": {Data: []byte("x")}})
	if err != nil || none != nil {
		t.Fatalf("FirstImage without images = %+v, %v", none, err)
	}
}

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-particles", "80", "-seed", "9", "-default", "x.gif", "-fetch-timeout", "3s"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Particles != 80 || cfg.Seed != 9 || cfg.DefaultURI != "x.gif" || cfg.FetchTimeout != 3*time.Second {
		t.Fatalf("parsed config = %+v", cfg)
	}
	if NewConfig().DefaultURI != media.DefaultSourceURI {
		t.Fatal("default URI not wired")
	}
}

func TestSetupLogging(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	defer func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	if err := SetupLogging("warn", &buf); err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("log output = %q", out)
	}
	if err := SetupLogging("loud", &buf); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
