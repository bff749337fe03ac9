package render

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is a non-premultiplied colour that reads from YAML as "#rrggbb" or
// "#rrggbbaa".
type Color color.NRGBA

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) { return color.NRGBA(c).RGBA() }

// WithAlpha returns c with its alpha replaced by a in [0, 1].
func (c Color) WithAlpha(a float64) Color {
	c.A = uint8(clamp01(a)*255 + 0.5)
	return c
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("render: bad colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("render: bad colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Color) MarshalYAML() (any, error) {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

// Stop is a gradient colour stop at Pos in [0, 1].
type Stop struct {
	Pos   float64 `yaml:"pos"`
	Color Color   `yaml:"color"`
}

// FloorTheme is the soft spot of light on the ground beneath the actor.
type FloorTheme struct {
	Size    float64 `yaml:"size"`
	MaxVW   float64 `yaml:"max_vw"`
	Opacity float64 `yaml:"opacity"`
	Stops   []Stop  `yaml:"stops"`
}

// ShadowTheme is the cast shadow ellipse. Centre and size are fractions of
// the square actor box.
type ShadowTheme struct {
	CenterX  float64 `yaml:"center_x"`
	CenterY  float64 `yaml:"center_y"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Rotation float64 `yaml:"rotation"`
	Opacity  float64 `yaml:"opacity"`
	Stops    []Stop  `yaml:"stops"`
}

// BeamTheme is the volumetric light group. Angles are degrees clockwise from
// straight up; the apex is a fraction of the viewport.
type BeamTheme struct {
	ApexX         float64 `yaml:"apex_x"`
	ApexY         float64 `yaml:"apex_y"`
	From          float64 `yaml:"from"`
	Stops         []Stop  `yaml:"stops"`
	StreakAngle   float64 `yaml:"streak_angle"`
	StreakPeriod  float64 `yaml:"streak_period"`
	StreakColor   Color   `yaml:"streak_color"`
	StreakOpacity float64 `yaml:"streak_opacity"`
	BloomSize     float64 `yaml:"bloom_size"`
	BloomOpacity  float64 `yaml:"bloom_opacity"`
	BloomStops    []Stop  `yaml:"bloom_stops"`
}

// VignetteTheme darkens the edges around an off-centre focus.
type VignetteTheme struct {
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	Stops   []Stop  `yaml:"stops"`
}

// Theme holds every colour and proportion of the stage.
type Theme struct {
	Background   Color         `yaml:"background"`
	Flake        Color         `yaml:"flake"`
	ActorBox     float64       `yaml:"actor_box"`
	ActorMaxW    float64       `yaml:"actor_max_w"`
	ActorMaxH    float64       `yaml:"actor_max_h"`
	Floor        FloorTheme    `yaml:"floor"`
	Shadow       ShadowTheme   `yaml:"shadow"`
	Beam         BeamTheme     `yaml:"beam"`
	Vignette     VignetteTheme `yaml:"vignette"`
	GrainOpacity float64       `yaml:"grain_opacity"`
	GrainTile    int           `yaml:"grain_tile"`
	Downsample   int           `yaml:"downsample"`
	Label        string        `yaml:"label"`
}

func rgba(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b}.WithAlpha(a)
}

// DefaultTheme returns the winter stage look.
func DefaultTheme() Theme {
	none := rgba(0, 0, 0, 0)
	return Theme{
		Background: Color{R: 0x02, G: 0x06, B: 0x17, A: 0xff},
		Flake:      Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		ActorBox:   672,
		ActorMaxW:  0.8,
		ActorMaxH:  0.5,
		Floor: FloorTheme{
			Size:    800,
			MaxVW:   1.2,
			Opacity: 0.6,
			Stops: []Stop{
				{0, rgba(120, 160, 200, 0.25)},
				{0.45, rgba(50, 80, 120, 0.05)},
				{0.70, none},
			},
		},
		Shadow: ShadowTheme{
			CenterX:  0.40,
			CenterY:  0.65,
			Width:    0.50,
			Height:   0.15,
			Rotation: -25,
			Opacity:  0.8,
			Stops: []Stop{
				{0, rgba(0, 0, 0, 0.95)},
				{0.70, none},
			},
		},
		Beam: BeamTheme{
			ApexX: 1,
			ApexY: 0,
			From:  215,
			Stops: []Stop{
				{0, none},
				{10.0 / 360, rgba(200, 230, 255, 0)},
				{25.0 / 360, rgba(220, 240, 255, 0.15)},
				{40.0 / 360, rgba(220, 240, 255, 0.02)},
				{55.0 / 360, none},
			},
			StreakAngle:   225,
			StreakPeriod:  0.20,
			StreakColor:   rgba(255, 255, 255, 0.05),
			StreakOpacity: 0.3,
			BloomSize:     0.6,
			BloomOpacity:  0.2,
			BloomStops: []Stop{
				{0, rgba(255, 255, 255, 0.8)},
				{0.70, none},
			},
		},
		Vignette: VignetteTheme{
			CenterX: 0.55,
			CenterY: 0.45,
			Stops: []Stop{
				{0.20, none},
				{0.50, rgba(5, 10, 20, 0.6)},
				{0.95, rgba(0, 0, 0, 1)},
			},
		},
		GrainOpacity: 0.08,
		GrainTile:    256,
		Downsample:   4,
		Label:        "WINTER STAGE",
	}
}

// LoadTheme reads a YAML theme. Keys absent from the file keep their
// default values.
func LoadTheme(path string) (Theme, error) {
	t := DefaultTheme()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("render: read theme: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultTheme(), fmt.Errorf("render: parse theme %s: %w", path, err)
	}
	if t.Downsample < 1 {
		t.Downsample = 1
	}
	if t.GrainTile < 8 {
		t.GrainTile = 8
	}
	return t, nil
}
