package app

import (
	"flag"
	"time"

	"winter-stage/internal/media"
	"winter-stage/internal/particles"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Width        int
	Height       int
	TPS          int
	Seed         int64
	Particles    int
	DefaultURI   string
	Image        string
	Theme        string
	LogLevel     string
	FetchTimeout time.Duration
	MaxSide      int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Width:        1280,
		Height:       800,
		TPS:          60,
		Particles:    particles.Count,
		DefaultURI:   media.DefaultSourceURI,
		LogLevel:     "info",
		FetchTimeout: 20 * time.Second,
		MaxSide:      1024,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "initial window width")
	fs.IntVar(&c.Height, "height", c.Height, "initial window height")
	fs.IntVar(&c.TPS, "tps", c.TPS, "updates per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for snow and grain (0 = random)")
	fs.IntVar(&c.Particles, "particles", c.Particles, "number of snow particles")
	fs.StringVar(&c.DefaultURI, "default", c.DefaultURI, "URI or path of the default actor image")
	fs.StringVar(&c.Image, "image", c.Image, "local image to show instead of the default")
	fs.StringVar(&c.Theme, "theme", c.Theme, "YAML theme file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.DurationVar(&c.FetchTimeout, "fetch-timeout", c.FetchTimeout, "timeout for fetching the default image")
	fs.IntVar(&c.MaxSide, "max-side", c.MaxSide, "longest edge decoded images are bounded to")
}
