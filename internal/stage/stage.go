// Package stage owns the displayed image, the restart token and the bump
// feedback state. Every method must be called from the UI goroutine.
package stage

import (
	"fmt"
	"time"

	"winter-stage/internal/core"
	"winter-stage/internal/media"
	"winter-stage/internal/particles"

	"github.com/rs/zerolog/log"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	// BumpDuration is how long the actor stays pressed after a restart.
	BumpDuration = 150 * time.Millisecond
	// BumpScale is the actor scale while pressed.
	BumpScale = 0.95
)

// Phase is the bump state.
type Phase int

const (
	Idle Phase = iota
	Bumping
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Bumping:
		return "bumping"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Target says which part of the window a click landed on.
type Target int

const (
	TargetStage Target = iota
	TargetUpload
	TargetLabel
)

// File is a user-selected image.
type File struct {
	Name string
	Data []byte
}

// State is a snapshot of the stage's observable state.
type State struct {
	ImageSource  *string
	RestartToken int
	IsBumping    bool
}

// Config wires a Stage to its collaborators. Zero fields get defaults.
type Config struct {
	Clock      core.Clock
	Refs       *media.RefStore
	Field      *particles.Field
	DefaultURI string
	Seed       int64
	Particles  int
}

// Stage is the single owner of everything the user can change.
type Stage struct {
	refs       *media.RefStore
	field      *particles.Field
	timer      *FrameTimer
	defaultURI string

	owned      *media.Ref
	token      int
	phase      Phase
	cancelBump func()

	scale float64
	tween *gween.Tween

	elapsed time.Duration
	closed  bool
}

// New constructs a stage. The particle field is generated here, once.
func New(cfg Config) *Stage {
	if cfg.Refs == nil {
		cfg.Refs = media.NewRefStore()
	}
	if cfg.Field == nil {
		cfg.Field = particles.New(core.NewRNG(cfg.Seed), cfg.Particles)
	}
	if cfg.DefaultURI == "" {
		cfg.DefaultURI = media.DefaultSourceURI
	}
	return &Stage{
		refs:       cfg.Refs,
		field:      cfg.Field,
		timer:      NewFrameTimer(cfg.Clock),
		defaultURI: cfg.DefaultURI,
		scale:      1,
	}
}

// Restart forces the actor to be shown as a fresh instance and starts the
// bump feedback. A restart during a bump re-arms the bump timer.
func (s *Stage) Restart() {
	if s.closed {
		return
	}
	s.token++
	// Re-arm: Idle follows BumpDuration after the latest restart, not the first.
	if s.cancelBump != nil {
		s.cancelBump()
	}
	s.phase = Bumping
	s.tweenTo(BumpScale)
	s.cancelBump = s.timer.AfterFunc(BumpDuration, s.endBump)
	log.Debug().Int("token", s.token).Msg("actor restarted")
}

func (s *Stage) endBump() {
	if s.closed {
		return
	}
	s.phase = Idle
	s.cancelBump = nil
	s.tweenTo(1)
}

func (s *Stage) tweenTo(target float64) {
	s.tween = gween.New(float32(s.scale), float32(target), float32(BumpDuration.Seconds()), ease.OutQuad)
}

// OnStageClick handles a click that landed on target. Clicks on the upload
// control never reach the restart handler. It reports whether a restart
// happened.
func (s *Stage) OnStageClick(target Target) bool {
	if s.closed || target == TargetUpload {
		return false
	}
	s.Restart()
	return true
}

// OnFileSelected replaces the actor with f and restarts it. A nil file means
// the selection was cancelled and nothing changes. The previously owned
// reference is released only after the new one is in place.
func (s *Stage) OnFileSelected(f *File) error {
	if s.closed {
		return nil
	}
	if f == nil {
		log.Debug().Msg("file selection cancelled")
		return nil
	}
	ref, err := s.refs.Create(f.Name, f.Data)
	if err != nil {
		return fmt.Errorf("stage: select %q: %w", f.Name, err)
	}
	prev := s.owned
	s.owned = &ref
	if prev != nil {
		if err := s.refs.Release(prev.URI); err != nil {
			log.Error().Err(err).Str("uri", prev.URI).Msg("release superseded image")
		}
	}
	log.Info().Str("name", f.Name).Str("uri", ref.URI).Msg("image selected")
	s.Restart()
	return nil
}

// Update advances the bump tween and fires due timers.
func (s *Stage) Update(dt time.Duration) {
	if s.closed {
		return
	}
	s.elapsed += dt
	s.timer.Poll()
	if s.tween != nil {
		v, done := s.tween.Update(float32(dt.Seconds()))
		s.scale = float64(v)
		if done {
			s.tween = nil
		}
	}
}

// Close releases the owned reference and cancels the pending bump. It is safe
// to call more than once.
func (s *Stage) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.timer.Stop()
	s.cancelBump = nil
	if s.owned != nil {
		if err := s.refs.Release(s.owned.URI); err != nil {
			log.Error().Err(err).Str("uri", s.owned.URI).Msg("release image on close")
		}
		s.owned = nil
	}
}

// State returns a snapshot.
func (s *Stage) State() State {
	st := State{RestartToken: s.token, IsBumping: s.phase == Bumping}
	if s.owned != nil {
		uri := s.owned.URI
		st.ImageSource = &uri
	}
	return st
}

// Phase returns the bump state.
func (s *Stage) Phase() Phase { return s.phase }

// Token returns the restart token.
func (s *Stage) Token() int { return s.token }

// Handle identifies the actor instance that should be on screen.
func (s *Stage) Handle() media.Handle {
	src := s.defaultURI
	if s.owned != nil {
		src = s.owned.URI
	}
	return media.Handle{Source: src, Token: s.token}
}

// Refs returns the reference store the stage mints into.
func (s *Stage) Refs() *media.RefStore { return s.refs }

// Field returns the particle field generated at construction.
func (s *Stage) Field() *particles.Field { return s.field }

// Scale returns the actor's current scale factor.
func (s *Stage) Scale() float64 { return s.scale }

// Elapsed returns the time the stage has been updated for.
func (s *Stage) Elapsed() time.Duration { return s.elapsed }
