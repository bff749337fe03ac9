package media

import "time"

// Handle identifies one displayed instance of an image. Two handles with the
// same Source but different Tokens are distinct instances.
type Handle struct {
	Source string
	Token  int
}

// playback is a single instance of an animation being shown. It is never
// rewound in place; a new handle always gets a new playback.
type playback struct {
	handle  Handle
	anim    *Animation
	frame   int
	elapsed time.Duration
	loops   int
}

// Player plays the animation for the current handle. Whenever Sync sees a
// different handle it throws the old instance away and starts a fresh one at
// frame zero.
type Player struct {
	cur         *playback
	generations int
}

// Sync binds the player to h showing anim, reconstructing playback if h or
// anim changed. It reports whether a new instance was created.
func (p *Player) Sync(h Handle, anim *Animation) bool {
	if p.cur != nil && p.cur.handle == h && p.cur.anim == anim {
		return false
	}
	p.cur = &playback{handle: h, anim: anim}
	p.generations++
	return true
}

// Advance moves playback forward by dt, looping forever.
func (p *Player) Advance(dt time.Duration) {
	pb := p.cur
	if pb == nil || !pb.anim.Animated() || dt <= 0 {
		return
	}
	pb.elapsed += dt
	for {
		delay := pb.anim.Delays[pb.frame]
		if delay <= 0 {
			delay = DefaultFrameDelay
		}
		if pb.elapsed < delay {
			return
		}
		pb.elapsed -= delay
		pb.frame++
		if pb.frame == len(pb.anim.Frames) {
			pb.frame = 0
			pb.loops++
		}
	}
}

// Frame returns the index of the frame currently shown, or -1 with nothing bound.
func (p *Player) Frame() int {
	if p.cur == nil || p.cur.anim == nil {
		return -1
	}
	return p.cur.frame
}

// Animation returns the bound animation, which may be nil.
func (p *Player) Animation() *Animation {
	if p.cur == nil {
		return nil
	}
	return p.cur.anim
}

// Handle returns the handle of the current instance.
func (p *Player) Handle() Handle {
	if p.cur == nil {
		return Handle{}
	}
	return p.cur.handle
}

// Loops returns how many times the current instance has wrapped around.
func (p *Player) Loops() int {
	if p.cur == nil {
		return 0
	}
	return p.cur.loops
}

// Generations counts instances created over the player's lifetime.
func (p *Player) Generations() int { return p.generations }
