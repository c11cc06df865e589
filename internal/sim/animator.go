// Package sim runs headless duels: it supplies the playback, targeting and
// hit-detection collaborators a combat core needs, and ticks every combatant
// of a world at a fixed step.
package sim

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

// ErrUnknownClip is returned by Play for a clip missing from the library.
var ErrUnknownClip = errors.New("sim: unknown clip")

// Animator plays clips for one fighter and drives that fighter's Timeline
// as the playhead crosses window boundaries. Signals are only delivered from
// Advance, Play and Stop; a clip's own windows never begin inside Play.
//
// Animator is frame-synchronous and must only be used from the goroutine
// that ticks its world.
type Animator struct {
	timeline *window.Timeline
	logger   *zap.Logger

	clip *window.Clip
	pos  time.Duration
	rate float64
	// gen changes whenever the playing clip is replaced or stopped, so that
	// a listener restarting playback halts delivery for the old clip.
	gen  uint64
	open []*window.Window
	done map[*window.Window]bool
}

// NewAnimator returns an idle Animator playing clips from timeline's library.
//
// Precondition: timeline and logger must be non-nil.
func NewAnimator(timeline *window.Timeline, logger *zap.Logger) *Animator {
	return &Animator{timeline: timeline, logger: logger}
}

// Timeline returns the window source this animator drives.
func (a *Animator) Timeline() *window.Timeline { return a.timeline }

// Play starts clip at section. Open windows of the previous clip are ended
// while that clip still counts as playing.
//
// Postcondition: on error the previous clip keeps playing.
func (a *Animator) Play(clip, section string, rate float64, blendIn, blendOut time.Duration) error {
	c, ok := a.timeline.Library().Clip(clip)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClip, clip)
	}
	if rate <= 0 {
		rate = 1
	}
	a.endOpen()
	a.gen++
	a.clip, a.pos, a.rate = c, c.SectionStart(section), rate
	a.done = make(map[*window.Window]bool, len(c.Windows))
	for _, w := range c.Windows {
		if w.End < a.pos {
			a.done[w] = true
		}
	}
	a.logger.Debug("clip playing",
		zap.String("clip", clip),
		zap.String("section", section),
		zap.Float64("rate", rate),
		zap.Duration("blend_in", blendIn),
	)
	return nil
}

// Stop ends clip's open windows and stops it. Stopping a clip that is not
// playing is a no-op.
func (a *Animator) Stop(clip string, blendOut time.Duration) {
	if !a.IsPlaying(clip) {
		return
	}
	a.endOpen()
	a.gen++
	a.clip = nil
	a.logger.Debug("clip stopped", zap.String("clip", clip), zap.Duration("blend_out", blendOut))
}

// IsPlaying reports whether clip is the clip currently playing.
func (a *Animator) IsPlaying(clip string) bool {
	return a.clip != nil && clip != "" && a.clip.Name == clip
}

// ActiveClip returns the clip currently playing, if any.
func (a *Animator) ActiveClip() (string, bool) {
	if a.clip == nil {
		return "", false
	}
	return a.clip.Name, true
}

// Position returns the playhead of the active clip.
func (a *Animator) Position() time.Duration { return a.pos }

// Advance moves the playhead by dt scaled by the play rate, begins windows
// whose start was reached, ends windows whose end was reached, and finishes
// the clip at its length.
func (a *Animator) Advance(dt time.Duration) {
	if a.clip == nil || dt <= 0 {
		return
	}
	gen := a.gen
	c := a.clip
	a.pos += time.Duration(float64(dt) * a.rate)
	head := min(a.pos, c.Length)

	for _, w := range c.Windows {
		if a.done[w] {
			continue
		}
		if !a.isOpen(w) && w.Start <= head {
			a.open = append(a.open, w)
			a.timeline.Begin(w)
			if a.gen != gen {
				return
			}
		}
		if a.isOpen(w) && w.End <= head {
			a.close(w)
			a.done[w] = true
			a.timeline.End(w)
			if a.gen != gen {
				return
			}
		}
	}
	if a.pos >= c.Length {
		a.endOpen()
		a.gen++
		a.clip = nil
		a.logger.Debug("clip finished", zap.String("clip", c.Name))
	}
}

func (a *Animator) isOpen(w *window.Window) bool {
	for _, o := range a.open {
		if o == w {
			return true
		}
	}
	return false
}

func (a *Animator) close(w *window.Window) {
	for i, o := range a.open {
		if o == w {
			a.open = append(a.open[:i:i], a.open[i+1:]...)
			return
		}
	}
}

// endOpen delivers End for every open window in the order they began.
func (a *Animator) endOpen() {
	open := a.open
	a.open = nil
	for _, w := range open {
		if a.done != nil {
			a.done[w] = true
		}
		a.timeline.End(w)
	}
}
