package core

import (
	"time"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

// Animator plays clips for one combatant.
type Animator interface {
	// Play starts clip from section at rate with the given blends. Window
	// signals for the new clip must not be delivered before Play returns.
	Play(clip, section string, rate float64, blendIn, blendOut time.Duration) error
	// Stop fades clip out over blendOut. Stopping a clip that is not playing
	// is a no-op. Stop may or may not deliver end signals for the clip's open
	// windows; the core closes them itself when it swaps clips.
	Stop(clip string, blendOut time.Duration)
	// IsPlaying reports whether clip is the clip currently playing.
	IsPlaying(clip string) bool
	// ActiveClip returns the clip currently playing, if any.
	ActiveClip() (string, bool)
}

// Targeting supplies candidate opponents. Implementations may update
// asynchronously; the core only reads snapshots.
type Targeting interface {
	Targets() []combatant.Actor
	// Closest returns the nearest valid target within maxRange of from, or nil.
	Closest(from geom.Vec3, maxRange float64) combatant.Actor
}

// HitDetector evaluates hit shapes while a hitbox window is open.
type HitDetector interface {
	ResetAlreadyHit()
	Start(entry action.Entry, hitbox *window.Hitbox)
	Stop()
}
