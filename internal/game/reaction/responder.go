package reaction

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

// DefaultBlendOut is the blend used to stop whatever clip was playing when a
// reaction starts.
const DefaultBlendOut = 100 * time.Millisecond

// Player is the slice of the animation collaborator a Responder drives.
type Player interface {
	Play(clip, section string, rate float64, blendIn, blendOut time.Duration) error
	Stop(clip string, blendOut time.Duration)
	ActiveClip() (string, bool)
}

// Impact describes where a strike landed.
type Impact struct {
	Locator string
	Point   geom.Vec3
}

// Responder plays the reaction clip for strikes landing on its owner.
type Responder struct {
	owner    combatant.Actor
	player   Player
	table    *Table
	blendOut time.Duration
	logger   *zap.Logger
}

// NewResponder creates a Responder for owner.
//
// Precondition: owner, player, and logger must be non-nil. table may be nil.
func NewResponder(owner combatant.Actor, player Player, table *Table, blendOut time.Duration, logger *zap.Logger) *Responder {
	if blendOut < 0 {
		blendOut = 0
	}
	return &Responder{owner: owner, player: player, table: table, blendOut: blendOut, logger: logger}
}

// SetTable swaps the reaction table, for content reloads.
func (r *Responder) SetTable(t *Table) { r.table = t }

// Table returns the current reaction table, which may be nil.
func (r *Responder) Table() *Table { return r.table }

// React resolves and plays the reaction for a strike on target. An invalid
// target falls back to the owner.
//
// Postcondition: ok is true iff a reaction row matched and its clip started.
func (r *Responder) React(target combatant.Actor, hit Impact, sev Severity) (Reaction, bool) {
	if !combatant.IsValid(target) {
		target = r.owner
	}
	if !combatant.IsValid(target) {
		return Reaction{}, false
	}
	dir := HitDirection(target.Transform(), hit.Point)
	row, ok := r.table.Find(hit.Locator, dir, sev)
	if !ok {
		r.logger.Warn("no hit reaction matched",
			zap.String("combatant", target.ID()),
			zap.String("locator", hit.Locator),
			zap.Stringer("direction", dir),
			zap.Stringer("severity", sev),
		)
		return Reaction{}, false
	}
	if active, playing := r.player.ActiveClip(); playing {
		r.player.Stop(active, r.blendOut)
	}
	if err := r.player.Play(row.Clip, row.Section, row.Rate(), 0, r.blendOut); err != nil {
		r.logger.Warn("playing hit reaction",
			zap.String("combatant", target.ID()),
			zap.String("reaction", row.Name),
			zap.Error(err),
		)
		return Reaction{}, false
	}
	r.logger.Debug("hit reaction",
		zap.String("combatant", target.ID()),
		zap.String("reaction", row.Name),
		zap.Stringer("direction", dir),
		zap.Stringer("severity", sev),
	)
	return row, true
}
