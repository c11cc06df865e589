package core

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

// OnWindowBegin handles a window begin signal for the current clip.
// Signals arriving while the current entry's clip is not playing are stale
// and ignored.
func (c *Core) OnWindowBegin(w *window.Window) {
	if !c.live(w, "begin") {
		return
	}
	switch w.Category {
	case window.CategoryHitbox:
		if c.hits == nil {
			return
		}
		c.hits.ResetAlreadyHit()
		c.hits.Start(c.current.Clone(), w.Hitbox)
		c.hitboxOpen = true
	case window.CategoryCombo:
		c.combo.Begin(c.current.AllowedNext)
		c.logger.Debug("combo window open", zap.Strings("allowed", c.combo.Allowed()))
	case window.CategoryParry:
		if c.defense != nil {
			c.defense.parryWindowBegin(w)
		}
	case window.CategoryDefense:
		if c.defense != nil {
			c.defense.defenseWindowBegin()
		}
	}
}

// OnWindowEnd handles a window end signal for the current clip.
func (c *Core) OnWindowEnd(w *window.Window) {
	if !c.live(w, "end") {
		return
	}
	switch w.Category {
	case window.CategoryHitbox:
		c.hitboxOpen = false
		if c.hits != nil {
			c.hits.Stop()
		}
	case window.CategoryCombo:
		c.combo.End()
		c.logger.Debug("combo window closed")
	case window.CategoryParry:
		if c.defense != nil {
			c.defense.parryWindowEnd()
		}
	case window.CategoryDefense:
		if c.defense != nil {
			c.defense.defenseWindowEnd()
		}
	}
}

func (c *Core) live(w *window.Window, edge string) bool {
	if w == nil {
		return false
	}
	if !c.hasCurrent || !c.animator.IsPlaying(c.current.Clip) {
		c.logger.Debug("ignoring stale window signal",
			zap.String("window", w.ID),
			zap.Stringer("category", w.Category),
			zap.String("edge", edge),
		)
		return false
	}
	return true
}
