package selector

import (
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
)

// Chooser holds a working list of rows and selects the best one using its scorer.
//
// Invariant: the working list is only ever replaced wholesale.
type Chooser struct {
	class   scoring.Class
	scorer  scoring.Scorer
	entries []action.Entry
	scores  []scoring.Breakdown
	logger  *zap.Logger
}

// NewChooser builds a Chooser for a scorer instance.
//
// Precondition: scorer and logger must be non-nil.
func NewChooser(class scoring.Class, scorer scoring.Scorer, logger *zap.Logger) *Chooser {
	if scorer == nil {
		panic("selector.NewChooser: scorer must not be nil")
	}
	return &Chooser{class: class, scorer: scorer, logger: logger}
}

// Class returns the scorer class this chooser was built for.
func (c *Chooser) Class() scoring.Class { return c.class }

// SetEntries replaces the working list with copies of rows.
func (c *Chooser) SetEntries(rows []action.Entry) {
	c.entries = make([]action.Entry, len(rows))
	for i, r := range rows {
		c.entries[i] = r.Clone()
	}
}

// Entries returns a copy of the working list.
func (c *Chooser) Entries() []action.Entry {
	out := make([]action.Entry, len(c.entries))
	for i, r := range c.entries {
		out[i] = r.Clone()
	}
	return out
}

// Reset clears the working list and the last score breakdown.
func (c *Chooser) Reset() {
	c.entries = nil
	c.scores = nil
}

// Scores returns the per-candidate breakdown from the most recent Choose.
func (c *Chooser) Scores() []scoring.Breakdown {
	out := make([]scoring.Breakdown, len(c.scores))
	copy(out, c.scores)
	return out
}

// Choose returns the highest-scoring eligible row in the working list.
//
// Postcondition: the first row encountered wins ties; rows scoring -Inf are
// never returned; returns false when no row is eligible.
func (c *Chooser) Choose(ctx scoring.Context) (action.Entry, bool) {
	c.scores = c.scores[:0]
	tags := ctx.Situation.Tags()

	best := math.Inf(-1)
	var chosen action.Entry
	found := false
	for _, e := range ByTags(c.entries, tags) {
		if !c.scorer.IsEligible(e, ctx) {
			continue
		}
		b := c.explain(e, ctx)
		c.scores = append(c.scores, b)
		if b.Total > best {
			best, chosen, found = b.Total, e, true
		}
	}

	if !found {
		c.logger.Debug("no eligible candidate",
			zap.String("scorer", c.class.Name),
			zap.Int("rows", len(c.entries)),
		)
		return action.Entry{}, false
	}
	c.logger.Debug("candidate selected",
		zap.String("scorer", c.class.Name),
		zap.String("entry", chosen.Name),
		zap.Float64("score", best),
		zap.Int("considered", len(c.scores)),
	)
	return chosen.Clone(), true
}

func (c *Chooser) explain(e action.Entry, ctx scoring.Context) scoring.Breakdown {
	if ex, ok := c.scorer.(scoring.Explainer); ok {
		return ex.Explain(e, ctx)
	}
	total := c.scorer.Score(e, ctx)
	return scoring.Breakdown{Entry: e.Name, Total: total, Invalid: math.IsInf(total, -1)}
}
