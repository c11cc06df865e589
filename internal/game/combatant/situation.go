package combatant

import (
	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

// Situation is a snapshot of a combatant's state supplied with each
// selection request. It is opaque to the default scorers except through
// the tag labels it contributes to eligibility filtering.
type Situation struct {
	Grounded   bool
	InAir      bool
	Running    bool
	Crouching  bool
	Countering bool
	Parrying   bool
	Riposting  bool
	Finishing  bool
	Blocking   bool

	Speed         float64
	Altitude      float64
	Stamina       float64
	HealthPercent float64

	// Extra carries caller-supplied labels in addition to the derived ones.
	Extra action.TagSet
}

// Movement is the raw locomotion state a situation is derived from.
type Movement struct {
	OnGround      bool
	Falling       bool
	Crouched      bool
	Velocity      geom.Vec3
	Altitude      float64
	Stamina       float64
	HealthPercent float64
}

// DefenseState reports which defensive windows are open for the combatant.
type DefenseState interface {
	IsParryWindowOpen() bool
	IsDefenseWindowOpen() bool
}

// BuildSituation derives a Situation from movement and defense state.
//
// Precondition: runningSpeed > 0.
// Postcondition: Running is true iff |velocity| > runningSpeed; Parrying and
// Blocking mirror def when def is non-nil.
func BuildSituation(m Movement, def DefenseState, runningSpeed float64) Situation {
	speed := m.Velocity.Len()
	s := Situation{
		Grounded:      m.OnGround,
		InAir:         m.Falling,
		Running:       speed > runningSpeed,
		Crouching:     m.Crouched,
		Speed:         speed,
		Altitude:      m.Altitude,
		Stamina:       m.Stamina,
		HealthPercent: m.HealthPercent,
	}
	if def != nil {
		s.Parrying = def.IsParryWindowOpen()
		s.Blocking = def.IsDefenseWindowOpen()
	}
	return s
}

// Tags returns the derived state labels plus Extra.
func (s Situation) Tags() action.TagSet {
	labels := s.Extra.Tags()
	flags := []struct {
		on  bool
		tag string
	}{
		{s.Grounded, "state.grounded"},
		{s.InAir, "state.in_air"},
		{s.Running, "state.running"},
		{s.Crouching, "state.crouching"},
		{s.Countering, "state.countering"},
		{s.Parrying, "state.parrying"},
		{s.Riposting, "state.riposting"},
		{s.Finishing, "state.finishing"},
		{s.Blocking, "state.blocking"},
	}
	for _, f := range flags {
		if f.on {
			labels = append(labels, f.tag)
		}
	}
	return action.NewTagSet(labels...)
}
