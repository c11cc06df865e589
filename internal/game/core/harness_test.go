package core_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/core"
	"github.com/cory-johannsen/motioncombat/internal/game/dice"
	"github.com/cory-johannsen/motioncombat/internal/game/eventbus"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

type playCall struct {
	clip     string
	section  string
	rate     float64
	blendIn  time.Duration
	blendOut time.Duration
}

type fakeAnimator struct {
	active string
	plays  []playCall
	stops  []string
	err    error
}

func (a *fakeAnimator) Play(clip, section string, rate float64, in, out time.Duration) error {
	if a.err != nil {
		return a.err
	}
	a.plays = append(a.plays, playCall{clip, section, rate, in, out})
	a.active = clip
	return nil
}

func (a *fakeAnimator) Stop(clip string, _ time.Duration) {
	a.stops = append(a.stops, clip)
	if a.active == clip {
		a.active = ""
	}
}

func (a *fakeAnimator) IsPlaying(clip string) bool { return clip != "" && a.active == clip }

func (a *fakeAnimator) ActiveClip() (string, bool) { return a.active, a.active != "" }

func (a *fakeAnimator) last() playCall {
	if len(a.plays) == 0 {
		return playCall{}
	}
	return a.plays[len(a.plays)-1]
}

type fakeTargeting struct {
	targets []combatant.Actor
}

func (f *fakeTargeting) Targets() []combatant.Actor { return f.targets }

func (f *fakeTargeting) Closest(from geom.Vec3, maxRange float64) combatant.Actor {
	var best combatant.Actor
	bestDist := math.Inf(1)
	for _, t := range f.targets {
		if !combatant.IsValid(t) {
			continue
		}
		d := geom.Dist(from, t.Transform().Location)
		if d <= maxRange && d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

type fakeHits struct {
	resets int
	starts []string
	stops  int
	hitbox *window.Hitbox
}

func (h *fakeHits) ResetAlreadyHit() { h.resets++ }

func (h *fakeHits) Start(e action.Entry, hb *window.Hitbox) {
	h.starts = append(h.starts, e.Name)
	h.hitbox = hb
}

func (h *fakeHits) Stop() { h.stops++ }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func testClips(t *testing.T) *window.Library {
	t.Helper()
	mk := func(name string, windows ...*window.Window) *window.Clip {
		return &window.Clip{Name: name, Length: time.Second, Windows: windows}
	}
	lib, err := window.NewLibrary(
		mk("slash1",
			&window.Window{ID: "hit", Category: window.CategoryHitbox, Start: ms(100), End: ms(200), Hitbox: &window.Hitbox{Socket: "blade", Radius: 20, Damage: 10}},
			&window.Window{ID: "combo", Category: window.CategoryCombo, Start: ms(300), End: ms(500)},
		),
		mk("slash2", &window.Window{ID: "combo", Category: window.CategoryCombo, Start: ms(300), End: ms(500)}),
		mk("thrust2"),
		mk("heavy1", &window.Window{ID: "hit", Category: window.CategoryHitbox, Start: ms(400), End: ms(600), Hitbox: &window.Hitbox{Socket: "blade", Radius: 30}}),
		mk("jab"),
		mk("parry", &window.Window{ID: "parry", Category: window.CategoryParry, Start: ms(50), End: ms(350)}),
		mk("block", &window.Window{ID: "guard", Category: window.CategoryDefense, Start: 0, End: ms(800)}),
	)
	require.NoError(t, err)
	return lib
}

func swordTable(t *testing.T) *action.Table {
	t.Helper()
	tbl, err := action.NewTable("sword", action.VariantAttack, []action.Entry{
		{Name: "Slash1", AttackType: action.AttackLight, Direction: action.DirectionForward, Range: action.Range{Min: 0, Max: 300},
			Clip: "slash1", BlendIn: ms(200), BlendOut: ms(250), AllowedNext: []string{"Slash2", "Thrust2"}},
		{Name: "Slash2", AttackType: action.AttackLight, Direction: action.DirectionForward, Range: action.Range{Min: 0, Max: 300},
			Clip: "slash2", BlendIn: ms(200), BlendOut: ms(200)},
		{Name: "Thrust2", AttackType: action.AttackLight, Direction: action.DirectionLeft, Range: action.Range{Min: 0, Max: 300},
			Clip: "thrust2"},
		{Name: "Heavy1", AttackType: action.AttackHeavy, Direction: action.DirectionForward, Range: action.Range{Min: 0, Max: 300},
			Clip: "heavy1", BlendIn: -ms(10), Section: "windup"},
	})
	require.NoError(t, err)
	return tbl
}

func guardTable(t *testing.T) *action.Table {
	t.Helper()
	tbl, err := action.NewTable("guard", action.VariantDefense, []action.Entry{
		{Name: "Block", Intent: action.IntentDefense, Direction: action.DirectionOmni, Range: action.Range{Min: 100, Max: 300}, Clip: "block"},
		{Name: "Parry", Intent: action.IntentParry, Direction: action.DirectionForward, Range: action.Range{Min: 100, Max: 300}, Clip: "parry"},
	})
	require.NoError(t, err)
	return tbl
}

type rig struct {
	owner    *combatant.Static
	foe      *combatant.Static
	anim     *fakeAnimator
	aim      *fakeTargeting
	hits     *fakeHits
	timeline *window.Timeline
	bus      *eventbus.Bus
	scorers  *scoring.Registry
	core     *core.Core
	defense  *core.Defense
}

type rigOption func(*rigConfig)

type rigConfig struct {
	logger  *zap.Logger
	attacks []core.ActionSet
	defense []core.ActionSet
}

func withLogger(l *zap.Logger) rigOption { return func(c *rigConfig) { c.logger = l } }

func withAttackSets(sets ...core.ActionSet) rigOption {
	return func(c *rigConfig) { c.attacks = sets }
}

// newRig places the owner at the origin facing +X and a foe 150 units ahead.
func newRig(t *testing.T, opts ...rigOption) *rig {
	t.Helper()
	cfg := rigConfig{
		logger:  zap.NewNop(),
		attacks: []core.ActionSet{{Key: "sword", Table: swordTable(t), ScorerClass: scoring.ClassDefaultAttack}},
		defense: []core.ActionSet{{Key: "guard", Table: guardTable(t), ScorerClass: scoring.ClassDefaultDefense}},
	}
	for _, o := range opts {
		o(&cfg)
	}

	r := &rig{
		owner: &combatant.Static{Name: "hero", Pose: geom.Transform{Location: geom.V(0, 0, 0), Yaw: 0}},
		foe:   &combatant.Static{Name: "foe", Pose: geom.Transform{Location: geom.V(150, 0, 0), Yaw: 180}},
		anim:  &fakeAnimator{},
		hits:  &fakeHits{},
		bus:   eventbus.New("arena", zap.NewNop()),
	}
	r.aim = &fakeTargeting{targets: []combatant.Actor{r.foe}}
	r.timeline = window.NewTimeline(testClips(t))
	r.scorers = scoring.NewRegistry()
	require.NoError(t, scoring.RegisterDefaults(r.scorers, scoring.DefaultTuning(), dice.FixedSource{Value: 1000}))

	attacks, err := core.NewCatalog(cfg.attacks...)
	require.NoError(t, err)
	defenses, err := core.NewCatalog(cfg.defense...)
	require.NoError(t, err)

	r.core = core.New(core.Deps{
		Owner:     r.owner,
		Animator:  r.anim,
		Windows:   r.timeline,
		Targeting: r.aim,
		Hits:      r.hits,
		Bus:       r.bus,
		Scorers:   r.scorers,
		Logger:    cfg.logger,
	}, attacks, core.DefaultSettings())
	r.defense = core.NewDefense(r.core, defenses)
	return r
}

// window returns clip's window with id from the timeline's library.
func (r *rig) window(t *testing.T, clip, id string) *window.Window {
	t.Helper()
	for _, w := range r.timeline.Windows(clip) {
		if w.ID == id {
			return w
		}
	}
	t.Fatalf("clip %q has no window %q", clip, id)
	return nil
}

func (r *rig) events(kind eventbus.Kind) *[]eventbus.Event {
	var got []eventbus.Event
	r.bus.Subscribe(kind, func(e eventbus.Event) { got = append(got, e) })
	return &got
}

var errPlay = errors.New("clip not loaded")

func actionSet(key string, tbl *action.Table, class string) core.ActionSet {
	return core.ActionSet{Key: key, Table: tbl, ScorerClass: class}
}
