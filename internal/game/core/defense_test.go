package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/core"
	"github.com/cory-johannsen/motioncombat/internal/game/eventbus"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

func TestChooseDefense_IntentDecides(t *testing.T) {
	r := newRig(t)
	e, err := r.defense.ChooseDefense(r.foe, action.IntentParry, idle)
	require.NoError(t, err)
	assert.Equal(t, "Parry", e.Name)

	e, err = r.defense.ChooseDefense(r.foe, action.IntentDefense, idle)
	require.NoError(t, err)
	assert.Equal(t, "Block", e.Name)
}

func TestChooseDefense_InvalidAttackerNeverChosen(t *testing.T) {
	r := newRig(t)
	r.foe.Gone = true
	_, err := r.defense.ChooseDefense(r.foe, action.IntentParry, idle)
	assert.ErrorIs(t, err, core.ErrNoCandidate)
}

func TestPerformDefense_ParryWindowFlow(t *testing.T) {
	r := newRig(t)
	opened := r.events(eventbus.ParryWindowOpened)
	parried := r.events(eventbus.ParrySucceeded)

	e, err := r.core.PerformDefense(r.foe, action.IntentParry, idle)
	require.NoError(t, err)
	assert.Equal(t, "Parry", e.Name)
	assert.Equal(t, "parry", r.anim.active)

	w := r.window(t, "parry", "parry")
	r.timeline.Begin(w)
	require.True(t, r.defense.IsParryWindowOpen())
	require.NotNil(t, r.defense.Threat())
	assert.Equal(t, "foe", r.defense.Threat().ID())
	require.Len(t, *opened, 1)
	assert.Equal(t, "foe", (*opened)[0].Attacker.ID())
	assert.Equal(t, "hero", (*opened)[0].Defender.ID())
	assert.Equal(t, ms(300), (*opened)[0].Duration)

	require.NoError(t, r.defense.TryParry())
	require.Len(t, *parried, 1)
	assert.Equal(t, "hero", (*parried)[0].Defender.ID())
	assert.Equal(t, "foe", (*parried)[0].Attacker.ID())

	r.timeline.End(w)
	assert.False(t, r.defense.IsParryWindowOpen())
	assert.Nil(t, r.defense.Threat())
}

func TestTryParry_NoWindowFailsWithoutTouchingThreat(t *testing.T) {
	r := newRig(t)
	parried := r.events(eventbus.ParrySucceeded)

	assert.ErrorIs(t, r.defense.TryParry(), core.ErrNoParryWindow)
	assert.Nil(t, r.defense.Threat())
	assert.Empty(t, *parried)
}

func TestTryParry_NotFacingKeepsThreat(t *testing.T) {
	r := newRig(t)
	_, err := r.core.PerformDefense(r.foe, action.IntentParry, idle)
	require.NoError(t, err)
	r.timeline.Begin(r.window(t, "parry", "parry"))
	require.NotNil(t, r.defense.Threat())

	r.owner.Pose = geom.Transform{Location: geom.V(0, 0, 0), Yaw: 180}
	assert.ErrorIs(t, r.defense.TryParry(), core.ErrNotFacing)
	require.NotNil(t, r.defense.Threat())
	assert.Equal(t, "foe", r.defense.Threat().ID())
	assert.True(t, r.defense.IsParryWindowOpen())
}

func TestTryParry_ThreatGoneFails(t *testing.T) {
	r := newRig(t)
	_, err := r.core.PerformDefense(r.foe, action.IntentParry, idle)
	require.NoError(t, err)
	r.timeline.Begin(r.window(t, "parry", "parry"))
	r.foe.Gone = true
	assert.ErrorIs(t, r.defense.TryParry(), core.ErrNoParryWindow)
}

func TestTryDefense(t *testing.T) {
	r := newRig(t)
	changed := r.events(eventbus.DefenseWindowChanged)
	blocked := r.events(eventbus.DefenseSucceeded)

	assert.ErrorIs(t, r.defense.TryDefense(), core.ErrNoDefenseWindow)

	_, err := r.core.PerformDefense(r.foe, action.IntentDefense, idle)
	require.NoError(t, err)
	w := r.window(t, "block", "guard")
	r.timeline.Begin(w)
	require.True(t, r.defense.IsDefenseWindowOpen())
	require.NoError(t, r.defense.TryDefense())
	require.Len(t, *blocked, 1)
	assert.Equal(t, "hero", (*blocked)[0].Defender.ID())
	assert.Nil(t, (*blocked)[0].Attacker)

	r.timeline.End(w)
	assert.False(t, r.defense.IsDefenseWindowOpen())
	require.Len(t, *changed, 2)
	assert.True(t, (*changed)[0].Open)
	assert.False(t, (*changed)[1].Open)
}

func TestPerformDefense_DoesNotPublishActionStarted(t *testing.T) {
	r := newRig(t)
	started := r.events(eventbus.ActionStarted)
	_, err := r.core.PerformDefense(r.foe, action.IntentDefense, idle)
	require.NoError(t, err)
	assert.Empty(t, *started)
}

func TestDefenseSetActiveSet_FreshChooser(t *testing.T) {
	r := newRig(t)
	first := r.defense.Chooser()
	require.NoError(t, r.defense.SetActiveSet("guard"))
	assert.NotSame(t, first, r.defense.Chooser())
	assert.Empty(t, first.Entries(), "previous chooser was reset")
	assert.Len(t, r.defense.Chooser().Entries(), 2)

	assert.ErrorIs(t, r.defense.SetActiveSet("shield"), core.ErrSetNotFound)
	assert.Equal(t, "guard", r.defense.ActiveKey())
}

func TestPerformAttack_SwapClosesParryWindow(t *testing.T) {
	r := newRig(t)
	_, err := r.core.PerformDefense(r.foe, action.IntentParry, idle)
	require.NoError(t, err)
	r.timeline.Begin(r.window(t, "parry", "parry"))
	require.True(t, r.defense.IsParryWindowOpen())
	require.NotNil(t, r.defense.Threat())

	e, err := r.core.PerformAttack(action.AttackHeavy, action.DirectionForward, idle)
	require.NoError(t, err)
	require.Equal(t, "Heavy1", e.Name)

	assert.False(t, r.defense.IsParryWindowOpen())
	assert.Nil(t, r.defense.Threat())
	assert.ErrorIs(t, r.defense.TryParry(), core.ErrNoParryWindow)
}

func TestPerformAttack_SwapClosesDefenseWindow(t *testing.T) {
	r := newRig(t)
	changed := r.events(eventbus.DefenseWindowChanged)
	_, err := r.core.PerformDefense(r.foe, action.IntentDefense, idle)
	require.NoError(t, err)
	r.timeline.Begin(r.window(t, "block", "guard"))
	require.True(t, r.defense.IsDefenseWindowOpen())

	_, err = r.core.PerformAttack(action.AttackHeavy, action.DirectionForward, idle)
	require.NoError(t, err)

	assert.False(t, r.defense.IsDefenseWindowOpen())
	assert.ErrorIs(t, r.defense.TryDefense(), core.ErrNoDefenseWindow)
	require.Len(t, *changed, 2)
	assert.True(t, (*changed)[0].Open)
	assert.False(t, (*changed)[1].Open)
}
