package reaction_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
	"github.com/cory-johannsen/motioncombat/internal/game/reaction"
)

func mustTable(t *testing.T, rows ...reaction.Reaction) *reaction.Table {
	t.Helper()
	tbl, err := reaction.NewTable("test", rows)
	require.NoError(t, err)
	return tbl
}

func TestFind_ExactLocatorBeatsEarlierRegionRow(t *testing.T) {
	tbl := mustTable(t,
		reaction.Reaction{Name: "torso", Region: reaction.RegionTorso, Severity: reaction.SeverityHeavy, Clip: "torso_heavy"},
		reaction.Reaction{Name: "head", Locator: "head_bone", Severity: reaction.SeverityHeavy, Clip: "head_heavy"},
	)
	got, ok := tbl.Find("head_bone", reaction.DirectionForward, reaction.SeverityHeavy)
	require.True(t, ok)
	assert.Equal(t, "head", got.Name)
}

func TestFind_FirstExactRowWins(t *testing.T) {
	tbl := mustTable(t,
		reaction.Reaction{Name: "a", Locator: "spine_02", Severity: reaction.SeverityLight, Clip: "a"},
		reaction.Reaction{Name: "b", Locator: "SPINE_02", Severity: reaction.SeverityLight, Clip: "b"},
	)
	got, ok := tbl.Find("spine_02", reaction.DirectionNone, reaction.SeverityLight)
	require.True(t, ok)
	assert.Equal(t, "a", got.Name)
}

func TestFind_RegionTierLastRowWins(t *testing.T) {
	tbl := mustTable(t,
		reaction.Reaction{Name: "arm1", Region: reaction.RegionArmLeft, Severity: reaction.SeverityMedium, Clip: "x"},
		reaction.Reaction{Name: "fallback", Severity: reaction.SeverityMedium, Clip: "y"},
		reaction.Reaction{Name: "arm2", Region: reaction.RegionArmLeft, Severity: reaction.SeverityMedium, Clip: "z"},
	)
	got, ok := tbl.Find("lowerarm_l", reaction.DirectionLeft, reaction.SeverityMedium)
	require.True(t, ok)
	assert.Equal(t, "arm2", got.Name)
}

func TestFind_DirectionTierLastQualifyingRowWins(t *testing.T) {
	tbl := mustTable(t,
		reaction.Reaction{Name: "back", Direction: reaction.DirectionBack, Severity: reaction.SeverityHeavy, Clip: "x"},
		reaction.Reaction{Name: "any", Severity: reaction.SeverityHeavy, Clip: "y"},
		reaction.Reaction{Name: "front", Direction: reaction.DirectionForward, Severity: reaction.SeverityHeavy, Clip: "z"},
	)
	got, ok := tbl.Find("", reaction.DirectionBack, reaction.SeverityHeavy)
	require.True(t, ok)
	// "any" also qualifies for the direction tier and is scanned after "back".
	assert.Equal(t, "any", got.Name)

	got, ok = tbl.Find("", reaction.DirectionForward, reaction.SeverityHeavy)
	require.True(t, ok)
	assert.Equal(t, "front", got.Name)
}

func TestFind_SeverityMismatchNeverMatches(t *testing.T) {
	tbl := mustTable(t,
		reaction.Reaction{Name: "head", Locator: "head", Severity: reaction.SeverityLight, Clip: "x"},
	)
	_, ok := tbl.Find("head", reaction.DirectionForward, reaction.SeverityHeavy)
	assert.False(t, ok)
}

func TestFind_NilTable(t *testing.T) {
	var tbl *reaction.Table
	_, ok := tbl.Find("head", reaction.DirectionForward, reaction.SeverityHeavy)
	assert.False(t, ok)
}

func TestFind_ExactPrecedenceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sev := reaction.Severity(rapid.IntRange(0, 4).Draw(rt, "severity"))
		dir := reaction.Direction(rapid.IntRange(1, 4).Draw(rt, "direction"))
		rows := []reaction.Reaction{
			{Name: "exact", Locator: "head_bone", Severity: sev, Clip: "c"},
			{Name: "region", Region: reaction.RegionHead, Severity: sev, Clip: "c"},
			{Name: "dir", Direction: dir, Severity: sev, Clip: "c"},
			{Name: "sev", Severity: sev, Clip: "c"},
		}
		perm := rapid.Permutation(rows).Draw(rt, "order")
		tbl, err := reaction.NewTable("p", perm)
		if err != nil {
			rt.Fatalf("NewTable: %v", err)
		}
		got, ok := tbl.Find("head_bone", dir, sev)
		if !ok || got.Name != "exact" {
			rt.Fatalf("expected exact row, got %q (ok=%v)", got.Name, ok)
		}
	})
}

func TestMapRegion(t *testing.T) {
	cases := map[string]reaction.Region{
		"head":       reaction.RegionHead,
		"Neck_01":    reaction.RegionHead,
		"spine_03":   reaction.RegionTorso,
		"pelvis":     reaction.RegionTorso,
		"upperarm_l": reaction.RegionArmLeft,
		"hand_r":     reaction.RegionArmRight,
		"calf_l":     reaction.RegionLegLeft,
		"ball_r":     reaction.RegionLegRight,
		"weapon_tip": reaction.RegionNone,
		"":           reaction.RegionNone,
	}
	for locator, want := range cases {
		assert.Equal(t, want, reaction.MapRegion(locator), "locator %q", locator)
	}
}

func TestHitDirection(t *testing.T) {
	target := geom.Transform{Location: geom.V(0, 0, 0), Yaw: 0}
	assert.Equal(t, reaction.DirectionForward, reaction.HitDirection(target, geom.V(100, 10, 50)))
	assert.Equal(t, reaction.DirectionBack, reaction.HitDirection(target, geom.V(-100, 10, 0)))
	assert.Equal(t, reaction.DirectionRight, reaction.HitDirection(target, target.Right().Scale(100)))
	assert.Equal(t, reaction.DirectionLeft, reaction.HitDirection(target, target.Right().Scale(-100)))
	assert.Equal(t, reaction.DirectionForward, reaction.HitDirection(target, geom.Zero))
}

func TestNewTable_RejectsBadRows(t *testing.T) {
	_, err := reaction.NewTable("t", []reaction.Reaction{{Name: "x"}})
	assert.Error(t, err)
	_, err = reaction.NewTable("t", []reaction.Reaction{{Name: "x", Clip: "c", Region: "elbow"}})
	assert.Error(t, err)
	_, err = reaction.NewTable("t", []reaction.Reaction{{Name: "x", Clip: "c"}, {Name: "x", Clip: "d"}})
	assert.Error(t, err)
	_, err = reaction.NewTable("", nil)
	assert.Error(t, err)
}

const sampleTable = `
reactions:
  name: humanoid
  rows:
    - name: head_heavy
      locator: head
      severity: heavy
      clip: react_head_heavy
      play_rate: 1.2
    - name: torso_light
      region: torso
      severity: light
      clip: react_torso_light
    - name: back_any
      direction: back
      severity: medium
      clip: react_back
`

func TestLoadTableBytes(t *testing.T) {
	tbl, err := reaction.LoadTableBytes([]byte(sampleTable))
	require.NoError(t, err)
	assert.Equal(t, "humanoid", tbl.Name())
	require.Equal(t, 3, tbl.Len())
	rows := tbl.Rows()
	assert.Equal(t, 1.2, rows[0].Rate())
	assert.Equal(t, 1.0, rows[1].Rate())
	assert.Equal(t, reaction.DirectionBack, rows[2].Direction)

	out, err := reaction.MarshalTable(tbl)
	require.NoError(t, err)
	again, err := reaction.LoadTableBytes(out)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows(), again.Rows())
}

func TestLoadTableBytes_UnknownField(t *testing.T) {
	_, err := reaction.LoadTableBytes([]byte("reactions:\n  name: x\n  bogus: 1\n"))
	assert.Error(t, err)
}

func TestLoadTables_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(sampleTable), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	tables, err := reaction.LoadTables(dir)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(sampleTable), 0644))
	_, err = reaction.LoadTables(dir)
	assert.Error(t, err)
}

type fakePlayer struct {
	active  string
	stopped []string
	played  []string
	rate    float64
	err     error
}

func (p *fakePlayer) Play(clip, _ string, rate float64, _, _ time.Duration) error {
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, clip)
	p.active = clip
	p.rate = rate
	return nil
}

func (p *fakePlayer) Stop(clip string, _ time.Duration) {
	p.stopped = append(p.stopped, clip)
	if p.active == clip {
		p.active = ""
	}
}

func (p *fakePlayer) ActiveClip() (string, bool) { return p.active, p.active != "" }

func TestResponder_PlaysResolvedClip(t *testing.T) {
	owner := &combatant.Static{Name: "owner"}
	player := &fakePlayer{active: "swing"}
	tbl, err := reaction.LoadTableBytes([]byte(sampleTable))
	require.NoError(t, err)
	r := reaction.NewResponder(owner, player, tbl, reaction.DefaultBlendOut, zap.NewNop())

	row, ok := r.React(nil, reaction.Impact{Locator: "head", Point: geom.V(50, 0, 0)}, reaction.SeverityHeavy)
	require.True(t, ok)
	assert.Equal(t, "head_heavy", row.Name)
	assert.Equal(t, []string{"swing"}, player.stopped)
	assert.Equal(t, []string{"react_head_heavy"}, player.played)
	assert.Equal(t, 1.2, player.rate)
}

func TestResponder_MissIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	owner := &combatant.Static{Name: "owner"}
	player := &fakePlayer{}
	r := reaction.NewResponder(owner, player, mustTable(t), reaction.DefaultBlendOut, zap.New(core))

	_, ok := r.React(owner, reaction.Impact{Locator: "head"}, reaction.SeverityKnockdown)
	assert.False(t, ok)
	assert.Empty(t, player.played)
	assert.Equal(t, 1, logs.FilterMessage("no hit reaction matched").Len())
}

func TestResponder_PlayError(t *testing.T) {
	owner := &combatant.Static{Name: "owner"}
	player := &fakePlayer{err: errors.New("no such clip")}
	tbl, err := reaction.LoadTableBytes([]byte(sampleTable))
	require.NoError(t, err)
	r := reaction.NewResponder(owner, player, tbl, reaction.DefaultBlendOut, zap.NewNop())

	_, ok := r.React(owner, reaction.Impact{Locator: "head"}, reaction.SeverityHeavy)
	assert.False(t, ok)
}
