package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/reaction"
	"github.com/cory-johannsen/motioncombat/internal/storage/postgres"
	"github.com/cory-johannsen/motioncombat/internal/testutil"
)

func swordTable(t *testing.T, clips ...string) *action.Table {
	t.Helper()
	rows := []action.Entry{
		{Name: "Slash", AttackType: action.AttackLight, Direction: action.DirectionForward, Range: action.Range{Max: 250}, Clip: "slash", BlendIn: 150 * time.Millisecond, AllowedNext: []string{"Thrust"}},
		{Name: "Thrust", AttackType: action.AttackLight, Range: action.Range{Min: 50, Max: 300}, Clip: "thrust", RequiredTags: action.NewTagSet("state.grounded")},
	}
	for i, c := range clips {
		rows[i].Clip = c
	}
	tbl, err := action.NewTable("sword", action.VariantAttack, rows)
	require.NoError(t, err)
	return tbl
}

func TestActionTableRepository(t *testing.T) {
	repo := postgres.NewActionTableRepository(testutil.NewPool(t))
	ctx := context.Background()

	t.Run("create and load", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, swordTable(t)))
		got, err := repo.Load(ctx, "sword")
		require.NoError(t, err)
		assert.Equal(t, action.VariantAttack, got.Variant())
		assert.Equal(t, swordTable(t).Rows(), got.Rows())
	})

	t.Run("create duplicate", func(t *testing.T) {
		assert.ErrorIs(t, repo.Create(ctx, swordTable(t)), postgres.ErrTableExists)
	})

	t.Run("save bumps revision and reindexes clips", func(t *testing.T) {
		rev, err := repo.Save(ctx, swordTable(t, "slash_v2"))
		require.NoError(t, err)
		assert.Equal(t, 2, rev)

		names, err := repo.TablesUsingClip(ctx, "slash_v2")
		require.NoError(t, err)
		assert.Equal(t, []string{"sword"}, names)
		names, err = repo.TablesUsingClip(ctx, "slash")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("list", func(t *testing.T) {
		guard, err := action.NewTable("guard", action.VariantDefense, []action.Entry{{Name: "Block", Intent: action.IntentDefense, Clip: "block"}})
		require.NoError(t, err)
		rev, err := repo.Save(ctx, guard)
		require.NoError(t, err)
		assert.Equal(t, 1, rev)

		infos, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "guard", infos[0].Name)
		assert.Equal(t, "defense", infos[0].Variant)
		assert.Equal(t, 1, infos[0].Entries)
		assert.Equal(t, "sword", infos[1].Name)
		assert.Equal(t, 2, infos[1].Revision)

		all, err := repo.LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "guard", all[0].Name())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "guard"))
		assert.ErrorIs(t, repo.Delete(ctx, "guard"), postgres.ErrTableNotFound)
		_, err := repo.Load(ctx, "guard")
		assert.ErrorIs(t, err, postgres.ErrTableNotFound)
	})
}

func TestReactionTableRepository(t *testing.T) {
	repo := postgres.NewReactionTableRepository(testutil.NewPool(t))
	ctx := context.Background()

	tbl, err := reaction.NewTable("humanoid", []reaction.Reaction{
		{Name: "HeadSnap", Locator: "head", Severity: reaction.SeverityHeavy, Clip: "react_head"},
		{Name: "Light", Severity: reaction.SeverityLight, Clip: "react_light", PlayRate: 1.2},
	})
	require.NoError(t, err)

	rev, err := repo.Save(ctx, tbl)
	require.NoError(t, err)
	assert.Equal(t, 1, rev)
	rev, err = repo.Save(ctx, tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, rev)

	got, err := repo.Load(ctx, "humanoid")
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows(), got.Rows())

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.Load(ctx, "missing")
	assert.ErrorIs(t, err, postgres.ErrTableNotFound)
}
