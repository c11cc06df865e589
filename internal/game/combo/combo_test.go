package combo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/motioncombat/internal/game/combo"
)

func TestMachine_StartsClosed(t *testing.T) {
	var m combo.Machine
	assert.Equal(t, combo.Closed, m.State())
	assert.False(t, m.CanContinue())
	assert.Empty(t, m.Allowed())
}

func TestMachine_BeginCopiesAllowed(t *testing.T) {
	var m combo.Machine
	names := []string{"slash_2", "slash_3"}
	m.Begin(names)
	names[0] = "mutated"

	assert.True(t, m.IsOpen())
	assert.True(t, m.CanContinue())
	assert.Equal(t, []string{"slash_2", "slash_3"}, m.Allowed())
}

func TestMachine_OpenWithoutContinuations(t *testing.T) {
	var m combo.Machine
	m.Begin(nil)
	assert.True(t, m.IsOpen())
	assert.False(t, m.CanContinue())
	assert.Empty(t, m.Allowed())
}

func TestMachine_EndAndChainedClose(t *testing.T) {
	var m combo.Machine
	m.Begin([]string{"a"})
	m.End()
	assert.Equal(t, combo.Closed, m.State())
	assert.Empty(t, m.Allowed())

	m.Begin([]string{"a"})
	m.Chained()
	assert.Equal(t, combo.Closed, m.State())
	assert.Empty(t, m.Allowed())
}

func TestMachine_Property_ClosedImpliesEmptyAllowed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var m combo.Machine
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				m.Begin(rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,5}`), 0, 4).Draw(t, "names"))
			case 1:
				m.End()
			case 2:
				m.Chained()
			}
			if m.State() == combo.Closed && len(m.Allowed()) != 0 {
				t.Fatalf("closed machine carries %v", m.Allowed())
			}
		}
	})
}
