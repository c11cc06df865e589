package sim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/window"
	"github.com/cory-johannsen/motioncombat/internal/sim"
)

type signal struct {
	edge    string
	window  string
	playing bool
}

type rig struct {
	anim    *sim.Animator
	signals []signal
}

// newRig returns an animator over a swing clip with a hit window at
// [200ms, 400ms) and a combo window at [500ms, 800ms), and a recorder
// subscribed to every window.
func newRig(t *testing.T) *rig {
	t.Helper()
	lib, err := window.NewLibrary(
		&window.Clip{
			Name:     "swing",
			Length:   time.Second,
			Sections: map[string]time.Duration{"late": 450 * time.Millisecond},
			Windows: []*window.Window{
				{ID: "hit", Category: window.CategoryHitbox, Start: 200 * time.Millisecond, End: 400 * time.Millisecond, Hitbox: &window.Hitbox{Radius: 10}},
				{ID: "combo", Category: window.CategoryCombo, Start: 500 * time.Millisecond, End: 800 * time.Millisecond},
			},
		},
		&window.Clip{Name: "idle", Length: 500 * time.Millisecond},
	)
	require.NoError(t, err)
	tl := window.NewTimeline(lib)
	r := &rig{anim: sim.NewAnimator(tl, zap.NewNop())}
	for _, name := range lib.Names() {
		c, _ := lib.Clip(name)
		for _, w := range c.Windows {
			tl.Subscribe(w, window.ListenerFuncs{
				Begin: func(w *window.Window) {
					r.signals = append(r.signals, signal{"begin", w.ID, r.anim.IsPlaying(c.Name)})
				},
				End: func(w *window.Window) {
					r.signals = append(r.signals, signal{"end", w.ID, r.anim.IsPlaying(c.Name)})
				},
			})
		}
	}
	return r
}

func TestAnimator_PlayDeliversNothing(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.anim.Play("swing", "", 1, 0, 0))
	assert.Empty(t, r.signals)
	assert.True(t, r.anim.IsPlaying("swing"))
	clip, ok := r.anim.ActiveClip()
	assert.True(t, ok)
	assert.Equal(t, "swing", clip)
}

func TestAnimator_AdvanceCrossesWindowsInOrder(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.anim.Play("swing", "", 1, 0, 0))

	r.anim.Advance(250 * time.Millisecond)
	assert.Equal(t, []signal{{"begin", "hit", true}}, r.signals)

	r.anim.Advance(300 * time.Millisecond)
	assert.Equal(t, []signal{
		{"begin", "hit", true},
		{"end", "hit", true},
		{"begin", "combo", true},
	}, r.signals)

	r.anim.Advance(time.Second)
	assert.Equal(t, signal{"end", "combo", true}, r.signals[3])
	assert.False(t, r.anim.IsPlaying("swing"))
	_, ok := r.anim.ActiveClip()
	assert.False(t, ok)
}

func TestAnimator_StopEndsOpenWindowsWhilePlaying(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.anim.Play("swing", "", 1, 0, 0))
	r.anim.Advance(300 * time.Millisecond)

	r.anim.Stop("swing", 0)
	require.Len(t, r.signals, 2)
	assert.Equal(t, signal{"end", "hit", true}, r.signals[1])
	assert.False(t, r.anim.IsPlaying("swing"))

	r.anim.Advance(time.Second)
	assert.Len(t, r.signals, 2)
}

func TestAnimator_StopOtherClipIsNoop(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.anim.Play("swing", "", 1, 0, 0))
	r.anim.Stop("idle", 0)
	assert.True(t, r.anim.IsPlaying("swing"))
}

func TestAnimator_ReplayEndsPreviousWindows(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.anim.Play("swing", "", 1, 0, 0))
	r.anim.Advance(300 * time.Millisecond)

	require.NoError(t, r.anim.Play("swing", "", 1, 0, 0))
	assert.Equal(t, signal{"end", "hit", true}, r.signals[1])
	assert.Equal(t, time.Duration(0), r.anim.Position())

	r.anim.Advance(250 * time.Millisecond)
	assert.Equal(t, signal{"begin", "hit", true}, r.signals[2])
}

func TestAnimator_SectionSkipsEarlierWindows(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.anim.Play("swing", "late", 1, 0, 0))
	assert.Equal(t, 450*time.Millisecond, r.anim.Position())

	r.anim.Advance(100 * time.Millisecond)
	assert.Equal(t, []signal{{"begin", "combo", true}}, r.signals)
}

func TestAnimator_RateScalesPlayback(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.anim.Play("swing", "", 2, 0, 0))
	r.anim.Advance(110 * time.Millisecond)
	assert.Equal(t, []signal{{"begin", "hit", true}}, r.signals)
	assert.Equal(t, 220*time.Millisecond, r.anim.Position())
}

func TestAnimator_UnknownClipKeepsCurrent(t *testing.T) {
	r := newRig(t)
	require.NoError(t, r.anim.Play("swing", "", 1, 0, 0))
	err := r.anim.Play("missing", "", 1, 0, 0)
	require.ErrorIs(t, err, sim.ErrUnknownClip)
	assert.True(t, r.anim.IsPlaying("swing"))
}
