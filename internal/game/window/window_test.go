package window_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

func slashClip() *window.Clip {
	return &window.Clip{
		Name:     "slash",
		Length:   time.Second,
		Sections: map[string]time.Duration{"recovery": 600 * time.Millisecond},
		Windows: []*window.Window{
			{ID: "hit", Category: window.CategoryHitbox, Start: 200 * time.Millisecond, End: 400 * time.Millisecond, Hitbox: &window.Hitbox{Socket: "blade", Radius: 20}},
			{ID: "combo", Category: window.CategoryCombo, Start: 500 * time.Millisecond, End: 800 * time.Millisecond},
			{ID: "fx", Category: window.CategoryCustom, Start: 0, End: 100 * time.Millisecond},
		},
	}
}

type recorder struct{ begins, ends []string }

func (r *recorder) OnWindowBegin(w *window.Window) { r.begins = append(r.begins, w.ID) }
func (r *recorder) OnWindowEnd(w *window.Window)   { r.ends = append(r.ends, w.ID) }

func newTimeline(t *testing.T) *window.Timeline {
	lib, err := window.NewLibrary(slashClip())
	require.NoError(t, err)
	return window.NewTimeline(lib)
}

func TestClip_Validate(t *testing.T) {
	c := slashClip()
	require.NoError(t, c.Validate())

	c.Windows[0].End = 2 * time.Second
	assert.Error(t, c.Validate())

	c = slashClip()
	c.Windows[0].Hitbox = nil
	assert.Error(t, c.Validate())

	c = slashClip()
	c.Windows[1].ID = "hit"
	assert.Error(t, c.Validate())
}

func TestClip_SectionStart(t *testing.T) {
	c := slashClip()
	assert.Equal(t, 600*time.Millisecond, c.SectionStart("recovery"))
	assert.Equal(t, time.Duration(0), c.SectionStart(""))
	assert.Equal(t, time.Duration(0), c.SectionStart("missing"))
}

func TestBinder_BindsOnlyDispatchedCategories(t *testing.T) {
	tl := newTimeline(t)
	rec := &recorder{}
	b := window.NewBinder(tl, rec)
	assert.Equal(t, 2, b.Bind("slash"))
	assert.Equal(t, 0, b.Bind("unknown"), "rebinding releases the previous clip")
	assert.Equal(t, 0, b.Bound())
}

func TestBinder_UnbindAllIsPrecise(t *testing.T) {
	tl := newTimeline(t)
	mine := &recorder{}
	theirs := &recorder{}
	b := window.NewBinder(tl, mine)
	other := window.NewBinder(tl, theirs)
	b.Bind("slash")
	other.Bind("slash")

	hit := tl.Windows("slash")[0]
	assert.Equal(t, 2, tl.Listeners(hit))

	b.UnbindAll()
	assert.Equal(t, 1, tl.Listeners(hit))

	tl.Begin(hit)
	assert.Empty(t, mine.begins)
	assert.Equal(t, []string{"hit"}, theirs.begins)
}

func TestTimeline_UnsubscribeDuringDelivery(t *testing.T) {
	tl := newTimeline(t)
	hit := tl.Windows("slash")[0]
	var sub window.Subscription
	calls := 0
	sub = tl.Subscribe(hit, window.ListenerFuncs{Begin: func(*window.Window) {
		calls++
		tl.Unsubscribe(sub)
	}})
	late := &recorder{}
	tl.Subscribe(hit, late)

	tl.Begin(hit)
	tl.Begin(hit)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"hit", "hit"}, late.begins)
}

func TestLoadClips(t *testing.T) {
	dir := t.TempDir()
	doc := `
clips:
  - name: thrust
    length: 900ms
    sections: {start: 0s, late: 300ms}
    windows:
      - id: thrust_hit
        category: hitbox
        start: 250ms
        end: 450ms
        hitbox: {socket: tip, radius: 15, offset: {x: 10, y: 0, z: 0}}
      - id: thrust_parry
        category: parry
        start: 100ms
        end: 300ms
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thrust.yaml"), []byte(doc), 0o644))
	lib, err := window.LoadClips(dir)
	require.NoError(t, err)

	c, ok := lib.Clip("thrust")
	require.True(t, ok)
	require.Len(t, c.Windows, 2)
	assert.Equal(t, window.CategoryParry, c.Windows[1].Category)
	assert.Equal(t, 200*time.Millisecond, c.Windows[1].Length())
	assert.Equal(t, 10.0, c.Windows[0].Hitbox.Offset.X)
}

func TestLoadClips_UnknownCategory(t *testing.T) {
	dir := t.TempDir()
	doc := "clips:\n  - name: x\n    length: 1s\n    windows:\n      - {id: a, category: dance, start: 0s, end: 1s}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte(doc), 0o644))
	_, err := window.LoadClips(dir)
	assert.Error(t, err)
}
