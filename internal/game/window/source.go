package window

import (
	"sync"
)

// Listener receives window signals.
type Listener interface {
	OnWindowBegin(w *Window)
	OnWindowEnd(w *Window)
}

// ListenerFuncs adapts a pair of functions to Listener. Nil funcs are skipped.
type ListenerFuncs struct {
	Begin func(w *Window)
	End   func(w *Window)
}

// OnWindowBegin calls Begin if set.
func (f ListenerFuncs) OnWindowBegin(w *Window) {
	if f.Begin != nil {
		f.Begin(w)
	}
}

// OnWindowEnd calls End if set.
func (f ListenerFuncs) OnWindowEnd(w *Window) {
	if f.End != nil {
		f.End(w)
	}
}

// Subscription identifies one registered listener on one window.
type Subscription struct {
	window *Window
	id     uint64
}

// Window returns the window the subscription is attached to.
func (s Subscription) Window() *Window { return s.window }

// Source delivers window signals for clips. Implementations are shared by
// every combatant that plays the same clips, so a listener may receive
// signals caused by another combatant's playback.
type Source interface {
	// Windows returns the annotated windows of clip, or nil for an unknown clip.
	Windows(clip string) []*Window
	// Subscribe registers l on w.
	Subscribe(w *Window, l Listener) Subscription
	// Unsubscribe removes exactly the registration identified by s.
	Unsubscribe(s Subscription)
}

type registration struct {
	id       uint64
	listener Listener
}

// Timeline is an in-process Source backed by a clip Library. Playback
// drivers call Begin and End as clip time crosses window boundaries.
//
// Timeline is safe for concurrent use. Listener slices are snapshotted
// before delivery so listeners may subscribe or unsubscribe from a callback.
type Timeline struct {
	lib *Library

	mu     sync.Mutex
	nextID uint64
	subs   map[*Window][]registration
}

// NewTimeline returns a Timeline serving lib's clips.
//
// Precondition: lib must be non-nil.
func NewTimeline(lib *Library) *Timeline {
	return &Timeline{lib: lib, subs: make(map[*Window][]registration)}
}

// Library returns the clip library.
func (t *Timeline) Library() *Library { return t.lib }

// Windows returns clip's windows.
func (t *Timeline) Windows(clip string) []*Window {
	c, ok := t.lib.Clip(clip)
	if !ok {
		return nil
	}
	return c.Windows
}

// Subscribe registers l on w.
func (t *Timeline) Subscribe(w *Window, l Listener) Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.subs[w] = append(t.subs[w], registration{id: t.nextID, listener: l})
	return Subscription{window: w, id: t.nextID}
}

// Unsubscribe removes the registration identified by s. Unknown subscriptions are ignored.
func (t *Timeline) Unsubscribe(s Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	regs := t.subs[s.window]
	for i, r := range regs {
		if r.id == s.id {
			regs = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(regs) == 0 {
		delete(t.subs, s.window)
		return
	}
	t.subs[s.window] = regs
}

// Listeners returns the number of registrations on w.
func (t *Timeline) Listeners(w *Window) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs[w])
}

// Begin delivers a begin signal for w to every current listener.
func (t *Timeline) Begin(w *Window) {
	for _, r := range t.snapshot(w) {
		r.listener.OnWindowBegin(w)
	}
}

// End delivers an end signal for w to every current listener.
func (t *Timeline) End(w *Window) {
	for _, r := range t.snapshot(w) {
		r.listener.OnWindowEnd(w)
	}
}

func (t *Timeline) snapshot(w *Window) []registration {
	t.mu.Lock()
	defer t.mu.Unlock()
	regs := t.subs[w]
	out := make([]registration, len(regs))
	copy(out, regs)
	return out
}
