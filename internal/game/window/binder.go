package window

// Binder tracks the subscriptions a single combatant holds on the windows of
// its current clip so they can be removed precisely.
//
// Invariant: after UnbindAll, the binder holds no subscriptions.
type Binder struct {
	src      Source
	listener Listener
	subs     []Subscription
}

// NewBinder returns a Binder that subscribes listener on src.
//
// Precondition: src and listener must be non-nil.
func NewBinder(src Source, listener Listener) *Binder {
	return &Binder{src: src, listener: listener}
}

// Bind releases any previous subscriptions, then subscribes to every
// dispatched window of clip. It returns the number of subscriptions made.
func (b *Binder) Bind(clip string) int {
	b.UnbindAll()
	for _, w := range b.src.Windows(clip) {
		if w == nil || !w.Category.Dispatched() {
			continue
		}
		b.subs = append(b.subs, b.src.Subscribe(w, b.listener))
	}
	return len(b.subs)
}

// UnbindAll removes every subscription this binder made, and nothing else.
func (b *Binder) UnbindAll() {
	for _, s := range b.subs {
		b.src.Unsubscribe(s)
	}
	b.subs = nil
}

// Bound returns the number of live subscriptions.
func (b *Binder) Bound() int { return len(b.subs) }
