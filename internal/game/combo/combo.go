// Package combo tracks the combo-continuation window of a single combatant.
package combo

// State is the window state.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Machine is the Closed/Open combo state machine.
//
// Invariant: Allowed is non-empty only while the state is Open.
type Machine struct {
	state       State
	allowed     []string
	continuable bool
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// IsOpen reports whether the window is open.
func (m *Machine) IsOpen() bool { return m.state == Open }

// CanContinue reports whether the window is open with a non-empty allowed list.
func (m *Machine) CanContinue() bool { return m.state == Open && m.continuable }

// Allowed returns a copy of the allowed continuation names.
func (m *Machine) Allowed() []string {
	if len(m.allowed) == 0 {
		return nil
	}
	return append([]string(nil), m.allowed...)
}

// Begin opens the window with the current action's continuation list.
//
// Postcondition: State() == Open; CanContinue() == (len(allowed) > 0).
func (m *Machine) Begin(allowed []string) {
	m.state = Open
	m.allowed = append([]string(nil), allowed...)
	m.continuable = len(m.allowed) > 0
}

// End handles the end of the window.
//
// Postcondition: State() == Closed and Allowed() is empty.
func (m *Machine) End() { m.close() }

// Chained force-closes the window after a successful continuation. The next
// clip's own combo window reopens it.
//
// Postcondition: State() == Closed and Allowed() is empty.
func (m *Machine) Chained() { m.close() }

func (m *Machine) close() {
	m.state = Closed
	m.allowed = nil
	m.continuable = false
}
