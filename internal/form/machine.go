package form

// State is the submission state of one contact-form instance.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSubmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Fields holds the user-editable form values.
type Fields struct {
	Name         string
	Email        string
	Phone        string
	BusinessName string
	BusinessType string
	Message      string
	Honeypot     string
}

// MissingRequired lists the required fields that are still empty. Phone is
// optional. This check is advisory; the gateway re-validates everything.
func (f Fields) MissingRequired() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"email", f.Email},
		{"businessName", f.BusinessName},
		{"businessType", f.BusinessType},
		{"message", f.Message},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// Machine is the pure transition core of the form controller:
//
//	Idle -> Submitting -> {Submitted | Failed}
//
// Failed allows a direct retry; Submitted requires an explicit Reset ("send
// another message") before a new submission can begin. While Submitting no
// second submission can begin, which is what keeps at most one request in
// flight per form instance.
type Machine struct {
	state   State
	failure string
}

// NewMachine returns a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Failure returns the message of the last failed submission, or "".
func (m *Machine) Failure() string {
	return m.failure
}

// Begin moves to Submitting. It reports false, changing nothing, when a
// submission is already in flight or a previous success awaits Reset.
func (m *Machine) Begin() bool {
	switch m.state {
	case StateIdle, StateFailed:
		m.state = StateSubmitting
		m.failure = ""
		return true
	default:
		return false
	}
}

// Succeed moves Submitting to Submitted.
func (m *Machine) Succeed() bool {
	if m.state != StateSubmitting {
		return false
	}
	m.state = StateSubmitted
	m.failure = ""
	return true
}

// Fail moves Submitting to Failed with the given message.
func (m *Machine) Fail(message string) bool {
	if m.state != StateSubmitting {
		return false
	}
	m.state = StateFailed
	m.failure = message
	return true
}

// Reset returns a terminal state to Idle. It reports false while Submitting;
// an in-flight submission cannot be cancelled.
func (m *Machine) Reset() bool {
	if m.state == StateSubmitting {
		return false
	}
	m.state = StateIdle
	m.failure = ""
	return true
}
