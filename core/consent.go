package core

// ConsentMode is the derived tri-state summary of a scope's consent flags.
type ConsentMode int

const (
	ConsentDisabled ConsentMode = iota
	ConsentEnabled
	ConsentPending
)

func (m ConsentMode) String() string {
	switch m {
	case ConsentEnabled:
		return "enabled"
	case ConsentPending:
		return "pending"
	default:
		return "disabled"
	}
}

// Participant identifies one of the two partners in a conversation scope.
type Participant int

const (
	ParticipantA Participant = iota
	ParticipantB
)

// ConsentState holds the two participants' independent consent flags for
// one scope. The mode is derived, never stored: it is Enabled exactly when
// both flags are true. Once a scope has been Enabled, withdrawing either
// flag drops the mode straight to Disabled; it never returns to Pending.
//
// Apply is the single mutation path. ConsentState is a value type, so
// callers always hold their own copy.
type ConsentState struct {
	flags       [2]bool
	everEnabled bool
}

// Apply sets one participant's flag and returns the updated state.
func (s ConsentState) Apply(p Participant, consent bool) ConsentState {
	if p != ParticipantA && p != ParticipantB {
		return s
	}
	s.flags[p] = consent
	if s.flags[ParticipantA] && s.flags[ParticipantB] {
		s.everEnabled = true
	}
	return s
}

// Flag returns one participant's current consent flag.
func (s ConsentState) Flag(p Participant) bool {
	if p != ParticipantA && p != ParticipantB {
		return false
	}
	return s.flags[p]
}

// Mode derives the tri-state consent mode from the flags.
func (s ConsentState) Mode() ConsentMode {
	a, b := s.flags[ParticipantA], s.flags[ParticipantB]
	switch {
	case a && b:
		return ConsentEnabled
	case s.everEnabled:
		return ConsentDisabled
	case a || b:
		return ConsentPending
	default:
		return ConsentDisabled
	}
}
