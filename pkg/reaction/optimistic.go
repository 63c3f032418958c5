package reaction

// MutationState tracks an optimistic mutation through its lifecycle.
type MutationState int

const (
	// MutationPending means the local change is applied but unconfirmed.
	MutationPending MutationState = iota

	// MutationConfirmed means the server accepted the change.
	MutationConfirmed

	// MutationRolledBack means the server call failed and the local
	// change was reverted.
	MutationRolledBack
)

// Mutation is an optimistic local change awaiting server confirmation.
// Begin applies the change immediately; the caller then settles it with
// Confirm or Rollback depending on the server outcome.
type Mutation struct {
	state    MutationState
	rollback func()
}

// Begin applies the local change and returns the pending mutation.
func Begin(apply func(), rollback func()) *Mutation {
	apply()
	return &Mutation{state: MutationPending, rollback: rollback}
}

// Confirm settles the mutation: the local change stands.
func (m *Mutation) Confirm() {
	if m.state == MutationPending {
		m.state = MutationConfirmed
	}
}

// Rollback reverts the local change. Safe to call only while pending.
func (m *Mutation) Rollback() {
	if m.state == MutationPending {
		m.rollback()
		m.state = MutationRolledBack
	}
}

// State returns the mutation's current lifecycle state.
func (m *Mutation) State() MutationState {
	return m.state
}
