// File: internal/registration/state.go
package registration

import (
	"errors"
	"fmt"

	"marketplace_onboarding/internal/draft"
)

// State is where a registration wizard stands.
type State string

const (
	StateEmpty       State = "EMPTY"
	StateStep1Filled State = "STEP1_FILLED"
	StateStep2Filled State = "STEP2_FILLED"
	StateSubmitting  State = "SUBMITTING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Event moves the wizard between states.
type Event string

const (
	EventCredentialsSaved   Event = "credentials_saved"
	EventCustomerRegistered Event = "customer_registered"
	EventProfileSaved       Event = "profile_saved"
	EventSubmitStarted      Event = "submit_started"
	EventSubmitSucceeded    Event = "submit_succeeded"
	EventSubmitFailed       Event = "submit_failed"
	EventRetry              Event = "retry"
)

var ErrInvalidTransition = errors.New("invalid registration state transition")

var transitions = map[State]map[Event]State{
	StateEmpty: {
		EventCredentialsSaved:   StateStep1Filled,
		EventCustomerRegistered: StateDone,
	},
	StateStep1Filled: {
		EventCredentialsSaved: StateStep1Filled,
		EventProfileSaved:     StateStep2Filled,
	},
	StateStep2Filled: {
		EventCredentialsSaved: StateStep1Filled,
		EventProfileSaved:     StateStep2Filled,
		EventSubmitStarted:    StateSubmitting,
	},
	StateSubmitting: {
		EventSubmitSucceeded: StateDone,
		EventSubmitFailed:    StateFailed,
	},
	StateFailed: {
		EventCredentialsSaved: StateStep1Filled,
		EventProfileSaved:     StateStep2Filled,
		EventRetry:            StateStep2Filled,
	},
}

// Transition returns the state reached from `from` on ev.
func Transition(from State, ev Event) (State, error) {
	if next, ok := transitions[from][ev]; ok {
		return next, nil
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, from, ev)
}

// StateOf derives the resting state of a stored draft.
func StateOf(d *draft.Draft) State {
	switch {
	case d == nil || d.Step1 == nil:
		return StateEmpty
	case d.Step2 == nil:
		return StateStep1Filled
	default:
		return StateStep2Filled
	}
}

// StepResult tells the client where the wizard stands and which screen to show next.
type StepResult struct {
	State      State             `json:"state"`
	RedirectTo string            `json:"redirect_to"`
	Role       Role              `json:"role"`
	Documents  map[string]string `json:"documents,omitempty"`
	Draft      *draft.Draft      `json:"draft,omitempty"`
	Message    string            `json:"message,omitempty"`
}
