package reset

import "fmt"

// Flag is a persisted yes/no setting
type Flag string

const (
	Yes Flag = "yes"
	No  Flag = "no"
)

// ParseFlag accepts exactly "yes" or "no"
func ParseFlag(s string) (Flag, error) {
	switch Flag(s) {
	case Yes, No:
		return Flag(s), nil
	}
	return "", fmt.Errorf("invalid flag value %q", s)
}

// StoreStatus is the open/closed signal owned by the storefront
type StoreStatus string

const (
	StoreOpen   StoreStatus = "open"
	StoreClosed StoreStatus = "closed"
)

// Signal is the store status as read from the option store.
// Present is false when the storefront never wrote the option.
type Signal struct {
	Status  StoreStatus
	Present bool
}

// State holds the two flags the trigger owns
type State struct {
	ShouldRun Flag
	Completed Flag
}

// Outcome names what a trigger evaluation did
type Outcome string

const (
	OutcomeDisabled  Outcome = "disabled"
	OutcomeIdle      Outcome = "idle"
	OutcomeArmed     Outcome = "armed"
	OutcomeScheduled Outcome = "scheduled"
	OutcomeFailsafe  Outcome = "failsafe"
	OutcomeReset     Outcome = "reset"
)

// Step is the result of applying one evaluation to a State.
// Pending is persisted before the reset runs, Final after it succeeds.
type Step struct {
	Pending State
	Final   State
	Run     bool
	Outcome Outcome
}

// Next computes the flag transition for one evaluation.
//
// A missing store status forces Completed to yes whatever the prior state,
// so no reset can happen until the storefront reports "open" again. A
// scheduled reset only runs on the following evaluation.
func Next(cur State, sig Signal) Step {
	pending := cur
	outcome := OutcomeIdle

	switch {
	case !sig.Present:
		pending.Completed = Yes
		outcome = OutcomeFailsafe
	case cur.ShouldRun == No && sig.Status == StoreClosed && cur.Completed == No:
		pending.ShouldRun = Yes
		outcome = OutcomeScheduled
	case cur.ShouldRun == No && sig.Status == StoreOpen:
		pending.Completed = No
		outcome = OutcomeArmed
	}

	if cur.ShouldRun == Yes && pending.Completed == No {
		return Step{
			Pending: pending,
			Final:   State{ShouldRun: No, Completed: Yes},
			Run:     true,
			Outcome: OutcomeReset,
		}
	}

	// Both yes means a pending run was cancelled; drop it so the cycle can re-arm.
	if pending.ShouldRun == Yes && pending.Completed == Yes {
		pending.ShouldRun = No
	}
	return Step{Pending: pending, Final: pending, Outcome: outcome}
}
