package reset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFlag(t *testing.T) {
	for _, s := range []string{"yes", "no"} {
		f, err := ParseFlag(s)
		assert.NoError(t, err)
		assert.Equal(t, Flag(s), f)
	}
	for _, s := range []string{"", "Yes", "true", "1"} {
		_, err := ParseFlag(s)
		assert.Error(t, err, "ParseFlag(%q)", s)
	}
}

func TestNext(t *testing.T) {
	open := Signal{Status: StoreOpen, Present: true}
	closed := Signal{Status: StoreClosed, Present: true}
	missing := Signal{}

	tests := []struct {
		name    string
		cur     State
		sig     Signal
		pending State
		final   State
		run     bool
		outcome Outcome
	}{
		{
			name:    "open keeps cycle armed",
			cur:     State{No, No},
			sig:     open,
			pending: State{No, No},
			final:   State{No, No},
			outcome: OutcomeArmed,
		},
		{
			name:    "open re-arms after completed cycle",
			cur:     State{No, Yes},
			sig:     open,
			pending: State{No, No},
			final:   State{No, No},
			outcome: OutcomeArmed,
		},
		{
			name:    "close schedules a reset",
			cur:     State{No, No},
			sig:     closed,
			pending: State{Yes, No},
			final:   State{Yes, No},
			outcome: OutcomeScheduled,
		},
		{
			name:    "closed after completed stays idle",
			cur:     State{No, Yes},
			sig:     closed,
			pending: State{No, Yes},
			final:   State{No, Yes},
			outcome: OutcomeIdle,
		},
		{
			name:    "scheduled reset runs",
			cur:     State{Yes, No},
			sig:     closed,
			pending: State{Yes, No},
			final:   State{No, Yes},
			run:     true,
			outcome: OutcomeReset,
		},
		{
			name:    "scheduled reset runs even if store reopened",
			cur:     State{Yes, No},
			sig:     open,
			pending: State{Yes, No},
			final:   State{No, Yes},
			run:     true,
			outcome: OutcomeReset,
		},
		{
			name:    "missing status completes idle cycle",
			cur:     State{No, No},
			sig:     missing,
			pending: State{No, Yes},
			final:   State{No, Yes},
			outcome: OutcomeFailsafe,
		},
		{
			name:    "missing status cancels scheduled reset",
			cur:     State{Yes, No},
			sig:     missing,
			pending: State{No, Yes},
			final:   State{No, Yes},
			outcome: OutcomeFailsafe,
		},
		{
			name:    "inconsistent flags are cleared",
			cur:     State{Yes, Yes},
			sig:     closed,
			pending: State{No, Yes},
			final:   State{No, Yes},
			outcome: OutcomeIdle,
		},
		{
			name:    "unknown status value is ignored",
			cur:     State{No, Yes},
			sig:     Signal{Status: "holiday", Present: true},
			pending: State{No, Yes},
			final:   State{No, Yes},
			outcome: OutcomeIdle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := Next(tt.cur, tt.sig)
			assert.Equal(t, tt.pending, step.Pending, "pending")
			assert.Equal(t, tt.final, step.Final, "final")
			assert.Equal(t, tt.run, step.Run, "run")
			assert.Equal(t, tt.outcome, step.Outcome, "outcome")
		})
	}
}

func TestNextNeverLeavesBothFlagsSet(t *testing.T) {
	flags := []Flag{Yes, No}
	signals := []Signal{
		{},
		{Status: StoreOpen, Present: true},
		{Status: StoreClosed, Present: true},
	}
	for _, sr := range flags {
		for _, c := range flags {
			for _, sig := range signals {
				step := Next(State{sr, c}, sig)
				assert.False(t, step.Final.ShouldRun == Yes && step.Final.Completed == Yes,
					"Next(%v, %+v) = %+v", State{sr, c}, sig, step.Final)
			}
		}
	}
}
