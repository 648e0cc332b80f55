package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to LoanStatus
		allowed  bool
	}{
		{LoanPending, LoanActive, true},
		{LoanPending, LoanRejected, true},
		{LoanActive, LoanOverdue, true},
		{LoanActive, LoanClosed, true},
		{LoanOverdue, LoanClosed, true},

		{LoanPending, LoanClosed, false},
		{LoanPending, LoanOverdue, false},
		{LoanRejected, LoanActive, false},
		{LoanRejected, LoanPending, false},
		{LoanClosed, LoanActive, false},
		{LoanClosed, LoanPending, false},
		{LoanOverdue, LoanActive, false},
		{LoanActive, LoanRejected, false},
		{LoanActive, LoanActive, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatesHaveNoOutgoingTransitions(t *testing.T) {
	all := []LoanStatus{LoanPending, LoanActive, LoanOverdue, LoanRejected, LoanClosed}
	for _, to := range all {
		assert.False(t, CanTransition(LoanRejected, to), "rejected -> %s", to)
		assert.False(t, CanTransition(LoanClosed, to), "closed -> %s", to)
	}
}

func TestTransitionSources(t *testing.T) {
	assert.Equal(t, []LoanStatus{LoanPending}, TransitionSources(LoanActive))
	assert.Equal(t, []LoanStatus{LoanPending}, TransitionSources(LoanRejected))
	assert.Equal(t, []LoanStatus{LoanActive}, TransitionSources(LoanOverdue))
	assert.ElementsMatch(t, []LoanStatus{LoanActive, LoanOverdue}, TransitionSources(LoanClosed))
	assert.Empty(t, TransitionSources(LoanPending))
}
