package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal(t *testing.T) {
	terminal := []string{
		StatusCompleted,
		StatusCancelled,
		StatusRefunded,
		StatusRejected,
	}
	for _, status := range terminal {
		assert.True(t, IsTerminal(status), "status %s", status)
	}

	active := []string{
		StatusDraft,
		StatusSubmitted,
		StatusAccepted,
		StatusAwaitingPayment,
		StatusFunded,
		StatusScheduled,
		StatusPosted,
		StatusHoldVerification,
	}
	for _, status := range active {
		assert.False(t, IsTerminal(status), "status %s", status)
	}
}

func TestIsFunded(t *testing.T) {
	funded := []string{
		StatusFunded,
		StatusCreativePending,
		StatusCreativeSubmitted,
		StatusCreativeChangesRequested,
		StatusCreativeApproved,
		StatusScheduled,
		StatusPosted,
		StatusHoldVerification,
	}
	for _, status := range funded {
		assert.True(t, IsFunded(status), "status %s", status)
	}

	unfunded := []string{
		StatusDraft,
		StatusSubmitted,
		StatusAccepted,
		StatusAwaitingPayment,
		StatusCompleted,
		StatusCancelled,
		StatusRefunded,
		StatusRejected,
	}
	for _, status := range unfunded {
		assert.False(t, IsFunded(status), "status %s", status)
	}
}
