package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusCompleted, NormalizeStatus(StatusHandled))

	// Normalization is idempotent over the whole enumeration.
	all := []CallStatus{
		StatusPending, StatusAcknowledged, StatusInProgress,
		StatusCompleted, StatusMissed, StatusCancelled, StatusHandled,
	}
	for _, s := range all {
		once := NormalizeStatus(s)
		assert.Equal(t, once, NormalizeStatus(once), "normalize(normalize(%s))", s)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusHandled.IsTerminal(), "legacy handled is terminal like completed")

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAcknowledged.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusMissed.IsTerminal())
}
