package call

import (
	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/model"
)

// transitionTable maps role × current status to the set of statuses the
// caller may move the call into. It is the single source of truth for the
// lifecycle; every action endpoint goes through Allowed rather than
// checking statuses ad hoc.
var transitionTable = map[auth.Role]map[model.CallStatus][]model.CallStatus{
	auth.RoleWaiter: {
		model.StatusPending:      {model.StatusAcknowledged, model.StatusCompleted},
		model.StatusAcknowledged: {model.StatusInProgress, model.StatusCompleted},
		model.StatusInProgress:   {model.StatusCompleted},
		// Recovery of a timed-out call; clears missed-at on apply.
		model.StatusMissed: {model.StatusAcknowledged},
	},
	auth.RoleAdmin: {
		model.StatusPending:      {model.StatusAcknowledged, model.StatusCompleted, model.StatusMissed, model.StatusCancelled},
		model.StatusAcknowledged: {model.StatusInProgress, model.StatusCompleted, model.StatusMissed, model.StatusCancelled},
		model.StatusInProgress:   {model.StatusCompleted, model.StatusMissed, model.StatusCancelled},
		model.StatusMissed:       {model.StatusAcknowledged, model.StatusCompleted, model.StatusCancelled},
	},
}

// Allowed reports whether the role may move a call from the current status
// to the target status. Legacy statuses are normalized before lookup, so a
// call persisted as "handled" is terminal like "completed".
func Allowed(role auth.Role, from, to model.CallStatus) bool {
	from = model.NormalizeStatus(from)
	to = model.NormalizeStatus(to)

	targets, ok := transitionTable[role][from]
	if !ok {
		return false
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}

// sourcesFor returns every status from which the role may reach the target.
// Used to build the expected-status set for the store's conditional update.
func sourcesFor(role auth.Role, to model.CallStatus) []model.CallStatus {
	var sources []model.CallStatus
	for from, targets := range transitionTable[role] {
		for _, t := range targets {
			if t == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}
