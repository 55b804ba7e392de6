package call

import (
	"context"
	"errors"
	"fmt"
	"time"

	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/model"
	"waiter-call-backend/internal/store"
)

// CallStore is the subset of the persistence layer the lifecycle service
// depends on.
type CallStore interface {
	CreateCall(ctx context.Context, c *model.Call) error
	GetCall(ctx context.Context, id int64) (*model.Call, error)
	TransitionCall(ctx context.Context, id int64, expected []model.CallStatus, mutate func(*model.Call)) (*model.Call, error)
	ListActiveCalls(ctx context.Context, restaurantID int64) ([]model.Call, error)
	GetTableByCode(ctx context.Context, code string) (*model.Table, error)
	CountActiveWaiters(ctx context.Context, restaurantID int64) (int64, error)
	ListOverduePendingIDs(ctx context.Context, cutoff time.Time) ([]int64, error)
}

// Service implements the call lifecycle: creation plus every
// authorization-gated status transition. All mutations flow through the
// store's transactional TransitionCall, so concurrent staff actions on the
// same call serialize on the database.
type Service struct {
	store CallStore
	guard *Guard
	now   func() time.Time
}

// NewService creates a lifecycle service.
func NewService(s CallStore, g *Guard) *Service {
	return &Service{store: s, guard: g, now: time.Now}
}

// Create registers a new pending call for the table identified by its
// public code. Customers are unauthenticated beyond the table identity, so
// creation fails fast on unknown or inactive tables and on restaurants
// with no active staff to route to.
func (s *Service) Create(ctx context.Context, tableCode string) (*model.Call, error) {
	table, err := s.store.GetTableByCode(ctx, tableCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound.WithMessage("unknown table")
		}
		return nil, fmt.Errorf("lookup table: %w", err)
	}
	if !table.Active {
		return nil, ErrInvalidArgument.WithMessage("table is not active")
	}

	waiters, err := s.store.CountActiveWaiters(ctx, table.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("count staff: %w", err)
	}
	if waiters == 0 {
		return nil, ErrInvalidArgument.WithMessage("no staff available for this restaurant")
	}

	c := &model.Call{
		RestaurantID: table.RestaurantID,
		TableID:      table.ID,
		Status:       model.StatusPending,
		RequestedAt:  s.now().UTC(),
	}
	if err := s.store.CreateCall(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get loads a call for an authenticated staff member.
func (s *Service) Get(ctx context.Context, id auth.Identity, callID int64) (*model.Call, error) {
	c, err := s.loadCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, id, c, false); err != nil {
		return nil, err
	}
	return c, nil
}

// ListActive returns the caller's restaurant's open calls.
func (s *Service) ListActive(ctx context.Context, id auth.Identity) ([]model.Call, error) {
	if id.Role != auth.RoleAdmin && id.Role != auth.RoleWaiter {
		return nil, ErrUnauthenticated
	}
	return s.store.ListActiveCalls(ctx, id.RestaurantID)
}

// Acknowledge claims a pending or missed call for the calling waiter. The
// waiter must hold a table assignment for the call's table. Recovery of a
// missed call clears missed-at. Response time is recorded in milliseconds
// on the first acknowledging transition and never changes afterwards.
func (s *Service) Acknowledge(ctx context.Context, id auth.Identity, callID int64) (*model.Call, error) {
	return s.transition(ctx, id, callID, model.StatusAcknowledged, transitionOpts{needAssignment: true})
}

// Start moves an acknowledged call into in-progress.
func (s *Service) Start(ctx context.Context, id auth.Identity, callID int64) (*model.Call, error) {
	return s.transition(ctx, id, callID, model.StatusInProgress, transitionOpts{requireAssignee: true})
}

// Resolve marks a call fully serviced. A waiter may resolve only a call
// currently assigned to them; admins may force-complete any non-terminal
// call.
func (s *Service) Resolve(ctx context.Context, id auth.Identity, callID int64) (*model.Call, error) {
	return s.transition(ctx, id, callID, model.StatusCompleted, transitionOpts{requireAssignee: true})
}

// Cancel voids a non-terminal call. Only the admin role holds cancel
// transitions in the table; a waiter attempting it gets an invalid
// transition error.
func (s *Service) Cancel(ctx context.Context, id auth.Identity, callID int64) (*model.Call, error) {
	return s.transition(ctx, id, callID, model.StatusCancelled, transitionOpts{})
}

// MarkMissed forces a call into missed. Admin-only manual override; the
// usual path into missed is the background sweeper.
func (s *Service) MarkMissed(ctx context.Context, id auth.Identity, callID int64) (*model.Call, error) {
	return s.transition(ctx, id, callID, model.StatusMissed, transitionOpts{})
}

// SweepOverdue transitions calls pending since before the cutoff into
// missed. It runs outside any request identity; a call acknowledged after
// the id listing simply fails its precondition and is skipped.
func (s *Service) SweepOverdue(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.store.ListOverduePendingIDs(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, callID := range ids {
		now := s.now().UTC()
		_, err := s.store.TransitionCall(ctx, callID, []model.CallStatus{model.StatusPending}, func(c *model.Call) {
			c.Status = model.StatusMissed
			if c.MissedAt == nil {
				c.MissedAt = &now
			}
		})
		if errors.Is(err, store.ErrStaleStatus) || errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return swept, err
		}
		swept++
	}
	return swept, nil
}

type transitionOpts struct {
	// needAssignment requires a waiter↔table assignment row for the call's
	// table (waiter role only).
	needAssignment bool
	// requireAssignee requires the call to be currently assigned to the
	// calling waiter (waiter role only).
	requireAssignee bool
}

// transition is the single entry point for every status change. It loads
// the call, runs the authorization guard, consults the role-sensitive
// transition table, and applies the bookkeeping mutation through the
// store's precondition-rechecking update.
func (s *Service) transition(ctx context.Context, id auth.Identity, callID int64, target model.CallStatus, opts transitionOpts) (*model.Call, error) {
	c, err := s.loadCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, id, c, opts.needAssignment); err != nil {
		return nil, err
	}
	if opts.requireAssignee && !id.IsAdmin() {
		if id.WaiterID == nil || c.WaiterID == nil || *c.WaiterID != *id.WaiterID {
			return nil, ErrForbidden
		}
	}
	if !Allowed(id.Role, c.Status, target) {
		return nil, ErrInvalidTransition.WithMessage("cannot move call from %s to %s", model.NormalizeStatus(c.Status), target)
	}

	now := s.now().UTC()
	expected := sourcesFor(id.Role, target)
	updated, err := s.store.TransitionCall(ctx, callID, expected, func(c *model.Call) {
		c.Status = target
		switch target {
		case model.StatusAcknowledged:
			if id.WaiterID != nil {
				c.WaiterID = id.WaiterID
			}
			if c.AcknowledgedAt == nil {
				c.AcknowledgedAt = &now
			}
			if c.ResponseTimeMS == nil {
				rt := now.Sub(c.RequestedAt).Milliseconds()
				c.ResponseTimeMS = &rt
			}
			c.MissedAt = nil
		case model.StatusCompleted:
			if c.CompletedAt == nil {
				c.CompletedAt = &now
			}
			if c.ResponseTimeMS == nil {
				rt := now.Sub(c.RequestedAt).Milliseconds()
				c.ResponseTimeMS = &rt
			}
		case model.StatusMissed:
			if c.MissedAt == nil {
				c.MissedAt = &now
			}
		}
	})
	if err != nil {
		if errors.Is(err, store.ErrStaleStatus) {
			return nil, ErrInvalidTransition.WithMessage("call already moved out of %s", model.NormalizeStatus(c.Status))
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCallNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *Service) loadCall(ctx context.Context, callID int64) (*model.Call, error) {
	c, err := s.store.GetCall(ctx, callID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCallNotFound
		}
		return nil, err
	}
	return c, nil
}
