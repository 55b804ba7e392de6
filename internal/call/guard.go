package call

import (
	"context"
	"fmt"

	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/model"
)

// AssignmentChecker answers whether a waiter is assigned to a table.
type AssignmentChecker interface {
	HasAssignment(ctx context.Context, waiterID, tableID int64) (bool, error)
}

// Guard decides whether an identity may act on a given call. Restaurant
// scoping is checked before any role logic; a cross-restaurant caller is
// told the call does not exist rather than that it is forbidden, so call
// ids do not leak across restaurants.
type Guard struct {
	Assignments AssignmentChecker
}

// Authorize validates the identity against the call. When needAssignment is
// true the waiter must additionally hold an assignment for the call's table.
// Staff actions fail closed: any state the rules do not explicitly permit
// is denied.
func (g *Guard) Authorize(ctx context.Context, id auth.Identity, c *model.Call, needAssignment bool) error {
	if id.Role != auth.RoleAdmin && id.Role != auth.RoleWaiter {
		return ErrUnauthenticated
	}
	if c == nil {
		return ErrCallNotFound
	}
	if c.RestaurantID != id.RestaurantID {
		return ErrWrongRestaurant
	}
	if id.IsAdmin() {
		return nil
	}
	if id.WaiterID == nil {
		return ErrForbidden
	}
	// A call already claimed by someone else is off limits regardless of
	// table assignment.
	if c.WaiterID != nil && *c.WaiterID != *id.WaiterID {
		return ErrForbidden
	}
	if needAssignment {
		ok, err := g.Assignments.HasAssignment(ctx, *id.WaiterID, c.TableID)
		if err != nil {
			return fmt.Errorf("check assignment: %w", err)
		}
		if !ok {
			return ErrNotAssigned
		}
	}
	return nil
}
