package call

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/model"
)

type fakeAssignments struct {
	assigned map[[2]int64]bool
}

func (f *fakeAssignments) HasAssignment(_ context.Context, waiterID, tableID int64) (bool, error) {
	return f.assigned[[2]int64{waiterID, tableID}], nil
}

func waiterIdentity(restaurantID, waiterID int64) auth.Identity {
	return auth.Identity{Role: auth.RoleWaiter, RestaurantID: restaurantID, WaiterID: &waiterID}
}

func TestGuardAuthorize(t *testing.T) {
	assignments := &fakeAssignments{assigned: map[[2]int64]bool{
		{1, 10}: true, // waiter 1 covers table 10
		{2, 20}: true, // waiter 2 covers table 20
	}}
	guard := &Guard{Assignments: assignments}
	ctx := context.Background()

	callOnT10 := &model.Call{ID: 100, RestaurantID: 5, TableID: 10, Status: model.StatusPending}

	t.Run("assigned waiter allowed", func(t *testing.T) {
		err := guard.Authorize(ctx, waiterIdentity(5, 1), callOnT10, true)
		assert.NoError(t, err)
	})

	t.Run("waiter on another table denied", func(t *testing.T) {
		err := guard.Authorize(ctx, waiterIdentity(5, 2), callOnT10, true)
		assert.ErrorIs(t, err, ErrNotAssigned)
	})

	t.Run("cross-restaurant reads as wrong restaurant before role logic", func(t *testing.T) {
		other := waiterIdentity(6, 1)
		err := guard.Authorize(ctx, other, callOnT10, true)
		assert.ErrorIs(t, err, ErrWrongRestaurant)

		admin := auth.Identity{Role: auth.RoleAdmin, RestaurantID: 6}
		err = guard.Authorize(ctx, admin, callOnT10, false)
		assert.ErrorIs(t, err, ErrWrongRestaurant)
	})

	t.Run("admin bypasses assignment", func(t *testing.T) {
		admin := auth.Identity{Role: auth.RoleAdmin, RestaurantID: 5}
		assert.NoError(t, guard.Authorize(ctx, admin, callOnT10, true))
	})

	t.Run("call claimed by someone else denied regardless of assignment", func(t *testing.T) {
		otherWaiter := int64(2)
		claimed := &model.Call{ID: 101, RestaurantID: 5, TableID: 10, WaiterID: &otherWaiter, Status: model.StatusAcknowledged}
		err := guard.Authorize(ctx, waiterIdentity(5, 1), claimed, true)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unauthenticated role denied", func(t *testing.T) {
		err := guard.Authorize(ctx, auth.Identity{}, callOnT10, false)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("missing call reads as call not found", func(t *testing.T) {
		err := guard.Authorize(ctx, waiterIdentity(5, 1), nil, false)
		assert.ErrorIs(t, err, ErrCallNotFound)
	})
}
