package call

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waiter-call-backend/internal/auth"
	"waiter-call-backend/internal/model"
	"waiter-call-backend/internal/store"
)

// fakeCallStore is an in-memory CallStore that mirrors the real store's
// transition semantics: the precondition is re-checked at write time.
type fakeCallStore struct {
	calls   map[int64]*model.Call
	tables  map[string]*model.Table
	waiters map[int64]int64 // restaurant id -> active waiter count
	nextID  int64
}

func newFakeCallStore() *fakeCallStore {
	return &fakeCallStore{
		calls:   make(map[int64]*model.Call),
		tables:  make(map[string]*model.Table),
		waiters: make(map[int64]int64),
		nextID:  1,
	}
}

func (f *fakeCallStore) CreateCall(_ context.Context, c *model.Call) error {
	c.ID = f.nextID
	f.nextID++
	cp := *c
	f.calls[c.ID] = &cp
	return nil
}

func (f *fakeCallStore) GetCall(_ context.Context, id int64) (*model.Call, error) {
	c, ok := f.calls[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	cp.Status = model.NormalizeStatus(cp.Status)
	return &cp, nil
}

func (f *fakeCallStore) TransitionCall(_ context.Context, id int64, expected []model.CallStatus, mutate func(*model.Call)) (*model.Call, error) {
	c, ok := f.calls[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	match := false
	for _, e := range expected {
		if model.NormalizeStatus(c.Status) == e {
			match = true
		}
	}
	if !match {
		return nil, store.ErrStaleStatus
	}
	mutate(c)
	cp := *c
	return &cp, nil
}

func (f *fakeCallStore) ListActiveCalls(_ context.Context, restaurantID int64) ([]model.Call, error) {
	var out []model.Call
	for _, c := range f.calls {
		if c.RestaurantID == restaurantID && !c.Status.IsTerminal() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCallStore) GetTableByCode(_ context.Context, code string) (*model.Table, error) {
	t, ok := f.tables[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (f *fakeCallStore) CountActiveWaiters(_ context.Context, restaurantID int64) (int64, error) {
	return f.waiters[restaurantID], nil
}

func (f *fakeCallStore) ListOverduePendingIDs(_ context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	for id, c := range f.calls {
		if c.Status == model.StatusPending && c.RequestedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newTestService(fs *fakeCallStore, assigned map[[2]int64]bool) *Service {
	svc := NewService(fs, &Guard{Assignments: &fakeAssignments{assigned: assigned}})
	return svc
}

func seedCall(fs *fakeCallStore, restaurantID, tableID int64, status model.CallStatus, requestedAt time.Time) int64 {
	id := fs.nextID
	fs.nextID++
	fs.calls[id] = &model.Call{
		ID:           id,
		RestaurantID: restaurantID,
		TableID:      tableID,
		Status:       status,
		RequestedAt:  requestedAt,
	}
	return id
}

func TestServiceCreate(t *testing.T) {
	fs := newFakeCallStore()
	fs.tables["t1"] = &model.Table{ID: 10, RestaurantID: 5, Code: "t1", Active: true}
	fs.tables["closed"] = &model.Table{ID: 11, RestaurantID: 5, Code: "closed", Active: false}
	fs.waiters[5] = 2
	svc := newTestService(fs, nil)
	ctx := context.Background()

	t.Run("creates pending unassigned call", func(t *testing.T) {
		c, err := svc.Create(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, c.Status)
		assert.Nil(t, c.WaiterID)
		assert.False(t, c.RequestedAt.IsZero())
	})

	t.Run("unknown table", func(t *testing.T) {
		_, err := svc.Create(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inactive table", func(t *testing.T) {
		_, err := svc.Create(ctx, "closed")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("no active staff", func(t *testing.T) {
		fs.tables["t9"] = &model.Table{ID: 90, RestaurantID: 9, Code: "t9", Active: true}
		_, err := svc.Create(ctx, "t9")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestServiceAcknowledge(t *testing.T) {
	ctx := context.Background()
	assigned := map[[2]int64]bool{{1, 10}: true, {2, 20}: true}

	t.Run("assigned waiter wins and bookkeeping is set", func(t *testing.T) {
		fs := newFakeCallStore()
		requested := time.Now().UTC().Add(-30 * time.Second)
		id := seedCall(fs, 5, 10, model.StatusPending, requested)
		svc := newTestService(fs, assigned)

		c, err := svc.Acknowledge(ctx, waiterIdentity(5, 1), id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAcknowledged, c.Status)
		require.NotNil(t, c.WaiterID)
		assert.Equal(t, int64(1), *c.WaiterID)
		require.NotNil(t, c.AcknowledgedAt)
		require.NotNil(t, c.ResponseTimeMS)
		assert.GreaterOrEqual(t, *c.ResponseTimeMS, int64(0))
	})

	t.Run("second acknowledge fails with invalid transition", func(t *testing.T) {
		fs := newFakeCallStore()
		id := seedCall(fs, 5, 10, model.StatusPending, time.Now().UTC())
		svc := newTestService(fs, assigned)

		first, err := svc.Acknowledge(ctx, waiterIdentity(5, 1), id)
		require.NoError(t, err)

		_, err = svc.Acknowledge(ctx, waiterIdentity(5, 1), id)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		// Response time never changes on a failed attempt.
		current, err := fs.GetCall(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, *first.ResponseTimeMS, *current.ResponseTimeMS)
	})

	t.Run("unassigned waiter denied", func(t *testing.T) {
		fs := newFakeCallStore()
		id := seedCall(fs, 5, 10, model.StatusPending, time.Now().UTC())
		svc := newTestService(fs, assigned)

		_, err := svc.Acknowledge(ctx, waiterIdentity(5, 2), id)
		assert.ErrorIs(t, err, ErrNotAssigned)
	})

	t.Run("cross-restaurant denied as wrong restaurant", func(t *testing.T) {
		fs := newFakeCallStore()
		id := seedCall(fs, 5, 10, model.StatusPending, time.Now().UTC())
		svc := newTestService(fs, assigned)

		_, err := svc.Acknowledge(ctx, waiterIdentity(6, 1), id)
		assert.ErrorIs(t, err, ErrWrongRestaurant)
	})

	t.Run("missing call", func(t *testing.T) {
		fs := newFakeCallStore()
		svc := newTestService(fs, assigned)
		_, err := svc.Acknowledge(ctx, waiterIdentity(5, 1), 999)
		assert.ErrorIs(t, err, ErrCallNotFound)
	})

	t.Run("recovery from missed clears missed-at", func(t *testing.T) {
		fs := newFakeCallStore()
		id := seedCall(fs, 5, 10, model.StatusMissed, time.Now().UTC().Add(-time.Minute))
		missedAt := time.Now().UTC().Add(-10 * time.Second)
		fs.calls[id].MissedAt = &missedAt
		svc := newTestService(fs, assigned)

		c, err := svc.Acknowledge(ctx, waiterIdentity(5, 1), id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAcknowledged, c.Status)
		assert.Nil(t, c.MissedAt)
	})
}

func TestServiceResolve(t *testing.T) {
	ctx := context.Background()
	assigned := map[[2]int64]bool{{1, 10}: true}

	t.Run("assignee resolves and response time is preserved", func(t *testing.T) {
		fs := newFakeCallStore()
		id := seedCall(fs, 5, 10, model.StatusPending, time.Now().UTC().Add(-time.Minute))
		svc := newTestService(fs, assigned)

		acked, err := svc.Acknowledge(ctx, waiterIdentity(5, 1), id)
		require.NoError(t, err)

		resolved, err := svc.Resolve(ctx, waiterIdentity(5, 1), id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, resolved.Status)
		require.NotNil(t, resolved.CompletedAt)
		assert.Equal(t, *acked.ResponseTimeMS, *resolved.ResponseTimeMS)

		_, err = svc.Resolve(ctx, waiterIdentity(5, 1), id)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("non-assignee waiter denied", func(t *testing.T) {
		fs := newFakeCallStore()
		id := seedCall(fs, 5, 10, model.StatusAcknowledged, time.Now().UTC())
		w1 := int64(1)
		fs.calls[id].WaiterID = &w1
		svc := newTestService(fs, assigned)

		_, err := svc.Resolve(ctx, waiterIdentity(5, 2), id)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("waiter cannot resolve an unclaimed call", func(t *testing.T) {
		fs := newFakeCallStore()
		id := seedCall(fs, 5, 10, model.StatusPending, time.Now().UTC())
		svc := newTestService(fs, assigned)

		_, err := svc.Resolve(ctx, waiterIdentity(5, 1), id)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin force-completes without assignment", func(t *testing.T) {
		fs := newFakeCallStore()
		id := seedCall(fs, 5, 10, model.StatusMissed, time.Now().UTC().Add(-time.Minute))
		svc := newTestService(fs, assigned)
		admin := auth.Identity{Role: auth.RoleAdmin, RestaurantID: 5}

		resolved, err := svc.Resolve(ctx, admin, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, resolved.Status)
		require.NotNil(t, resolved.ResponseTimeMS)
	})
}

func TestServiceCancel(t *testing.T) {
	ctx := context.Background()
	assigned := map[[2]int64]bool{{1, 10}: true}

	fs := newFakeCallStore()
	id := seedCall(fs, 5, 10, model.StatusPending, time.Now().UTC())
	svc := newTestService(fs, assigned)

	_, err := svc.Cancel(ctx, waiterIdentity(5, 1), id)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cancel is not a waiter transition")

	admin := auth.Identity{Role: auth.RoleAdmin, RestaurantID: 5}
	cancelled, err := svc.Cancel(ctx, admin, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, admin, id)
	assert.ErrorIs(t, err, ErrInvalidTransition, "cancelled is terminal")
}

func TestServiceSweepOverdue(t *testing.T) {
	ctx := context.Background()
	fs := newFakeCallStore()
	now := time.Now().UTC()

	overdue := seedCall(fs, 5, 10, model.StatusPending, now.Add(-10*time.Minute))
	fresh := seedCall(fs, 5, 10, model.StatusPending, now)
	acked := seedCall(fs, 5, 10, model.StatusAcknowledged, now.Add(-10*time.Minute))

	svc := newTestService(fs, nil)
	swept, err := svc.SweepOverdue(ctx, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	c, _ := fs.GetCall(ctx, overdue)
	assert.Equal(t, model.StatusMissed, c.Status)
	require.NotNil(t, c.MissedAt)

	c, _ = fs.GetCall(ctx, fresh)
	assert.Equal(t, model.StatusPending, c.Status)

	c, _ = fs.GetCall(ctx, acked)
	assert.Equal(t, model.StatusAcknowledged, c.Status)
}
