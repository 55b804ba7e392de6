package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"waiter-call-backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: record not found")

// ErrStaleStatus is returned by TransitionCall when the call's status is no
// longer in the expected set at write time. A racer losing a concurrent
// transition observes this instead of silently overwriting the winner.
var ErrStaleStatus = errors.New("store: status precondition failed")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateCall(ctx context.Context, c *model.Call) error
	GetCall(ctx context.Context, id int64) (*model.Call, error)
	TransitionCall(ctx context.Context, id int64, expected []model.CallStatus, mutate func(*model.Call)) (*model.Call, error)
	ListActiveCalls(ctx context.Context, restaurantID int64) ([]model.Call, error)
	LatestCallForTable(ctx context.Context, tableID int64) (*model.Call, error)
	ListOverduePendingIDs(ctx context.Context, cutoff time.Time) ([]int64, error)

	GetTable(ctx context.Context, id int64) (*model.Table, error)
	GetTableByCode(ctx context.Context, code string) (*model.Table, error)
	HasAssignment(ctx context.Context, waiterID, tableID int64) (bool, error)
	CountActiveWaiters(ctx context.Context, restaurantID int64) (int64, error)
	GetWaiter(ctx context.Context, id int64) (*model.Waiter, error)
	GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error)
	UpdateAccessCodeHash(ctx context.Context, restaurantID int64, hash string) error
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)

	SubscriptionsForWaiter(ctx context.Context, waiterID int64) ([]model.PushSubscription, error)
	SubscriptionsForRestaurant(ctx context.Context, restaurantID int64) ([]model.PushSubscription, error)
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscriptionByEndpoint(ctx context.Context, waiterID int64, endpoint string) error
	DeleteSubscriptions(ctx context.Context, ids []int64) error
	TouchSubscriptions(ctx context.Context, ids []int64, at time.Time) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateCall persists a new call row. The caller decides the initial status
// and timestamps; the store does not second-guess them.
func (s *gormStore) CreateCall(ctx context.Context, c *model.Call) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create call: %w", err)
	}
	return nil
}

// GetCall loads a call by id. Legacy status values are normalized before
// the call leaves the store.
func (s *gormStore) GetCall(ctx context.Context, id int64) (*model.Call, error) {
	var c model.Call
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get call %d: %w", id, err)
	}
	c.Status = model.NormalizeStatus(c.Status)
	return &c, nil
}

// TransitionCall applies a status transition atomically. The mutation runs
// against a fresh in-transaction read, and the write itself re-validates
// the status precondition: the UPDATE is keyed on id AND the expected
// status set, so of N concurrent attempts exactly one matches a row and
// the rest fail with ErrStaleStatus. Correctness does not depend on any
// in-process locking; multiple server instances serialize on the database.
func (s *gormStore) TransitionCall(ctx context.Context, id int64, expected []model.CallStatus, mutate func(*model.Call)) (*model.Call, error) {
	var out model.Call
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Call
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load call %d: %w", id, err)
		}

		if !statusIn(model.NormalizeStatus(c.Status), expected) {
			return ErrStaleStatus
		}

		mutate(&c)

		res := tx.Model(&model.Call{}).
			Where("id = ? AND status IN ?", id, expected).
			Updates(map[string]any{
				"status":           c.Status,
				"waiter_id":        c.WaiterID,
				"acknowledged_at":  c.AcknowledgedAt,
				"completed_at":     c.CompletedAt,
				"missed_at":        c.MissedAt,
				"response_time_ms": c.ResponseTimeMS,
			})
		if res.Error != nil {
			return fmt.Errorf("transition call %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			// Someone else won the race between our read and this write.
			return ErrStaleStatus
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Status = model.NormalizeStatus(out.Status)
	return &out, nil
}

func statusIn(s model.CallStatus, set []model.CallStatus) bool {
	for _, e := range set {
		if s == e {
			return true
		}
	}
	return false
}

// ListActiveCalls returns a restaurant's non-terminal calls, oldest first.
func (s *gormStore) ListActiveCalls(ctx context.Context, restaurantID int64) ([]model.Call, error) {
	var calls []model.Call
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND status IN ?", restaurantID, []model.CallStatus{
			model.StatusPending, model.StatusAcknowledged, model.StatusInProgress, model.StatusMissed,
		}).
		Order("requested_at ASC").
		Find(&calls).Error
	if err != nil {
		return nil, fmt.Errorf("list active calls: %w", err)
	}
	for i := range calls {
		calls[i].Status = model.NormalizeStatus(calls[i].Status)
	}
	return calls, nil
}

// LatestCallForTable returns the most recent call for a table, or
// ErrNotFound when the table has never called.
func (s *gormStore) LatestCallForTable(ctx context.Context, tableID int64) (*model.Call, error) {
	var c model.Call
	err := s.db.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("requested_at DESC").
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest call for table %d: %w", tableID, err)
	}
	c.Status = model.NormalizeStatus(c.Status)
	return &c, nil
}

// ListOverduePendingIDs returns ids of calls still pending that were
// requested before the cutoff. The sweeper transitions each one through
// TransitionCall, so a call acknowledged between this read and the sweep
// is simply skipped there.
func (s *gormStore) ListOverduePendingIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&model.Call{}).
		Where("status = ? AND requested_at < ?", model.StatusPending, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list overdue pending calls: %w", err)
	}
	return ids, nil
}

func (s *gormStore) GetTable(ctx context.Context, id int64) (*model.Table, error) {
	var t model.Table
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get table %d: %w", id, err)
	}
	return &t, nil
}

func (s *gormStore) GetTableByCode(ctx context.Context, code string) (*model.Table, error) {
	var t model.Table
	if err := s.db.WithContext(ctx).First(&t, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get table by code: %w", err)
	}
	return &t, nil
}

func (s *gormStore) HasAssignment(ctx context.Context, waiterID, tableID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("waiter_id = ? AND table_id = ?", waiterID, tableID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) CountActiveWaiters(ctx context.Context, restaurantID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Waiter{}).
		Where("restaurant_id = ? AND active = ?", restaurantID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count active waiters: %w", err)
	}
	return count, nil
}

func (s *gormStore) GetWaiter(ctx context.Context, id int64) (*model.Waiter, error) {
	var w model.Waiter
	if err := s.db.WithContext(ctx).First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get waiter %d: %w", id, err)
	}
	return &w, nil
}

func (s *gormStore) GetRestaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	return &r, nil
}

func (s *gormStore) UpdateAccessCodeHash(ctx context.Context, restaurantID int64, hash string) error {
	res := s.db.WithContext(ctx).
		Model(&model.Restaurant{}).
		Where("id = ?", restaurantID).
		Update("access_code_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("update access code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var a model.Admin
	if err := s.db.WithContext(ctx).First(&a, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &a, nil
}

func (s *gormStore) SubscriptionsForWaiter(ctx context.Context, waiterID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Where("waiter_id = ?", waiterID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("subscriptions for waiter %d: %w", waiterID, err)
	}
	return subs, nil
}

// SubscriptionsForRestaurant returns the subscriptions of every active
// waiter in the restaurant, for broadcast of unassigned calls.
func (s *gormStore) SubscriptionsForRestaurant(ctx context.Context, restaurantID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN waiters ON waiters.id = push_subscriptions.waiter_id").
		Where("push_subscriptions.restaurant_id = ? AND waiters.active = ?", restaurantID, true).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("subscriptions for restaurant %d: %w", restaurantID, err)
	}
	return subs, nil
}

// UpsertSubscription creates a subscription, replacing any previous row for
// the same (waiter, device).
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "waiter_id"}, {Name: "device_tag"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"endpoint", "p256dh", "auth", "restaurant_id", "created_at",
		}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteSubscriptionByEndpoint(ctx context.Context, waiterID int64, endpoint string) error {
	err := s.db.WithContext(ctx).
		Where("waiter_id = ? AND endpoint = ?", waiterID, endpoint).
		Delete(&model.PushSubscription{}).Error
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// DeleteSubscriptions removes endpoints the push transport reported gone.
func (s *gormStore) DeleteSubscriptions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{}, ids).Error; err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	return nil
}

func (s *gormStore) TouchSubscriptions(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&model.PushSubscription{}).
		Where("id IN ?", ids).
		Update("last_used_at", at).Error
	if err != nil {
		return fmt.Errorf("touch subscriptions: %w", err)
	}
	return nil
}
