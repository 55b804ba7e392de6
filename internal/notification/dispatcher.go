package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"waiter-call-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of Sender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the subset of the persistence layer the dispatcher
// reads subscriptions from and prunes dead endpoints through.
type SubscriptionStore interface {
	GetCall(ctx context.Context, id int64) (*model.Call, error)
	GetTable(ctx context.Context, id int64) (*model.Table, error)
	SubscriptionsForWaiter(ctx context.Context, waiterID int64) ([]model.PushSubscription, error)
	SubscriptionsForRestaurant(ctx context.Context, restaurantID int64) ([]model.PushSubscription, error)
	DeleteSubscriptions(ctx context.Context, ids []int64) error
	TouchSubscriptions(ctx context.Context, ids []int64, at time.Time) error
}

// Result summarizes one fan-out.
type Result struct {
	Sent   int
	Failed int
}

// payload is the JSON body delivered to the service worker. Tag is stable
// per call so notification surfaces collapse duplicate deliveries.
type payload struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Tag     string `json:"tag"`
	CallID  int64  `json:"call_id"`
	TableID int64  `json:"table_id"`
}

// Dispatcher fans a new-call event out to the push subscriptions of the
// targeted staff. Delivery is best-effort: transient failures are logged
// and the endpoint kept; the transport's permanent-failure codes (404 and
// 410) mark the subscription for a single batched delete after the fan-out
// settles.
type Dispatcher struct {
	store   SubscriptionStore
	options *webpush.Options
	sender  Sender
	enabled bool
	now     func() time.Time
}

// NewDispatcher creates a dispatcher. Passing enabled=false or empty VAPID
// options yields a no-op dispatcher that reports zero sent.
func NewDispatcher(s SubscriptionStore, options *webpush.Options, enabled bool) *Dispatcher {
	return &Dispatcher{
		store:   s,
		options: options,
		sender:  &WebPushSender{},
		enabled: enabled,
		now:     time.Now,
	}
}

// DispatchNewCall sends a push for the call to every relevant
// subscription: only the pre-assigned waiter's devices when the call is
// assigned, otherwise every active waiter in the restaurant. Errors from
// individual sends never fail the dispatch as a whole.
func (d *Dispatcher) DispatchNewCall(ctx context.Context, callID int64) (Result, error) {
	if !d.enabled || d.options == nil || d.options.VAPIDPublicKey == "" || d.options.VAPIDPrivateKey == "" {
		return Result{}, nil
	}

	c, err := d.store.GetCall(ctx, callID)
	if err != nil {
		return Result{}, fmt.Errorf("load call %d: %w", callID, err)
	}

	var subs []model.PushSubscription
	if c.WaiterID != nil {
		subs, err = d.store.SubscriptionsForWaiter(ctx, *c.WaiterID)
	} else {
		subs, err = d.store.SubscriptionsForRestaurant(ctx, c.RestaurantID)
	}
	if err != nil {
		return Result{}, fmt.Errorf("load subscriptions for call %d: %w", callID, err)
	}
	if len(subs) == 0 {
		return Result{}, nil
	}

	body, err := json.Marshal(payload{
		Title:   "Service call",
		Body:    d.tableLabel(ctx, c),
		Tag:     fmt.Sprintf("call-%d", c.ID),
		CallID:  c.ID,
		TableID: c.TableID,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode payload: %w", err)
	}

	var res Result
	var invalid, delivered []int64
	for _, sub := range subs {
		switch d.send(sub, body) {
		case sendOK:
			res.Sent++
			delivered = append(delivered, sub.ID)
		case sendGone:
			res.Failed++
			invalid = append(invalid, sub.ID)
		case sendTransient:
			res.Failed++
		}
	}

	// Cleanup runs once, after every send has settled.
	if err := d.store.DeleteSubscriptions(ctx, invalid); err != nil {
		log.Printf("Failed to delete %d expired subscriptions: %v", len(invalid), err)
	}
	if err := d.store.TouchSubscriptions(ctx, delivered, d.now().UTC()); err != nil {
		log.Printf("Failed to update last-used time for subscriptions: %v", err)
	}
	return res, nil
}

type sendOutcome int

const (
	sendOK sendOutcome = iota
	sendGone
	sendTransient
)

// send attempts one encrypted delivery and classifies the outcome.
func (d *Dispatcher) send(sub model.PushSubscription, body []byte) sendOutcome {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := d.sender.Send(body, wpSub, d.options)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return sendTransient
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		log.Printf("Subscription for endpoint %s is gone (status %d). Queueing for deletion.", sub.Endpoint, resp.StatusCode)
		return sendGone
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return sendOK
	default:
		log.Printf("Push to %s failed with status %d", sub.Endpoint, resp.StatusCode)
		return sendTransient
	}
}

func (d *Dispatcher) tableLabel(ctx context.Context, c *model.Call) string {
	table, err := d.store.GetTable(ctx, c.TableID)
	if err != nil || table.Label == "" {
		return fmt.Sprintf("Table %d is calling", c.TableID)
	}
	return fmt.Sprintf("Table %s is calling", table.Label)
}
