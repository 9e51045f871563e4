// Package notification delivers web push messages to clients following
// individual pallets, from a small worker pool fed by the transfer
// handlers.
package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/SEB120195/gestion-palettes-backend/internal/model"
	"github.com/SEB120195/gestion-palettes-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers announcing pallet arrivals.
type WorkerPool struct {
	size    int
	jobs    chan string
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool. When webpushOptions is nil
// the pool accepts jobs but sends nothing.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case number := <-wp.jobs:
			wp.notifyArrival(ctx, number)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an arrival announcement for a pallet number. It never
// blocks the caller; when the queue is full the announcement is dropped.
func (wp *WorkerPool) Dispatch(palletNumber string) {
	select {
	case wp.jobs <- palletNumber:
	default:
		log.Printf("notification queue full, dropping announcement for pallet %s", palletNumber)
	}
}

// notifyArrival fetches the followers of a pallet and announces its
// arrival at the current location.
func (wp *WorkerPool) notifyArrival(ctx context.Context, palletNumber string) {
	if wp.webpush == nil {
		return
	}

	subscriptions, err := wp.store.SubscriptionsForPallet(ctx, palletNumber)
	if err != nil {
		log.Printf("error fetching subscriptions for pallet %s: %v", palletNumber, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	location := ""
	if pallet, err := wp.store.GetPallet(ctx, palletNumber); err == nil {
		location = pallet.CurrentLocation
	}

	message := fmt.Sprintf("Pallet %s has arrived", palletNumber)
	if location != "" {
		message = fmt.Sprintf("Pallet %s has arrived at %s", palletNumber, location)
	}

	log.Printf("sending %d notifications for pallet %s", len(subscriptions), palletNumber)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions answer 410 and are removed.
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
