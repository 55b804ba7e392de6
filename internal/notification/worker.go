package notification

import (
	"context"
	"log"
)

// WorkerPool runs the dispatcher off the request path. Call creation hands
// the new call id to the pool and returns; notification failures are
// logged and never propagate back to the creating request.
type WorkerPool struct {
	size       int
	jobs       chan int64
	dispatcher *Dispatcher
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, dispatcher *Dispatcher) *WorkerPool {
	return &WorkerPool{
		size:       size,
		jobs:       make(chan int64, size*4),
		dispatcher: dispatcher,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case callID := <-wp.jobs:
			res, err := wp.dispatcher.DispatchNewCall(ctx, callID)
			if err != nil {
				log.Printf("Worker %d: dispatch for call %d failed: %v", id, callID, err)
				continue
			}
			if res.Sent > 0 || res.Failed > 0 {
				log.Printf("Worker %d: call %d notified, sent=%d failed=%d", id, callID, res.Sent, res.Failed)
			}
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a call for notification without blocking. When the
// buffer is full the job is dropped; push is a latency optimization, not a
// delivery guarantee.
func (wp *WorkerPool) Dispatch(callID int64) {
	select {
	case wp.jobs <- callID:
	default:
		log.Printf("Notification queue full, dropping dispatch for call %d", callID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}
