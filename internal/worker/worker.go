package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Post after Close.
var ErrClosed = errors.New("worker closed")

// Worker serves requests on its own goroutine, one at a time, in posting
// order. Responses are delivered on Responses until the worker stops.
type Worker struct {
	handler   *Handler
	requests  chan Request
	responses chan Response
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Start launches a worker around h. It stops when ctx is cancelled or
// Close is called.
func Start(ctx context.Context, h *Handler) *Worker {
	w := &Worker{
		handler:   h,
		requests:  make(chan Request, 16),
		responses: make(chan Response, 16),
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop(ctx)
	return w
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.responses)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case req := <-w.requests:
			resp := w.handler.Handle(ctx, req)
			select {
			case w.responses <- resp:
			case <-ctx.Done():
				return
			case <-w.done:
				return
			}
		}
	}
}

// Post queues req. It blocks while the queue is full.
func (w *Worker) Post(req Request) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case <-w.done:
		return ErrClosed
	case w.requests <- req:
		return nil
	}
}

// Responses returns the response channel. It is closed when the worker
// stops.
func (w *Worker) Responses() <-chan Response {
	return w.responses
}

// Close stops the worker and waits for it to exit. Queued requests are
// dropped.
func (w *Worker) Close() {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()
}
