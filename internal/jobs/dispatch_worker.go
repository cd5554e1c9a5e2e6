package jobs

import (
	"context"
	"sync"
	"time"

	"billora/internal/services"

	"github.com/rs/zerolog/log"
)

// DispatchWorker is the bounded queue between the request path and the
// automation engine. Status-change handlers enqueue trigger events and
// return immediately; a fixed pool of workers drains the queue. When
// the queue is full the event is processed synchronously rather than
// dropped.
type DispatchWorker struct {
	engine  services.AutomationEngine
	events  chan services.TriggerEvent
	workers int
	timeout time.Duration

	wg   sync.WaitGroup
	stop chan struct{}
	once sync.Once

	mu      sync.RWMutex
	stopped bool
}

func NewDispatchWorker(engine services.AutomationEngine, workers, queueSize int, timeout time.Duration) *DispatchWorker {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &DispatchWorker{
		engine:  engine,
		events:  make(chan services.TriggerEvent, queueSize),
		workers: workers,
		timeout: timeout,
		stop:    make(chan struct{}),
	}
}

func (w *DispatchWorker) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
	log.Info().Int("workers", w.workers).Int("queue_size", cap(w.events)).Msg("dispatch workers started")
}

// Stop drains queued events and waits for in-flight work to finish.
// The write lock waits out any Enqueue holding the read lock, so once
// stopped is set nothing can slip into the channel behind the drain.
func (w *DispatchWorker) Stop() {
	w.once.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
		close(w.stop)
		w.wg.Wait()
	})
}

// Enqueue implements services.TriggerQueue. Never blocks: a full queue
// or a stopped worker degrades to handling the event on the caller's
// goroutine.
func (w *DispatchWorker) Enqueue(event services.TriggerEvent) {
	w.mu.RLock()
	if w.stopped {
		w.mu.RUnlock()
		w.handle(event)
		return
	}
	select {
	case w.events <- event:
		w.mu.RUnlock()
	default:
		w.mu.RUnlock()
		log.Warn().
			Str("invoice_id", event.InvoiceID.String()).
			Msg("dispatch queue full, handling event inline")
		w.handle(event)
	}
}

func (w *DispatchWorker) run() {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.events:
			w.handle(event)
		case <-w.stop:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case event := <-w.events:
					w.handle(event)
				default:
					return
				}
			}
		}
	}
}

func (w *DispatchWorker) handle(event services.TriggerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	w.engine.HandleEvent(ctx, event)
}
