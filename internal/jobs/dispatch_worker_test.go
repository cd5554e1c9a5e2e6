package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"billora/internal/models"
	"billora/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// countingEngine records every event it handles.
type countingEngine struct {
	mu     sync.Mutex
	events []services.TriggerEvent
}

func (e *countingEngine) HandleEvent(_ context.Context, event services.TriggerEvent) {
	e.mu.Lock()
	e.events = append(e.events, event)
	e.mu.Unlock()
}

func (e *countingEngine) FireTrigger(context.Context, uuid.UUID, uuid.UUID, models.TriggerKind) (bool, error) {
	return false, nil
}

func (e *countingEngine) RunOverdueSweep(context.Context, time.Time) (*services.SweepReport, error) {
	return &services.SweepReport{}, nil
}

func (e *countingEngine) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

func TestDispatchWorker_ProcessesQueuedEvents(t *testing.T) {
	engine := &countingEngine{}
	worker := NewDispatchWorker(engine, 2, 16, time.Second)
	worker.Start()

	for i := 0; i < 10; i++ {
		worker.Enqueue(services.TriggerEvent{
			UserID:    uuid.New(),
			InvoiceID: uuid.New(),
			Status:    models.InvoiceStatusSent,
		})
	}
	worker.Stop()

	assert.Equal(t, 10, engine.count())
}

func TestDispatchWorker_FullQueueFallsBackToInline(t *testing.T) {
	engine := &countingEngine{}
	// Workers are not started, so the single-slot queue fills on the
	// first event and every further one runs on the caller's goroutine.
	worker := NewDispatchWorker(engine, 1, 1, time.Second)

	worker.Enqueue(services.TriggerEvent{Status: models.InvoiceStatusSent})
	worker.Enqueue(services.TriggerEvent{Status: models.InvoiceStatusSent})
	worker.Enqueue(services.TriggerEvent{Status: models.InvoiceStatusSent})

	assert.Equal(t, 2, engine.count())

	worker.Start()
	worker.Stop()
	assert.Equal(t, 3, engine.count())
}

func TestDispatchWorker_StopDrainsQueue(t *testing.T) {
	engine := &countingEngine{}
	worker := NewDispatchWorker(engine, 1, 32, time.Second)

	for i := 0; i < 5; i++ {
		worker.Enqueue(services.TriggerEvent{Status: models.InvoiceStatusOverdue})
	}
	worker.Start()
	worker.Stop()

	assert.Equal(t, 5, engine.count())
}

func TestDispatchWorker_EnqueueAfterStopHandlesInline(t *testing.T) {
	engine := &countingEngine{}
	worker := NewDispatchWorker(engine, 2, 16, time.Second)
	worker.Start()
	worker.Stop()

	// No worker is reading anymore; the event must not be buffered
	// into the channel and lost.
	worker.Enqueue(services.TriggerEvent{Status: models.InvoiceStatusSent})
	worker.Enqueue(services.TriggerEvent{Status: models.InvoiceStatusSent})

	assert.Equal(t, 2, engine.count())
}

func TestDispatchWorker_StopIsIdempotent(t *testing.T) {
	worker := NewDispatchWorker(&countingEngine{}, 1, 1, time.Second)
	worker.Start()
	worker.Stop()
	worker.Stop()
}
