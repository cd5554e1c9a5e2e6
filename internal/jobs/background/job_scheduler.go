package background

import (
	"context"
	"time"

	"billora/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// JobScheduler runs the periodic overdue sweep. Singleton mode keeps a
// slow sweep from overlapping the next tick.
type JobScheduler struct {
	scheduler gocron.Scheduler
	engine    services.AutomationEngine
	interval  time.Duration
}

func NewJobScheduler(engine services.AutomationEngine, sweepInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		engine:    engine,
		interval:  sweepInterval,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.runOverdueSweep),
		gocron.WithName("overdue-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return err
}

func (js *JobScheduler) runOverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := js.engine.RunOverdueSweep(ctx, time.Now().UTC()); err != nil {
		log.Error().Err(err).Msg("scheduled overdue sweep failed")
	}
}

func (js *JobScheduler) Start() {
	log.Info().Dur("interval", js.interval).Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}
