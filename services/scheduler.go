package services

import (
	"log"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Scheduler runs CreateReports on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	aggregator *DailyAggregator
}

// NewScheduler accepts a standard five-field cron expression or a descriptor such as
// "@daily" or "@every 1h".
func NewScheduler(aggregator *DailyAggregator, schedule string) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		aggregator: aggregator,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, errors.Wrapf(err, "invalid aggregation schedule %q", schedule)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("aggregation scheduler started")
}

// Stop halts the schedule and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	if _, err := s.aggregator.CreateReports(); err != nil {
		log.Printf("scheduled aggregation failed: %v", err)
	}
}
