package services

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"weather-server/entities"
	"weather-server/metrics"
	"weather-server/repositories"
)

// ReportRun describes one CreateReports call.
type ReportRun struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Skipped   bool          `json:"skipped"`
	Groups    int           `json:"groups"`
	Inserted  int64         `json:"inserted"`
}

// DailyAggregator rolls weather readings up into one report per device per
// calendar day.
type DailyAggregator struct {
	readings repositories.WeatherDataRepository
	reports  repositories.DailyReportRepository

	mu      sync.Mutex
	lastRun *ReportRun
}

func NewDailyAggregator(readings repositories.WeatherDataRepository, reports repositories.DailyReportRepository) *DailyAggregator {
	return &DailyAggregator{
		readings: readings,
		reports:  reports,
	}
}

// ComputeReports reads every stored reading and returns the daily summaries
// without writing them. Reports are sorted by device, then date.
func (a *DailyAggregator) ComputeReports() ([]entities.DailyReport, error) {
	readings, err := a.readings.FindAll()
	if err != nil {
		return nil, errors.Wrap(err, "loading readings")
	}
	return Aggregate(readings), nil
}

// CreateReports computes and stores the daily reports, but only when the
// report table is empty. Once any report exists the run is skipped, so
// readings added afterwards are never folded in.
func (a *DailyAggregator) CreateReports() (*ReportRun, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	run := &ReportRun{ID: uuid.NewString(), StartedAt: time.Now()}

	existing, err := a.reports.Count()
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("failed").Inc()
		return nil, errors.Wrap(err, "checking existing reports")
	}
	if existing > 0 {
		log.Printf("aggregation run %s skipped: %d daily reports already exist", run.ID, existing)
		run.Skipped = true
		a.finish(run, "skipped")
		return run, nil
	}

	reports, err := a.ComputeReports()
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("failed").Inc()
		return nil, err
	}

	inserted, err := a.reports.InsertMany(reports)
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("failed").Inc()
		return nil, errors.Wrap(err, "storing daily reports")
	}

	run.Groups = len(reports)
	run.Inserted = inserted
	metrics.ReportsCreated.Add(float64(inserted))
	a.finish(run, "created")
	log.Printf("aggregation run %s stored %d daily reports in %s", run.ID, inserted, run.Duration)
	return run, nil
}

// LastRun returns a copy of the most recent completed run, or nil.
func (a *DailyAggregator) LastRun() *ReportRun {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastRun == nil {
		return nil
	}
	run := *a.lastRun
	return &run
}

func (a *DailyAggregator) finish(run *ReportRun, result string) {
	run.Duration = time.Since(run.StartedAt)
	a.lastRun = run
	metrics.AggregationRuns.WithLabelValues(result).Inc()
}

type dayKey struct {
	deviceID string
	day      string
}

type dayStats struct {
	date     time.Time
	sum      decimal.Decimal
	count    int64
	min, max decimal.Decimal
}

// Aggregate groups readings by device and calendar day of their timestamp.
// The average is rounded to two places, half away from zero.
func Aggregate(readings []entities.WeatherReading) []entities.DailyReport {
	groups := make(map[dayKey]*dayStats)
	for _, r := range readings {
		date := entities.StartOfDay(r.DataTimestamp)
		key := dayKey{deviceID: r.DeviceID, day: date.Format(entities.DateLayout)}

		s, ok := groups[key]
		if !ok {
			groups[key] = &dayStats{
				date:  date,
				sum:   r.DataValue,
				count: 1,
				min:   r.DataValue,
				max:   r.DataValue,
			}
			continue
		}
		s.sum = s.sum.Add(r.DataValue)
		s.count++
		if r.DataValue.LessThan(s.min) {
			s.min = r.DataValue
		}
		if r.DataValue.GreaterThan(s.max) {
			s.max = r.DataValue
		}
	}

	reports := make([]entities.DailyReport, 0, len(groups))
	for key, s := range groups {
		reports = append(reports, entities.DailyReport{
			DeviceID:   key.deviceID,
			AvgValue:   s.sum.DivRound(decimal.NewFromInt(s.count), 2),
			MinValue:   s.min,
			MaxValue:   s.max,
			ReportDate: s.date,
		})
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].DeviceID != reports[j].DeviceID {
			return reports[i].DeviceID < reports[j].DeviceID
		}
		return reports[i].ReportDate.Before(reports[j].ReportDate)
	})
	return reports
}
