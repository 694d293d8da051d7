package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"weather-server/confs"
	"weather-server/db"
	"weather-server/entities"
	"weather-server/gateway"
	"weather-server/repositories"
)

func reading(deviceID, ts, value string) entities.WeatherReading {
	at, err := time.Parse(entities.TimestampLayout, ts)
	if err != nil {
		panic(err)
	}
	return entities.WeatherReading{
		DeviceID:      deviceID,
		DataValue:     decimal.RequireFromString(value),
		DataTimestamp: at,
	}
}

func assertReport(t *testing.T, got entities.DailyReport, deviceID, date, avg, min, max string) {
	t.Helper()
	if got.DeviceID != deviceID {
		t.Errorf("device: got %s, want %s", got.DeviceID, deviceID)
	}
	if d := got.ReportDate.Format(entities.TimestampLayout); d != date {
		t.Errorf("report date: got %s, want %s", d, date)
	}
	if got.AvgValue.StringFixed(2) != avg {
		t.Errorf("%s %s avg: got %s, want %s", deviceID, date, got.AvgValue.StringFixed(2), avg)
	}
	if !got.MinValue.Equal(decimal.RequireFromString(min)) {
		t.Errorf("%s %s min: got %s, want %s", deviceID, date, got.MinValue, min)
	}
	if !got.MaxValue.Equal(decimal.RequireFromString(max)) {
		t.Errorf("%s %s max: got %s, want %s", deviceID, date, got.MaxValue, max)
	}
}

func TestAggregate_GroupsByDeviceAndDay(t *testing.T) {
	reports := Aggregate([]entities.WeatherReading{
		reading("D1", "2021-12-03 00:30:00", "30.0"),
		reading("D1", "2021-12-02 00:30:00", "20.0"),
		reading("D1", "2021-12-02 12:30:00", "24.0"),
	})

	if len(reports) != 2 {
		t.Fatalf("want 2 groups, got %d: %+v", len(reports), reports)
	}
	assertReport(t, reports[0], "D1", "2021-12-02 00:00:00", "22.00", "20", "24")
	assertReport(t, reports[1], "D1", "2021-12-03 00:00:00", "30.00", "30", "30")
}

func TestAggregate_SeparatesDevices(t *testing.T) {
	reports := Aggregate([]entities.WeatherReading{
		reading("DT001", "2021-12-02 00:30:00", "21.5"),
		reading("DH001", "2021-12-02 00:30:00", "44.0"),
		reading("DH001", "2021-12-02 23:30:00", "46.0"),
	})

	if len(reports) != 2 {
		t.Fatalf("want 2 groups, got %d", len(reports))
	}
	assertReport(t, reports[0], "DH001", "2021-12-02 00:00:00", "45.00", "44", "46")
	assertReport(t, reports[1], "DT001", "2021-12-02 00:00:00", "21.50", "21.5", "21.5")
}

func TestAggregate_Rounding(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"non-terminating division", []string{"3", "3", "4"}, "3.33"},
		{"rounds up from two thirds", []string{"1", "1", "0"}, "0.67"},
		{"half rounds away from zero", []string{"0.01", "0.02"}, "0.02"},
		{"negative half rounds away from zero", []string{"-0.01", "-0.02"}, "-0.02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readings []entities.WeatherReading
			for i, v := range tt.values {
				readings = append(readings, reading("D1", time.Date(2021, 12, 2, i, 30, 0, 0, time.UTC).Format(entities.TimestampLayout), v))
			}
			reports := Aggregate(readings)
			if len(reports) != 1 {
				t.Fatalf("want 1 group, got %d", len(reports))
			}
			if got := reports[0].AvgValue.StringFixed(2); got != tt.want {
				t.Errorf("avg: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	if reports := Aggregate(nil); len(reports) != 0 {
		t.Errorf("want no reports, got %+v", reports)
	}
}

type fixture struct {
	devices    repositories.DeviceRepository
	readings   repositories.WeatherDataRepository
	reports    repositories.DailyReportRepository
	aggregator *DailyAggregator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := db.Connect(confs.DBConfig{
		Driver:   db.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "weather.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	gw := gateway.New(database)
	f := &fixture{
		devices:  repositories.NewDeviceRepository(gw),
		readings: repositories.NewWeatherDataRepository(gw),
		reports:  repositories.NewDailyReportRepository(gw),
	}
	f.aggregator = NewDailyAggregator(f.readings, f.reports)

	if _, err := f.devices.Insert(&entities.Device{DeviceID: "D1", DeviceType: entities.DeviceTypeTemperature}); err != nil {
		t.Fatalf("insert device: %v", err)
	}
	return f
}

func TestDailyAggregator_ComputeReportsFromStore(t *testing.T) {
	f := newFixture(t)
	if _, err := f.readings.InsertReadings([]entities.WeatherReading{
		reading("D1", "2021-12-02 00:30:00", "20.0"),
		reading("D1", "2021-12-02 12:30:00", "24.0"),
		reading("D1", "2021-12-03 00:30:00", "30.0"),
	}); err != nil {
		t.Fatalf("InsertReadings: %v", err)
	}

	reports, err := f.aggregator.ComputeReports()
	if err != nil {
		t.Fatalf("ComputeReports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("want 2 groups, got %d", len(reports))
	}
	assertReport(t, reports[0], "D1", "2021-12-02 00:00:00", "22.00", "20", "24")
	assertReport(t, reports[1], "D1", "2021-12-03 00:00:00", "30.00", "30", "30")

	if n, _ := f.reports.Count(); n != 0 {
		t.Errorf("ComputeReports must not write, found %d reports", n)
	}
}

func TestDailyAggregator_CreateReportsOnlyOnce(t *testing.T) {
	f := newFixture(t)
	if _, err := f.readings.InsertReadings([]entities.WeatherReading{
		reading("D1", "2021-12-02 00:30:00", "20.0"),
		reading("D1", "2021-12-02 12:30:00", "24.0"),
		reading("D1", "2021-12-03 00:30:00", "30.0"),
	}); err != nil {
		t.Fatalf("InsertReadings: %v", err)
	}

	if f.aggregator.LastRun() != nil {
		t.Fatal("expected no run before the first call")
	}

	first, err := f.aggregator.CreateReports()
	if err != nil {
		t.Fatalf("first CreateReports: %v", err)
	}
	if first.Skipped || first.Inserted != 2 || first.Groups != 2 || first.ID == "" {
		t.Errorf("unexpected first run: %+v", first)
	}

	// Readings added after the first run are not picked up.
	if _, err := f.readings.Insert(&entities.WeatherReading{
		DeviceID:      "D1",
		DataValue:     decimal.RequireFromString("15"),
		DataTimestamp: time.Date(2021, 12, 4, 0, 30, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	second, err := f.aggregator.CreateReports()
	if err != nil {
		t.Fatalf("second CreateReports: %v", err)
	}
	if !second.Skipped || second.Inserted != 0 {
		t.Errorf("second run should be skipped: %+v", second)
	}
	if second.ID == first.ID {
		t.Error("runs share an id")
	}

	n, err := f.reports.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("want 2 reports after both runs, got %d", n)
	}

	if last := f.aggregator.LastRun(); last == nil || last.ID != second.ID {
		t.Errorf("LastRun: got %+v, want run %s", last, second.ID)
	}
}

func TestDailyAggregator_CreateReportsWithNoReadings(t *testing.T) {
	f := newFixture(t)

	run, err := f.aggregator.CreateReports()
	if err != nil {
		t.Fatalf("CreateReports: %v", err)
	}
	if run.Skipped || run.Inserted != 0 || run.Groups != 0 {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestNewScheduler_RejectsBadSchedule(t *testing.T) {
	if _, err := NewScheduler(&DailyAggregator{}, "not a schedule"); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	s, err := NewScheduler(&DailyAggregator{}, "@daily")
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	s.Start()
	s.Stop()
}
