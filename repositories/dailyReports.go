package repositories

import (
	"time"

	"weather-server/entities"
	"weather-server/gateway"
)

type dailyReportRepository struct {
	gw *gateway.Gateway
}

func NewDailyReportRepository(gw *gateway.Gateway) DailyReportRepository {
	return &dailyReportRepository{gw: gw}
}

func (r *dailyReportRepository) FindByDeviceAndDate(deviceID string, date time.Time) (*entities.DailyReport, error) {
	var report entities.DailyReport
	found, err := r.gw.FetchOne(TableDailyReport, gateway.Filter{
		gateway.Where(ColDeviceID, gateway.Equal, deviceID),
		gateway.Where(ColReportDate, gateway.Equal, entities.FormatTimestamp(date)),
	}, &report)
	if err != nil || !found {
		return nil, err
	}
	return &report, nil
}

// FindByDeviceAndDateRange returns the reports with from <= report_date <= to.
func (r *dailyReportRepository) FindByDeviceAndDateRange(deviceID string, from, to time.Time) ([]entities.DailyReport, error) {
	var reports []entities.DailyReport
	err := r.gw.FetchMany(TableDailyReport, gateway.Filter{
		gateway.Where(ColDeviceID, gateway.Equal, deviceID),
		gateway.Where(ColReportDate, gateway.GreaterThanOrEqual, entities.FormatTimestamp(from)),
		gateway.Where(ColReportDate, gateway.LessThanOrEqual, entities.FormatTimestamp(to)),
	}, &reports)
	return reports, err
}

func (r *dailyReportRepository) FindAll() ([]entities.DailyReport, error) {
	var reports []entities.DailyReport
	err := r.gw.FetchMany(TableDailyReport, nil, &reports)
	return reports, err
}

// InsertMany writes every report in one statement.
func (r *dailyReportRepository) InsertMany(reports []entities.DailyReport) (int64, error) {
	rows := make([][]any, 0, len(reports))
	for _, report := range reports {
		rows = append(rows, []any{
			report.DeviceID,
			report.AvgValue.StringFixed(2),
			report.MinValue.StringFixed(2),
			report.MaxValue.StringFixed(2),
			entities.FormatTimestamp(report.ReportDate),
		})
	}
	return r.gw.InsertMany(TableDailyReport, dailyReportColumns, rows)
}

func (r *dailyReportRepository) Count() (int64, error) {
	return r.gw.Count(TableDailyReport, nil)
}
