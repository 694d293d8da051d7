package usecases

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"weather-server/entities"
	"weather-server/metrics"
	"weather-server/repositories"
	"weather-server/services"
)

const maxDeviceIDLength = 15

var ErrNotFound = errors.New("not found")

// ValidationError reports input a caller can fix.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type WeatherUseCase struct {
	DeviceRepo  repositories.DeviceRepository
	ReadingRepo repositories.WeatherDataRepository
	ReportRepo  repositories.DailyReportRepository
	Aggregator  *services.DailyAggregator
}

func NewWeatherUseCase(deviceRepo repositories.DeviceRepository, readingRepo repositories.WeatherDataRepository, reportRepo repositories.DailyReportRepository, aggregator *services.DailyAggregator) *WeatherUseCase {
	return &WeatherUseCase{
		DeviceRepo:  deviceRepo,
		ReadingRepo: readingRepo,
		ReportRepo:  reportRepo,
		Aggregator:  aggregator,
	}
}

// ============= Devices =============

// CreateDevice registers a new device
func (uc *WeatherUseCase) CreateDevice(device *entities.Device) error {
	device.DeviceID = strings.TrimSpace(device.DeviceID)
	if device.DeviceID == "" {
		return invalid("device_id is required")
	}
	if len(device.DeviceID) > maxDeviceIDLength {
		return invalid("device_id must be at most %d characters", maxDeviceIDLength)
	}
	if device.DeviceType == "" {
		return invalid("device_type is required")
	}

	if _, err := uc.DeviceRepo.Insert(device); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			metrics.DuplicatesRejected.WithLabelValues(string(repositories.TableDevices)).Inc()
		}
		return err
	}
	return nil
}

// GetDevice retrieves a device by its device_id
func (uc *WeatherUseCase) GetDevice(deviceID string) (*entities.Device, error) {
	if deviceID == "" {
		return nil, invalid("device_id is required")
	}
	device, err := uc.DeviceRepo.FindByID(deviceID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errors.Wrapf(ErrNotFound, "device %s", deviceID)
	}
	return device, nil
}

func (uc *WeatherUseCase) GetAllDevices() ([]entities.Device, error) {
	return uc.DeviceRepo.FindAll()
}

// ============= Readings =============

// data_value is NUMERIC(6,2).
var maxReadingMagnitude = decimal.NewFromInt(10000)

// RecordReading stores one reading for a registered device. source labels
// the ingest path in metrics.
func (uc *WeatherUseCase) RecordReading(deviceID string, value decimal.Decimal, timestamp string, source string) (*entities.WeatherReading, error) {
	if _, err := uc.GetDevice(deviceID); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	if timestamp != "" {
		parsed, err := entities.ParseTimestamp(timestamp)
		if err != nil {
			return nil, invalid("invalid timestamp %q", timestamp)
		}
		ts = parsed
	}

	// Checked after rounding: 9999.995 becomes 10000.00.
	value = value.Round(2)
	if value.Abs().GreaterThanOrEqual(maxReadingMagnitude) {
		return nil, invalid("value %s out of range", value)
	}

	reading := &entities.WeatherReading{
		DeviceID:      deviceID,
		DataValue:     value,
		DataTimestamp: ts.Truncate(time.Second),
	}
	if _, err := uc.ReadingRepo.Insert(reading); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			metrics.DuplicatesRejected.WithLabelValues(string(repositories.TableWeatherData)).Inc()
		}
		return nil, err
	}
	metrics.ReadingsIngested.WithLabelValues(source).Inc()
	return reading, nil
}

func (uc *WeatherUseCase) GetAllReadings() ([]entities.WeatherReading, error) {
	return uc.ReadingRepo.FindAll()
}

// GetReadingsByDevice retrieves all readings for a device
func (uc *WeatherUseCase) GetReadingsByDevice(deviceID string) ([]entities.WeatherReading, error) {
	if deviceID == "" {
		return nil, invalid("device_id is required")
	}
	return uc.ReadingRepo.FindByDevice(deviceID)
}

// GetReadingAt retrieves the reading a device took at an exact timestamp
func (uc *WeatherUseCase) GetReadingAt(deviceID, timestamp string) (*entities.WeatherReading, error) {
	ts, err := entities.ParseTimestamp(timestamp)
	if err != nil {
		return nil, invalid("invalid timestamp %q", timestamp)
	}
	reading, err := uc.ReadingRepo.FindByDeviceAndTimestamp(deviceID, ts)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, errors.Wrapf(ErrNotFound, "reading for %s at %s", deviceID, timestamp)
	}
	return reading, nil
}

// GetReadingInRange retrieves one reading strictly between low and high
func (uc *WeatherUseCase) GetReadingInRange(deviceID, low, high string) (*entities.WeatherReading, error) {
	lo, err := decimal.NewFromString(low)
	if err != nil {
		return nil, invalid("invalid low value %q", low)
	}
	hi, err := decimal.NewFromString(high)
	if err != nil {
		return nil, invalid("invalid high value %q", high)
	}
	if !lo.LessThan(hi) {
		return nil, invalid("low must be less than high")
	}

	reading, err := uc.ReadingRepo.FindByDeviceAndValueRange(deviceID, lo, hi)
	if err != nil {
		return nil, err
	}
	if reading == nil {
		return nil, errors.Wrapf(ErrNotFound, "reading for %s between %s and %s", deviceID, low, high)
	}
	return reading, nil
}

// ============= Reports =============

func (uc *WeatherUseCase) GetAllReports() ([]entities.DailyReport, error) {
	return uc.ReportRepo.FindAll()
}

// GetReport retrieves a device's report for one day
func (uc *WeatherUseCase) GetReport(deviceID, date string) (*entities.DailyReport, error) {
	day, err := entities.ParseTimestamp(date)
	if err != nil {
		return nil, invalid("invalid date %q", date)
	}
	report, err := uc.ReportRepo.FindByDeviceAndDate(deviceID, entities.StartOfDay(day))
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, errors.Wrapf(ErrNotFound, "report for %s on %s", deviceID, date)
	}
	return report, nil
}

// GetReportsInRange retrieves a device's reports between two dates, inclusive
func (uc *WeatherUseCase) GetReportsInRange(deviceID, from, to string) ([]entities.DailyReport, error) {
	start, err := entities.ParseTimestamp(from)
	if err != nil {
		return nil, invalid("invalid from date %q", from)
	}
	start = entities.StartOfDay(start)
	end, err := entities.ParseTimestamp(to)
	if err != nil {
		return nil, invalid("invalid to date %q", to)
	}
	if end.Before(start) {
		return nil, invalid("from must not be after to")
	}
	return uc.ReportRepo.FindByDeviceAndDateRange(deviceID, start, end)
}

// GenerateReports runs the daily aggregation. It is a no-op once reports exist.
func (uc *WeatherUseCase) GenerateReports() (*services.ReportRun, error) {
	return uc.Aggregator.CreateReports()
}

func (uc *WeatherUseCase) LastReportRun() *services.ReportRun {
	return uc.Aggregator.LastRun()
}
