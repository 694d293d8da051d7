package repositories

import (
	"time"

	"github.com/shopspring/decimal"

	"weather-server/entities"
)

// Finders that return a single row report absence as (nil, nil).

type DeviceRepository interface {
	FindByID(deviceID string) (*entities.Device, error)
	FindAll() ([]entities.Device, error)
	Insert(device *entities.Device) (int64, error)
}

type WeatherDataRepository interface {
	FindByDevice(deviceID string) ([]entities.WeatherReading, error)
	FindByDeviceAndTimestamp(deviceID string, ts time.Time) (*entities.WeatherReading, error)
	FindByDeviceAndValueRange(deviceID string, low, high decimal.Decimal) (*entities.WeatherReading, error)
	FindAll() ([]entities.WeatherReading, error)
	Insert(reading *entities.WeatherReading) (int64, error)
	InsertReadings(readings []entities.WeatherReading) (int64, error)
}

type DailyReportRepository interface {
	FindByDeviceAndDate(deviceID string, date time.Time) (*entities.DailyReport, error)
	FindByDeviceAndDateRange(deviceID string, from, to time.Time) ([]entities.DailyReport, error)
	FindAll() ([]entities.DailyReport, error)
	InsertMany(reports []entities.DailyReport) (int64, error)
	Count() (int64, error)
}
