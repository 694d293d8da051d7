package repositories

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"weather-server/entities"
	"weather-server/gateway"
)

type weatherDataRepository struct {
	gw *gateway.Gateway
	mu sync.Mutex
}

func NewWeatherDataRepository(gw *gateway.Gateway) WeatherDataRepository {
	return &weatherDataRepository{gw: gw}
}

func (r *weatherDataRepository) FindByDevice(deviceID string) ([]entities.WeatherReading, error) {
	var readings []entities.WeatherReading
	err := r.gw.FetchMany(TableWeatherData, gateway.Filter{
		gateway.Where(ColDeviceID, gateway.Equal, deviceID),
	}, &readings)
	return readings, err
}

func (r *weatherDataRepository) FindByDeviceAndTimestamp(deviceID string, ts time.Time) (*entities.WeatherReading, error) {
	var reading entities.WeatherReading
	found, err := r.gw.FetchOne(TableWeatherData, gateway.Filter{
		gateway.Where(ColDeviceID, gateway.Equal, deviceID),
		gateway.Where(ColDataTimestamp, gateway.Equal, entities.FormatTimestamp(ts)),
	}, &reading)
	if err != nil || !found {
		return nil, err
	}
	return &reading, nil
}

// FindByDeviceAndValueRange returns one reading with low < value < high.
// Which one is up to the store when several qualify.
func (r *weatherDataRepository) FindByDeviceAndValueRange(deviceID string, low, high decimal.Decimal) (*entities.WeatherReading, error) {
	var reading entities.WeatherReading
	found, err := r.gw.FetchOne(TableWeatherData, gateway.Filter{
		gateway.Where(ColDeviceID, gateway.Equal, deviceID),
		gateway.Where(ColDataValue, gateway.GreaterThan, low.String()),
		gateway.Where(ColDataValue, gateway.LessThan, high.String()),
	}, &reading)
	if err != nil || !found {
		return nil, err
	}
	return &reading, nil
}

func (r *weatherDataRepository) FindAll() ([]entities.WeatherReading, error) {
	var readings []entities.WeatherReading
	err := r.gw.FetchMany(TableWeatherData, nil, &readings)
	return readings, err
}

// Insert writes reading unless the device already has one at the same
// timestamp, in which case it returns a *DuplicateError.
func (r *weatherDataRepository) Insert(reading *entities.WeatherReading) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.FindByDeviceAndTimestamp(reading.DeviceID, reading.DataTimestamp)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		log.Printf("data for timestamp %s for device id %s already exists",
			entities.FormatTimestamp(reading.DataTimestamp), reading.DeviceID)
		return 0, &DuplicateError{
			Table: TableWeatherData,
			Key:   fmt.Sprintf("%s@%s", reading.DeviceID, entities.FormatTimestamp(reading.DataTimestamp)),
		}
	}

	return r.gw.InsertOne(TableWeatherData, map[gateway.Column]any{
		ColDeviceID:      reading.DeviceID,
		ColDataValue:     reading.DataValue.StringFixed(2),
		ColDataTimestamp: entities.FormatTimestamp(reading.DataTimestamp),
	})
}

// InsertReadings bulk-loads readings in one statement. There is no
// per-row duplicate check; a clash with the unique key fails the whole batch.
func (r *weatherDataRepository) InsertReadings(readings []entities.WeatherReading) (int64, error) {
	rows := make([][]any, 0, len(readings))
	for _, reading := range readings {
		rows = append(rows, []any{
			reading.DeviceID,
			reading.DataValue.StringFixed(2),
			entities.FormatTimestamp(reading.DataTimestamp),
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gw.InsertMany(TableWeatherData, weatherDataColumns, rows)
}
