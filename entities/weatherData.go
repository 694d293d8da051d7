package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeatherReading is one measurement pushed by a device. A device has at most
// one reading per timestamp.
type WeatherReading struct {
	ID            int64           `gorm:"column:id" json:"-"`
	DeviceID      string          `gorm:"column:device_id" json:"device_id"`
	DataValue     decimal.Decimal `gorm:"column:data_value" json:"value"`
	DataTimestamp time.Time       `gorm:"column:data_timestamp" json:"timestamp"`
}
