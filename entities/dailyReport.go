package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyReport summarises one device's readings for one calendar day.
// ReportDate is midnight of that day.
type DailyReport struct {
	ID         int64           `gorm:"column:id" json:"-"`
	DeviceID   string          `gorm:"column:device_id" json:"device_id"`
	AvgValue   decimal.Decimal `gorm:"column:avg_value" json:"avg_value"`
	MinValue   decimal.Decimal `gorm:"column:min_value" json:"min_value"`
	MaxValue   decimal.Decimal `gorm:"column:max_value" json:"max_value"`
	ReportDate time.Time       `gorm:"column:report_date" json:"report_date"`
}
