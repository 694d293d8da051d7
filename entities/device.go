package entities

// Device is a registered sensor. DeviceID is the business key readings and
// reports point at; ID is the storage surrogate and never leaves the server.
type Device struct {
	ID           int64  `gorm:"column:id" json:"-"`
	DeviceID     string `gorm:"column:device_id" json:"device_id"`
	Description  string `gorm:"column:description" json:"description"`
	DeviceType   string `gorm:"column:device_type" json:"device_type"`
	Manufacturer string `gorm:"column:manufacturer" json:"manufacturer"`
}

const (
	DeviceTypeTemperature = "Temperature"
	DeviceTypeHumidity    = "Humidity"
)
