package main

import (
	"math/rand"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"weather-server/entities"
)

type catalogDevice struct {
	DeviceID     string `toml:"device_id"`
	Description  string `toml:"description"`
	DeviceType   string `toml:"device_type"`
	Manufacturer string `toml:"manufacturer"`
}

type catalog struct {
	Devices []catalogDevice `toml:"device"`
}

func loadCatalog(path string) ([]entities.Device, error) {
	var c catalog
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, errors.Wrapf(err, "reading device catalog %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown keys in device catalog: %v", undecoded)
	}

	devices := make([]entities.Device, 0, len(c.Devices))
	for i, d := range c.Devices {
		if d.DeviceID == "" || d.DeviceType == "" {
			return nil, errors.Errorf("device %d: device_id and device_type are required", i+1)
		}
		devices = append(devices, entities.Device{
			DeviceID:     d.DeviceID,
			Description:  d.Description,
			DeviceType:   d.DeviceType,
			Manufacturer: d.Manufacturer,
		})
	}
	return devices, nil
}

// distribution is the normal distribution readings are drawn from.
type distribution struct {
	mean, stddev float64
}

var distributions = map[string]distribution{
	"temperature": {mean: 24, stddev: 2.2},
	"humidity":    {mean: 45, stddev: 3},
}

// generateReadings returns one reading per hour, at half past, for days
// consecutive days starting at start. Values have one decimal place. ok is
// false when the device type has no known distribution.
func generateReadings(device entities.Device, start time.Time, days int, rng *rand.Rand) ([]entities.WeatherReading, bool) {
	dist, ok := distributions[strings.ToLower(device.DeviceType)]
	if !ok {
		return nil, false
	}

	readings := make([]entities.WeatherReading, 0, days*24)
	for day := 0; day < days; day++ {
		for hour := 0; hour < 24; hour++ {
			value := rng.NormFloat64()*dist.stddev + dist.mean
			readings = append(readings, entities.WeatherReading{
				DeviceID:      device.DeviceID,
				DataValue:     decimal.NewFromFloat(value).Round(1),
				DataTimestamp: start.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + 30*time.Minute),
			})
		}
	}
	return readings, true
}
