package main

import (
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"

	"weather-server/confs"
	"weather-server/db"
	"weather-server/entities"
	"weather-server/gateway"
	"weather-server/logger"
	"weather-server/repositories"
	"weather-server/services"
)

func main() {
	catalogPath := flag.String("catalog", "cmd/weather-setup/devices.toml", "device catalog (TOML)")
	reset := flag.Bool("reset", true, "drop existing weather tables before seeding")
	days := flag.Int("days", 5, "days of hourly readings to generate per device")
	startDate := flag.String("start", "2021-12-01", "first day of generated readings")
	rngSeed := flag.Int64("seed", time.Now().UnixNano(), "random seed for generated readings")
	reports := flag.Bool("reports", false, "generate daily reports after seeding")
	flag.Parse()

	cfg, err := confs.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	_, closeLog := logger.Setup(cfg.Log, os.Stdout)
	defer closeLog()

	start, err := time.Parse(entities.DateLayout, *startDate)
	if err != nil {
		log.Fatalf("Invalid start date %q: %v", *startDate, err)
	}

	devices, err := loadCatalog(*catalogPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer database.Close()

	if *reset {
		if err := db.Reset(database); err != nil {
			log.Fatalf("Failed to reset schema: %v", err)
		}
		if err := db.Bootstrap(database); err != nil {
			log.Fatalf("Failed to create schema: %v", err)
		}
		log.Printf("weather tables recreated")
	}

	gw := gateway.New(database)
	deviceRepo := repositories.NewDeviceRepository(gw)
	readingRepo := repositories.NewWeatherDataRepository(gw)
	reportRepo := repositories.NewDailyReportRepository(gw)

	if err := seed(deviceRepo, readingRepo, devices, start, *days, rand.New(rand.NewSource(*rngSeed))); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if *reports {
		run, err := services.NewDailyAggregator(readingRepo, reportRepo).CreateReports()
		if err != nil {
			log.Fatalf("Report generation failed: %v", err)
		}
		log.Printf("report run %s: %d reports inserted (skipped=%t)", run.ID, run.Inserted, run.Skipped)
	}
}

// seed registers every catalog device and loads generated readings for it.
// Devices that already exist are left as they are and get no new readings.
func seed(deviceRepo repositories.DeviceRepository, readingRepo repositories.WeatherDataRepository,
	devices []entities.Device, start time.Time, days int, rng *rand.Rand) error {
	for i := range devices {
		device := devices[i]
		if _, err := deviceRepo.Insert(&device); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				log.Printf("skipping %s: %v", device.DeviceID, err)
				continue
			}
			return errors.Wrapf(err, "inserting device %s", device.DeviceID)
		}

		readings, ok := generateReadings(device, start, days, rng)
		if !ok {
			log.Printf("no reading generator for device type %q, %s left without data", device.DeviceType, device.DeviceID)
			continue
		}
		n, err := readingRepo.InsertReadings(readings)
		if err != nil {
			return errors.Wrapf(err, "inserting readings for %s", device.DeviceID)
		}
		log.Printf("seeded %s with %d readings", device.DeviceID, n)
	}
	return nil
}
