package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// The statements use {{ID}} for the surrogate key column, which differs
// between the supported dialects.
var schemaStatements = []struct {
	name string
	sql  string
}{
	{"devices", `
		CREATE TABLE IF NOT EXISTS devices (
			id {{ID}},
			device_id VARCHAR(15) NOT NULL UNIQUE,
			description VARCHAR(127),
			device_type VARCHAR(31) NOT NULL,
			manufacturer VARCHAR(63)
		)`},
	{"weather_data", `
		CREATE TABLE IF NOT EXISTS weather_data (
			id {{ID}},
			device_id VARCHAR(31) NOT NULL,
			data_value NUMERIC(6,2),
			data_timestamp TIMESTAMP,
			UNIQUE (device_id, data_timestamp),
			FOREIGN KEY (device_id) REFERENCES devices(device_id)
		)`},
	{"daily_report", `
		CREATE TABLE IF NOT EXISTS daily_report (
			id {{ID}},
			device_id VARCHAR(31) NOT NULL,
			avg_value NUMERIC(6,2),
			min_value NUMERIC(6,2),
			max_value NUMERIC(6,2),
			report_date TIMESTAMP,
			UNIQUE (device_id, report_date),
			FOREIGN KEY (device_id) REFERENCES devices(device_id)
		)`},
	{"idx_weather_data_device", "CREATE INDEX IF NOT EXISTS idx_weather_data_device ON weather_data(device_id)"},
	{"idx_daily_report_device", "CREATE INDEX IF NOT EXISTS idx_daily_report_device ON daily_report(device_id)"},
}

// Bootstrap creates the devices, weather_data and daily_report tables when
// they do not exist yet. Existing tables are left untouched.
func Bootstrap(database Database) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if database.Dialect() == DriverPostgres {
		idColumn = "SERIAL PRIMARY KEY"
	}

	return database.GetDB().Transaction(func(tx *gorm.DB) error {
		for _, stmt := range schemaStatements {
			sql := strings.ReplaceAll(stmt.sql, "{{ID}}", idColumn)
			if err := tx.Exec(sql).Error; err != nil {
				return fmt.Errorf("creating %s: %w", stmt.name, err)
			}
		}
		return nil
	})
}

// Reset drops every weather table. Used by the setup command before seeding.
func Reset(database Database) error {
	return database.GetDB().Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"daily_report", "weather_data", "devices"} {
			if err := tx.Exec("DROP TABLE IF EXISTS " + table).Error; err != nil {
				return fmt.Errorf("dropping %s: %w", table, err)
			}
		}
		return nil
	})
}
