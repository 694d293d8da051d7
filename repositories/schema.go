package repositories

import "weather-server/gateway"

const (
	TableDevices     gateway.Table = "devices"
	TableWeatherData gateway.Table = "weather_data"
	TableDailyReport gateway.Table = "daily_report"
)

const (
	ColDeviceID      gateway.Column = "device_id"
	ColDescription   gateway.Column = "description"
	ColDeviceType    gateway.Column = "device_type"
	ColManufacturer  gateway.Column = "manufacturer"
	ColDataValue     gateway.Column = "data_value"
	ColDataTimestamp gateway.Column = "data_timestamp"
	ColAvgValue      gateway.Column = "avg_value"
	ColMinValue      gateway.Column = "min_value"
	ColMaxValue      gateway.Column = "max_value"
	ColReportDate    gateway.Column = "report_date"
)

// Insert column order for the batch writers.
var (
	weatherDataColumns = []gateway.Column{ColDeviceID, ColDataValue, ColDataTimestamp}
	dailyReportColumns = []gateway.Column{ColDeviceID, ColAvgValue, ColMinValue, ColMaxValue, ColReportDate}
)
