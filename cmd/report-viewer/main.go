package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"weather-server/confs"
	"weather-server/db"
	"weather-server/gateway"
	"weather-server/logger"
	"weather-server/repositories"
	"weather-server/services"
	"weather-server/usecases"
)

func main() {
	cfg, err := confs.LoadConfig()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	// Log lines would tear the terminal UI, so they only go to the log file.
	_, closeLog := logger.Setup(cfg.Log, nil)
	defer closeLog()

	database, err := db.Connect(cfg.DB)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer database.Close()

	gw := gateway.New(database)
	readings := repositories.NewWeatherDataRepository(gw)
	reports := repositories.NewDailyReportRepository(gw)
	uc := usecases.NewWeatherUseCase(repositories.NewDeviceRepository(gw), readings, reports,
		services.NewDailyAggregator(readings, reports))

	p := tea.NewProgram(initialModel(uc))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
