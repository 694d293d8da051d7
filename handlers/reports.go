package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"weather-server/usecases"
)

type ReportHandler struct {
	useCase *usecases.WeatherUseCase
}

func NewReportHandler(useCase *usecases.WeatherUseCase) *ReportHandler {
	return &ReportHandler{
		useCase: useCase,
	}
}

// GenerateReports handles POST /api/v1/reports/generate. It answers 201 when
// reports were written and 200 when the run was skipped.
func (h *ReportHandler) GenerateReports(c *gin.Context) {
	run, err := h.useCase.GenerateReports()
	if err != nil {
		log.Printf("report generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}

	status := http.StatusCreated
	if run.Skipped {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"status": "success",
		"run":    run,
	})
}

// GetLastRun handles GET /api/v1/reports/status
func (h *ReportHandler) GetLastRun(c *gin.Context) {
	run := h.useCase.LastReportRun()
	if run == nil {
		c.JSON(http.StatusOK, gin.H{"status": "idle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"run":    run,
	})
}
