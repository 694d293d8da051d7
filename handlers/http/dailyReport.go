package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAllReports handles GET /api/v1/reports
func (h *DeviceHandler) GetAllReports(c *gin.Context) {
	reports, err := h.useCase.GetAllReports()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  reports,
		"count": len(reports),
	})
}

// GetDeviceReports handles GET /api/v1/devices/:id/reports?date=<day> or
// ?from=<day>&to=<day> (both ends inclusive).
func (h *DeviceHandler) GetDeviceReports(c *gin.Context) {
	deviceID := c.Param("id")

	if date := c.Query("date"); date != "" {
		report, err := h.useCase.GetReport(deviceID, date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": report})
		return
	}

	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "either date or both from and to are required",
		})
		return
	}

	reports, err := h.useCase.GetReportsInRange(deviceID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  reports,
		"count": len(reports),
	})
}
