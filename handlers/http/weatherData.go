package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createReadingRequest struct {
	DeviceID  string           `json:"device_id" binding:"required"`
	Value     *decimal.Decimal `json:"value"`
	Timestamp string           `json:"timestamp"`
}

// CreateReading handles POST /api/v1/readings
func (h *DeviceHandler) CreateReading(c *gin.Context) {
	var req createReadingRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	reading, err := h.useCase.RecordReading(req.DeviceID, *req.Value, req.Timestamp, "http")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Reading stored successfully",
		"data":    reading,
	})
}

// GetAllReadings handles GET /api/v1/readings
func (h *DeviceHandler) GetAllReadings(c *gin.Context) {
	readings, err := h.useCase.GetAllReadings()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  readings,
		"count": len(readings),
	})
}

// GetDeviceReadings handles GET /api/v1/devices/:id/readings
//
//	?at=<timestamp>       the reading taken at that moment
//	?low=<v>&high=<v>     one reading with low < value < high
//	(no query)            every reading of the device
func (h *DeviceHandler) GetDeviceReadings(c *gin.Context) {
	deviceID := c.Param("id")

	if at := c.Query("at"); at != "" {
		reading, err := h.useCase.GetReadingAt(deviceID, at)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": reading})
		return
	}

	low, high := c.Query("low"), c.Query("high")
	if low != "" || high != "" {
		reading, err := h.useCase.GetReadingInRange(deviceID, low, high)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": reading})
		return
	}

	readings, err := h.useCase.GetReadingsByDevice(deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  readings,
		"count": len(readings),
	})
}
