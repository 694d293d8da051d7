package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"weather-server/entities"
	"weather-server/usecases"
)

type DeviceHandler struct {
	useCase *usecases.WeatherUseCase
}

func NewDeviceHandler(useCase *usecases.WeatherUseCase) *DeviceHandler {
	return &DeviceHandler{
		useCase: useCase,
	}
}

// CreateDevice handles POST /api/v1/devices
func (h *DeviceHandler) CreateDevice(c *gin.Context) {
	var device entities.Device

	if err := c.ShouldBindJSON(&device); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.useCase.CreateDevice(&device); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Device created successfully",
		"data":    device,
	})
}

// GetDevice handles GET /api/v1/devices/:id
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	device, err := h.useCase.GetDevice(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": device,
	})
}

// GetAllDevices handles GET /api/v1/devices
func (h *DeviceHandler) GetAllDevices(c *gin.Context) {
	devices, err := h.useCase.GetAllDevices()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  devices,
		"count": len(devices),
	})
}
