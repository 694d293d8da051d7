package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"weather-server/entities"
	"weather-server/usecases"
	"weather-server/ws"
)

// WebSocket message envelopes
type incomingMessage struct {
	Type string `json:"type"` // reading | heartbeat
}

type readingPayload struct {
	Type      string           `json:"type"`
	Value     *decimal.Decimal `json:"value"`
	Timestamp string           `json:"timestamp"`
}

type ackMessage struct {
	Type      string `json:"type"` // ack | error
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WSHandler accepts readings pushed by sensors over a websocket.
type WSHandler struct {
	mgr     *ws.Manager
	usecase *usecases.WeatherUseCase
	limit   rate.Limit
	burst   int
}

// NewWSHandler allows each connection ratePerSecond readings per second
// with the given burst. A non-positive rate disables throttling.
func NewWSHandler(mgr *ws.Manager, uc *usecases.WeatherUseCase, ratePerSecond float64, burst int) *WSHandler {
	limit := rate.Limit(ratePerSecond)
	if ratePerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &WSHandler{mgr: mgr, usecase: uc, limit: limit, burst: burst}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleSensorWS upgrades to websocket and stores readings sent by a
// registered device.
// GET /ws?id=<device_id>
func (h *WSHandler) HandleSensorWS(c *gin.Context) {
	deviceID := c.Query("id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing device id"})
		return
	}
	if _, err := h.usecase.GetDevice(deviceID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown device"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	h.mgr.Register(deviceID, conn)
	log.Printf("sensor connected: %s", deviceID)

	defer func() {
		h.mgr.Unregister(deviceID, conn)
		log.Printf("sensor disconnected: %s", deviceID)
	}()

	limiter := rate.NewLimiter(h.limit, h.burst)
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("sensor %s closed connection", deviceID)
			} else {
				log.Printf("read error from %s: %v", deviceID, err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var base incomingMessage
		if err := json.Unmarshal(message, &base); err != nil {
			log.Printf("invalid json from %s: %v", deviceID, err)
			h.reply(conn, deviceID, ackMessage{Type: "error", Error: "invalid json"})
			continue
		}

		switch base.Type {
		case "reading":
			if !limiter.Allow() {
				log.Printf("rate limit exceeded for %s, reading dropped", deviceID)
				h.reply(conn, deviceID, ackMessage{Type: "error", Error: "rate limit exceeded"})
				continue
			}
			h.storeReading(conn, deviceID, message)
		case "heartbeat":
			h.reply(conn, deviceID, ackMessage{Type: "ack"})
		default:
			log.Printf("unknown message type from %s: %s", deviceID, base.Type)
		}
	}
}

func (h *WSHandler) storeReading(conn *websocket.Conn, deviceID string, message []byte) {
	var payload readingPayload
	if err := json.Unmarshal(message, &payload); err != nil || payload.Value == nil {
		log.Printf("invalid reading payload from %s", deviceID)
		h.reply(conn, deviceID, ackMessage{Type: "error", Error: "invalid reading payload"})
		return
	}

	reading, err := h.usecase.RecordReading(deviceID, *payload.Value, payload.Timestamp, "websocket")
	if err != nil {
		log.Printf("reading from %s rejected: %v", deviceID, err)
		h.reply(conn, deviceID, ackMessage{Type: "error", Timestamp: payload.Timestamp, Error: err.Error()})
		return
	}
	h.reply(conn, deviceID, ackMessage{Type: "ack", Timestamp: entities.FormatTimestamp(reading.DataTimestamp)})
}

// reply writes on the connection that carried the message. Only the read
// loop of that connection writes to it.
func (h *WSHandler) reply(conn *websocket.Conn, deviceID string, msg ackMessage) {
	b, _ := json.Marshal(msg)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Printf("reply to %s failed: %v", deviceID, err)
	}
}

// GetConnectedSensors GET /api/v1/sensors/connected
func (h *WSHandler) GetConnectedSensors(c *gin.Context) {
	sensors := h.mgr.List()
	c.JSON(http.StatusOK, gin.H{"sensors": sensors, "count": len(sensors)})
}
