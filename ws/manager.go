package ws

import (
	"sort"
	"sync"

	"github.com/gorilla/websocket"

	"weather-server/metrics"
)

// Manager keeps track of active sensor websocket connections.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn // deviceID -> conn
}

func NewManager() *Manager {
	return &Manager{connections: make(map[string]*websocket.Conn)}
}

// Register registers a sensor connection, closing any older one for the
// same device.
func (m *Manager) Register(deviceID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.connections[deviceID]; ok && old != conn {
		_ = old.Close()
	}
	m.connections[deviceID] = conn
	metrics.ConnectedSensors.Set(float64(len(m.connections)))
}

// Unregister closes conn and forgets it, unless the device has since
// reconnected on a different connection.
func (m *Manager) Unregister(deviceID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = conn.Close()
	if current, ok := m.connections[deviceID]; ok && current == conn {
		delete(m.connections, deviceID)
	}
	metrics.ConnectedSensors.Set(float64(len(m.connections)))
}

// List returns the connected device IDs in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
