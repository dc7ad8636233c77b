package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Presence describes one currently-connected device.
type Presence struct {
	DeviceID      string    `json:"deviceId"`
	ConnectedAt   time.Time `json:"connected_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

type connection struct {
	conn          *websocket.Conn
	connectedAt   time.Time
	lastHeartbeat time.Time
}

// Manager tracks which devices currently hold a websocket connection.
// Presence is informational only: command delivery stays poll-based and the
// manager never touches the command queue.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*connection
}

func NewManager() *Manager {
	return &Manager{connections: make(map[string]*connection)}
}

// Register records a device connection, closing and replacing any previous
// one for the same device.
func (m *Manager) Register(deviceID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.connections[deviceID]; ok && old.conn != conn {
		_ = old.conn.Close()
	}
	now := time.Now().UTC()
	m.connections[deviceID] = &connection{
		conn:          conn,
		connectedAt:   now,
		lastHeartbeat: now,
	}
}

// Unregister drops a device connection.
func (m *Manager) Unregister(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.connections[deviceID]; ok {
		_ = c.conn.Close()
		delete(m.connections, deviceID)
	}
}

// Touch stamps the device's last heartbeat time.
func (m *Manager) Touch(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.connections[deviceID]; ok {
		c.lastHeartbeat = time.Now().UTC()
	}
}

// IsConnected reports whether the device currently holds a connection.
func (m *Manager) IsConnected(deviceID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.connections[deviceID]
	return ok
}

// List returns the presence records of all connected devices.
func (m *Manager) List() []Presence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Presence, 0, len(m.connections))
	for id, c := range m.connections {
		out = append(out, Presence{
			DeviceID:      id,
			ConnectedAt:   c.connectedAt,
			LastHeartbeat: c.lastHeartbeat,
		})
	}
	return out
}
