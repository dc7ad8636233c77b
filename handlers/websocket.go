package handlers

import (
	"encoding/json"
	"net/http"

	"medbox-server/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type incomingMessage struct {
	Type string `json:"type"` // heartbeat
}

// WSHandler keeps device presence over an optional websocket. Commands are
// never pushed here; devices still poll /medbox/changes for those.
type WSHandler struct {
	mgr *ws.Manager
	log zerolog.Logger
}

func NewWSHandler(mgr *ws.Manager, log zerolog.Logger) *WSHandler {
	return &WSHandler{mgr: mgr, log: log}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleDeviceWS upgrades to websocket and tracks the device as online while
// the connection lasts.
// GET /ws?id=<device_id>
func (h *WSHandler) HandleDeviceWS(c *gin.Context) {
	deviceID := c.Query("id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing device id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("device", deviceID).Msg("websocket upgrade failed")
		return
	}
	h.mgr.Register(deviceID, conn)
	h.log.Info().Str("device", deviceID).Msg("device connected")

	defer func() {
		h.mgr.Unregister(deviceID)
		h.log.Info().Str("device", deviceID).Msg("device disconnected")
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Str("device", deviceID).Msg("device closed connection")
			} else {
				h.log.Warn().Err(err).Str("device", deviceID).Msg("websocket read error")
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var base incomingMessage
		if err := json.Unmarshal(message, &base); err != nil {
			h.log.Warn().Err(err).Str("device", deviceID).Msg("invalid websocket json")
			continue
		}

		switch base.Type {
		case "heartbeat":
			h.mgr.Touch(deviceID)
		default:
			h.log.Debug().Str("device", deviceID).Str("type", base.Type).Msg("unknown websocket message type")
		}
	}
}

// GetConnectedDevices GET /api/v1/devices/connected
func (h *WSHandler) GetConnectedDevices(c *gin.Context) {
	devices := h.mgr.List()
	c.JSON(http.StatusOK, gin.H{"devices": devices, "count": len(devices)})
}
