package httpHandler

import (
	"errors"
	"net/http"

	"medbox-server/entities"
	"medbox-server/storage"
	"medbox-server/usecases"
	"medbox-server/ws"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	useCase *usecases.MedboxUseCase
	mgr     *ws.Manager
}

func NewDeviceHandler(useCase *usecases.MedboxUseCase, mgr *ws.Manager) *DeviceHandler {
	return &DeviceHandler{useCase: useCase, mgr: mgr}
}

// Upload handles POST /medbox/upload. The device reports its full schedule;
// the previous snapshot is overwritten wholesale.
func (h *DeviceHandler) Upload(c *gin.Context) {
	var req struct {
		DeviceID string               `json:"deviceId"`
		Count    *int                 `json:"count"`
		Meds     *[]entities.MedEntry `json:"meds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.DeviceID == "" || req.Count == nil || req.Meds == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing fields"})
		return
	}

	snap, err := h.useCase.Upload(req.DeviceID, *req.Count, *req.Meds)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"deviceId":      req.DeviceID,
		"receivedCount": snap.Count,
		"storedAt":      snap.Timestamp,
	})
}

// Changes handles GET /medbox/changes?deviceId=... — the device poll. The
// returned commands are simultaneously archived to history as sent.
func (h *DeviceHandler) Changes(c *gin.Context) {
	deviceID := c.Query("deviceId")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId required"})
		return
	}

	cmds, err := h.useCase.Poll(deviceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"commands": cmds})
}

// GetSnapshot handles GET /medbox/:device_id/snapshot.
func (h *DeviceHandler) GetSnapshot(c *gin.Context) {
	deviceID := c.Param("device_id")

	snap, err := h.useCase.Snapshot(deviceID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no data for this device yet"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// GetPending handles GET /medbox/:device_id/pending. Unlike Changes this is
// a read-only peek and does not drain the queue.
func (h *DeviceHandler) GetPending(c *gin.Context) {
	deviceID := c.Param("device_id")

	pending, err := h.useCase.Pending(deviceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deviceId": deviceID,
		"pending":  pending,
	})
}

// GetAllDevices handles GET /api/v1/devices for programmatic clients.
func (h *DeviceHandler) GetAllDevices(c *gin.Context) {
	rows := h.useCase.Overview()
	for i := range rows {
		rows[i].Online = h.mgr.IsConnected(rows[i].DeviceID)
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}
