package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"medbox-server/entities"
	"medbox-server/usecases"
	"medbox-server/ws"

	"github.com/gin-gonic/gin"
)

// DashboardHandler renders the operator HTML views. Every mutating action
// redirects back to a refreshed view.
type DashboardHandler struct {
	uc  *usecases.MedboxUseCase
	mgr *ws.Manager
}

func NewDashboardHandler(uc *usecases.MedboxUseCase, mgr *ws.Manager) *DashboardHandler {
	return &DashboardHandler{uc: uc, mgr: mgr}
}

// commandView is one queued or archived command prepared for rendering.
type commandView struct {
	Index  int
	Op     string
	Status string
	SentAt string
	JSON   string
}

func commandViews(cmds []entities.Command) []commandView {
	views := make([]commandView, 0, len(cmds))
	for i, cmd := range cmds {
		body, err := json.MarshalIndent(cmd, "", "  ")
		if err != nil {
			body = []byte("{}")
		}
		views = append(views, commandView{
			Index:  i,
			Op:     cmd.Op,
			Status: cmd.Status,
			SentAt: cmd.SentAt,
			JSON:   string(body),
		})
	}
	return views
}

// Index GET / — device list.
func (h *DashboardHandler) Index(c *gin.Context) {
	rows := h.uc.Overview()
	for i := range rows {
		rows[i].Online = h.mgr.IsConnected(rows[i].DeviceID)
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"Devices": rows})
}

// NewDeviceForm GET /devices/new.
func (h *DashboardHandler) NewDeviceForm(c *gin.Context) {
	c.HTML(http.StatusOK, "new_device.html", gin.H{})
}

// CreateDevice POST /devices/new.
func (h *DashboardHandler) CreateDevice(c *gin.Context) {
	deviceID := strings.TrimSpace(c.PostForm("deviceId"))
	friendlyName := strings.TrimSpace(c.PostForm("friendly_name"))
	if deviceID == "" {
		c.String(http.StatusBadRequest, "Device ID required")
		return
	}
	_ = h.uc.RegisterDevice(deviceID, friendlyName)
	c.Redirect(http.StatusFound, "/device/"+deviceID)
}

// DeviceDetail GET /device/:device_id.
func (h *DashboardHandler) DeviceDetail(c *gin.Context) {
	deviceID := c.Param("device_id")

	detail, err := h.uc.Detail(deviceID)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	c.HTML(http.StatusOK, "device.html", gin.H{
		"Meta":     detail.Meta,
		"Snapshot": detail.Snapshot,
		"Pending":  commandViews(detail.Pending),
		"History":  commandViews(detail.History),
		"Online":   h.mgr.IsConnected(deviceID),
	})
}

// DeleteDevice POST /device/:device_id/delete — removes the device from all
// four stores.
func (h *DashboardHandler) DeleteDevice(c *gin.Context) {
	_ = h.uc.DeleteDevice(c.Param("device_id"))
	c.Redirect(http.StatusFound, "/")
}

// DeletePending POST /device/:device_id/pending/:idx/delete.
func (h *DashboardHandler) DeletePending(c *gin.Context) {
	deviceID := c.Param("device_id")
	if idx, err := strconv.Atoi(c.Param("idx")); err == nil {
		h.uc.DeletePendingAt(deviceID, idx)
	}
	c.Redirect(http.StatusFound, "/device/"+deviceID)
}

// DeleteHistory POST /device/:device_id/history/:idx/delete.
func (h *DashboardHandler) DeleteHistory(c *gin.Context) {
	deviceID := c.Param("device_id")
	if idx, err := strconv.Atoi(c.Param("idx")); err == nil {
		h.uc.DeleteHistoryAt(deviceID, idx)
	}
	c.Redirect(http.StatusFound, "/device/"+deviceID)
}
