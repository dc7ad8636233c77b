package httpHandler

import (
	"net/http"

	"medbox-server/usecases"

	"github.com/gin-gonic/gin"
)

type CommandHandler struct {
	cmdUC *usecases.MedboxUseCase
}

func NewCommandHandler(uc *usecases.MedboxUseCase) *CommandHandler {
	return &CommandHandler{cmdUC: uc}
}

type addReq struct {
	Name    *string `json:"name"`
	Qty     *int    `json:"qty"`
	Hour    *int    `json:"hour"`
	Minute  *int    `json:"minute"`
	Led     *int    `json:"led"`
	Enabled *bool   `json:"enabled"`
}

// Add handles POST /medbox/:device_id/command/add.
func (h *CommandHandler) Add(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cmd, err := h.cmdUC.EnqueueAdd(deviceID, usecases.AddParams{
		Name:    req.Name,
		Qty:     req.Qty,
		Hour:    req.Hour,
		Minute:  req.Minute,
		Led:     req.Led,
		Enabled: req.Enabled,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "queued", "deviceId": deviceID, "command": cmd})
}

type editReq struct {
	ID      *int    `json:"id"`
	Name    *string `json:"name"`
	Qty     *int    `json:"qty"`
	Hour    *int    `json:"hour"`
	Minute  *int    `json:"minute"`
	Led     *int    `json:"led"`
	Enabled *bool   `json:"enabled"`
}

// Edit handles POST /medbox/:device_id/command/edit. Any subset of mutable
// fields may accompany the required id; the target id is not checked against
// the last snapshot.
func (h *CommandHandler) Edit(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req editReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cmd, err := h.cmdUC.EnqueueEdit(deviceID, usecases.EditParams{
		ID:      req.ID,
		Name:    req.Name,
		Qty:     req.Qty,
		Hour:    req.Hour,
		Minute:  req.Minute,
		Led:     req.Led,
		Enabled: req.Enabled,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "queued", "deviceId": deviceID, "command": cmd})
}

type deleteReq struct {
	ID *int `json:"id"`
}

// Delete handles POST /medbox/:device_id/command/delete.
func (h *CommandHandler) Delete(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req deleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	cmd, err := h.cmdUC.EnqueueDelete(deviceID, req.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "queued", "deviceId": deviceID, "command": cmd})
}
