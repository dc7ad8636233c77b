package usecases

import (
	"errors"

	"medbox-server/entities"

	"github.com/google/uuid"
)

// ErrMissingFields is returned when a command request omits a required key.
var ErrMissingFields = errors.New("missing fields")

// AddParams carries the fields of an add command. All but Enabled are
// required; Enabled defaults to true.
type AddParams struct {
	Name    *string
	Qty     *int
	Hour    *int
	Minute  *int
	Led     *int
	Enabled *bool
}

// EditParams carries an edit command: the target med id plus any subset of
// mutable fields. Only the id is required; the server does not verify it
// exists in the last snapshot — the device validates on delivery.
type EditParams struct {
	ID      *int
	Name    *string
	Qty     *int
	Hour    *int
	Minute  *int
	Led     *int
	Enabled *bool
}

// EnqueueAdd validates and queues an add command for the device.
func (uc *MedboxUseCase) EnqueueAdd(deviceID string, p AddParams) (entities.Command, error) {
	if deviceID == "" {
		return entities.Command{}, errors.New("deviceId is required")
	}
	if p.Name == nil || p.Qty == nil || p.Hour == nil || p.Minute == nil || p.Led == nil {
		return entities.Command{}, ErrMissingFields
	}
	enabled := true
	if p.Enabled != nil {
		enabled = *p.Enabled
	}
	cmd := entities.Command{
		CommandID: uuid.New().String(),
		Op:        entities.OpAdd,
		Name:      p.Name,
		Qty:       p.Qty,
		Hour:      p.Hour,
		Minute:    p.Minute,
		Led:       p.Led,
		Enabled:   &enabled,
	}
	uc.Store.Enqueue(deviceID, cmd)
	return cmd, nil
}

// EnqueueEdit validates and queues an edit command for the device.
func (uc *MedboxUseCase) EnqueueEdit(deviceID string, p EditParams) (entities.Command, error) {
	if deviceID == "" {
		return entities.Command{}, errors.New("deviceId is required")
	}
	if p.ID == nil {
		return entities.Command{}, errors.New("id required")
	}
	cmd := entities.Command{
		CommandID: uuid.New().String(),
		Op:        entities.OpEdit,
		ID:        p.ID,
		Name:      p.Name,
		Qty:       p.Qty,
		Hour:      p.Hour,
		Minute:    p.Minute,
		Led:       p.Led,
		Enabled:   p.Enabled,
	}
	uc.Store.Enqueue(deviceID, cmd)
	return cmd, nil
}

// EnqueueDelete validates and queues a delete command for the device.
func (uc *MedboxUseCase) EnqueueDelete(deviceID string, id *int) (entities.Command, error) {
	if deviceID == "" {
		return entities.Command{}, errors.New("deviceId is required")
	}
	if id == nil {
		return entities.Command{}, errors.New("id required")
	}
	cmd := entities.Command{
		CommandID: uuid.New().String(),
		Op:        entities.OpDelete,
		ID:        id,
	}
	uc.Store.Enqueue(deviceID, cmd)
	return cmd, nil
}

// Poll drains the device's pending queue: the returned commands are moved to
// history as sent and the queue is emptied atomically.
func (uc *MedboxUseCase) Poll(deviceID string) ([]entities.Command, error) {
	if deviceID == "" {
		return nil, errors.New("deviceId required")
	}
	return uc.Store.DrainPending(deviceID), nil
}

// Pending returns the device's queued commands without draining them.
func (uc *MedboxUseCase) Pending(deviceID string) ([]entities.Command, error) {
	if deviceID == "" {
		return nil, errors.New("deviceId required")
	}
	return uc.Store.Pending(deviceID), nil
}

// DeletePendingAt removes one queued command by index; out of range is a
// no-op.
func (uc *MedboxUseCase) DeletePendingAt(deviceID string, idx int) {
	uc.Store.DeletePendingAt(deviceID, idx)
}

// DeleteHistoryAt removes one history record by index; out of range is a
// no-op.
func (uc *MedboxUseCase) DeleteHistoryAt(deviceID string, idx int) {
	uc.Store.DeleteHistoryAt(deviceID, idx)
}
