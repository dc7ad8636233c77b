package usecases

import (
	"errors"

	"medbox-server/entities"
	"medbox-server/storage"
)

type MedboxUseCase struct {
	Store *storage.Store
}

func NewMedboxUseCase(store *storage.Store) *MedboxUseCase {
	return &MedboxUseCase{Store: store}
}

// Upload replaces the device's snapshot with the reported schedule. The
// handler has already checked that count and meds keys were present; an
// empty meds list is a valid report.
func (uc *MedboxUseCase) Upload(deviceID string, count int, meds []entities.MedEntry) (entities.Snapshot, error) {
	if deviceID == "" {
		return entities.Snapshot{}, errors.New("deviceId is required")
	}
	if meds == nil {
		meds = []entities.MedEntry{}
	}
	return uc.Store.RecordUpload(deviceID, count, meds), nil
}

// Snapshot returns the latest snapshot for a device.
func (uc *MedboxUseCase) Snapshot(deviceID string) (entities.Snapshot, error) {
	if deviceID == "" {
		return entities.Snapshot{}, errors.New("deviceId is required")
	}
	return uc.Store.GetSnapshot(deviceID)
}

// RegisterDevice upserts a registry record from the new-device form. An
// empty friendly name falls back to the device id.
func (uc *MedboxUseCase) RegisterDevice(deviceID, friendlyName string) error {
	if deviceID == "" {
		return errors.New("deviceId is required")
	}
	if friendlyName == "" {
		friendlyName = deviceID
	}
	uc.Store.SetFriendlyName(deviceID, friendlyName)
	return nil
}

// DeleteDevice removes the device from all four stores.
func (uc *MedboxUseCase) DeleteDevice(deviceID string) error {
	if deviceID == "" {
		return errors.New("deviceId is required")
	}
	uc.Store.DeleteDevice(deviceID)
	return nil
}

// Overview returns one row per known device.
func (uc *MedboxUseCase) Overview() []entities.DeviceRow {
	return uc.Store.Overview()
}

// Detail returns the complete per-device state for the dashboard.
func (uc *MedboxUseCase) Detail(deviceID string) (storage.Detail, error) {
	if deviceID == "" {
		return storage.Detail{}, errors.New("deviceId is required")
	}
	return uc.Store.GetDetail(deviceID), nil
}
