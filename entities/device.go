package entities

// DeviceMeta is the registry record for a dispenser. It is created lazily on
// first contact from any endpoint and survives until an explicit device
// delete. Timestamps are RFC3339 strings; empty means never seen.
type DeviceMeta struct {
	DeviceID        string `json:"deviceId"`
	FriendlyName    string `json:"friendly_name"`
	CreatedAt       string `json:"created_at"`
	LastSeenUpload  string `json:"last_seen_upload,omitempty"`
	LastSeenChanges string `json:"last_seen_changes,omitempty"`
}

// DeviceRow is the flattened per-device view used by the dashboard index and
// the device list API.
type DeviceRow struct {
	DeviceID        string `json:"deviceId"`
	FriendlyName    string `json:"friendly_name"`
	CreatedAt       string `json:"created_at,omitempty"`
	LastSeenUpload  string `json:"last_seen_upload,omitempty"`
	LastSeenChanges string `json:"last_seen_changes,omitempty"`
	MedsCount       int    `json:"meds_count"`
	PendingCount    int    `json:"pending_count"`
	SentCount       int    `json:"sent_count"`
	Online          bool   `json:"online"`
}
