package entities

// MedEntry is one medication slot as reported by the device. The server
// treats it as an opaque payload beyond required-field checks on upload.
type MedEntry struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Qty     int    `json:"qty"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	Led     int    `json:"led"`
	Enabled bool   `json:"enabled"`
}

// Snapshot is the most recent medication schedule uploaded by a device.
// Each upload overwrites the previous one wholesale; no history is kept.
type Snapshot struct {
	Timestamp string     `json:"timestamp"`
	Count     int        `json:"count"`
	Meds      []MedEntry `json:"meds"`
}
