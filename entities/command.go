package entities

// Command ops.
const (
	OpAdd    = "add"
	OpEdit   = "edit"
	OpDelete = "delete"
)

// Command status once archived to history.
const StatusSent = "sent"

// Command is a queued configuration change for a device. Optional fields are
// pointers so an edit carrying only a subset of fields serializes exactly the
// keys the operator provided. A command lives in exactly one of a device's
// pending or history lists; polling moves it to history with Status and
// SentAt stamped.
type Command struct {
	CommandID string `json:"command_id"`
	Op        string `json:"op"`

	// Target med id, required for edit and delete.
	ID *int `json:"id,omitempty"`

	Name    *string `json:"name,omitempty"`
	Qty     *int    `json:"qty,omitempty"`
	Hour    *int    `json:"hour,omitempty"`
	Minute  *int    `json:"minute,omitempty"`
	Led     *int    `json:"led,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`

	Status string `json:"status,omitempty"`
	SentAt string `json:"sent_at,omitempty"`
}
