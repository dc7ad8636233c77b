package storage

import (
	"errors"
	"sort"
	"sync"
	"time"

	"medbox-server/entities"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a lookup references a device with no stored
// record for the requested map.
var ErrNotFound = errors.New("not found")

// Store owns the four deviceId-keyed maps and serializes every read and
// write through one mutex. Each mutating operation rewrites the affected
// JSON file(s) in full before the lock is released; a save failure is logged
// and the in-memory mutation stands.
type Store struct {
	mu      sync.Mutex
	dataDir string
	log     zerolog.Logger

	meta    map[string]*entities.DeviceMeta
	meds    map[string]*entities.Snapshot
	pending map[string][]entities.Command
	history map[string][]entities.Command
}

// Open loads the four JSON files from dataDir. A missing file yields an
// empty map; a malformed file yields an empty map with a logged warning.
func Open(dataDir string, log zerolog.Logger) (*Store, error) {
	s := &Store{
		dataDir: dataDir,
		log:     log,
		meta:    make(map[string]*entities.DeviceMeta),
		meds:    make(map[string]*entities.Snapshot),
		pending: make(map[string][]entities.Command),
		history: make(map[string][]entities.Command),
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	log.Info().
		Int("meta", len(s.meta)).
		Int("snapshots", len(s.meds)).
		Int("pending", len(s.pending)).
		Int("history", len(s.history)).
		Msg("loaded JSON device stores")
	return s, nil
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ensureMetaLocked creates the registry record on first contact. Caller
// holds the lock. Returns true when a record was created.
func (s *Store) ensureMetaLocked(deviceID string) bool {
	if _, ok := s.meta[deviceID]; ok {
		return false
	}
	s.meta[deviceID] = &entities.DeviceMeta{
		DeviceID:     deviceID,
		FriendlyName: deviceID,
		CreatedAt:    nowISO(),
	}
	return true
}

// EnsureMeta creates a registry record for deviceID if absent.
func (s *Store) EnsureMeta(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensureMetaLocked(deviceID) {
		s.saveMeta()
	}
}

// SetFriendlyName upserts the registry record and sets its friendly name.
func (s *Store) SetFriendlyName(deviceID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureMetaLocked(deviceID)
	s.meta[deviceID].FriendlyName = name
	s.saveMeta()
}

// TouchPoll stamps last_seen_changes, creating the record first if needed.
func (s *Store) TouchPoll(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureMetaLocked(deviceID)
	s.meta[deviceID].LastSeenChanges = nowISO()
	s.saveMeta()
}

// GetMeta returns a copy of the registry record for deviceID.
func (s *Store) GetMeta(deviceID string) (entities.DeviceMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meta[deviceID]
	if !ok {
		return entities.DeviceMeta{}, ErrNotFound
	}
	return *m, nil
}

// RecordUpload replaces the device's snapshot with the given payload,
// stamping the current time, and touches last_seen_upload. Registry upsert,
// snapshot overwrite and both file saves happen in one critical section.
func (s *Store) RecordUpload(deviceID string, count int, meds []entities.MedEntry) entities.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowISO()
	s.ensureMetaLocked(deviceID)
	s.meta[deviceID].LastSeenUpload = now

	snap := &entities.Snapshot{
		Timestamp: now,
		Count:     count,
		Meds:      meds,
	}
	s.meds[deviceID] = snap

	s.saveMeta()
	s.saveMeds()
	return *snap
}

// GetSnapshot returns the latest snapshot for deviceID.
func (s *Store) GetSnapshot(deviceID string) (entities.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.meds[deviceID]
	if !ok {
		return entities.Snapshot{}, ErrNotFound
	}
	return *snap, nil
}

// Enqueue appends cmd to the device's pending queue in FIFO order, creating
// the queue and the registry record if absent.
func (s *Store) Enqueue(deviceID string, cmd entities.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensureMetaLocked(deviceID) {
		s.saveMeta()
	}
	s.pending[deviceID] = append(s.pending[deviceID], cmd)
	s.savePending()
}

// DrainPending returns the device's pending commands in insertion order,
// archives a sent-stamped copy of each to history, clears the pending list
// and touches last_seen_changes. The whole transition is one critical
// section so a concurrent Enqueue is either fully included in this drain or
// left for the next one, never lost or duplicated.
func (s *Store) DrainPending(deviceID string) []entities.Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowISO()
	s.ensureMetaLocked(deviceID)
	s.meta[deviceID].LastSeenChanges = now

	cmds := s.pending[deviceID]
	for _, c := range cmds {
		archived := c
		archived.Status = entities.StatusSent
		archived.SentAt = now
		s.history[deviceID] = append(s.history[deviceID], archived)
	}
	s.pending[deviceID] = []entities.Command{}

	s.saveMeta()
	s.savePending()
	s.saveHistory()

	if cmds == nil {
		return []entities.Command{}
	}
	return cmds
}

// Pending returns a copy of the device's pending queue.
func (s *Store) Pending(deviceID string) []entities.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Command{}, s.pending[deviceID]...)
}

// History returns a copy of the device's sent-command history.
func (s *Store) History(deviceID string) []entities.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Command{}, s.history[deviceID]...)
}

// DeletePendingAt removes the pending command at idx, preserving the order
// of the rest. An out-of-range index is a no-op.
func (s *Store) DeletePendingAt(deviceID string, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lst := s.pending[deviceID]
	if idx < 0 || idx >= len(lst) {
		return
	}
	s.pending[deviceID] = append(lst[:idx:idx], lst[idx+1:]...)
	s.savePending()
}

// DeleteHistoryAt removes the history record at idx. An out-of-range index
// is a no-op.
func (s *Store) DeleteHistoryAt(deviceID string, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lst := s.history[deviceID]
	if idx < 0 || idx >= len(lst) {
		return
	}
	s.history[deviceID] = append(lst[:idx:idx], lst[idx+1:]...)
	s.saveHistory()
}

// DeleteDevice removes the device from all four maps and persists all four
// files in the same critical section, so no partial record survives.
func (s *Store) DeleteDevice(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meta, deviceID)
	delete(s.meds, deviceID)
	delete(s.pending, deviceID)
	delete(s.history, deviceID)
	s.saveMeta()
	s.saveMeds()
	s.savePending()
	s.saveHistory()
	s.log.Info().Str("device", deviceID).Msg("removed device and all related data")
}

// Detail is the full per-device view for the dashboard, read in one
// critical section.
type Detail struct {
	Meta     entities.DeviceMeta
	Snapshot *entities.Snapshot
	Pending  []entities.Command
	History  []entities.Command
}

// GetDetail upserts the registry record (mirroring lazy creation on the
// detail page) and returns the device's complete state.
func (s *Store) GetDetail(deviceID string) Detail {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ensureMetaLocked(deviceID) {
		s.saveMeta()
	}

	d := Detail{
		Meta:    *s.meta[deviceID],
		Pending: append([]entities.Command{}, s.pending[deviceID]...),
		History: append([]entities.Command{}, s.history[deviceID]...),
	}
	if snap, ok := s.meds[deviceID]; ok {
		snapCopy := *snap
		d.Snapshot = &snapCopy
	}
	return d
}

// Overview builds one row per device over the union of deviceIds across all
// four maps, sorted by deviceId. Devices known only from a queue or a
// snapshot still get a row.
func (s *Store) Overview() []entities.DeviceRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{})
	for id := range s.meta {
		ids[id] = struct{}{}
	}
	for id := range s.meds {
		ids[id] = struct{}{}
	}
	for id := range s.pending {
		ids[id] = struct{}{}
	}
	for id := range s.history {
		ids[id] = struct{}{}
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	rows := make([]entities.DeviceRow, 0, len(sorted))
	for _, id := range sorted {
		row := entities.DeviceRow{
			DeviceID:     id,
			FriendlyName: id,
			PendingCount: len(s.pending[id]),
			SentCount:    len(s.history[id]),
		}
		if m, ok := s.meta[id]; ok {
			row.FriendlyName = m.FriendlyName
			row.CreatedAt = m.CreatedAt
			row.LastSeenUpload = m.LastSeenUpload
			row.LastSeenChanges = m.LastSeenChanges
		}
		if snap, ok := s.meds[id]; ok {
			row.MedsCount = snap.Count
		}
		rows = append(rows, row)
	}
	return rows
}
