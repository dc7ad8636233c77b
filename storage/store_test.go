package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"medbox-server/entities"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s, dir
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func addCommand(name string) entities.Command {
	return entities.Command{
		CommandID: name + "-cmd",
		Op:        entities.OpAdd,
		Name:      strPtr(name),
		Qty:       intPtr(1),
		Hour:      intPtr(8),
		Minute:    intPtr(0),
		Led:       intPtr(1),
		Enabled:   boolPtr(true),
	}
}

func TestOpenMissingFilesStartsEmpty(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	is.Equal(len(s.Overview()), 0)
}

func TestOpenMalformedFileStartsEmpty(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, metaFile), []byte("{not json"), 0o644)
	is.NoErr(err)

	s, err := Open(dir, zerolog.Nop())
	is.NoErr(err)
	is.Equal(len(s.Overview()), 0)
}

func TestOpenWrongTypedFileStartsEmpty(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	// Valid JSON, but one record has a wrong-typed field. The good entry
	// must not survive a failed decode.
	content := `{
  "MEDBOX_A": {"deviceId": "MEDBOX_A", "friendly_name": "Good", "created_at": "2026-08-24T00:00:00Z"},
  "MEDBOX_B": {"deviceId": 42}
}`
	err := os.WriteFile(filepath.Join(dir, metaFile), []byte(content), 0o644)
	is.NoErr(err)

	s, err := Open(dir, zerolog.Nop())
	is.NoErr(err)
	is.Equal(len(s.Overview()), 0)
	_, err = s.GetMeta("MEDBOX_A")
	is.Equal(err, ErrNotFound)
}

func TestRecordUploadOverwritesSnapshot(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	meds := []entities.MedEntry{
		{ID: 1, Name: "Aspirin", Qty: 2, Hour: 8, Minute: 0, Led: 1, Enabled: true},
	}
	snap := s.RecordUpload("MEDBOX_A", 1, meds)
	is.True(snap.Timestamp != "")
	is.Equal(snap.Count, 1)

	got, err := s.GetSnapshot("MEDBOX_A")
	is.NoErr(err)
	is.Equal(got.Meds, meds)

	// Second upload replaces wholesale, no history retained.
	s.RecordUpload("MEDBOX_A", 0, []entities.MedEntry{})
	got, err = s.GetSnapshot("MEDBOX_A")
	is.NoErr(err)
	is.Equal(got.Count, 0)
	is.Equal(len(got.Meds), 0)
}

func TestRecordUploadTouchesMeta(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	s.RecordUpload("MEDBOX_A", 0, nil)

	meta, err := s.GetMeta("MEDBOX_A")
	is.NoErr(err)
	is.Equal(meta.DeviceID, "MEDBOX_A")
	is.Equal(meta.FriendlyName, "MEDBOX_A") // defaults to the device id
	is.True(meta.CreatedAt != "")
	is.True(meta.LastSeenUpload != "")
	is.Equal(meta.LastSeenChanges, "")
}

func TestGetSnapshotUnknownDevice(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	_, err := s.GetSnapshot("MEDBOX_NOPE")
	is.Equal(err, ErrNotFound)
}

func TestDrainPendingMovesEverythingToHistory(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	first := addCommand("Aspirin")
	second := addCommand("Ibuprofen")
	third := entities.Command{CommandID: "del-cmd", Op: entities.OpDelete, ID: intPtr(3)}
	s.Enqueue("MEDBOX_A", first)
	s.Enqueue("MEDBOX_A", second)
	s.Enqueue("MEDBOX_A", third)

	drained := s.DrainPending("MEDBOX_A")
	is.Equal(len(drained), 3)
	is.Equal(drained[0].CommandID, first.CommandID) // FIFO insertion order
	is.Equal(drained[1].CommandID, second.CommandID)
	is.Equal(drained[2].CommandID, third.CommandID)

	is.Equal(len(s.Pending("MEDBOX_A")), 0)

	hist := s.History("MEDBOX_A")
	is.Equal(len(hist), 3)
	for _, c := range hist {
		is.Equal(c.Status, entities.StatusSent)
		is.True(c.SentAt != "")
	}

	meta, err := s.GetMeta("MEDBOX_A")
	is.NoErr(err)
	is.True(meta.LastSeenChanges != "")
}

func TestDrainPendingEmptyQueue(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	drained := s.DrainPending("MEDBOX_A")
	is.True(drained != nil)
	is.Equal(len(drained), 0)
	is.Equal(len(s.History("MEDBOX_A")), 0)
}

func TestDeletePendingAt(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	s.Enqueue("MEDBOX_A", addCommand("one"))
	s.Enqueue("MEDBOX_A", addCommand("two"))
	s.Enqueue("MEDBOX_A", addCommand("three"))

	s.DeletePendingAt("MEDBOX_A", 1)
	left := s.Pending("MEDBOX_A")
	is.Equal(len(left), 2)
	is.Equal(*left[0].Name, "one")
	is.Equal(*left[1].Name, "three")

	// Out-of-range indexes are no-ops.
	s.DeletePendingAt("MEDBOX_A", 5)
	s.DeletePendingAt("MEDBOX_A", -1)
	s.DeletePendingAt("MEDBOX_NOPE", 0)
	is.Equal(len(s.Pending("MEDBOX_A")), 2)
}

func TestDeleteHistoryAt(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	s.Enqueue("MEDBOX_A", addCommand("one"))
	s.Enqueue("MEDBOX_A", addCommand("two"))
	s.DrainPending("MEDBOX_A")

	s.DeleteHistoryAt("MEDBOX_A", 0)
	hist := s.History("MEDBOX_A")
	is.Equal(len(hist), 1)
	is.Equal(*hist[0].Name, "two")

	s.DeleteHistoryAt("MEDBOX_A", 9)
	is.Equal(len(s.History("MEDBOX_A")), 1)
}

func TestDeleteDeviceRemovesAllFourStores(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	s.RecordUpload("MEDBOX_A", 1, []entities.MedEntry{{ID: 1, Name: "Aspirin"}})
	s.Enqueue("MEDBOX_A", addCommand("one"))
	s.DrainPending("MEDBOX_A")
	s.Enqueue("MEDBOX_A", addCommand("two"))

	s.DeleteDevice("MEDBOX_A")

	_, err := s.GetSnapshot("MEDBOX_A")
	is.Equal(err, ErrNotFound)
	_, err = s.GetMeta("MEDBOX_A")
	is.Equal(err, ErrNotFound)
	is.Equal(len(s.Pending("MEDBOX_A")), 0)
	is.Equal(len(s.History("MEDBOX_A")), 0)
	is.Equal(len(s.Overview()), 0)
}

func TestStateSurvivesReopen(t *testing.T) {
	is := is.New(t)
	s, dir := newTestStore(t)

	s.RecordUpload("MEDBOX_A", 1, []entities.MedEntry{{ID: 1, Name: "Aspirin", Qty: 2}})
	s.Enqueue("MEDBOX_A", addCommand("one"))
	s.Enqueue("MEDBOX_B", addCommand("two"))
	s.DrainPending("MEDBOX_B")
	s.SetFriendlyName("MEDBOX_A", "Grandpa MedBox")

	reopened, err := Open(dir, zerolog.Nop())
	is.NoErr(err)

	snap, err := reopened.GetSnapshot("MEDBOX_A")
	is.NoErr(err)
	is.Equal(snap.Meds[0].Name, "Aspirin")

	meta, err := reopened.GetMeta("MEDBOX_A")
	is.NoErr(err)
	is.Equal(meta.FriendlyName, "Grandpa MedBox")

	is.Equal(len(reopened.Pending("MEDBOX_A")), 1)
	is.Equal(len(reopened.History("MEDBOX_B")), 1)
	is.Equal(reopened.History("MEDBOX_B")[0].Status, entities.StatusSent)
}

func TestOverviewUnionsAllStores(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	s.RecordUpload("MEDBOX_A", 2, []entities.MedEntry{{ID: 1}, {ID: 2}})
	s.Enqueue("MEDBOX_B", addCommand("one"))
	s.EnsureMeta("MEDBOX_C")

	rows := s.Overview()
	is.Equal(len(rows), 3)
	is.Equal(rows[0].DeviceID, "MEDBOX_A") // sorted by device id
	is.Equal(rows[0].MedsCount, 2)
	is.Equal(rows[1].DeviceID, "MEDBOX_B")
	is.Equal(rows[1].PendingCount, 1)
	is.Equal(rows[2].DeviceID, "MEDBOX_C")
}

// Concurrent enqueues racing a drain must each land in exactly one drain
// result or remain pending, never lost and never duplicated.
func TestConcurrentEnqueueAndDrain(t *testing.T) {
	is := is.New(t)
	s, _ := newTestStore(t)

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				cmd := addCommand("med")
				cmd.CommandID = string(rune('a'+w)) + "-" + string(rune('0'+i/10)) + string(rune('0'+i%10))
				s.Enqueue("MEDBOX_A", cmd)
			}
		}(w)
	}

	seen := make(map[string]int)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			for _, c := range s.DrainPending("MEDBOX_A") {
				seen[c.CommandID]++
			}
		}
	}()

	wg.Wait()
	<-done

	// Whatever was not drained is still pending.
	for _, c := range s.Pending("MEDBOX_A") {
		seen[c.CommandID]++
	}

	is.Equal(len(seen), writers*perWriter)
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("command %s seen %d times", id, n)
		}
	}

	// History holds exactly the drained commands, all marked sent.
	drainedTotal := 0
	for _, c := range s.History("MEDBOX_A") {
		is.Equal(c.Status, entities.StatusSent)
		drainedTotal++
	}
	is.Equal(drainedTotal+len(s.Pending("MEDBOX_A")), writers*perWriter)
}
