package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// One JSON document per map, rewritten in full on every mutation.
const (
	medsFile    = "devices_meds.json"
	pendingFile = "devices_commands_pending.json"
	historyFile = "devices_commands_history.json"
	metaFile    = "devices_meta.json"
)

func (s *Store) loadAll() error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	loadFile(s, metaFile, &s.meta)
	loadFile(s, medsFile, &s.meds)
	loadFile(s, pendingFile, &s.pending)
	loadFile(s, historyFile, &s.history)
	return nil
}

// loadFile reads one store file into target. Missing file leaves target as
// the empty map; malformed content does the same with a warning. Decoding
// goes through a scratch map so a file that fails partway through never
// leaves half its entries behind.
func loadFile[M ~map[string]V, V any](s *Store, name string, target *M) {
	path := filepath.Join(s.dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Err(err).Str("file", name).Msg("could not read store file, starting empty")
		}
		return
	}
	decoded := make(M)
	if err := json.Unmarshal(data, &decoded); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("malformed store file, starting empty")
		return
	}
	*target = decoded
}

// saveFile rewrites one store file wholesale, pretty-printed, via a temp
// file and rename so a crash mid-write cannot leave a truncated document.
// Errors are logged and swallowed; the in-memory state is already mutated.
func (s *Store) saveFile(name string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("could not encode store file")
		return
	}
	path := filepath.Join(s.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("could not write store file")
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("could not replace store file")
	}
}

func (s *Store) saveMeta()    { s.saveFile(metaFile, s.meta) }
func (s *Store) saveMeds()    { s.saveFile(medsFile, s.meds) }
func (s *Store) savePending() { s.saveFile(pendingFile, s.pending) }
func (s *Store) saveHistory() { s.saveFile(historyFile, s.history) }
