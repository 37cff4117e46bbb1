package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON serializes the snapshot as an indented JSON document. The
// document is sufficient to re-run evaluation without re-scanning.
func WriteJSON(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ReadJSON parses a snapshot previously written by WriteJSON.
func ReadJSON(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Files == nil {
		snap.Files = make(map[string]bool)
	}
	if snap.Dirs == nil {
		snap.Dirs = make(map[string]bool)
	}
	if snap.Flags == nil {
		snap.Flags = make(map[string]bool)
	}
	return &snap, nil
}

// ReadJSONFile parses a snapshot from a file on disk.
func ReadJSONFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadJSON(f)
}
