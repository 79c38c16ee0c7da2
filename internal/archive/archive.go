// Package archive moves whole aggregates in and out of the system as
// JSON documents: the export file, the import upload, and the
// open/save-to-chosen-file flows.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/lasmonitor/lasmonitor/internal/reading"
)

// requiredFields are the top-level keys an import document must carry.
// Presence only: contents are not schema-checked. materials is optional,
// older exports did not always include it.
var requiredFields = []string{"students", "assessments", "settings"}

// Export writes the aggregate as pretty-printed JSON. This document is
// the sole external representation of the data; its shape is identical
// to what the persistence slot stores.
func Export(w io.Writer, snap reading.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import parses a document produced by Export (or hand-edited to the
// same shape). On any failure the returned error is a readable message
// and the caller's aggregate must be left untouched.
func Import(r io.Reader) (reading.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return reading.Snapshot{}, fmt.Errorf("could not read import: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return reading.Snapshot{}, fmt.Errorf("invalid file: not well-formed JSON")
	}
	for _, field := range requiredFields {
		// an explicit null is as absent as a missing key
		if res := gjson.GetBytes(data, field); !res.Exists() || res.Type == gjson.Null {
			return reading.Snapshot{}, fmt.Errorf("invalid file: missing %q", field)
		}
	}
	var snap reading.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return reading.Snapshot{}, fmt.Errorf("could not decode import: %w", err)
	}
	if snap.Students == nil {
		snap.Students = []reading.Student{}
	}
	if snap.Materials == nil {
		snap.Materials = []reading.Material{}
	}
	if snap.Assessments == nil {
		snap.Assessments = []reading.Assessment{}
	}
	return snap, nil
}

// SaveFile writes the aggregate to a user-chosen path, independent of
// the persistence slot.
func SaveFile(path string, snap reading.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	defer f.Close()
	if err := Export(f, snap); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}
	return f.Close()
}

// OpenFile reads and validates an aggregate from a user-chosen path.
func OpenFile(path string) (reading.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return reading.Snapshot{}, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()
	return Import(f)
}
