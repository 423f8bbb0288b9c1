// Package output writes scan results to a directory and reads them back
// for rendering.
//
// Layout:
//
//	records.jsonl   one ir.CallRecord per line
//	toc.json        ir.TOC
//	diags.json      []diag.Diag
//	manifest.json   Manifest
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"

	"cpp2cleo/internal/diag"
	"cpp2cleo/internal/ir"
)

const (
	RecordsFile  = "records.jsonl"
	TOCFile      = "toc.json"
	DiagsFile    = "diags.json"
	ManifestFile = "manifest.json"
)

// Manifest describes one scan run.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Tool       string    `json:"tool"`
	Created    time.Time `json:"created"`
	Input      string    `json:"input"`
	InputHash  string    `json:"input_xxh3"`
	AddrTable  string    `json:"addr_table,omitempty"`
	AddrHash   string    `json:"addr_table_xxh3,omitempty"`
	Mode       string    `json:"mode"`
	Records    int       `json:"records"`
	Scopes     int       `json:"scopes"`
	Skipped    int       `json:"skipped"`
	Duplicates int       `json:"duplicates"`
}

// NewManifest returns a manifest stamped with a fresh run id.
func NewManifest(tool string) Manifest {
	return Manifest{
		RunID:   uuid.New().String(),
		Tool:    tool,
		Created: time.Now().UTC(),
	}
}

// Digest returns the xxh3 hash of data as 16 hex digits.
func Digest(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

// DigestFile hashes the file at path.
func DigestFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("output: digest %s: %w", path, err)
	}
	return Digest(data), nil
}

// Bundle is everything a scan run produces.
type Bundle struct {
	Records []ir.CallRecord
	TOC     ir.TOC
	Diags   []diag.Diag
}

// Write stores b and m under dir, creating it if needed.
func Write(dir string, b Bundle, m Manifest) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("output: mkdir: %w", err)
	}
	if err := WriteRecordsJSONL(dir, b.Records); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, TOCFile), b.TOC); err != nil {
		return err
	}
	diags := b.Diags
	if diags == nil {
		diags = []diag.Diag{}
	}
	if err := writeJSON(filepath.Join(dir, DiagsFile), diags); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ManifestFile), m)
}

// WriteRecordsJSONL writes records to records.jsonl.
func WriteRecordsJSONL(dir string, records []ir.CallRecord) error {
	path := filepath.Join(dir, RecordsFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("output: encode %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

// Read loads a bundle and its manifest from dir. A missing diags.json
// or manifest.json is not an error.
func Read(dir string) (Bundle, Manifest, error) {
	var b Bundle
	var m Manifest

	recs, err := ReadRecords(dir)
	if err != nil {
		return b, m, err
	}
	b.Records = recs
	if err := readJSON(filepath.Join(dir, TOCFile), &b.TOC); err != nil {
		return b, m, err
	}
	if err := readJSON(filepath.Join(dir, DiagsFile), &b.Diags); err != nil && !os.IsNotExist(err) {
		return b, m, err
	}
	if err := readJSON(filepath.Join(dir, ManifestFile), &m); err != nil && !os.IsNotExist(err) {
		return b, m, err
	}
	return b, m, nil
}

// ReadRecords reads records.jsonl from dir and checks each record.
func ReadRecords(dir string) ([]ir.CallRecord, error) {
	recs, err := readJSONL[ir.CallRecord](filepath.Join(dir, RecordsFile))
	if err != nil {
		return nil, fmt.Errorf("output: read %s: %w", RecordsFile, err)
	}
	for i := range recs {
		if err := recs[i].Validate(); err != nil {
			return nil, fmt.Errorf("output: %s line %d: %w", RecordsFile, i+1, err)
		}
	}
	return recs, nil
}

func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []T
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			return records, fmt.Errorf("line %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}

// readJSON leaves os.IsNotExist errors unwrapped so callers can test them.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("output: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("output: decode %s: %w", path, err)
	}
	return nil
}
