package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"service-discounts/internal/infrastructure/diff"
	"service-discounts/internal/infrastructure/snapshot"
)

// LoadSnapshot reads a JSON or YAML snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	return snapshot.Load(path)
}

// ParseSnapshot decodes a JSON snapshot document.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	return snapshot.Parse(data, snapshot.FormatJSON)
}

// PatchSnapshot patches a JSON snapshot before decoding it. An array of operations is an
// RFC 6902 patch; an object is an RFC 7386 merge patch.
func PatchSnapshot(doc json.RawMessage, ops json.RawMessage) (*Snapshot, error) {
	ops = bytes.TrimSpace(ops)
	if len(ops) == 0 {
		return ParseSnapshot(doc)
	}
	var (
		patched []byte
		err     error
	)
	if ops[0] == '{' {
		patched, err = diff.MergePatch(doc, ops)
	} else {
		patched, err = diff.ApplyPatch(doc, ops)
	}
	if err != nil {
		return nil, fmt.Errorf("patch snapshot: %w", err)
	}
	return ParseSnapshot(patched)
}
