// Package diff compares and patches JSON documents.
package diff

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Differ computes JSON merge patches.
type Differ struct{}

// Diff returns the RFC 7386 merge patch that turns before into after. Equal values yield "{}".
func (d *Differ) Diff(before, after any) ([]byte, error) {
	a, err := json.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("encode before: %w", err)
	}
	b, err := json.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("encode after: %w", err)
	}
	// Merge patches need objects at the top level.
	wrappedA := append(append([]byte(`{"value":`), a...), '}')
	wrappedB := append(append([]byte(`{"value":`), b...), '}')
	patch, err := jsonpatch.CreateMergePatch(wrappedA, wrappedB)
	if err != nil {
		return nil, fmt.Errorf("create merge patch: %w", err)
	}
	return patch, nil
}
