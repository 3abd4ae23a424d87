// Package diagnostic implements the developer-facing diagnostic adapter
// described in spec.md §6: an orthogonal dump of each run's final
// {node_name -> fingerprint} map to a JSON file, for inspection. It has no
// bearing on caching correctness and the Coordinator treats failures here
// as non-fatal.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/allaspectsdev/flowcache/internal/engine"
)

// Adapter writes one JSON file per run under <root>/fingerprints/<run_id>.json.
type Adapter struct {
	root string
}

// New returns an Adapter rooted at root. The fingerprints subdirectory is
// created lazily on the first Record call.
func New(root string) *Adapter {
	return &Adapter{root: root}
}

// fingerprintDump is the JSON shape written for each run: node name to the
// triple the Coordinator tracked for it.
type fingerprintDump struct {
	Code string `json:"code"`
	Data string `json:"data"`
}

// Record implements coordinator.DiagnosticSink.
func (a *Adapter) Record(runID string, fingerprints map[string]engine.Fingerprint) error {
	dir := filepath.Join(a.root, "fingerprints")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("diagnostic: create directory %s: %w", dir, err)
	}

	dump := make(map[string]fingerprintDump, len(fingerprints))
	for name, fp := range fingerprints {
		dump[name] = fingerprintDump{Code: fp.Code, Data: fp.Data}
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("diagnostic: marshal run %s: %w", runID, err)
	}

	path := filepath.Join(dir, runID+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("diagnostic: write %s: %w", path, err)
	}
	return nil
}
