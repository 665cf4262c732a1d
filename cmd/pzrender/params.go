package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/cwbudde/algo-polezero/param"
)

// loadParams applies a JSON object of parameter ID to value onto store.
// Unknown IDs and out-of-range values are reported together.
func loadParams(store *param.Store, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var values map[string]float64
	if err := json.Unmarshal(b, &values); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return applyParams(store, values)
}

func applyParams(store *param.Store, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}

	state := make(map[param.ID]float64, len(values))
	for id, v := range values {
		state[param.ID(id)] = v
	}

	return store.Restore(state)
}

// saveParams writes every parameter of store as an indented JSON object.
func saveParams(store *param.Store, path string) error {
	snap := store.Snapshot()

	values := make(map[string]float64, len(snap))
	for id, v := range snap {
		values[string(id)] = v
	}

	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// describeParams lists the non-default parameters with their display text.
func describeParams(store *param.Store) []string {
	var lines []string

	for _, id := range store.IDs() {
		def, _ := store.Definition(id)
		if store.Value(id) == def.Default {
			continue
		}

		lines = append(lines, fmt.Sprintf("%s = %s", id, store.Format(id)))
	}

	sort.Strings(lines)

	return lines
}
