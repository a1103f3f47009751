//go:build cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/archcheck/internal/graph"
)

// openIndex opens (or creates) the file-backed Kuzu graph at path.
func openIndex(path string) (graph.Store, error) {
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	return store, nil
}
