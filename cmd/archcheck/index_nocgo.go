//go:build !cgo

package main

import (
	"errors"

	"github.com/dusk-indust/archcheck/internal/graph"
)

func openIndex(string) (graph.Store, error) {
	return nil, errors.New("the persistent index requires a cgo build")
}
