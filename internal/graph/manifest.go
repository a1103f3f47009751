package graph

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
)

// PackageSets holds the declared dependency names of one ecosystem.
type PackageSets struct {
	Production map[string]bool
	Dev        map[string]bool
}

func newPackageSets() PackageSets {
	return PackageSets{Production: make(map[string]bool), Dev: make(map[string]bool)}
}

// GoModule describes the main module declared in go.mod.
type GoModule struct {
	Path     string
	Requires []string
	Tools    map[string]bool
}

// Manifest is the set of declared dependencies found at a project root.
// It is read once per graph build and handed to the Resolver.
type Manifest struct {
	Node   PackageSets // package.json
	Python PackageSets // requirements*.txt, pyproject.toml
	Rust   PackageSets // Cargo.toml
	Go     GoModule    // go.mod
}

// EmptyManifest returns a manifest with no declared dependencies.
func EmptyManifest() *Manifest {
	return &Manifest{
		Node:   newPackageSets(),
		Python: newPackageSets(),
		Rust:   newPackageSets(),
		Go:     GoModule{Tools: make(map[string]bool)},
	}
}

// ReadManifest reads every supported manifest under rootDir. Missing files
// and missing fields yield empty sets; malformed files are an error.
func ReadManifest(rootDir string) (*Manifest, error) {
	m := EmptyManifest()

	readers := []struct {
		name string
		read func(m *Manifest, data []byte) error
	}{
		{"package.json", readPackageJSON},
		{"go.mod", readGoMod},
		{"Cargo.toml", readCargoToml},
		{"pyproject.toml", readPyproject},
		{"requirements.txt", func(m *Manifest, data []byte) error {
			readRequirements(data, m.Python.Production)
			return nil
		}},
		{"requirements-dev.txt", func(m *Manifest, data []byte) error {
			readRequirements(data, m.Python.Dev)
			return nil
		}},
	}

	for _, r := range readers {
		path := filepath.Join(rootDir, r.name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := r.read(m, data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return m, nil
}

// packageJSON is a minimal representation for reading package.json files.
type packageJSON struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

func readPackageJSON(m *Manifest, data []byte) error {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return err
	}
	for _, deps := range []map[string]string{pkg.Dependencies, pkg.PeerDependencies, pkg.OptionalDependencies} {
		for name := range deps {
			m.Node.Production[name] = true
		}
	}
	for name := range pkg.DevDependencies {
		m.Node.Dev[name] = true
	}
	return nil
}

func readGoMod(m *Manifest, data []byte) error {
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return err
	}
	if f.Module != nil {
		m.Go.Path = f.Module.Mod.Path
	}
	for _, r := range f.Require {
		m.Go.Requires = append(m.Go.Requires, r.Mod.Path)
	}
	for _, t := range f.Tool {
		m.Go.Tools[t.Path] = true
	}
	return nil
}

type cargoToml struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

func readCargoToml(m *Manifest, data []byte) error {
	var cargo cargoToml
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return err
	}
	for name := range cargo.Dependencies {
		m.Rust.Production[crateName(name)] = true
	}
	for _, deps := range []map[string]any{cargo.DevDependencies, cargo.BuildDependencies} {
		for name := range deps {
			m.Rust.Dev[crateName(name)] = true
		}
	}
	return nil
}

type pyprojectToml struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
}

func readPyproject(m *Manifest, data []byte) error {
	var py pyprojectToml
	if err := toml.Unmarshal(data, &py); err != nil {
		return err
	}
	for _, req := range py.Project.Dependencies {
		if name := requirementName(req); name != "" {
			m.Python.Production[name] = true
		}
	}
	for _, group := range py.Project.OptionalDependencies {
		for _, req := range group {
			if name := requirementName(req); name != "" {
				m.Python.Dev[name] = true
			}
		}
	}
	return nil
}

// readRequirements parses pip requirement lines into set. Options such as
// "-r other.txt" and "-e ." are skipped.
func readRequirements(data []byte, set map[string]bool) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		if name := requirementName(line); name != "" {
			set[name] = true
		}
	}
}

// requirementName extracts the normalized distribution name from a PEP 508
// requirement string, e.g. "Flask-Login[extra]>=1.0" -> "flask_login".
func requirementName(req string) string {
	req = strings.TrimSpace(req)
	end := strings.IndexFunc(req, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.')
	})
	if end != -1 {
		req = req[:end]
	}
	return pythonName(req)
}

func pythonName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "_")
	return strings.ReplaceAll(name, ".", "_")
}

func crateName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
