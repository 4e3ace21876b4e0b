package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source resolves a contract name to its artifact.
type Source interface {
	Load(name string) (*Artifact, error)
}

// DirSource searches a build directory for <Name>.json, covering both the
// Hardhat layout (artifacts/contracts/**/<Name>.sol/<Name>.json) and flat
// directories.
type DirSource struct {
	Root string

	mu    sync.Mutex
	cache map[string]*Artifact
}

// NewDirSource returns a DirSource rooted at root.
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root, cache: make(map[string]*Artifact)}
}

func (s *DirSource) Load(name string) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		s.cache = make(map[string]*Artifact)
	}
	if a, ok := s.cache[name]; ok {
		return a, nil
	}

	path, err := s.find(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if a.ContractName == "" {
		a.ContractName = name
	}
	s.cache[name] = a
	return a, nil
}

var errFound = errors.New("found")

func (s *DirSource) find(name string) (string, error) {
	want := name + ".json"
	var matches []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" || d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != want || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}
		matches = append(matches, path)
		if filepath.Base(filepath.Dir(path)) == name+".sol" {
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("search artifacts in %s: %w", s.Root, err)
	}
	switch {
	case len(matches) == 0:
		return "", fmt.Errorf("artifact %s not found under %s", name, s.Root)
	case errors.Is(err, errFound):
		return matches[len(matches)-1], nil
	case len(matches) > 1:
		return "", fmt.Errorf("artifact %s is ambiguous: %s", name, strings.Join(matches, ", "))
	}
	return matches[0], nil
}

// Set is an in-memory Source.
type Set map[string]*Artifact

func (s Set) Load(name string) (*Artifact, error) {
	a, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("artifact %s not found", name)
	}
	return a, nil
}
