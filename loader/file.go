package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kbukum/inject/di"
	"github.com/kbukum/inject/errors"
)

// ManifestLoader loads manifests by name.
type ManifestLoader interface {
	Load(name string) (*Manifest, error)
}

// FileManifestLoader loads manifests from YAML files on disk.
type FileManifestLoader struct {
	dirs []string
}

// NewFileManifestLoader creates a loader that searches dirs for
// {name}.yaml and {name}.yml, directly and in subdirectories.
func NewFileManifestLoader(dirs ...string) *FileManifestLoader {
	return &FileManifestLoader{dirs: dirs}
}

// Load returns the first manifest file named name.
func (l *FileManifestLoader) Load(name string) (*Manifest, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadManifest(path)
			}
		}
		if path := find(dir, name); path != "" {
			return LoadManifest(path)
		}
	}
	return nil, errors.InvalidConfig(fmt.Sprintf("binding manifest %q not found in %v", name, l.dirs))
}

func find(dir, name string) string {
	var found string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if base == name+".yaml" || base == name+".yml" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// LoadManifest reads one manifest file. A manifest without a name is named
// after its file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidConfig(fmt.Sprintf("reading binding manifest %s", path)).WithCause(err)
	}
	m, err := decode(data, path)
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		base := filepath.Base(path)
		m.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	return m, nil
}

// Resolve returns the named manifests with their includes, each include
// ahead of the manifests that include it. A manifest reached twice is
// returned once.
func Resolve(src ManifestLoader, names ...string) ([]*Manifest, error) {
	r := &resolver{src: src, stack: make(map[string]bool), done: make(map[string]bool)}
	for _, name := range names {
		if err := r.visit(name); err != nil {
			return nil, err
		}
	}
	return r.out, nil
}

type resolver struct {
	src   ManifestLoader
	stack map[string]bool
	done  map[string]bool
	out   []*Manifest
}

func (r *resolver) visit(name string) error {
	if r.done[name] {
		return nil
	}
	if r.stack[name] {
		return errors.InvalidConfig(fmt.Sprintf("circular include of binding manifest %q", name))
	}
	r.stack[name] = true
	defer delete(r.stack, name)

	m, err := r.src.Load(name)
	if err != nil {
		return err
	}
	for _, inc := range m.Includes {
		if err := r.visit(inc); err != nil {
			return fmt.Errorf("manifest %s: %w", name, err)
		}
	}
	r.done[name] = true
	r.out = append(r.out, m)
	return nil
}

// Loaders resolves the named manifests and returns one di.Loader per
// manifest, in load order.
func Loaders(src ManifestLoader, cat *Catalog, names ...string) ([]di.Loader, error) {
	manifests, err := Resolve(src, names...)
	if err != nil {
		return nil, err
	}
	loaders := make([]di.Loader, len(manifests))
	for i, m := range manifests {
		loaders[i] = m.Loader(cat)
	}
	return loaders, nil
}
