package instantiate

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/matzehuels/gluedoc/pkg/markup"
)

// ClassResolver resolves a type name written in markup to its
// fully-qualified name using the document's import declarations.
type ClassResolver interface {
	Resolve(name string, imports []string) (string, bool)
}

// Resources resolves and reads assets referenced by relative paths.
type Resources interface {
	// Resolve returns the location of rel relative to base.
	Resolve(base, rel string) (string, error)
	// ReadFile returns the content at a resolved location.
	ReadFile(location string) ([]byte, error)
}

// ErrNoResources is returned by [NoResources].
var ErrNoResources = errors.New("no resources available")

// TypeResolver resolves names against the types known to a Service.
type TypeResolver struct {
	Service Service
}

// NewTypeResolver returns a resolver backed by svc.
func NewTypeResolver(svc Service) *TypeResolver {
	return &TypeResolver{Service: svc}
}

// Resolve resolves a simple or qualified name. Qualified names resolve to
// themselves when known. Simple names are looked up through single-type
// imports first, then wildcard imports in declaration order, then the
// built-in package.
func (r *TypeResolver) Resolve(name string, imports []string) (string, bool) {
	if strings.Contains(name, ".") {
		if r.known(name) {
			return name, true
		}
		return "", false
	}
	for _, imp := range imports {
		if strings.HasSuffix(imp, ".*") {
			continue
		}
		if imp == name || strings.HasSuffix(imp, "."+name) {
			if r.known(imp) {
				return imp, true
			}
		}
	}
	for _, imp := range imports {
		pkg, ok := strings.CutSuffix(imp, ".*")
		if !ok {
			continue
		}
		if fqn := pkg + "." + name; r.known(fqn) {
			return fqn, true
		}
	}
	if fqn := markup.BuiltinPackage + "." + name; r.known(fqn) {
		return fqn, true
	}
	return "", false
}

func (r *TypeResolver) known(fqn string) bool {
	_, ok := r.Service.TypeInfo(fqn)
	return ok
}

// FSResources serves assets from a file system. Locations are slash
// separated paths within FS.
type FSResources struct {
	FS fs.FS
}

// Resolve joins rel to the directory of base.
func (r FSResources) Resolve(base, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty resource path")
	}
	if path.IsAbs(rel) {
		return path.Clean(strings.TrimPrefix(rel, "/")), nil
	}
	loc := path.Join(path.Dir(base), rel)
	if !fs.ValidPath(loc) {
		return "", fmt.Errorf("resource %q escapes its root", rel)
	}
	return loc, nil
}

// ReadFile reads a resolved location.
func (r FSResources) ReadFile(location string) ([]byte, error) {
	return fs.ReadFile(r.FS, location)
}

// NoResources resolves nothing.
type NoResources struct{}

// Resolve always fails.
func (NoResources) Resolve(base, rel string) (string, error) { return "", ErrNoResources }

// ReadFile always fails.
func (NoResources) ReadFile(string) ([]byte, error) { return nil, ErrNoResources }
