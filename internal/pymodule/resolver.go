package pymodule

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mvp-joe/hydra-lens/internal/cache"
)

// Layer identifies which search-path layer satisfied a resolution.
type Layer int

const (
	// LayerUnresolved means no layer contained the module.
	LayerUnresolved Layer = iota
	// LayerWorkspace means the module was found under the workspace root.
	LayerWorkspace
	// LayerSearchPath means the module came from an extra search directory
	// or an interpreter sys.path entry.
	LayerSearchPath
)

func (l Layer) String() string {
	switch l {
	case LayerWorkspace:
		return "workspace"
	case LayerSearchPath:
		return "search-path"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome of resolving one dotted module path.
type Resolution struct {
	ModulePath string
	File       string // absolute path, empty when unresolved
	Layer      Layer
}

// Resolved reports whether a file was found.
func (r Resolution) Resolved() bool { return r.Layer != LayerUnresolved }

// Resolver maps dotted module paths to files. Results are cached under a
// fingerprint of the full resolution context, so swapping the interpreter
// naturally invalidates everything resolved under the old one.
type Resolver struct {
	workspaceRoot string
	extraPaths    []string

	mu     sync.RWMutex
	interp *interpreter

	cache *cache.Store[Resolution]
}

// NewResolver creates a resolver rooted at workspaceRoot. extraPaths are
// searched after the workspace, before the interpreter's sys.path entries.
// interpreterIdentity may be empty, restricting resolution to the workspace
// and extra paths.
func NewResolver(workspaceRoot string, extraPaths []string, interpreterIdentity string) (*Resolver, error) {
	store, err := cache.New[Resolution](0)
	if err != nil {
		return nil, err
	}
	r := &Resolver{
		workspaceRoot: workspaceRoot,
		extraPaths:    extraPaths,
		cache:         store,
	}
	if interpreterIdentity != "" {
		r.interp = newInterpreter(interpreterIdentity)
	}
	return r, nil
}

// Interpreter returns the currently configured interpreter identity, or "".
func (r *Resolver) Interpreter() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.interp == nil {
		return ""
	}
	return r.interp.identity
}

// Reconfigure swaps the interpreter identity and resets the resolution
// cache in one exclusive section. Readers observe either the old identity
// with its cache or the new identity with an empty cache, never a mix.
// An empty identity removes the interpreter layer entirely.
func (r *Resolver) Reconfigure(interpreterIdentity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if interpreterIdentity == "" {
		r.interp = nil
	} else {
		r.interp = newInterpreter(interpreterIdentity)
	}
	r.cache.Reset()
}

// ResetCache drops all cached resolutions. Used when workspace files appear
// or disappear, which can change what a dotted path resolves to.
func (r *Resolver) ResetCache() {
	r.cache.Reset()
}

// Resolve maps a dotted module path to a source file, first match wins:
// workspace-relative lookup, then each search-path directory in order.
// A non-nil error is an interpreter infrastructure failure; resolution has
// still been performed against the remaining layers, and the caller should
// surface the degradation once per validation pass.
func (r *Resolver) Resolve(ctx context.Context, modulePath string) (Resolution, error) {
	r.mu.RLock()
	interp := r.interp
	r.mu.RUnlock()

	var infraErr error
	var interpPaths []string
	identity := ""
	if interp != nil {
		identity = interp.identity
		interpPaths, infraErr = interp.searchPaths(ctx)
		if ctx.Err() != nil {
			return Resolution{}, ctx.Err()
		}
	}

	dirs := make([]string, 0, len(r.extraPaths)+len(interpPaths))
	dirs = append(dirs, r.extraPaths...)
	dirs = append(dirs, interpPaths...)

	fingerprint := cache.HashStrings(append([]string{modulePath, r.workspaceRoot, identity}, dirs...)...)
	if res, ok := r.cache.Get(modulePath, fingerprint); ok {
		return res, infraErr
	}

	res := Resolution{ModulePath: modulePath}
	segments := strings.Split(modulePath, ".")
	if file := lookupIn(r.workspaceRoot, segments); file != "" {
		res.File, res.Layer = file, LayerWorkspace
	} else {
		for _, dir := range dirs {
			if file := lookupIn(dir, segments); file != "" {
				res.File, res.Layer = file, LayerSearchPath
				break
			}
		}
	}

	r.cache.Set(modulePath, fingerprint, res)
	return res, infraErr
}

// lookupIn tries one search-path directory: the package-with-init form
// first, then the plain module file, preferring stub files over sources.
func lookupIn(dir string, segments []string) string {
	if dir == "" {
		return ""
	}
	base := filepath.Join(append([]string{dir}, segments...)...)
	candidates := []string{
		filepath.Join(base, "__init__.pyi"),
		filepath.Join(base, "__init__.py"),
		base + ".pyi",
		base + ".py",
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return candidate
			}
			return abs
		}
	}
	return ""
}
