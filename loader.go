package runeway

import (
	"path/filepath"
	"strings"
)

// StdlibLoader builds the environment of one standard library
// module.  It is called at most once per name; the result is cached.
type StdlibLoader func(rt *Runtime) (*Environment, error)

var stdlibRegistry = map[string]StdlibLoader{}

// RegisterStdlib records a `std::<name>` loader.  The registry is
// populated during initialisation and read-only afterwards.
func RegisterStdlib(name string, loader StdlibLoader) {
	stdlibRegistry[name] = loader
}

// LoadLibrary resolves `std::<name>` against the standard library
// registry and anything else as a file path.  Modules load once and
// are cached; a module that is mid-load counts as loaded, so import
// cycles observe partially initialised environments.
func (rt *Runtime) LoadLibrary(path string) (*Environment, error) {
	if name, ok := strings.CutPrefix(path, "std::"); ok {
		if env, ok := rt.loaded[path]; ok {
			return env, nil
		}
		loader, ok := stdlibRegistry[name]
		if !ok {
			return nil, NewRuntimeErrorf("FileSystemError",
				"Cannot load the library '%s'", path)
		}
		rt.Log.WithField("module", path).Debug("loading standard library module")
		env, err := loader(rt)
		if err != nil {
			return nil, err
		}
		rt.loaded[path] = env
		return env, nil
	}
	return rt.loadFileLibrary(path)
}

func (rt *Runtime) loadFileLibrary(path string) (*Environment, error) {
	if !strings.HasSuffix(path, ".rnw") {
		path += ".rnw"
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(rt.WorkDir, path)
	}
	if !rt.Files.Exists(path) {
		return nil, NewRuntimeErrorf("FileSystemError",
			"Path is not a file or it does not exists: %s", path)
	}
	canonical, err := canonicalPath(path)
	if err != nil {
		return nil, NewRuntimeErrorf("FileSystemError",
			"Cannot canonicalize path: %s", path).
			WithNoteText("Raw Error: " + err.Error())
	}

	if env, ok := rt.loaded[canonical]; ok {
		return env, nil
	}

	rt.Log.WithField("module", canonical).Debug("loading user module")

	src, err := rt.Files.Load(path)
	if err != nil {
		return nil, NewRuntimeErrorf("FileSystemError",
			"Cannot read file: %s", path)
	}
	srcID, err := rt.AddSource(path, src)
	if err != nil {
		return nil, err
	}

	env := NewEnclosedEnv(rt.builtins)
	// cache before executing: cycles resolve to the partial env
	rt.loaded[canonical] = env

	stmts, diags := rt.Parse(srcID)
	if len(diags) > 0 {
		delete(rt.loaded, canonical)
		return nil, diags[0]
	}
	if err := rt.interp.ExecuteTopLevel(env, stmts); err != nil {
		delete(rt.loaded, canonical)
		return nil, err
	}
	return env, nil
}

// canonicalPath resolves symlinks where possible and falls back to a
// cleaned absolute path, which keeps in-memory file loaders working.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}
