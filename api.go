package runeway

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// RuntimeConfig carries the host-provided collaborators: the print
// sink, the file loader and the message bundle.
type RuntimeConfig struct {
	Stdout  io.Writer
	Files   FileLoader
	WorkDir string
	Bundle  Bundle
	Log     *logrus.Logger
	Verbose bool
}

// Runtime ties the pipeline together: source map, diagnostics,
// builtins root, module cache and both execution engines.
type Runtime struct {
	SourceMap *SourceMap
	Bundle    Bundle
	Stdout    io.Writer
	Files     FileLoader
	WorkDir   string
	Log       *logrus.Logger

	interp   *Interp
	builtins *Environment
	loaded   map[string]*Environment
}

func NewRuntime(cfg RuntimeConfig) *Runtime {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Files == nil {
		cfg.Files = NewOSFileLoader()
	}
	if cfg.Bundle == nil {
		cfg.Bundle = NewDefaultBundle()
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir, _ = os.Getwd()
	}
	if cfg.Log == nil {
		cfg.Log = logrus.New()
		cfg.Log.SetOutput(os.Stderr)
		cfg.Log.SetLevel(logrus.WarnLevel)
	}
	if cfg.Verbose || os.Getenv("RUNEWAY_DEBUG") != "" {
		cfg.Log.SetLevel(logrus.DebugLevel)
	}

	rt := &Runtime{
		SourceMap: NewSourceMap(),
		Bundle:    cfg.Bundle,
		Stdout:    cfg.Stdout,
		Files:     cfg.Files,
		WorkDir:   cfg.WorkDir,
		Log:       cfg.Log,
		loaded:    map[string]*Environment{},
	}
	rt.interp = NewInterp(rt)
	rt.builtins = NewBuiltinsEnv(rt.Stdout)
	return rt
}

// Builtins returns the root environment seeded with types and the
// prelude.  It is the ancestor of every module environment.
func (rt *Runtime) Builtins() *Environment {
	return rt.builtins
}

// Interp returns the tree-walking interpreter.
func (rt *Runtime) Interp() *Interp {
	return rt.interp
}

// AddSource registers a source buffer and returns its id.
func (rt *Runtime) AddSource(name string, src []byte) (SourceId, error) {
	return rt.SourceMap.AddFile(NewSourceFile(name, src))
}

// Parse lexes and parses a registered source and returns the
// statements together with every parse diagnostic.  Nothing is
// reported; callers decide what to emit.
func (rt *Runtime) Parse(src SourceId) ([]Stmt, []*Diagnostic) {
	return ParseSource(src, rt.SourceMap)
}

// RunSource executes a source buffer end to end: top level first,
// then the entry function.  The returned int is the process exit
// code.
func (rt *Runtime) RunSource(name string, src []byte, entry string) (int, error) {
	srcID, err := rt.AddSource(name, src)
	if err != nil {
		return 1, err
	}
	stmts, diags := rt.Parse(srcID)
	if len(diags) > 0 {
		for _, diag := range diags[1:] {
			rt.Report(diag)
		}
		return 1, diags[0]
	}

	env := NewEnclosedEnv(rt.builtins)
	if err := rt.interp.ExecuteTopLevel(env, stmts); err != nil {
		return 1, err
	}
	return rt.interp.Entry(env, entry)
}

// RunFile loads and runs a program from the file system.
func (rt *Runtime) RunFile(path string, entry string) (int, error) {
	src, err := rt.Files.Load(path)
	if err != nil {
		return 1, NewRuntimeErrorf("FileSystemError",
			"Cannot read file: %s", path)
	}
	return rt.RunSource(path, src, entry)
}

// Report emits a diagnostic to standard error with source context.
func (rt *Runtime) Report(err error) {
	diag := AsDiagnostic(err)
	diag.Emit(rt.SourceMap, rt.Bundle, os.Stderr, StderrIsTerminal())
}
