package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	runeway "github.com/Voiris/runeway"
)

const defaultWritePermission = 0644 // -rw-r--r--

var (
	flagEntry   string
	flagVerbose bool
	flagNoColor bool
	flagOutput  string
)

func newRuntime() *runeway.Runtime {
	return runeway.NewRuntime(runeway.RuntimeConfig{Verbose: flagVerbose})
}

func report(rt *runeway.Runtime, err error) {
	diag := runeway.AsDiagnostic(err)
	colored := runeway.StderrIsTerminal() && !flagNoColor
	diag.Emit(rt.SourceMap, rt.Bundle, os.Stderr, colored)
}

func main() {
	root := &cobra.Command{
		Use:   "runeway <entry.rnw>",
		Short: "The Runeway scripting language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			rt := newRuntime()
			code, err := rt.RunFile(args[0], flagEntry)
			if err != nil {
				report(rt, err)
				os.Exit(1)
			}
			os.Exit(code)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagEntry, "entry", "main", "Name of the entry function")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable ANSI styling on diagnostics")

	root.AddCommand(newTokensCmd(), newAstCmd(), newCompileCmd(), newExecCmd(), newDisasmCmd(), newReplCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file.rnw>",
		Short: "Dump the token stream of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			rt := newRuntime()
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			srcID, err := rt.AddSource(args[0], src)
			if err != nil {
				return err
			}
			toks, diag := runeway.NewLexer(srcID, rt.SourceMap).Lex()
			if diag != nil {
				report(rt, diag)
				os.Exit(1)
			}
			for _, tok := range toks {
				fmt.Printf("%-24s %s\n", tok.Node.String(), tok.Span)
			}
			return nil
		},
	}
}

func newAstCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ast <file.rnw>",
		Short: "Dump the parsed statements of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			rt := newRuntime()
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			srcID, err := rt.AddSource(args[0], src)
			if err != nil {
				return err
			}
			stmts, diags := rt.Parse(srcID)
			for _, diag := range diags {
				report(rt, diag)
			}
			if len(diags) > 0 {
				os.Exit(1)
			}
			for _, stmt := range stmts {
				fmt.Printf("%s @ %s\n", runeway.StmtName(stmt), stmt.Span())
			}
			return nil
		},
	}
}

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <entry.rnw>",
		Short: "Compile an application to bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			rt := newRuntime()
			app, err := rt.CompileApplication(args[0], flagEntry)
			if err != nil {
				report(rt, err)
				os.Exit(1)
			}
			output := flagOutput
			if output == "" {
				output = strings.TrimSuffix(filepath.Base(args[0]), ".rnw") + ".rnwc"
			}
			return os.WriteFile(output, runeway.EncodeApplication(app), defaultWritePermission)
		},
	}
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Path of the compiled output")
	return cmd
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <app.rnwc>",
		Short: "Run a compiled application on the VM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			rt := newRuntime()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			app, err := runeway.DecodeApplication(data)
			if err != nil {
				return err
			}
			vm, err := runeway.NewVM(rt, app)
			if err != nil {
				report(rt, err)
				os.Exit(1)
			}
			code, err := vm.Run()
			if err != nil {
				report(rt, err)
				os.Exit(1)
			}
			os.Exit(code)
			return nil
		},
	}
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <app.rnwc>",
		Short: "Print a bytecode listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			app, err := runeway.DecodeApplication(data)
			if err != nil {
				return err
			}
			if flagNoColor {
				fmt.Print(app.PrettyString())
			} else {
				fmt.Print(app.HighlightPrettyString())
			}
			return nil
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive evaluator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runRepl()
		},
	}
}

// runRepl evaluates one statement per line against a persistent
// environment.  Expression statements print their display form;
// a null result prints nothing.
func runRepl() error {
	rt := newRuntime()
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	env := runeway.NewEnclosedEnv(rt.Builtins())
	interp := rt.Interp()
	count := 0

	for {
		input, err := line.Prompt("rnw> ")
		if err != nil {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		count++
		name := fmt.Sprintf("<repl:%d>", count)
		source := input
		if !strings.HasSuffix(strings.TrimSpace(source), ";") && !strings.HasSuffix(strings.TrimSpace(source), "}") {
			source += ";"
		}

		srcID, err := rt.AddSource(name, []byte(source))
		if err != nil {
			report(rt, err)
			continue
		}
		stmts, diags := rt.Parse(srcID)
		if len(diags) > 0 {
			for _, diag := range diags {
				report(rt, diag)
			}
			continue
		}
		for _, stmt := range stmts {
			result, err := interp.ExecuteRepl(env, stmt)
			if err != nil {
				report(rt, err)
				break
			}
			if result != "" {
				fmt.Println(result)
			}
		}
	}
}
