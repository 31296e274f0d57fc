// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/luthersystems/elpsc/compiler"
)

// AnalyzeCommand returns the analyze command.  Options inject the registry
// and base configuration of an embedding program.
func AnalyzeCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var (
		indent   bool
		quiet    bool
		excludes []string
	)
	cmd := &cobra.Command{
		Use:   "analyze [flags] [files...]",
		Short: "Analyze lisp source and print the analyzed forms",
		Long: `Read lisp source, expand macros and analyze every top-level form.

The analyzed tree of each form is printed to stdout as an s-expression in
which globals are fully qualified, locals are bare symbols and calls,
bindings and host interop are spelled out.  Failures are reported to stderr
with their source location.

With no files, reads from stdin.  Forms of all files share one registry so
a file may use the definitions of the files before it.

Exit codes:
  0  Every form analyzed
  1  One or more forms failed to analyze
  2  Bad invocation (invalid flags, unreadable files)

Examples:
  elpsc analyze main.lisp                      # Analyze a single file
  elpsc analyze --indent main.lisp             # One child per line
  elpsc analyze --exclude=vendor ./...         # Analyze a tree of files
  elpsc analyze --stop-on-error main.lisp      # Stop at the first failure
  echo '(let [[a] v] a)' | elpsc analyze       # Analyze from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ccfg, err := cfg.compilerConfig(cmd)
			if err != nil {
				cmd.PrintErrln(err)
				return exitCode(2)
			}
			var copts []compiler.Option
			if !quiet {
				copts = append(copts, compiler.WithEmitter(&compiler.DumpEmitter{W: cmd.OutOrStdout(), Indent: indent}))
			}
			c, err := cfg.newCompiler(ccfg, copts...)
			if err != nil {
				cmd.PrintErrln(err)
				return exitCode(2)
			}

			if len(args) == 0 {
				_, err := c.Compile(cmd.Context(), "<stdin>", cmd.InOrStdin())
				if err != nil {
					renderErrors(cmd.ErrOrStderr(), err, "")
					return exitCode(1)
				}
				return nil
			}

			paths, err := expandArgs(args, excludes)
			if err != nil {
				cmd.PrintErrln(err)
				return exitCode(2)
			}
			failed := false
			for _, path := range paths {
				_, err := c.CompileFile(cmd.Context(), path)
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
					cmd.PrintErrln(err)
					return exitCode(2)
				}
				if err != nil {
					renderErrors(cmd.ErrOrStderr(), err, path)
					failed = true
					if ccfg.StopOnError {
						break
					}
				}
			}
			if failed {
				return exitCode(1)
			}
			return nil
		},
	}
	compilerFlags(cmd.Flags())
	cmd.Flags().BoolVar(&indent, "indent", false,
		"Print analyzed forms with one child per line.")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"Only report failures.")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	return cmd
}

func init() {
	rootCmd.AddCommand(AnalyzeCommand())
}
