// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

// ExpandCommand returns the expand command.
func ExpandCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	cmd := &cobra.Command{
		Use:   "expand [flags] [files...]",
		Short: "Expand the macro call of each top-level form once",
		Long: `Read lisp source and print each top-level form after expanding its
macro call once.  Forms that are not macro calls are printed unchanged.
Namespace declarations are processed so later forms resolve their macros in
the declared namespace.

With no files, reads from stdin.

Examples:
  elpsc expand main.lisp
  echo '(when ready (start))' | elpsc expand`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ccfg, err := cfg.compilerConfig(cmd)
			if err != nil {
				cmd.PrintErrln(err)
				return exitCode(2)
			}
			c, err := cfg.newCompiler(ccfg)
			if err != nil {
				cmd.PrintErrln(err)
				return exitCode(2)
			}
			expand := func(name string, r io.Reader) error {
				vs, err := c.Expand(cmd.Context(), name, r)
				if err != nil {
					renderErrors(cmd.ErrOrStderr(), err, "")
					return exitCode(1)
				}
				for _, v := range vs {
					fmt.Fprintln(cmd.OutOrStdout(), v) //nolint:errcheck // best-effort output
				}
				return nil
			}
			if len(args) == 0 {
				return expand("<stdin>", cmd.InOrStdin())
			}
			for _, path := range args {
				f, err := os.Open(path) //nolint:gosec // CLI tool reads user-specified files
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
					cmd.PrintErrln(err)
					return exitCode(2)
				}
				if err != nil {
					return err
				}
				err = expand(path, f)
				_ = f.Close()
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	compilerFlags(cmd.Flags())
	return cmd
}

func init() {
	rootCmd.AddCommand(ExpandCommand())
}
