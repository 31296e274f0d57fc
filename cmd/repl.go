// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luthersystems/elpsc/repl"
)

var replIndent bool

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive analyzer",
	Long: `Start an interactive read-analyze-print loop.

Each form entered is macro expanded and analyzed in the current namespace
and its analyzed tree is printed.  Definitions and namespace declarations
persist for the rest of the session.  Line editing, completion and command
history are supported via readline.  Use Ctrl-D to exit.

Example session:
  elpsc> (defn square [x] (* x x))
  (def user/square (fn [x] (do (call core/* x x))))
  elpsc> (let [[a b] (list 1 2)] (square a))
  (let [...] (call user/square a))
  elpsc> (recur 1)
  error[invalid-recur-position]: can't call 'recur here`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ccfg, err := newCmdConfig().compilerConfig(cmd)
		if err != nil {
			return err
		}
		repl.RunRepl(filepath.Base(os.Args[0])+"> ",
			repl.WithConfig(ccfg),
			repl.WithIndent(replIndent),
			repl.WithColor(colorMode()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	compilerFlags(replCmd.Flags())
	replCmd.Flags().BoolVar(&replIndent, "indent", false,
		"Print analyzed forms with one child per line.")
}
