// Copyright © 2021 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/luthersystems/elpsc/analyzer"
	"github.com/luthersystems/elpsc/corelib"
	"github.com/luthersystems/elpsc/docs"
	"github.com/luthersystems/elpsc/syntax"
)

// FormsCommand returns the forms command.
func FormsCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var (
		namespace string
		guide     bool
	)
	cmd := &cobra.Command{
		Use:   "forms [flags] [NAME]",
		Short: "Show documentation for special forms and global bindings",
		Long: `Show documentation for the special forms understood by the analyzer and
the global bindings available to source.

With no argument, lists every special form followed by the bindings of a
namespace (core by default).  With an argument, shows the usage and
documentation of a special form or binding.  Qualified names look up a
binding in their namespace.

Examples:
  elpsc forms                      List special forms and core bindings
  elpsc forms let                  Show docs for the let special form
  elpsc forms defn                 Show docs for the defn macro
  elpsc forms core/first           Show docs for a qualified binding
  elpsc forms --guide              Show the language guide`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := cfg.registry
			if reg == nil {
				reg = analyzer.NewRegistry()
				corelib.Install(reg)
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush() //nolint:errcheck // best-effort flush on exit
			if guide {
				_, err := io.WriteString(out, docs.LangGuide)
				return err
			}
			if len(args) == 0 {
				return renderFormList(out, reg, namespace)
			}
			return renderFormDoc(out, reg, args[0])
		},
	}
	cmd.Flags().StringVarP(&namespace, "namespace", "n", analyzer.CoreNamespace,
		"Namespace whose bindings are listed.")
	cmd.Flags().BoolVar(&guide, "guide", false,
		"Show the language guide.")
	return cmd
}

func coreUsage() map[string]string {
	usage := make(map[string]string)
	for _, b := range corelib.Builtins() {
		usage[b.Name] = b.Usage
	}
	return usage
}

func renderFormList(w io.Writer, reg *analyzer.Registry, ns string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Special forms:") //nolint:errcheck // flushed below
	for _, f := range analyzer.Forms() {
		fmt.Fprintf(tw, "  %s\t%s\n", f, f.Doc().Usage) //nolint:errcheck // flushed below
	}
	usage := coreUsage()
	bindings := reg.Bindings(ns)
	if len(bindings) > 0 {
		fmt.Fprintf(tw, "\nNamespace %s:\n", ns) //nolint:errcheck // flushed below
	}
	for _, b := range bindings {
		u := ""
		if ns == analyzer.CoreNamespace {
			u = usage[b.Name]
		}
		kind := ""
		if b.IsMacro() {
			kind = "macro"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", b.Name, kind, u) //nolint:errcheck // flushed below
	}
	return tw.Flush()
}

func renderFormDoc(w io.Writer, reg *analyzer.Registry, name string) error {
	sym := syntax.ParseSymbol(name)
	if f := analyzer.FormOf(sym); f != analyzer.FormNone {
		doc := f.Doc()
		_, err := fmt.Fprintf(w, "special form %s\n\n  %s\n\n%s\n", f, doc.Usage, formatDoc(doc.Doc))
		return err
	}
	ns := sym.Namespace()
	if ns == "" {
		ns = analyzer.CoreNamespace
	}
	b, ok := reg.Lookup(ns, sym.Name())
	if !ok {
		return fmt.Errorf("no special form or binding named %s", name)
	}
	kind := "function"
	if b.IsMacro() {
		kind = "macro"
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", kind, b.FullName()); err != nil {
		return err
	}
	if ns == analyzer.CoreNamespace {
		if u := coreUsage()[b.Name]; u != "" {
			if _, err := fmt.Fprintf(w, "\n  %s\n", u); err != nil {
				return err
			}
		}
	}
	if doc := bindingDoc(b); doc != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", formatDoc(doc)); err != nil {
			return err
		}
	}
	return nil
}

func bindingDoc(b *analyzer.Binding) string {
	if b.Meta == nil {
		return ""
	}
	v, ok := b.Meta.Get(syntax.Keyword("doc"))
	if !ok {
		return ""
	}
	lit, ok := v.(*syntax.Literal)
	if !ok || lit.LitKind() != syntax.LitString {
		return ""
	}
	return lit.Str()
}

// formatDoc wraps doc at 72 columns and indents it two spaces.
func formatDoc(doc string) string {
	doc = strings.Join(strings.Fields(doc), " ")
	doc = indent.String(wordwrap.String(doc, 72), 2)
	return strings.TrimSuffix(doc, "\n")
}

func init() {
	rootCmd.AddCommand(FormsCommand())
}
