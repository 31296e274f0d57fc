// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/luthersystems/elpsc/analyzer"
)

// symbolCompleter implements readline.AutoCompleter by enumerating special
// forms and the global bindings of a registry.
type symbolCompleter struct {
	reg *analyzer.Registry
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to whitespace or an
	// opening bracket).
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '\n' || strings.ContainsRune("([{", ch) {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		suffix := sym[len(prefix):]
		result = append(result, []rune(suffix))
	}
	return result, len([]rune(prefix))
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	for _, f := range analyzer.Forms() {
		add(f.String())
	}

	// Unqualified names resolve in the current namespace and then core.
	current := c.reg.CurrentNamespace()
	for _, ns := range []string{current, analyzer.CoreNamespace} {
		for _, b := range c.reg.Bindings(ns) {
			add(b.Name)
		}
	}

	// Qualified names, through namespace aliases or full namespace names.
	qualifiers := make(map[string]string)
	for _, ns := range c.reg.Namespaces() {
		qualifiers[ns] = ns
	}
	for alias, ns := range c.reg.Aliases(current) {
		qualifiers[alias] = ns
	}
	for qual, ns := range qualifiers {
		qualPrefix := qual + "/"
		if strings.HasPrefix(prefix, qualPrefix) {
			for _, b := range c.reg.Bindings(ns) {
				add(qualPrefix + b.Name)
			}
		} else {
			add(qualPrefix)
		}
	}

	sort.Strings(result)
	return result
}
