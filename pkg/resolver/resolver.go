// Package resolver maps undefined Python names to the import statement that
// defines them. Each strategy is a pure lookup; Chain asks them in order.
package resolver

import (
	"bufio"
	"strings"

	"github.com/Sumatoshi-tech/autoimport/pkg/importmodel"
)

// Chain asks each resolver in order and returns the first answer.
type Chain []importmodel.Resolver

// Resolve implements importmodel.Resolver.
func (c Chain) Resolve(name string) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}

		if statement, ok := r.Resolve(name); ok {
			return statement, true
		}
	}

	return "", false
}

// Table resolves names through a fixed name to statement map.
type Table map[string]string

// Resolve implements importmodel.Resolver.
func (t Table) Resolve(name string) (string, bool) {
	statement, ok := t[name]

	return statement, ok && statement != ""
}

// Common returns the common statements strategy. The table is copied.
func Common(statements map[string]string) Table {
	table := make(Table, len(statements))
	for name, statement := range statements {
		table[name] = statement
	}

	return table
}

// wordSet parses an embedded newline separated word list.
func wordSet(list string) map[string]struct{} {
	set := make(map[string]struct{})

	scanner := bufio.NewScanner(strings.NewReader(list))
	for scanner.Scan() {
		if word := strings.TrimSpace(scanner.Text()); word != "" && !strings.HasPrefix(word, "#") {
			set[word] = struct{}{}
		}
	}

	return set
}
