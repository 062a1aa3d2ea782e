package resolver

import (
	_ "embed"
)

//go:embed typing.txt
var typingList string

var typingNames = wordSet(typingList)

// Typing resolves names exported by the typing module.
type Typing struct{}

// Resolve implements importmodel.Resolver.
func (Typing) Resolve(name string) (string, bool) {
	if _, ok := typingNames[name]; !ok {
		return "", false
	}

	return "from typing import " + name, true
}
