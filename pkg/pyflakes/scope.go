package pyflakes

type scopeKind int

const (
	moduleScope scopeKind = iota
	classScope
	functionScope
	comprehensionScope
)

type scope struct {
	kind      scopeKind
	parent    *scope
	bindings  map[string][]*binding
	globals   map[string]bool
	nonlocals map[string]bool
}

// binding is a name introduced into a scope. Only import bindings are
// reported when unused.
type binding struct {
	line      int
	imported  bool
	future    bool
	qualified string
	alias     string
	used      bool
}

// use is a name load, resolved after the whole module has been walked.
// Soft uses come from string annotations and never produce findings.
type use struct {
	scope *scope
	name  string
	line  int
	soft  bool
}

func newScope(kind scopeKind, parent *scope) *scope {
	return &scope{
		kind:      kind,
		parent:    parent,
		bindings:  make(map[string][]*binding),
		globals:   make(map[string]bool),
		nonlocals: make(map[string]bool),
	}
}

func (s *scope) module() *scope {
	for s.parent != nil {
		s = s.parent
	}

	return s
}

// target returns the scope a store of name lands in, following global and
// nonlocal declarations.
func (s *scope) target(name string) *scope {
	switch {
	case s.globals[name]:
		return s.module()
	case s.nonlocals[name]:
		for outer := s.parent; outer != nil; outer = outer.parent {
			if outer.kind == functionScope {
				return outer
			}
		}
	}

	return s
}

// lookup finds the scope binding name as seen from s. Class scopes are only
// visible to their own body.
func (s *scope) lookup(name string) *scope {
	if s.globals[name] {
		mod := s.module()
		if _, ok := mod.bindings[name]; ok {
			return mod
		}

		return nil
	}

	for current := s; current != nil; current = current.parent {
		if current.kind == classScope && current != s {
			continue
		}

		if _, ok := current.bindings[name]; ok {
			return current
		}
	}

	return nil
}

func (s *scope) markUsed(name string) {
	for _, b := range s.bindings[name] {
		b.used = true
	}
}

func (s *scope) markAllUsed() {
	for _, list := range s.bindings {
		for _, b := range list {
			b.used = true
		}
	}
}
