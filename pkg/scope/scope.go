// Package scope tracks the names visible while one clause of one statement
// is resolved: the table bindings installed by FROM and JOIN, the
// nullability forced by outer joins, and the row/group state of a query.
//
// Scopes are built fresh for every statement and discarded afterwards.
// Join returns a new scope and never modifies its inputs.
package scope

import (
	"github.com/truffle-sql/truffle/pkg/catalog"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/types"
)

// State is the aggregation state of a query scope.
type State int

// Scope states. GroupScope is terminal.
const (
	RowScope State = iota
	GroupScope
)

func (s State) String() string {
	if s == GroupScope {
		return "group"
	}
	return "row"
}

// Binding is one visible column.
type Binding struct {
	// Qualifier is the alias the column is visible under; empty for columns
	// merged by USING or NATURAL.
	Qualifier string
	// Table is the catalog table the column came from.
	Table string
	Name  string
	Type  types.Type

	key string
	// hidden marks a source column replaced by a merged join column for
	// unqualified access and bare *.
	hidden bool
}

// Key identifies the binding for GROUP BY matching.
func (b *Binding) Key() string {
	return b.key
}

// source is one table reference of a FROM clause.
type source struct {
	alias    string
	folded   string
	table    string
	bindings []*Binding
}

// Scope is an ordered set of sources plus the merged join columns.
type Scope struct {
	fold    catalog.Folder
	sources []*source
	merged  []*Binding
	parent  *Scope

	state  State
	groups map[string]bool
}

// Manager creates scopes that share one folding rule and type system.
type Manager struct {
	fold catalog.Folder
	sys  *types.System
}

// NewManager returns a manager folding names with fold. sys checks the
// column types matched by USING and NATURAL.
func NewManager(fold catalog.Folder, sys *types.System) *Manager {
	return &Manager{fold: fold, sys: sys}
}

// Empty returns a scope with no sources.
func (m *Manager) Empty() *Scope {
	return &Scope{fold: m.fold}
}

// NewTable returns a scope holding one table under alias. An empty alias
// means the table name.
func (m *Manager) NewTable(alias string, t *catalog.Table) *Scope {
	if alias == "" {
		alias = t.Name
	}
	src := &source{alias: alias, folded: m.fold.NormalizeName(alias), table: t.Name}
	for _, col := range t.Columns {
		src.bindings = append(src.bindings, &Binding{
			Qualifier: alias,
			Table:     t.Name,
			Name:      col.Name,
			Type:      col.Type(),
			key:       src.folded + "." + m.fold.NormalizeName(col.Name),
		})
	}
	return &Scope{fold: m.fold, sources: []*source{src}}
}

func (s *Scope) norm(name string) string {
	return s.fold.NormalizeName(name)
}

// Child returns an empty scope whose unresolved names fall back to s.
func (s *Scope) Child() *Scope {
	return &Scope{fold: s.fold, parent: s}
}

// WithParent returns a copy of s whose unresolved names fall back to parent.
func (s *Scope) WithParent(parent *Scope) *Scope {
	out := *s
	out.parent = parent
	return &out
}

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Ancestor returns the scope depth levels up, counted the way Resolve
// counts them, or nil past the outermost scope.
func (s *Scope) Ancestor(depth int) *Scope {
	sc := s
	for ; sc != nil && depth > 0; depth-- {
		sc = sc.parent
	}
	return sc
}

// RowView returns a copy of s in RowScope. Subqueries that sit where the
// GROUP BY rule does not apply, such as inside an aggregate argument, see
// their outer scope through it.
func (s *Scope) RowView() *Scope {
	if s == nil {
		return nil
	}
	out := *s
	out.state = RowScope
	out.groups = nil
	return &out
}

// Aliases returns the source aliases in FROM order.
func (s *Scope) Aliases() []string {
	out := make([]string, len(s.sources))
	for i, src := range s.sources {
		out[i] = src.alias
	}
	return out
}

// HasAlias reports whether a source named alias is in this scope (not
// its parents).
func (s *Scope) HasAlias(alias string) bool {
	return s.findSource(alias) != nil
}

func (s *Scope) findSource(alias string) *source {
	want := s.norm(alias)
	for _, src := range s.sources {
		if src.folded == want {
			return src
		}
	}
	return nil
}

// Resolve finds an unqualified column. depth is 0 for this scope and
// grows by one per enclosing scope. A column merged by USING or NATURAL is
// visible once, whichever side it came from.
func (s *Scope) Resolve(name string) (b *Binding, depth int, err error) {
	for sc := s; sc != nil; sc = sc.parent {
		b, err := sc.resolveLocal(name)
		if err != nil {
			return nil, depth, err
		}
		if b != nil {
			return b, depth, nil
		}
		depth++
	}
	return nil, 0, diag.Errorf(diag.ResolutionError, diag.CodeUnresolved, "column %q does not exist", name)
}

func (s *Scope) resolveLocal(name string) (*Binding, error) {
	want := s.norm(name)
	var found *Binding
	var owners []string
	for _, b := range s.merged {
		if s.norm(b.Name) == want {
			found = b
			owners = append(owners, "join")
			break
		}
	}
	for _, src := range s.sources {
		for _, b := range src.bindings {
			if !b.hidden && s.norm(b.Name) == want {
				found = b
				owners = append(owners, src.alias)
				break
			}
		}
	}
	if len(owners) > 1 {
		return nil, diag.Errorf(diag.ResolutionError, diag.CodeAmbiguousColumn,
			"column reference %q is ambiguous (present in %s)", name, joinQuoted(owners))
	}
	return found, nil
}

// ResolveQualified finds qualifier.name.
func (s *Scope) ResolveQualified(qualifier, name string) (b *Binding, depth int, err error) {
	for sc := s; sc != nil; sc = sc.parent {
		if src := sc.findSource(qualifier); src != nil {
			want := sc.norm(name)
			for _, b := range src.bindings {
				if sc.norm(b.Name) == want {
					return b, depth, nil
				}
			}
			return nil, depth, diag.Errorf(diag.ResolutionError, diag.CodeUnresolved,
				"column %s.%s does not exist", qualifier, name)
		}
		depth++
	}
	return nil, 0, diag.Errorf(diag.ResolutionError, diag.CodeUnknownQualifier,
		"missing FROM-clause entry for %q", qualifier)
}

// Expand returns the bindings for * (empty qualifier) or qualifier.*.
// A bare * lists merged join columns first, then every other column in
// FROM order.
func (s *Scope) Expand(qualifier string) ([]*Binding, error) {
	if qualifier != "" {
		src := s.findSource(qualifier)
		if src == nil {
			return nil, diag.Errorf(diag.ResolutionError, diag.CodeUnknownQualifier,
				"missing FROM-clause entry for %q", qualifier)
		}
		return append([]*Binding(nil), src.bindings...), nil
	}

	out := append([]*Binding(nil), s.merged...)
	for _, src := range s.sources {
		for _, b := range src.bindings {
			if !b.hidden {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

// State returns the aggregation state.
func (s *Scope) State() State {
	return s.state
}

// EnterGroup switches to GroupScope with the given grouping keys. A nil
// slice is the implicit single group of an aggregate query.
func (s *Scope) EnterGroup(keys []string) {
	s.state = GroupScope
	if s.groups == nil {
		s.groups = make(map[string]bool, len(keys))
	}
	for _, k := range keys {
		s.groups[k] = true
	}
}

// IsGrouped reports whether key is one of the GROUP BY keys.
func (s *Scope) IsGrouped(key string) bool {
	return s.groups[key]
}
