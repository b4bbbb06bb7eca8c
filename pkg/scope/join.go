package scope

import (
	"fmt"
	"slices"
	"strings"

	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
	"github.com/truffle-sql/truffle/pkg/types"
)

// Join returns the scope of left JOIN right. Outer joins force the
// bindings of the side that may be unmatched nullable: right for LEFT, left
// for RIGHT, both for FULL. NATURAL and USING merge the named columns into
// one unqualified binding each.
func (m *Manager) Join(left, right *Scope, kind core.JoinType, natural bool, using []string) (*Scope, error) {
	for _, src := range right.sources {
		if left.findSource(src.alias) != nil {
			return nil, diag.Errorf(diag.ResolutionError, diag.CodeAliasConflict,
				"table name %q specified more than once", src.alias)
		}
	}

	forceLeft := kind == core.JoinRight || kind == core.JoinFull
	forceRight := kind == core.JoinLeft || kind == core.JoinFull

	if natural {
		using = commonColumns(left, right)
		if len(using) == 0 {
			return nil, diag.Errorf(diag.ResolutionError, diag.CodeNoCommonColumn,
				"NATURAL JOIN of %s and %s has no common columns", joinQuoted(left.Aliases()), joinQuoted(right.Aliases()))
		}
	}

	type pair struct{ l, r *Binding }
	var pairs []pair
	seen := make(map[string]bool, len(using))
	for _, name := range using {
		folded := m.fold.NormalizeName(name)
		if seen[folded] {
			return nil, diag.Errorf(diag.ResolutionError, diag.CodeAmbiguousColumn,
				"column %q appears more than once in USING clause", name)
		}
		seen[folded] = true

		l, err := left.resolveLocal(name)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, diag.Errorf(diag.ResolutionError, diag.CodeUnknownColumn,
				"column %q specified in USING clause does not exist in left table", name)
		}
		r, err := right.resolveLocal(name)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, diag.Errorf(diag.ResolutionError, diag.CodeUnknownColumn,
				"column %q specified in USING clause does not exist in right table", name)
		}
		if !m.sys.Compatible(l.Type.Kind, r.Type.Kind) {
			return nil, diag.Errorf(diag.TypeError, diag.CodeTypeMismatch,
				"JOIN/USING types %s and %s for column %q cannot be matched", l.Type.Kind, r.Type.Kind, name)
		}
		pairs = append(pairs, pair{l, r})
	}

	copies := make(map[*Binding]*Binding)
	out := &Scope{fold: m.fold}
	out.sources = append(copySources(left.sources, forceLeft, copies), copySources(right.sources, forceRight, copies)...)

	replaced := func(b *Binding) bool {
		for _, p := range pairs {
			if p.l == b || p.r == b {
				return true
			}
		}
		return false
	}
	for _, side := range []struct {
		merged []*Binding
		force  bool
	}{{left.merged, forceLeft}, {right.merged, forceRight}} {
		for _, b := range side.merged {
			if !replaced(b) {
				out.merged = append(out.merged, copyBinding(b, side.force, copies))
			}
		}
	}

	for _, p := range pairs {
		if c, ok := copies[p.l]; ok {
			c.hidden = true
		}
		if c, ok := copies[p.r]; ok {
			c.hidden = true
		}
		common, _ := m.sys.CommonKind(p.l.Type.Kind, p.r.Type.Kind)
		out.merged = append(out.merged, &Binding{
			Name:  p.l.Name,
			Table: p.l.Table,
			Type:  types.Type{Kind: common, Nullable: mergedNullable(kind, p.l.Type, p.r.Type)},
			key:   "." + m.fold.NormalizeName(p.l.Name),
		})
	}
	return out, nil
}

// mergedNullable is the nullability of a USING column: the preserved side's
// for LEFT and RIGHT, otherwise null only when both sides are.
func mergedNullable(kind core.JoinType, l, r types.Type) bool {
	switch kind {
	case core.JoinLeft:
		return l.Nullable
	case core.JoinRight:
		return r.Nullable
	default:
		return l.Nullable && r.Nullable
	}
}

func copySources(srcs []*source, force bool, copies map[*Binding]*Binding) []*source {
	out := make([]*source, len(srcs))
	for i, src := range srcs {
		c := &source{alias: src.alias, folded: src.folded, table: src.table}
		for _, b := range src.bindings {
			c.bindings = append(c.bindings, copyBinding(b, force, copies))
		}
		out[i] = c
	}
	return out
}

func copyBinding(b *Binding, force bool, copies map[*Binding]*Binding) *Binding {
	c := *b
	if force {
		c.Type.Nullable = true
	}
	copies[b] = &c
	return &c
}

// commonColumns lists the names visible unqualified on both sides, in
// left order.
func commonColumns(left, right *Scope) []string {
	l, _ := left.Expand("")
	r, _ := right.Expand("")
	var out []string
	for _, lb := range l {
		if slices.ContainsFunc(r, func(rb *Binding) bool { return left.norm(rb.Name) == left.norm(lb.Name) }) {
			out = append(out, lb.Name)
		}
	}
	return out
}

func joinQuoted(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}
