// Package dag orders the tables of a catalog by their foreign keys.
// It supports cycle detection, dependency levels, and transitive
// dependency lookups.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/truffle-sql/truffle/pkg/catalog"
)

// ErrCycle is returned by Levels when foreign keys form a cycle.
var ErrCycle = errors.New("foreign key cycle")

// Graph is the foreign-key graph of a catalog. An edge runs from a
// referenced table to the table that references it.
type Graph struct {
	names   []string            // definition order
	edges   map[string][]string // referenced -> referencing (dependents)
	parents map[string][]string // referencing -> referenced (dependencies)
}

// FromCatalog builds the graph of cat. Self-references are ignored.
func FromCatalog(cat catalog.Reader) *Graph {
	g := &Graph{
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
	tables := cat.Tables()
	for _, t := range tables {
		g.names = append(g.names, t.Name)
		g.edges[t.Name] = []string{}
		g.parents[t.Name] = []string{}
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			ref, ok := cat.LookupTable(fk.RefTable)
			if !ok || ref.Name == t.Name {
				continue
			}
			g.addEdge(ref.Name, t.Name)
		}
	}
	return g
}

func (g *Graph) addEdge(parent, child string) {
	if !slices.Contains(g.edges[parent], child) {
		g.edges[parent] = append(g.edges[parent], child)
	}
	if !slices.Contains(g.parents[child], parent) {
		g.parents[child] = append(g.parents[child], parent)
	}
}

// Len returns the number of tables.
func (g *Graph) Len() int {
	return len(g.names)
}

// EdgeCount returns the number of distinct table-to-table references.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// References returns the tables name references directly.
func (g *Graph) References(name string) []string {
	return sorted(g.parents[name])
}

// ReferencedBy returns the tables that reference name directly.
func (g *Graph) ReferencedBy(name string) []string {
	return sorted(g.edges[name])
}

// Dependencies returns every table name depends on, directly or through
// other tables.
func (g *Graph) Dependencies(name string) []string {
	return g.walk(name, g.parents)
}

// Dependents returns every table that depends on name, directly or
// through other tables. These are the tables that keep name from being
// dropped.
func (g *Graph) Dependents(name string) []string {
	return g.walk(name, g.edges)
}

func (g *Graph) walk(start string, next map[string][]string) []string {
	seen := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		for _, n := range next[id] {
			if !seen[n] {
				seen[n] = true
				visit(n)
			}
		}
	}
	visit(start)
	delete(seen, start)

	result := make([]string, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// Cycle returns one foreign-key cycle as a path that starts and ends at
// the same table, or nil.
func (g *Graph) Cycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, child := range g.edges[id] {
			if !visited[child] {
				if dfs(child) {
					return true
				}
			} else if onStack[child] {
				i := slices.Index(stack, child)
				cycle = append(slices.Clone(stack[i:]), child)
				return true
			}
		}

		onStack[id] = false
		stack = stack[:len(stack)-1]
		return false
	}

	for _, id := range g.names {
		if !visited[id] && dfs(id) {
			return cycle
		}
	}
	return nil
}

// Levels groups tables so that every table comes after the tables it
// references. Level 0 holds tables without foreign keys to other tables.
// Tables within a level keep definition order.
func (g *Graph) Levels() ([][]string, error) {
	if cycle := g.Cycle(); cycle != nil {
		return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
	}

	assigned := make(map[string]int, len(g.names))
	var level func(id string) int
	level = func(id string) int {
		if l, ok := assigned[id]; ok {
			return l
		}
		l := 0
		for _, p := range g.parents[id] {
			l = max(l, level(p)+1)
		}
		assigned[id] = l
		return l
	}

	var levels [][]string
	for _, id := range g.names {
		l := level(id)
		for len(levels) <= l {
			levels = append(levels, []string{})
		}
	}
	for _, id := range g.names {
		levels[assigned[id]] = append(levels[assigned[id]], id)
	}
	return levels, nil
}

func sorted(s []string) []string {
	out := slices.Clone(s)
	sort.Strings(out)
	return out
}
