package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicateJoinAlias alias already bound to a different relation.
	// Registration bug, not a request problem.
	ErrDuplicateJoinAlias = errors.New("duplicate join alias")
	// ErrUnresolvedJoinReference a predicate addresses an alias no Join call
	// ever registered.
	ErrUnresolvedJoinReference = errors.New("unresolved join reference")
)

// ExecutableQuery is the finished list query handed to the repository layer
// for execution. The builder never touches the database itself.
type ExecutableQuery struct {
	SQL  string
	Args []any
}

// OrGroup collects alternative predicates from bool filters that share a
// group name. Alternatives OR together, the group result ANDs into the main
// query. A group nobody contributed to resolves to FALSE (fail closed).
type OrGroup struct {
	name         string
	alternatives []Predicate
}

// Add contributes one alternative to the group.
func (g *OrGroup) Add(p Predicate) {
	g.alternatives = append(g.alternatives, p)
}

func (g *OrGroup) predicate() Predicate {
	return Or(g.alternatives...)
}

type join struct {
	relation string
	alias    string
	on       string
}

// Builder accumulates one list query. Per-request, never shared.
type Builder struct {
	baseTable string
	baseAlias string
	wheres    []Predicate
	orGroups  map[string]*OrGroup
	orOrder   []string
	joins     []join
	orderBy   []string
	distinct  bool
}

// NewBuilder starts a query over baseTable aliased as baseAlias.
func NewBuilder(baseTable, baseAlias string) *Builder {
	return &Builder{
		baseTable: baseTable,
		baseAlias: baseAlias,
		orGroups:  map[string]*OrGroup{},
	}
}

// BaseAlias returns the alias of the base table, for filters building leaves.
func (b *Builder) BaseAlias() string { return b.baseAlias }

// AddWhere appends a predicate to the top-level AND list.
func (b *Builder) AddWhere(p Predicate) {
	b.wheres = append(b.wheres, p)
}

// OrGroup returns the named group, creating it on first use. Idempotent per
// name within one build so multiple filters contribute to one logical OR.
func (b *Builder) OrGroup(name string) *OrGroup {
	if g, ok := b.orGroups[name]; ok {
		return g
	}
	g := &OrGroup{name: name}
	b.orGroups[name] = g
	b.orOrder = append(b.orOrder, name)
	return g
}

// Join registers `LEFT JOIN relation alias ON on`. Binding an alias to a
// different relation is an error; re-requesting the identical join is a no-op.
func (b *Builder) Join(relation, alias, on string) error {
	for _, j := range b.joins {
		if j.alias != alias {
			continue
		}
		if j.relation == relation && j.on == on {
			return nil
		}
		return fmt.Errorf("%w: %q bound to %q, requested %q", ErrDuplicateJoinAlias, alias, j.relation, relation)
	}
	b.joins = append(b.joins, join{relation: relation, alias: alias, on: on})
	return nil
}

// OrderBy appends an ORDER BY term (e.g. "c.created_at DESC").
func (b *Builder) OrderBy(term string) {
	b.orderBy = append(b.orderBy, term)
}

// Distinct flags SELECT DISTINCT (needed when joins can fan out rows).
func (b *Builder) Distinct() { b.distinct = true }

// Build renders the final SQL with $n args. Fails when any predicate
// references an alias that was never joined.
func (b *Builder) Build() (ExecutableQuery, error) {
	known := map[string]bool{b.baseAlias: true}
	for _, j := range b.joins {
		known[j.alias] = true
	}

	all := make([]Predicate, 0, len(b.wheres)+len(b.orOrder))
	all = append(all, b.wheres...)
	for _, name := range b.orOrder {
		all = append(all, b.orGroups[name].predicate())
	}

	if unknown := unknownAliases(all, known); len(unknown) > 0 {
		return ExecutableQuery{}, fmt.Errorf("%w: %s", ErrUnresolvedJoinReference, strings.Join(unknown, ", "))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(b.baseAlias + ".*")
	sb.WriteString(" FROM " + b.baseTable + " " + b.baseAlias)
	for _, j := range b.joins {
		sb.WriteString(" LEFT JOIN " + j.relation + " " + j.alias + " ON " + j.on)
	}

	args := []any{}
	argN := 1
	if len(all) > 0 {
		frags := make([]string, len(all))
		for i, p := range all {
			frags[i] = p.render(&argN, &args)
		}
		sb.WriteString(" WHERE " + strings.Join(frags, " AND "))
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(b.orderBy, ", "))
	}

	return ExecutableQuery{SQL: sb.String(), Args: args}, nil
}

func unknownAliases(preds []Predicate, known map[string]bool) []string {
	seen := map[string]bool{}
	for _, p := range preds {
		for _, a := range p.aliases() {
			if !known[a] && !seen[a] {
				seen[a] = true
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
