package query

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Predicate is one node of the WHERE tree. Render appends positional
// placeholders starting at *argN and returns the SQL fragment; aliases()
// reports every table alias the node touches so Build can verify joins.
type Predicate interface {
	render(argN *int, args *[]any) string
	aliases() []string
}

// comparison is a leaf `alias.column <op> value`.
type comparison struct {
	alias  string
	column string
	op     string
	value  any
}

func (c comparison) render(argN *int, args *[]any) string {
	*args = append(*args, c.value)
	frag := fmt.Sprintf("%s.%s %s $%d", c.alias, c.column, c.op, *argN)
	*argN++
	return frag
}

func (c comparison) aliases() []string { return []string{c.alias} }

// Eq alias.column = value
func Eq(alias, column string, value any) Predicate {
	return comparison{alias: alias, column: column, op: "=", value: value}
}

// Neq alias.column <> value
func Neq(alias, column string, value any) Predicate {
	return comparison{alias: alias, column: column, op: "<>", value: value}
}

// Gt alias.column > value
func Gt(alias, column string, value any) Predicate {
	return comparison{alias: alias, column: column, op: ">", value: value}
}

// Lt alias.column < value
func Lt(alias, column string, value any) Predicate {
	return comparison{alias: alias, column: column, op: "<", value: value}
}

// Like alias.column ILIKE value (callers add % themselves)
func Like(alias, column string, value string) Predicate {
	return comparison{alias: alias, column: column, op: "ILIKE", value: value}
}

// in is `alias.column = ANY($n)` over a string set. An empty set renders
// FALSE: an unknown/empty id set must match nothing, never everything.
type in struct {
	alias  string
	column string
	values []string
}

func (p in) render(argN *int, args *[]any) string {
	if len(p.values) == 0 {
		return "FALSE"
	}
	*args = append(*args, pq.Array(p.values))
	frag := fmt.Sprintf("%s.%s = ANY($%d)", p.alias, p.column, *argN)
	*argN++
	return frag
}

func (p in) aliases() []string { return []string{p.alias} }

// In alias.column = ANY(values); fails closed on an empty set.
func In(alias, column string, values []string) Predicate {
	return in{alias: alias, column: column, values: values}
}

// isNull renders `alias.column IS [NOT] NULL`.
type isNull struct {
	alias  string
	column string
	not    bool
}

func (p isNull) render(_ *int, _ *[]any) string {
	if p.not {
		return fmt.Sprintf("%s.%s IS NOT NULL", p.alias, p.column)
	}
	return fmt.Sprintf("%s.%s IS NULL", p.alias, p.column)
}

func (p isNull) aliases() []string { return []string{p.alias} }

// IsNull alias.column IS NULL
func IsNull(alias, column string) Predicate {
	return isNull{alias: alias, column: column}
}

// IsNotNull alias.column IS NOT NULL
func IsNotNull(alias, column string) Predicate {
	return isNull{alias: alias, column: column, not: true}
}

// Never matches no row. Used by access filters when the caller has no
// ownership data at all (fail closed).
func Never() Predicate { return never{} }

type never struct{}

func (never) render(_ *int, _ *[]any) string { return "FALSE" }
func (never) aliases() []string              { return nil }

// composite AND/OR over child predicates.
type composite struct {
	op       string // "AND" or "OR"
	children []Predicate
}

func (c composite) render(argN *int, args *[]any) string {
	if len(c.children) == 0 {
		// an empty OR collects nothing -> match nothing; an empty AND is vacuous
		if c.op == "OR" {
			return "FALSE"
		}
		return "TRUE"
	}
	if len(c.children) == 1 {
		return c.children[0].render(argN, args)
	}
	frags := make([]string, len(c.children))
	for i, child := range c.children {
		frags[i] = child.render(argN, args)
	}
	return "(" + strings.Join(frags, " "+c.op+" ") + ")"
}

func (c composite) aliases() []string {
	var out []string
	for _, child := range c.children {
		out = append(out, child.aliases()...)
	}
	return out
}

// And combines predicates conjunctively.
func And(children ...Predicate) Predicate {
	return composite{op: "AND", children: children}
}

// Or combines predicates disjunctively.
func Or(children ...Predicate) Predicate {
	return composite{op: "OR", children: children}
}

// Not negates a predicate.
func Not(child Predicate) Predicate { return negation{child: child} }

type negation struct {
	child Predicate
}

func (n negation) render(argN *int, args *[]any) string {
	return "NOT (" + n.child.render(argN, args) + ")"
}

func (n negation) aliases() []string { return n.child.aliases() }
