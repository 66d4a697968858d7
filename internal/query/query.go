// Package query parses and evaluates attribute predicates over component
// metadata. The textual form is the wire format between callers and the
// result database, e.g.:
//
//	carrier = 'heat' AND direction = 'out'
//	type IN ('Node', 'Unit') OR carrier != 'elec'
//
// AND binds tighter than OR; parentheses group explicitly. Comparison is
// exact string comparison against the component's attribute values.
package query

import (
	"fmt"
	"sort"
)

// Op is a comparison operator inside a predicate.
type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "!="
	OpIn  Op = "IN"
)

// Expr is a parsed predicate node. Eval runs against one component's
// attribute map. A missing attribute never matches, for any operator;
// rejecting attributes unknown to the whole index happens before Eval
// via Attributes.
type Expr interface {
	Eval(attrs map[string]string) bool
	collectAttrs(into map[string]struct{})
}

// Compare is a single `attr op value` comparison. For OpIn, Values holds
// the set literal and Value is unused.
type Compare struct {
	Attr   string
	Op     Op
	Value  string
	Values []string
}

func (c *Compare) Eval(attrs map[string]string) bool {
	got, ok := attrs[c.Attr]
	if !ok {
		return false
	}
	switch c.Op {
	case OpEq:
		return got == c.Value
	case OpNeq:
		return got != c.Value
	case OpIn:
		for _, v := range c.Values {
			if got == v {
				return true
			}
		}
		return false
	}
	return false
}

func (c *Compare) collectAttrs(into map[string]struct{}) {
	into[c.Attr] = struct{}{}
}

// And is a conjunction of two predicate nodes.
type And struct {
	Left, Right Expr
}

func (a *And) Eval(attrs map[string]string) bool {
	return a.Left.Eval(attrs) && a.Right.Eval(attrs)
}

func (a *And) collectAttrs(into map[string]struct{}) {
	a.Left.collectAttrs(into)
	a.Right.collectAttrs(into)
}

// Or is a disjunction of two predicate nodes.
type Or struct {
	Left, Right Expr
}

func (o *Or) Eval(attrs map[string]string) bool {
	return o.Left.Eval(attrs) || o.Right.Eval(attrs)
}

func (o *Or) collectAttrs(into map[string]struct{}) {
	o.Left.collectAttrs(into)
	o.Right.collectAttrs(into)
}

// Attributes returns the distinct attribute names referenced by the
// predicate, sorted. Callers validate these against the metadata index
// before evaluating, so a typo fails loudly instead of matching nothing.
func Attributes(e Expr) []string {
	seen := make(map[string]struct{})
	e.collectAttrs(seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Error reports a malformed predicate or an attribute unknown to the
// metadata index the predicate was evaluated against.
type Error struct {
	Source  string // the full predicate text
	Pos     int    // byte offset of the offending token, -1 if not positional
	Message string
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("invalid predicate at offset %d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("invalid predicate: %s", e.Message)
}

// NewUnknownAttributeError creates the evaluation-time error for a
// predicate referencing an attribute no component carries.
func NewUnknownAttributeError(source, attr string) *Error {
	return &Error{Source: source, Pos: -1, Message: fmt.Sprintf("unknown attribute %q", attr)}
}
