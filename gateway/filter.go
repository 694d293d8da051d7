package gateway

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Table and Column name SQL identifiers. They are written into the query
// text, so values must come from the fixed schema vocabulary and never from
// request input. Builders still reject anything that is not a plain
// identifier.
type (
	Table  string
	Column string
)

type Comparator int

const (
	Equal Comparator = iota
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
)

var comparatorOperators = map[Comparator]string{
	Equal:              "=",
	GreaterThan:        ">",
	GreaterThanOrEqual: ">=",
	LessThan:           "<",
	LessThanOrEqual:    "<=",
}

// Operator returns the SQL operator for c.
func (c Comparator) Operator() (string, error) {
	op, ok := comparatorOperators[c]
	if !ok {
		return "", errors.Wrapf(ErrUnknownComparator, "%d", int(c))
	}
	return op, nil
}

func (c Comparator) String() string {
	if op, ok := comparatorOperators[c]; ok {
		return op
	}
	return fmt.Sprintf("Comparator(%d)", int(c))
}

// Clause is one "column op ?" term of a WHERE conjunction.
type Clause struct {
	Column     Column
	Comparator Comparator
	Value      any
}

// Where is shorthand for building a Clause.
func Where(column Column, cmp Comparator, value any) Clause {
	return Clause{Column: column, Comparator: cmp, Value: value}
}

// Filter is an AND-conjunction of clauses. A column may appear more than
// once, which is how two-sided ranges are expressed. A nil or empty filter
// matches every row.
type Filter []Clause

// sorted returns a copy ordered by column name, then comparator. Clauses
// that tie on both keep their relative order.
func (f Filter) sorted() Filter {
	out := make(Filter, len(f))
	copy(out, f)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].Comparator < out[j].Comparator
	})
	return out
}
