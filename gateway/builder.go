package gateway

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidIdentifier = errors.New("invalid sql identifier")
	ErrUnknownComparator = errors.New("unknown comparator")
	ErrNoColumns         = errors.New("insert needs at least one column")
	ErrRowShape          = errors.New("row value count does not match column count")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return errors.Wrapf(ErrInvalidIdentifier, "%q", name)
	}
	return nil
}

// BuildSelect renders SELECT * FROM table with one "col op ?" term per
// clause, joined by AND. Terms and the returned values follow the sorted
// filter order, so the same filter always yields the same statement.
func BuildSelect(table Table, filter Filter) (string, []any, error) {
	return buildQuery("SELECT *", table, filter)
}

// BuildCount is BuildSelect with COUNT(*) as the projection.
func BuildCount(table Table, filter Filter) (string, []any, error) {
	return buildQuery("SELECT COUNT(*)", table, filter)
}

func buildQuery(projection string, table Table, filter Filter) (string, []any, error) {
	if err := checkIdentifier(string(table)); err != nil {
		return "", nil, err
	}

	sql := projection + " FROM " + string(table)
	if len(filter) == 0 {
		return sql, nil, nil
	}

	clauses := filter.sorted()
	terms := make([]string, 0, len(clauses))
	values := make([]any, 0, len(clauses))
	for _, c := range clauses {
		if err := checkIdentifier(string(c.Column)); err != nil {
			return "", nil, err
		}
		op, err := c.Comparator.Operator()
		if err != nil {
			return "", nil, err
		}
		terms = append(terms, fmt.Sprintf("%s %s ?", c.Column, op))
		values = append(values, c.Value)
	}

	return sql + " WHERE " + strings.Join(terms, " AND "), values, nil
}

// BuildInsert renders a single-row INSERT with columns in lexicographic
// order and the values lined up to match.
func BuildInsert(table Table, row map[Column]any) (string, []any, error) {
	columns := make([]Column, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i] < columns[j] })

	values := make([]any, 0, len(columns))
	for _, col := range columns {
		values = append(values, row[col])
	}

	sql, err := insertPrefix(table, columns)
	if err != nil {
		return "", nil, err
	}
	return sql + " " + placeholders(len(columns)), values, nil
}

// BuildInsertMany renders one multi-row INSERT. Columns keep the caller's
// order; each row must supply exactly one value per column.
func BuildInsertMany(table Table, columns []Column, rows [][]any) (string, []any, error) {
	sql, err := insertPrefix(table, columns)
	if err != nil {
		return "", nil, err
	}

	tuple := placeholders(len(columns))
	tuples := make([]string, 0, len(rows))
	values := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, errors.Wrapf(ErrRowShape, "row %d has %d values, want %d", i, len(row), len(columns))
		}
		tuples = append(tuples, tuple)
		values = append(values, row...)
	}

	return sql + " " + strings.Join(tuples, ", "), values, nil
}

func insertPrefix(table Table, columns []Column) (string, error) {
	if err := checkIdentifier(string(table)); err != nil {
		return "", err
	}
	if len(columns) == 0 {
		return "", ErrNoColumns
	}
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		if err := checkIdentifier(string(col)); err != nil {
			return "", err
		}
		names = append(names, string(col))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES", table, strings.Join(names, ", ")), nil
}

func placeholders(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}
