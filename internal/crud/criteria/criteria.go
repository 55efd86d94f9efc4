// Package criteria holds query criteria that can be pushed onto a repository.
// Each criterion transforms a squirrel SelectBuilder.
package criteria

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var ErrUnsupportedOperator = errors.New("unsupported operator")

var operators = map[string]struct{}{
	"=": {}, "!=": {}, "<>": {}, "<": {}, "<=": {}, ">": {}, ">=": {}, "LIKE": {}, "ILIKE": {},
}

// Order is one column of a sort.
type Order struct {
	Column    string
	Direction string
}

// Direction normalises a sort direction to ASC or DESC. Anything that is not
// "desc" (case-insensitive) sorts ascending.
func Direction(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "desc") {
		return "DESC"
	}
	return "ASC"
}

// SortCriteria orders the query by its columns, in order.
type SortCriteria struct {
	orders []Order
}

// Sort builds a SortCriteria. Orders with an empty column are skipped.
func Sort(orders ...Order) *SortCriteria {
	kept := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Column != "" {
			kept = append(kept, o)
		}
	}
	return &SortCriteria{orders: kept}
}

// Orders returns the sort columns.
func (c *SortCriteria) Orders() []Order {
	return c.orders
}

func (c *SortCriteria) Apply(q sq.SelectBuilder) sq.SelectBuilder {
	for _, o := range c.orders {
		q = q.OrderBy(o.Column + " " + Direction(o.Direction))
	}
	return q
}

// WhereCriteria compares a column against a value.
type WhereCriteria struct {
	Column   string
	Value    any
	Operator string
}

// Where builds a WhereCriteria. An empty operator means "=".
func Where(column string, value any, operator string) (*WhereCriteria, error) {
	op := strings.ToUpper(strings.TrimSpace(operator))
	if op == "" {
		op = "="
	}
	if _, ok := operators[op]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, operator)
	}
	return &WhereCriteria{Column: column, Value: value, Operator: op}, nil
}

// Equal is Where with the "=" operator.
func Equal(column string, value any) *WhereCriteria {
	return &WhereCriteria{Column: column, Value: value, Operator: "="}
}

func (c *WhereCriteria) Apply(q sq.SelectBuilder) sq.SelectBuilder {
	if c.Operator == "=" {
		return q.Where(sq.Eq{c.Column: c.Value})
	}
	return q.Where(c.Column+" "+c.Operator+" ?", c.Value)
}

// SearchCriteria matches a term against several columns with ILIKE.
type SearchCriteria struct {
	Term    string
	Columns []string
}

// Search builds a SearchCriteria.
func Search(term string, columns ...string) *SearchCriteria {
	return &SearchCriteria{Term: strings.TrimSpace(term), Columns: columns}
}

func (c *SearchCriteria) Apply(q sq.SelectBuilder) sq.SelectBuilder {
	if c.Term == "" || len(c.Columns) == 0 {
		return q
	}

	pattern := "%" + c.Term + "%"
	or := make(sq.Or, 0, len(c.Columns))
	for _, col := range c.Columns {
		or = append(or, sq.ILike{col: pattern})
	}
	return q.Where(or)
}
