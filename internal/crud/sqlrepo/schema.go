package sqlrepo

import (
	"reflect"
	"slices"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/criteria"
)

// Relation is a many-to-many association stored in a pivot table.
// The id list for a relation is read from the attribute named Name.
type Relation struct {
	Name       string
	PivotTable string
	ForeignKey string
	RelatedKey string
}

// Schema describes how an entity of type T maps onto a table.
type Schema[T any] struct {
	Table string
	Key   string

	// Columns are selected by FindFillable and Paginate, in scan order.
	Columns []string
	// Fillable columns may be written from input attributes.
	Fillable []string

	LabelColumn  string
	ActiveColumn string
	Searchable   []string

	// Indexable lists the listing columns per group.
	Indexable   map[string][]crud.Column
	DefaultSort []criteria.Order

	Relations []Relation

	// Defaults fill fillable columns missing from create attributes.
	// Columns without a default get the zero value of their field.
	Defaults crud.Attributes

	CreatedColumn string
	UpdatedColumn string

	New func() *T
	ID  func(*T) string
	// Field returns the scan destination of column on entity.
	Field func(entity *T, column string) any
	// SetRelated receives the related ids loaded by FindFillable. Optional.
	SetRelated func(entity *T, relation string, ids []string)
}

func (s *Schema[T]) hasColumn(column string) bool {
	return slices.Contains(s.Columns, column)
}

func (s *Schema[T]) relation(name string) (Relation, bool) {
	for _, rel := range s.Relations {
		if rel.Name == name {
			return rel, true
		}
	}
	return Relation{}, false
}

func (s *Schema[T]) indexable(group string) []crud.Column {
	if cols, ok := s.Indexable[group]; ok {
		return cols
	}
	return s.Indexable[crud.DefaultGroup]
}

func (s *Schema[T]) sortable(group, column string) bool {
	for _, col := range s.indexable(group) {
		if col.Name == column && col.Sortable {
			return s.hasColumn(column)
		}
	}
	return false
}

func (s *Schema[T]) insertValue(blank *T, column string, data crud.Attributes) any {
	if value, ok := data[column]; ok {
		return value
	}
	if value, ok := s.Defaults[column]; ok {
		return value
	}

	field := reflect.ValueOf(s.Field(blank, column))
	if field.Kind() != reflect.Pointer || field.IsNil() {
		return nil
	}
	return field.Elem().Interface()
}

func (s *Schema[T]) targets(entity *T, columns []string) []any {
	dest := make([]any, len(columns))
	for i, col := range columns {
		dest[i] = s.Field(entity, col)
	}
	return dest
}
