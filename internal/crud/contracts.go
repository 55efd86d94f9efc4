// Package crud provides a generic validate-then-delegate service layer that
// sits between HTTP handlers and a repository.
//
// A Service holds exactly one Repository and one Validator, wired through
// setters, and remembers the validation errors of the last failed Validate
// call. Services are cheap and are meant to be built once per request.
package crud

import (
	"context"

	sq "github.com/Masterminds/squirrel"
)

const (
	// DefaultGroup is the column group used when a caller passes an empty group.
	DefaultGroup = "list"

	// DefaultPerPage is the page size used by PaginateRepository.
	DefaultPerPage = 20

	// AssociatedKey is the key relation names are wrapped under before
	// they are handed to SaveAssociated.
	AssociatedKey = "associated"
)

// Attributes is the raw input of create and update operations.
type Attributes map[string]any

// Associations tells SaveAssociated which relations to persist.
type Associations map[string][]string

// Associated returns the relation names stored under AssociatedKey.
func (a Associations) Associated() []string {
	return a[AssociatedKey]
}

// Column describes a displayable field of a listing.
type Column struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
	Hidden   bool   `json:"hidden"`
}

// PageQuery is what a repository needs to produce one page.
type PageQuery struct {
	Page    int
	PerPage int
	Group   string
	Search  string
}

// Page is a single page of records.
type Page[T any] struct {
	Items   []*T
	Total   int
	Page    int
	PerPage int
}

// Listing pairs a page of items with the indexable columns of its group.
type Listing[T any] struct {
	Items   *Page[T]
	Columns []Column
}

// ListItem is one key/label option of a select list.
type ListItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// SortOptions carries a requested sort column and order.
type SortOptions struct {
	Column string
	Order  string
}

// IsEmpty reports whether neither column nor order is set.
func (o SortOptions) IsEmpty() bool {
	return o.Column == "" && o.Order == ""
}

// Criterion is a composable query filter or sort pushed onto a repository.
type Criterion interface {
	Apply(q sq.SelectBuilder) sq.SelectBuilder
}

// Repository is the data-access contract the service delegates to.
type Repository[T any] interface {
	KeyName() string
	FindFillable(ctx context.Context, id string) (*T, error)
	FindForShow(ctx context.Context, id string, columns ...string) (*T, error)
	SaveAssociated(ctx context.Context, data Attributes, associations Associations, model *T) (*T, error)
	Destroy(ctx context.Context, id string) error
	Paginate(ctx context.Context, query PageQuery) (*Page[T], error)
	IndexableColumns(group string, includeHidden bool) []Column
	PushCriteria(c Criterion)
	SetSortingOptions(column, order, group string)
}

// ListRepository produces key/label lists for select inputs.
type ListRepository interface {
	FindList(ctx context.Context, active bool) ([]ListItem, error)
}

// ValidateOptions adjusts a single validation run.
type ValidateOptions struct {
	// Only restricts validation to the named fields.
	Only []string
	// Rules overrides or adds rules for this run.
	Rules map[string]string
}

// Validator checks input data. Errors returns the result of the last IsValid call.
type Validator interface {
	IsValid(data Attributes, opts ValidateOptions) bool
	Errors() ValidationErrors
}
