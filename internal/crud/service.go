package crud

import (
	"context"
	"reflect"
	"strings"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud/criteria"
	"github.com/samber/lo"
)

// Service validates input and delegates to its repository.
// The zero value is usable once a repository and validator are set.
type Service[T any] struct {
	repository       Repository[T]
	validator        Validator
	validationErrors ValidationErrors
	perPage          int
}

// NewService returns an empty service. Wire it with SetRepository and SetValidator.
func NewService[T any]() *Service[T] {
	return &Service[T]{perPage: DefaultPerPage}
}

func (s *Service[T]) SetRepository(repository Repository[T]) {
	s.repository = repository
}

func (s *Service[T]) Repository() Repository[T] {
	return s.repository
}

func (s *Service[T]) SetValidator(validator Validator) {
	s.validator = validator
}

func (s *Service[T]) Validator() Validator {
	return s.validator
}

func (s *Service[T]) SetValidationErrors(errs ValidationErrors) {
	s.validationErrors = errs
}

// ValidationErrors returns the errors recorded by the last failed Validate.
func (s *Service[T]) ValidationErrors() ValidationErrors {
	return s.validationErrors
}

// SetPerPage overrides the page size used by PaginateRepository.
func (s *Service[T]) SetPerPage(n int) {
	s.perPage = n
}

func (s *Service[T]) pageSize() int {
	if s.perPage <= 0 {
		return DefaultPerPage
	}
	return s.perPage
}

// Paginate pushes a sort criterion when sort is non-empty and paginates the
// service repository.
func (s *Service[T]) Paginate(ctx context.Context, sort []criteria.Order, group string) (*Listing[T], error) {
	if len(sort) > 0 {
		s.repository.PushCriteria(criteria.Sort(sort...))
	}

	return s.PaginateRepository(ctx, s.repository, group)
}

func (s *Service[T]) Create(ctx context.Context, data Attributes) (*T, error) {
	return s.CreateWithRelations(ctx, data)
}

// CreateWithRelations validates data and saves it together with the named relations.
// The repository is not touched when validation fails.
func (s *Service[T]) CreateWithRelations(ctx context.Context, data Attributes, relations ...string) (*T, error) {
	if !s.Validate(s.validator, data, ValidateOptions{}) {
		return nil, s.validationFailure()
	}

	return s.repository.SaveAssociated(ctx, data, associationsFor(relations), nil)
}

func (s *Service[T]) FindForShow(ctx context.Context, id string, columns ...string) (*T, error) {
	return s.repository.FindForShow(ctx, id, columns...)
}

func (s *Service[T]) Find(ctx context.Context, id string) (*T, error) {
	return s.repository.FindFillable(ctx, id)
}

func (s *Service[T]) Update(ctx context.Context, id string, data Attributes) (*T, error) {
	return s.UpdateWithRelations(ctx, id, data)
}

// UpdateWithRelations stores id under the repository key name, validates, loads
// the current record and saves data and the named relations onto it.
func (s *Service[T]) UpdateWithRelations(ctx context.Context, id string, data Attributes, relations ...string) (*T, error) {
	if data == nil {
		data = Attributes{}
	}
	data[s.repository.KeyName()] = id

	if !s.Validate(s.validator, data, ValidateOptions{}) {
		return nil, s.validationFailure()
	}

	model, err := s.repository.FindFillable(ctx, id)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, ErrNotFound
	}

	return s.repository.SaveAssociated(ctx, data, associationsFor(relations), model)
}

func (s *Service[T]) Destroy(ctx context.Context, id string) error {
	return s.repository.Destroy(ctx, id)
}

// Validate runs validator over data. On failure the validator errors replace
// the recorded validation errors; on success they are left untouched.
func (s *Service[T]) Validate(validator Validator, data Attributes, opts ValidateOptions) bool {
	if validator.IsValid(data, opts) {
		return true
	}

	s.SetValidationErrors(validator.Errors())
	return false
}

// PaginateRepositoryWhere pushes "column = value" onto repository when both are
// non-empty, then paginates it.
func (s *Service[T]) PaginateRepositoryWhere(ctx context.Context, repository Repository[T], group, column string, value any) (*Listing[T], error) {
	if column != "" && !isEmpty(value) {
		repository.PushCriteria(criteria.Equal(column, value))
	}

	return s.PaginateRepository(ctx, repository, group)
}

// PaginateRepository returns one page of repository together with the
// indexable columns of group.
func (s *Service[T]) PaginateRepository(ctx context.Context, repository Repository[T], group string) (*Listing[T], error) {
	group = groupOrDefault(group)

	columns := repository.IndexableColumns(group, false)
	s.SetSortingOptions(ctx, repository, SortOptions{}, group)

	items, err := repository.Paginate(ctx, PageQuery{
		Page:    requestPage(ctx),
		PerPage: s.pageSize(),
		Group:   group,
		Search:  requestSearch(ctx),
	})
	if err != nil {
		return nil, err
	}

	return &Listing[T]{Items: items, Columns: columns}, nil
}

// SetSortingOptions forwards a column/order pair to repository. Empty opts are
// taken from the request values attached to ctx.
func (s *Service[T]) SetSortingOptions(ctx context.Context, repository Repository[T], opts SortOptions, group string) {
	if opts.IsEmpty() {
		fromRequest, ok := requestSortOptions(ctx)
		if !ok {
			return
		}
		opts = fromRequest
	}

	if opts.Column == "" || opts.Order == "" {
		return
	}

	repository.SetSortingOptions(opts.Column, opts.Order, groupOrDefault(group))
}

func (s *Service[T]) validationFailure() error {
	if len(s.validationErrors) == 0 {
		return ErrValidation
	}
	return s.validationErrors.Clone()
}

// associationsFor wraps non-blank relation names under AssociatedKey.
func associationsFor(relations []string) Associations {
	names := lo.Compact(lo.Map(relations, func(name string, _ int) string {
		return strings.TrimSpace(name)
	}))
	if len(names) == 0 {
		return Associations{}
	}

	return Associations{AssociatedKey: names}
}

func groupOrDefault(group string) string {
	if group == "" {
		return DefaultGroup
	}
	return group
}

// isEmpty treats "" and "0" as empty strings. Whitespace is a value.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == "" || s == "0"
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
