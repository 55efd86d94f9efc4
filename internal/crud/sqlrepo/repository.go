// Package sqlrepo implements the crud repository contracts on top of a
// go-bricks database connection.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/criteria"
	"github.com/gaborage/go-bricks/database"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownRelation = errors.New("unknown relation")
)

const (
	dbUnavailableErrMsg = "failed to get database connection: %w"
	txBeginErrMsg       = "failed to begin transaction: %w"
	txCommitErrMsg      = "failed to commit transaction: %w"
)

// Repository is a table-backed crud.Repository and crud.ListRepository.
// Pushed criteria and sorting options live on the instance, so build one
// Repository per request.
type Repository[T any] struct {
	getDB    func(context.Context) (database.Interface, error)
	schema   *Schema[T]
	criteria []crud.Criterion
	sorting  map[string]crud.SortOptions
}

func New[T any](getDB func(context.Context) (database.Interface, error), schema *Schema[T]) *Repository[T] {
	return &Repository[T]{
		getDB:   getDB,
		schema:  schema,
		sorting: make(map[string]crud.SortOptions),
	}
}

func (r *Repository[T]) KeyName() string {
	return r.schema.Key
}

// FindFillable loads a record by key together with its related ids.
func (r *Repository[T]) FindFillable(ctx context.Context, id string) (*T, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	entity, err := r.findByKey(ctx, db, id, r.schema.Columns)
	if err != nil {
		return nil, err
	}

	if r.schema.SetRelated != nil {
		for _, rel := range r.schema.Relations {
			ids, err := r.relatedIDs(ctx, db, rel, id)
			if err != nil {
				return nil, err
			}
			r.schema.SetRelated(entity, rel.Name, ids)
		}
	}

	return entity, nil
}

// FindForShow loads a record by key with only the given columns. The key is
// always selected. No columns means every schema column.
func (r *Repository[T]) FindForShow(ctx context.Context, id string, columns ...string) (*T, error) {
	if len(columns) == 0 {
		return r.FindFillable(ctx, id)
	}

	for _, col := range columns {
		if !r.schema.hasColumn(col) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
	}

	db, err := r.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	return r.findByKey(ctx, db, id, lo.Uniq(append([]string{r.schema.Key}, columns...)))
}

func (r *Repository[T]) findByKey(ctx context.Context, db database.Interface, id string, columns []string) (*T, error) {
	query, args, err := sq.Select(columns...).
		From(r.schema.Table).
		Where(sq.Eq{r.schema.Key: id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	entity := r.schema.New()
	row := db.QueryRow(ctx, query, args...)
	if err := row.Scan(r.schema.targets(entity, columns)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, crud.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan %s: %w", r.schema.Table, err)
	}

	return entity, nil
}

func (r *Repository[T]) relatedIDs(ctx context.Context, db database.Interface, rel Relation, id string) ([]string, error) {
	query, args, err := sq.Select(rel.RelatedKey).
		From(rel.PivotTable).
		Where(sq.Eq{rel.ForeignKey: id}).
		OrderBy(rel.RelatedKey).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build relation query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", rel.Name, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var relatedID string
		if err := rows.Scan(&relatedID); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", rel.Name, err)
		}
		ids = append(ids, relatedID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", rel.Name, err)
	}

	return ids, nil
}

// SaveAssociated inserts data when model is nil and updates model otherwise,
// then syncs every relation listed under crud.AssociatedKey whose attribute is
// present in data. It returns the reloaded record.
func (r *Repository[T]) SaveAssociated(ctx context.Context, data crud.Attributes, associations crud.Associations, model *T) (*T, error) {
	relations := make([]Relation, 0, len(associations.Associated()))
	for _, name := range associations.Associated() {
		rel, ok := r.schema.relation(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRelation, name)
		}
		relations = append(relations, rel)
	}

	db, err := r.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf(txBeginErrMsg, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var id string
	if model == nil {
		id, err = r.insert(ctx, tx, data)
	} else {
		id = r.schema.ID(model)
		err = r.update(ctx, tx, id, data)
	}
	if err != nil {
		return nil, err
	}

	for _, rel := range relations {
		value, ok := data[rel.Name]
		if !ok {
			continue
		}
		if err := r.syncRelation(ctx, tx, rel, id, toIDs(value)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(txCommitErrMsg, err)
	}

	return r.FindFillable(ctx, id)
}

// insert writes every fillable column. Columns absent from data take the
// schema default, or the zero value of the entity field.
func (r *Repository[T]) insert(ctx context.Context, tx database.Tx, data crud.Attributes) (string, error) {
	id, _ := data[r.schema.Key].(string)
	if id == "" {
		id = uuid.New().String()
	}

	blank := r.schema.New()
	columns := []string{r.schema.Key}
	values := []any{id}
	for _, col := range r.schema.Fillable {
		if col == r.schema.Key {
			continue
		}
		columns = append(columns, col)
		values = append(values, r.schema.insertValue(blank, col, data))
	}

	now := time.Now().UTC()
	for _, col := range []string{r.schema.CreatedColumn, r.schema.UpdatedColumn} {
		if col != "" {
			columns = append(columns, col)
			values = append(values, now)
		}
	}

	qb := database.NewQueryBuilder(database.PostgreSQL)
	query, args, err := qb.Insert(r.schema.Table).
		Columns(columns...).
		Values(values...).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", r.schema.Table, err)
	}

	return id, nil
}

func (r *Repository[T]) update(ctx context.Context, tx database.Tx, id string, data crud.Attributes) error {
	qb := database.NewQueryBuilder(database.PostgreSQL)
	updateBuilder := qb.Update(r.schema.Table)

	changed := 0
	for _, col := range r.schema.Fillable {
		if value, ok := data[col]; ok && col != r.schema.Key {
			updateBuilder = updateBuilder.Set(col, value)
			changed++
		}
	}
	if r.schema.UpdatedColumn != "" {
		updateBuilder = updateBuilder.Set(r.schema.UpdatedColumn, time.Now().UTC())
		changed++
	}
	if changed == 0 {
		return nil
	}

	query, args, err := updateBuilder.
		Where(qb.Filter().Eq(r.schema.Key, id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.schema.Table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return crud.ErrNotFound
	}

	return nil
}

func (r *Repository[T]) syncRelation(ctx context.Context, tx database.Tx, rel Relation, id string, ids []string) error {
	qb := database.NewQueryBuilder(database.PostgreSQL)

	if err := detach(ctx, tx, qb, rel, id); err != nil {
		return fmt.Errorf("failed to clear %s: %w", rel.Name, err)
	}

	if len(ids) == 0 {
		return nil
	}

	insertBuilder := qb.Insert(rel.PivotTable).Columns(rel.ForeignKey, rel.RelatedKey)
	for _, relatedID := range ids {
		insertBuilder = insertBuilder.Values(id, relatedID)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to attach %s: %w", rel.Name, err)
	}

	return nil
}

// detach deletes the pivot rows of rel that point at id.
func detach(ctx context.Context, tx database.Tx, qb *database.QueryBuilder, rel Relation, id string) error {
	query, args, err := qb.Delete(rel.PivotTable).
		Where(qb.Filter().Eq(rel.ForeignKey, id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	_, err = tx.Exec(ctx, query, args...)
	return err
}

// Destroy removes the pivot rows of every relation and then the record, in
// one transaction.
func (r *Repository[T]) Destroy(ctx context.Context, id string) error {
	db, err := r.getDB(ctx)
	if err != nil {
		return fmt.Errorf(dbUnavailableErrMsg, err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf(txBeginErrMsg, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	qb := database.NewQueryBuilder(database.PostgreSQL)
	for _, rel := range r.schema.Relations {
		if err := detach(ctx, tx, qb, rel, id); err != nil {
			return fmt.Errorf("failed to detach %s: %w", rel.Name, err)
		}
	}

	query, args, err := qb.Delete(r.schema.Table).
		Where(qb.Filter().Eq(r.schema.Key, id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.schema.Table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return crud.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(txCommitErrMsg, err)
	}

	return nil
}

// Paginate applies the pushed criteria, the search term and the sorting
// options of the group, and returns the requested page with the filtered total.
func (r *Repository[T]) Paginate(ctx context.Context, q crud.PageQuery) (*crud.Page[T], error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	page := max(q.Page, 1)
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = crud.DefaultPerPage
	}
	group := q.Group
	if group == "" {
		group = crud.DefaultGroup
	}

	base := sq.Select(r.schema.Columns...).From(r.schema.Table)
	for _, c := range r.criteria {
		base = c.Apply(base)
	}
	base = criteria.Search(q.Search, r.schema.Searchable...).Apply(base)

	countQuery, countArgs, err := sq.Select("COUNT(*)").
		FromSelect(base, "filtered").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	countRow := db.QueryRow(ctx, countQuery, countArgs...)
	if err := countRow.Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	query, args, err := r.sorted(base, group).
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	items := []*T{}
	for rows.Next() {
		entity := r.schema.New()
		if err := rows.Scan(r.schema.targets(entity, r.schema.Columns)...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.schema.Table, err)
		}
		items = append(items, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.schema.Table, err)
	}

	return &crud.Page[T]{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (r *Repository[T]) sorted(q sq.SelectBuilder, group string) sq.SelectBuilder {
	if opts, ok := r.sorting[group]; ok && r.schema.sortable(group, opts.Column) {
		return criteria.Sort(criteria.Order{Column: opts.Column, Direction: opts.Order}).Apply(q)
	}
	return criteria.Sort(r.schema.DefaultSort...).Apply(q)
}

// IndexableColumns returns the listing columns of group, falling back to the
// default group.
func (r *Repository[T]) IndexableColumns(group string, includeHidden bool) []crud.Column {
	return lo.Filter(r.schema.indexable(group), func(col crud.Column, _ int) bool {
		return includeHidden || !col.Hidden
	})
}

func (r *Repository[T]) PushCriteria(c crud.Criterion) {
	r.criteria = append(r.criteria, c)
}

// SetSortingOptions records the sort for group. Columns that are not sortable
// in that group are ignored when the query is built.
func (r *Repository[T]) SetSortingOptions(column, order, group string) {
	r.sorting[group] = crud.SortOptions{Column: column, Order: order}
}

// FindList returns key/label pairs ordered by label, limited to active rows
// when active is set and the schema has an active column.
func (r *Repository[T]) FindList(ctx context.Context, active bool) ([]crud.ListItem, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, fmt.Errorf(dbUnavailableErrMsg, err)
	}

	label := r.schema.LabelColumn
	if label == "" {
		label = r.schema.Key
	}

	qb := sq.Select(r.schema.Key, label).From(r.schema.Table)
	if active && r.schema.ActiveColumn != "" {
		qb = qb.Where(sq.Eq{r.schema.ActiveColumn: true})
	}

	query, args, err := qb.OrderBy(label).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s list: %w", r.schema.Table, err)
	}
	defer rows.Close()

	items := []crud.ListItem{}
	for rows.Next() {
		var item crud.ListItem
		if err := rows.Scan(&item.Key, &item.Label); err != nil {
			return nil, fmt.Errorf("failed to scan %s list: %w", r.schema.Table, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s list: %w", r.schema.Table, err)
	}

	return items, nil
}

func toIDs(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		return lo.Uniq(lo.Compact(v))
	case []any:
		ids := lo.Map(v, func(item any, _ int) string {
			return strings.TrimSpace(fmt.Sprint(item))
		})
		return lo.Uniq(lo.Compact(ids))
	case string:
		return lo.Compact([]string{strings.TrimSpace(v)})
	default:
		return []string{fmt.Sprint(v)}
	}
}
