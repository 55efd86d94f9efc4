package repository

import (
	"context"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/criteria"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/sqlrepo"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/categories/domain"
	"github.com/gaborage/go-bricks/database"
)

// ListName is the name the categories select list is registered under.
const ListName = "categories"

// SortableColumns may be passed in the sort query parameter.
var SortableColumns = []string{"name", "created_date"}

func Schema() *sqlrepo.Schema[domain.Category] {
	return &sqlrepo.Schema[domain.Category]{
		Table:        domain.TableName,
		Key:          "id",
		Columns:      []string{"id", "name", "active", "created_date", "updated_date"},
		Fillable:     []string{"name", "active"},
		LabelColumn:  "name",
		ActiveColumn: "active",
		Searchable:   []string{"name"},
		Indexable: map[string][]crud.Column{
			crud.DefaultGroup: {
				{Name: "id", Label: "ID", Hidden: true},
				{Name: "name", Label: "Name", Sortable: true},
				{Name: "active", Label: "Active"},
				{Name: "created_date", Label: "Created", Sortable: true},
			},
		},
		DefaultSort: []criteria.Order{{Column: "name", Direction: "asc"}},
		// Declared so Destroy detaches products before removing the category.
		Relations: []sqlrepo.Relation{
			{Name: "products", PivotTable: "product_categories", ForeignKey: "category_id", RelatedKey: "product_id"},
		},
		Defaults:      crud.Attributes{"active": true},
		CreatedColumn: "created_date",
		UpdatedColumn: "updated_date",
		New:           func() *domain.Category { return &domain.Category{} },
		ID:            func(c *domain.Category) string { return c.ID },
		Field:         (*domain.Category).Field,
	}
}

func NewSQLCategoryRepository(getDB func(context.Context) (database.Interface, error)) *sqlrepo.Repository[domain.Category] {
	return sqlrepo.New(getDB, Schema())
}
