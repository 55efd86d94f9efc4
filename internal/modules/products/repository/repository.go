package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/criteria"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/sqlrepo"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/domain"
	"github.com/gaborage/go-bricks/database"
)

// ListName is the name the products select list is registered under.
const ListName = "products"

const (
	pivotTable = "product_categories"
	pivotKey   = "product_id"
	relatedKey = "category_id"
)

func Schema() *sqlrepo.Schema[domain.Product] {
	return &sqlrepo.Schema[domain.Product]{
		Table:        domain.TableName,
		Key:          "id",
		Columns:      []string{"id", "name", "description", "price", "image_url", "active", "created_date", "updated_date"},
		Fillable:     []string{"name", "description", "price", "image_url", "active"},
		LabelColumn:  "name",
		ActiveColumn: "active",
		Searchable:   []string{"name", "description"},
		Indexable: map[string][]crud.Column{
			crud.DefaultGroup: {
				{Name: "id", Label: "ID", Hidden: true},
				{Name: "name", Label: "Name", Sortable: true},
				{Name: "price", Label: "Price", Sortable: true},
				{Name: "active", Label: "Active"},
				{Name: "created_date", Label: "Created", Sortable: true},
			},
			"catalog": {
				{Name: "name", Label: "Name", Sortable: true},
				{Name: "description", Label: "Description"},
				{Name: "price", Label: "Price", Sortable: true},
				{Name: "image_url", Label: "Image"},
			},
		},
		DefaultSort: []criteria.Order{{Column: "created_date", Direction: "desc"}},
		Relations: []sqlrepo.Relation{
			{Name: domain.CategoriesRelation, PivotTable: pivotTable, ForeignKey: pivotKey, RelatedKey: relatedKey},
		},
		Defaults:      crud.Attributes{"active": true},
		CreatedColumn: "created_date",
		UpdatedColumn: "updated_date",
		New:           func() *domain.Product { return &domain.Product{CategoryIDs: []string{}} },
		ID:            func(p *domain.Product) string { return p.ID },
		Field:         (*domain.Product).Field,
		SetRelated:    (*domain.Product).SetRelated,
	}
}

func NewSQLProductRepository(getDB func(context.Context) (database.Interface, error)) *sqlrepo.Repository[domain.Product] {
	return sqlrepo.New(getDB, Schema())
}

// InCategory keeps products attached to the given category.
type InCategory struct {
	CategoryID string
}

func (c InCategory) Apply(q sq.SelectBuilder) sq.SelectBuilder {
	sub := "id IN (SELECT " + pivotKey + " FROM " + pivotTable + " WHERE " + relatedKey + " = ?)"
	return q.Where(sq.Expr(sub, c.CategoryID))
}
