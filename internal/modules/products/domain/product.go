package domain

import (
	"time"
)

const (
	TableName = "products"

	// CategoriesRelation is the attribute carrying the category ids of a product.
	CategoriesRelation = "categories"
)

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageURL"`
	Active      bool      `json:"active"`
	CategoryIDs []string  `json:"categoryIds"`
	CreatedDate time.Time `json:"createdDate"`
	UpdatedDate time.Time `json:"updatedDate"`
}

func New(id, name, description string, price float64, imageURL string) *Product {
	timestamp := time.Now().UTC()
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
		Active:      true,
		CategoryIDs: []string{},
		CreatedDate: timestamp,
		UpdatedDate: timestamp,
	}
}

// Field returns the scan destination for a products column.
func (p *Product) Field(column string) any {
	switch column {
	case "id":
		return &p.ID
	case "name":
		return &p.Name
	case "description":
		return &p.Description
	case "price":
		return &p.Price
	case "image_url":
		return &p.ImageURL
	case "active":
		return &p.Active
	case "created_date":
		return &p.CreatedDate
	case "updated_date":
		return &p.UpdatedDate
	}
	return nil
}

func (p *Product) SetRelated(relation string, ids []string) {
	if relation == CategoriesRelation {
		p.CategoryIDs = ids
	}
}
