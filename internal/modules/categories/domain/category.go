package domain

import "time"

const TableName = "categories"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	CreatedDate time.Time `json:"createdDate"`
	UpdatedDate time.Time `json:"updatedDate"`
}

func New(id, name string) *Category {
	timestamp := time.Now().UTC()
	return &Category{
		ID:          id,
		Name:        name,
		Active:      true,
		CreatedDate: timestamp,
		UpdatedDate: timestamp,
	}
}

// Field returns the scan destination for a categories column.
func (c *Category) Field(column string) any {
	switch column {
	case "id":
		return &c.ID
	case "name":
		return &c.Name
	case "active":
		return &c.Active
	case "created_date":
		return &c.CreatedDate
	case "updated_date":
		return &c.UpdatedDate
	}
	return nil
}
