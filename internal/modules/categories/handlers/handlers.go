// Package handlers provides HTTP handlers for the categories module.
// They drive crud.Service directly, without a module-specific service layer.
package handlers

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/criteria"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/categories/domain"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/server"
)

type CategoryInput struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type CreateCategoryRequest struct {
	CategoryInput
}

type UpdateCategoryRequest struct {
	ID string `param:"id"`
	CategoryInput
}

type GetCategoryRequest struct {
	ID string `param:"id"`
}

type DeleteCategoryRequest struct {
	ID string `param:"id"`
}

// ListCategoriesRequest takes an explicit sort such as "name:asc,created_date:desc".
type ListCategoriesRequest struct {
	Sort string `query:"sort"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	CreatedDate string `json:"createdDate,omitempty"`
	UpdatedDate string `json:"updatedDate,omitempty"`
}

type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Columns    []crud.Column      `json:"columns"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
}

func (in CategoryInput) Attributes() crud.Attributes {
	data := crud.Attributes{}
	if in.Name != nil {
		data["name"] = *in.Name
	}
	if in.Active != nil {
		data["active"] = *in.Active
	}
	return data
}

func ToCategoryResponse(c *domain.Category) *CategoryResponse {
	resp := &CategoryResponse{ID: c.ID, Name: c.Name, Active: c.Active}
	if !c.CreatedDate.IsZero() {
		resp.CreatedDate = c.CreatedDate.Format("2006-01-02T15:04:05Z07:00")
	}
	if !c.UpdatedDate.IsZero() {
		resp.UpdatedDate = c.UpdatedDate.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// CategoryService is the subset of crud.Service[domain.Category] the handlers use.
type CategoryService interface {
	Find(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, data crud.Attributes) (*domain.Category, error)
	Update(ctx context.Context, id string, data crud.Attributes) (*domain.Category, error)
	Destroy(ctx context.Context, id string) error
	Paginate(ctx context.Context, sort []criteria.Order, group string) (*crud.Listing[domain.Category], error)
}

// CategoryHandler serves category CRUD. Successful writes invalidate the
// categories select list.
type CategoryHandler struct {
	newService func() CategoryService
	sortable   []string
	onChange   func()
	logger     logger.Logger
}

func NewCategoryHandler(newService func() CategoryService, sortable []string, onChange func(), l logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		newService: newService,
		sortable:   sortable,
		onChange:   onChange,
		logger:     l,
	}
}

func (h *CategoryHandler) GetCategory(req GetCategoryRequest, ctx server.HandlerContext) (*CategoryResponse, server.IAPIError) {
	category, err := h.newService().Find(ctx.Echo.Request().Context(), req.ID)
	if err == nil && category == nil {
		err = crud.ErrNotFound
	}
	if err != nil {
		return nil, h.apiError(err, "retrieve", req.ID)
	}

	return ToCategoryResponse(category), nil
}

func (h *CategoryHandler) ListCategories(req ListCategoriesRequest, ctx server.HandlerContext) (*ListCategoriesResponse, server.IAPIError) {
	sort, err := h.parseSort(req.Sort)
	if err != nil {
		return nil, server.NewBadRequestError(err.Error())
	}

	reqCtx := crud.WithRequestValues(ctx.Echo.Request().Context(), ctx.Echo.QueryParams())
	listing, err := h.newService().Paginate(reqCtx, sort, crud.DefaultGroup)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list categories")
		return nil, server.NewInternalServerError("Failed to retrieve categories")
	}

	categories := make([]CategoryResponse, len(listing.Items.Items))
	for i, c := range listing.Items.Items {
		categories[i] = *ToCategoryResponse(c)
	}

	return &ListCategoriesResponse{
		Categories: categories,
		Columns:    listing.Columns,
		Total:      listing.Items.Total,
		Page:       listing.Items.Page,
		PageSize:   listing.Items.PerPage,
	}, nil
}

func (h *CategoryHandler) CreateCategory(req CreateCategoryRequest, ctx server.HandlerContext) (server.Result[*CategoryResponse], server.IAPIError) {
	category, err := h.newService().Create(ctx.Echo.Request().Context(), req.Attributes())
	if err != nil {
		return server.Result[*CategoryResponse]{}, h.apiError(err, "create", "")
	}

	h.changed()
	h.logger.Info().Str("categoryID", category.ID).Msg("Category created successfully")
	return server.Created(ToCategoryResponse(category)), nil
}

func (h *CategoryHandler) UpdateCategory(req UpdateCategoryRequest, ctx server.HandlerContext) (*CategoryResponse, server.IAPIError) {
	category, err := h.newService().Update(ctx.Echo.Request().Context(), req.ID, req.Attributes())
	if err != nil {
		return nil, h.apiError(err, "update", req.ID)
	}

	h.changed()
	h.logger.Info().Str("categoryID", req.ID).Msg("Category updated successfully")
	return ToCategoryResponse(category), nil
}

func (h *CategoryHandler) DeleteCategory(req DeleteCategoryRequest, ctx server.HandlerContext) (server.NoContentResult, server.IAPIError) {
	if err := h.newService().Destroy(ctx.Echo.Request().Context(), req.ID); err != nil {
		return server.NoContentResult{}, h.apiError(err, "delete", req.ID)
	}

	h.changed()
	h.logger.Info().Str("categoryID", req.ID).Msg("Category deleted successfully")
	return server.NoContent(), nil
}

// parseSort turns "name:asc,created_date" into orders, rejecting columns
// that are not sortable.
func (h *CategoryHandler) parseSort(raw string) ([]criteria.Order, error) {
	var orders []criteria.Order
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		column, direction, _ := strings.Cut(part, ":")
		if !slices.Contains(h.sortable, column) {
			return nil, errors.New("cannot sort by " + column)
		}
		orders = append(orders, criteria.Order{Column: column, Direction: direction})
	}
	return orders, nil
}

func (h *CategoryHandler) apiError(err error, action, id string) server.IAPIError {
	switch {
	case errors.Is(err, crud.ErrNotFound):
		return server.NewNotFoundError("Category")
	case errors.Is(err, crud.ErrValidation):
		return server.NewBadRequestError(err.Error())
	}

	h.logger.Error().Err(err).Str("categoryID", id).Msg("Failed to " + action + " category")
	return server.NewInternalServerError("Failed to " + action + " category")
}

func (h *CategoryHandler) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

// RegisterRoutes registers category HTTP routes
func (h *CategoryHandler) RegisterRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	server.GET(hr, r, "/categories/:id", h.GetCategory, server.WithTags("categories"))
	server.GET(hr, r, "/categories", h.ListCategories, server.WithTags("categories"))
	server.POST(hr, r, "/categories", h.CreateCategory, server.WithTags("categories"))
	server.PUT(hr, r, "/categories/:id", h.UpdateCategory, server.WithTags("categories"))
	server.DELETE(hr, r, "/categories/:id", h.DeleteCategory, server.WithTags("categories"))
}
