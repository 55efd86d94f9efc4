// Package handlers provides HTTP handlers for the products module.
package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/sqlrepo"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/domain"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/service"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/server"
	"github.com/samber/lo"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// ProductInput is the body of create and update requests. Only the fields
// that are present are passed on.
type ProductInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	ImageURL    *string   `json:"imageURL"`
	Active      *bool     `json:"active"`
	CategoryIDs *[]string `json:"categoryIds"`
}

type CreateProductRequest struct {
	ProductInput
}

type UpdateProductRequest struct {
	ID string `param:"id"`
	ProductInput
}

type GetProductRequest struct {
	ID string `param:"id"`
}

type ShowProductRequest struct {
	ID      string `param:"id"`
	Columns string `query:"columns"`
}

// ListProductsRequest carries the filter (name, category, minPrice or
// maxPrice). Page, search, column and order are read from the raw query
// string.
type ListProductsRequest struct {
	Group       string `query:"group"`
	FilterBy    string `query:"filterBy"`
	FilterValue string `query:"filterValue"`
}

type DeleteProductRequest struct {
	ID string `param:"id"`
}

type ProductResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageURL,omitempty"`
	Active      bool     `json:"active"`
	CategoryIDs []string `json:"categoryIds,omitempty"`
	CreatedDate string   `json:"createdDate,omitempty"`
	UpdatedDate string   `json:"updatedDate,omitempty"`
}

type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Columns  []crud.Column     `json:"columns"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

func (in ProductInput) Attributes() crud.Attributes {
	data := crud.Attributes{}
	if in.Name != nil {
		data["name"] = *in.Name
	}
	if in.Description != nil {
		data["description"] = *in.Description
	}
	if in.Price != nil {
		data["price"] = *in.Price
	}
	if in.ImageURL != nil {
		data["image_url"] = *in.ImageURL
	}
	if in.Active != nil {
		data["active"] = *in.Active
	}
	if in.CategoryIDs != nil {
		data[domain.CategoriesRelation] = *in.CategoryIDs
	}
	return data
}

func ToProductResponse(p *domain.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Active:      p.Active,
		CategoryIDs: p.CategoryIDs,
	}
	if !p.CreatedDate.IsZero() {
		resp.CreatedDate = p.CreatedDate.Format(timeFormat)
	}
	if !p.UpdatedDate.IsZero() {
		resp.UpdatedDate = p.UpdatedDate.Format(timeFormat)
	}
	return resp
}

// ProductServiceInterface defines the service contract for handlers
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, data crud.Attributes) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	ShowProduct(ctx context.Context, id string, columns []string) (*domain.Product, error)
	ListProducts(ctx context.Context, group, filterBy, filterValue string) (*crud.Listing[domain.Product], error)
	UpdateProduct(ctx context.Context, id string, data crud.Attributes) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ProductHandler builds a fresh service for every request.
type ProductHandler struct {
	newService func() ProductServiceInterface
	logger     logger.Logger
}

func NewProductHandler(newService func() ProductServiceInterface, l logger.Logger) *ProductHandler {
	return &ProductHandler{
		newService: newService,
		logger:     l,
	}
}

func (h *ProductHandler) GetProduct(req GetProductRequest, ctx server.HandlerContext) (*ProductResponse, server.IAPIError) {
	product, err := h.newService().GetProductByID(ctx.Echo.Request().Context(), req.ID)
	if err != nil {
		return nil, h.apiError(err, "retrieve", req.ID)
	}

	return ToProductResponse(product), nil
}

func (h *ProductHandler) ShowProduct(req ShowProductRequest, ctx server.HandlerContext) (*ProductResponse, server.IAPIError) {
	columns := lo.Compact(lo.Map(strings.Split(req.Columns, ","), func(col string, _ int) string {
		return strings.TrimSpace(col)
	}))

	product, err := h.newService().ShowProduct(ctx.Echo.Request().Context(), req.ID, columns)
	if err != nil {
		return nil, h.apiError(err, "retrieve", req.ID)
	}

	return ToProductResponse(product), nil
}

func (h *ProductHandler) ListProducts(req ListProductsRequest, ctx server.HandlerContext) (*ListProductsResponse, server.IAPIError) {
	reqCtx := crud.WithRequestValues(ctx.Echo.Request().Context(), ctx.Echo.QueryParams())

	listing, err := h.newService().ListProducts(reqCtx, req.Group, req.FilterBy, req.FilterValue)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilter) {
			return nil, server.NewBadRequestError(err.Error())
		}
		h.logger.Error().Err(err).Str("filterBy", req.FilterBy).Msg("Failed to list products")
		return nil, server.NewInternalServerError("Failed to retrieve products")
	}

	page := listing.Items
	productResponses := make([]ProductResponse, len(page.Items))
	for i, p := range page.Items {
		productResponses[i] = *ToProductResponse(p)
	}

	return &ListProductsResponse{
		Products: productResponses,
		Columns:  listing.Columns,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PerPage,
	}, nil
}

func (h *ProductHandler) CreateProduct(req CreateProductRequest, ctx server.HandlerContext) (server.Result[*ProductResponse], server.IAPIError) {
	product, err := h.newService().CreateProduct(ctx.Echo.Request().Context(), req.Attributes())
	if err != nil {
		return server.Result[*ProductResponse]{}, h.apiError(err, "create", "")
	}

	return server.Created(ToProductResponse(product)), nil
}

func (h *ProductHandler) UpdateProduct(req UpdateProductRequest, ctx server.HandlerContext) (*ProductResponse, server.IAPIError) {
	product, err := h.newService().UpdateProduct(ctx.Echo.Request().Context(), req.ID, req.Attributes())
	if err != nil {
		return nil, h.apiError(err, "update", req.ID)
	}

	return ToProductResponse(product), nil
}

func (h *ProductHandler) DeleteProduct(req DeleteProductRequest, ctx server.HandlerContext) (server.NoContentResult, server.IAPIError) {
	if err := h.newService().DeleteProduct(ctx.Echo.Request().Context(), req.ID); err != nil {
		return server.NoContentResult{}, h.apiError(err, "delete", req.ID)
	}

	return server.NoContent(), nil
}

func (h *ProductHandler) apiError(err error, action, id string) server.IAPIError {
	switch {
	case errors.Is(err, crud.ErrNotFound):
		return server.NewNotFoundError("Product")
	case errors.Is(err, crud.ErrValidation), errors.Is(err, sqlrepo.ErrUnknownColumn):
		return server.NewBadRequestError(err.Error())
	}

	h.logger.Error().Err(err).Str("productID", id).Msg("Failed to " + action + " product")
	return server.NewInternalServerError("Failed to " + action + " product")
}

// RegisterProductRoutes registers product-related HTTP routes
func (h *ProductHandler) RegisterProductRoutes(hr *server.HandlerRegistry, r server.RouteRegistrar) {
	server.GET(hr, r, "/products/:id", h.GetProduct)
	server.GET(hr, r, "/products/:id/show", h.ShowProduct)
	server.GET(hr, r, "/products", h.ListProducts)
	server.POST(hr, r, "/products", h.CreateProduct)
	server.PUT(hr, r, "/products/:id", h.UpdateProduct)
	server.DELETE(hr, r, "/products/:id", h.DeleteProduct)
}
