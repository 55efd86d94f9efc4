package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/criteria"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/sqlrepo"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/domain"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/products/repository"
	"github.com/gaborage/go-bricks/logger"
)

// Rules are the validation rules of product input.
var Rules = map[string]string{
	"name":      "required,notblank,max=150",
	"price":     "gte=0",
	"image_url": "omitempty,url,startswith=http",
}

// Filters accepted by ListProducts.
const (
	FilterByName     = "name"
	FilterByCategory = "category"
	FilterByMinPrice = "minPrice"
	FilterByMaxPrice = "maxPrice"
)

var priceOperators = map[string]string{
	FilterByMinPrice: ">=",
	FilterByMaxPrice: "<=",
}

// Invalidator drops cached select lists after writes.
type Invalidator interface {
	Invalidate(name string)
}

// ProductService is built per request: it embeds a crud.Service, which keeps
// the validation errors of the request.
type ProductService struct {
	*crud.Service[domain.Product]
	logger      logger.Logger
	invalidator Invalidator
}

func NewService(repo crud.Repository[domain.Product], validator crud.Validator, perPage int, log logger.Logger, invalidator Invalidator) *ProductService {
	svc := crud.NewService[domain.Product]()
	svc.SetRepository(repo)
	svc.SetValidator(validator)
	svc.SetPerPage(perPage)

	return &ProductService{
		Service:     svc,
		logger:      log,
		invalidator: invalidator,
	}
}

// CreateProduct validates data and stores a product with its categories.
func (s *ProductService) CreateProduct(ctx context.Context, data crud.Attributes) (*domain.Product, error) {
	product, err := s.CreateWithRelations(ctx, data, domain.CategoriesRelation)
	if err != nil {
		if errors.Is(err, crud.ErrValidation) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("Failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.changed()
	s.logger.Info().Str("productID", product.ID).Str("name", product.Name).Msg("Product created successfully")
	return product, nil
}

// GetProductByID retrieves a product with its category ids
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.Find(ctx, id)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("productID", id).Msg("Failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, crud.ErrNotFound
	}

	return product, nil
}

// ShowProduct retrieves only the given columns of a product.
func (s *ProductService) ShowProduct(ctx context.Context, id string, columns []string) (*domain.Product, error) {
	product, err := s.FindForShow(ctx, id, columns...)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) || errors.Is(err, sqlrepo.ErrUnknownColumn) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("productID", id).Str("columns", strings.Join(columns, ",")).Msg("Failed to show product")
		return nil, fmt.Errorf("failed to show product: %w", err)
	}

	return product, nil
}

// ListProducts returns one page of products. Page, search and sorting come
// from the request values on ctx.
func (s *ProductService) ListProducts(ctx context.Context, group, filterBy, filterValue string) (*crud.Listing[domain.Product], error) {
	repo := s.Repository()

	var (
		listing *crud.Listing[domain.Product]
		err     error
	)
	switch filterBy {
	case "":
		listing, err = s.PaginateRepository(ctx, repo, group)
	case FilterByName:
		listing, err = s.PaginateRepositoryWhere(ctx, repo, group, "name", filterValue)
	case FilterByCategory:
		if filterValue != "" {
			repo.PushCriteria(repository.InCategory{CategoryID: filterValue})
		}
		listing, err = s.PaginateRepository(ctx, repo, group)
	case FilterByMinPrice, FilterByMaxPrice:
		if filterValue != "" {
			bound, err := priceBound(filterBy, filterValue)
			if err != nil {
				return nil, err
			}
			repo.PushCriteria(bound)
		}
		listing, err = s.PaginateRepository(ctx, repo, group)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filterBy)
	}

	if err != nil {
		s.logger.Error().Err(err).Str("filterBy", filterBy).Msg("Failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return listing, nil
}

func priceBound(filterBy, filterValue string) (*criteria.WhereCriteria, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(filterValue), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidFilter, filterBy)
	}
	return criteria.Where("price", price, priceOperators[filterBy])
}

// UpdateProduct validates data and applies it, replacing the categories when
// the categories attribute is present.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, data crud.Attributes) (*domain.Product, error) {
	product, err := s.UpdateWithRelations(ctx, id, data, domain.CategoriesRelation)
	if err != nil {
		if errors.Is(err, crud.ErrValidation) || errors.Is(err, crud.ErrNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("productID", id).Msg("Failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.changed()
	s.logger.Info().Str("productID", id).Msg("Product updated successfully")
	return product, nil
}

// DeleteProduct removes a product and its category links
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Destroy(ctx, id); err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("productID", id).Msg("Failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.changed()
	s.logger.Info().Str("productID", id).Msg("Product deleted successfully")
	return nil
}

func (s *ProductService) changed() {
	if s.invalidator != nil {
		s.invalidator.Invalidate(repository.ListName)
	}
}
