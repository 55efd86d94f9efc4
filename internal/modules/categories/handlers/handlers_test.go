package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/criteria"
	"github.com/gaborage/go-bricks-crud-demo/internal/crud/validation"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/categories/domain"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/categories/repository"
	"github.com/gaborage/go-bricks/config"
	"github.com/gaborage/go-bricks/database"
	dbtest "github.com/gaborage/go-bricks/database/testing"
	dbtypes "github.com/gaborage/go-bricks/database/types"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/server"
	"github.com/labstack/echo/v5"
)

// mockService implements CategoryService for testing
type mockService struct {
	findFunc     func(ctx context.Context, id string) (*domain.Category, error)
	createFunc   func(ctx context.Context, data crud.Attributes) (*domain.Category, error)
	updateFunc   func(ctx context.Context, id string, data crud.Attributes) (*domain.Category, error)
	destroyFunc  func(ctx context.Context, id string) error
	paginateFunc func(ctx context.Context, sort []criteria.Order, group string) (*crud.Listing[domain.Category], error)
}

func (m *mockService) Find(ctx context.Context, id string) (*domain.Category, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) Create(ctx context.Context, data crud.Attributes) (*domain.Category, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, data)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) Update(ctx context.Context, id string, data crud.Attributes) (*domain.Category, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, data)
	}
	return nil, errors.New("not implemented")
}

func (m *mockService) Destroy(ctx context.Context, id string) error {
	if m.destroyFunc != nil {
		return m.destroyFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockService) Paginate(ctx context.Context, sort []criteria.Order, group string) (*crud.Listing[domain.Category], error) {
	if m.paginateFunc != nil {
		return m.paginateFunc(ctx, sort, group)
	}
	return nil, errors.New("not implemented")
}

func newMockLogger() logger.Logger {
	return logger.New("info", false)
}

func newMockConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:    "test",
			Version: "1.0.0",
			Env:     "test",
			Debug:   true,
		},
	}
}

func newTestContext(target string) server.HandlerContext {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return server.HandlerContext{
		Echo:   e.NewContext(req, rec),
		Config: newMockConfig(),
	}
}

func newTestHandler(svc CategoryService, changes *int) *CategoryHandler {
	return NewCategoryHandler(
		func() CategoryService { return svc },
		repository.SortableColumns,
		func() { *changes++ },
		newMockLogger(),
	)
}

func TestGetCategory(t *testing.T) {
	tests := []struct {
		name        string
		serviceFunc func(ctx context.Context, id string) (*domain.Category, error)
		wantStatus  int
		wantErrCode string
	}{
		{
			name: "successful get",
			serviceFunc: func(ctx context.Context, id string) (*domain.Category, error) {
				return domain.New(id, "Tools"), nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "category not found",
			serviceFunc: func(ctx context.Context, id string) (*domain.Category, error) {
				return nil, crud.ErrNotFound
			},
			wantStatus:  http.StatusNotFound,
			wantErrCode: "NOT_FOUND",
		},
		{
			name: "nil category",
			serviceFunc: func(ctx context.Context, id string) (*domain.Category, error) {
				return nil, nil
			},
			wantStatus:  http.StatusNotFound,
			wantErrCode: "NOT_FOUND",
		},
		{
			name: "internal error",
			serviceFunc: func(ctx context.Context, id string) (*domain.Category, error) {
				return nil, errors.New("database error")
			},
			wantStatus:  http.StatusInternalServerError,
			wantErrCode: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var changes int
			handler := newTestHandler(&mockService{findFunc: tt.serviceFunc}, &changes)

			response, apiErr := handler.GetCategory(GetCategoryRequest{ID: "c-1"}, newTestContext("/categories/c-1"))

			if apiErr != nil {
				if apiErr.HTTPStatus() != tt.wantStatus {
					t.Errorf("GetCategory() status = %v, want %v", apiErr.HTTPStatus(), tt.wantStatus)
				}
				if tt.wantErrCode != "" && apiErr.ErrorCode() != tt.wantErrCode {
					t.Errorf("GetCategory() errorCode = %v, want %v", apiErr.ErrorCode(), tt.wantErrCode)
				}
				return
			}
			if tt.wantStatus != http.StatusOK {
				t.Fatalf("GetCategory() error = nil, want status %v", tt.wantStatus)
			}
			if response.ID != "c-1" || response.Name != "Tools" {
				t.Errorf("GetCategory() = %+v", response)
			}
		})
	}
}

func TestListCategories(t *testing.T) {
	tests := []struct {
		name       string
		sort       string
		wantOrders int
		wantStatus int
	}{
		{name: "no sort", wantOrders: 0, wantStatus: http.StatusOK},
		{name: "two columns", sort: "name:asc, created_date:desc", wantOrders: 2, wantStatus: http.StatusOK},
		{name: "column without direction", sort: "name", wantOrders: 1, wantStatus: http.StatusOK},
		{name: "unsortable column", sort: "active:asc", wantStatus: http.StatusBadRequest},
		{name: "injection attempt", sort: "name;DROP TABLE categories", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotOrders []criteria.Order
			var changes int
			handler := newTestHandler(&mockService{
				paginateFunc: func(ctx context.Context, sort []criteria.Order, group string) (*crud.Listing[domain.Category], error) {
					gotOrders = sort
					return &crud.Listing[domain.Category]{
						Items: &crud.Page[domain.Category]{Items: []*domain.Category{domain.New("c-1", "Tools")}, Total: 1, Page: 1, PerPage: 20},
					}, nil
				},
			}, &changes)

			response, apiErr := handler.ListCategories(ListCategoriesRequest{Sort: tt.sort}, newTestContext("/categories"))

			if tt.wantStatus != http.StatusOK {
				if apiErr == nil || apiErr.HTTPStatus() != tt.wantStatus {
					t.Errorf("ListCategories() error = %v, want status %v", apiErr, tt.wantStatus)
				}
				return
			}
			if apiErr != nil {
				t.Fatalf("ListCategories() unexpected error = %v", apiErr)
			}
			if len(gotOrders) != tt.wantOrders {
				t.Errorf("ListCategories() orders = %v, want %v", gotOrders, tt.wantOrders)
			}
			if response.Total != 1 || len(response.Categories) != 1 {
				t.Errorf("ListCategories() = %+v", response)
			}
		})
	}
}

func TestWritesInvalidateList(t *testing.T) {
	name := "Tools"
	var changes int
	handler := newTestHandler(&mockService{
		createFunc: func(ctx context.Context, data crud.Attributes) (*domain.Category, error) {
			return domain.New("c-1", data["name"].(string)), nil
		},
		updateFunc: func(ctx context.Context, id string, data crud.Attributes) (*domain.Category, error) {
			return domain.New(id, data["name"].(string)), nil
		},
		destroyFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}, &changes)

	result, apiErr := handler.CreateCategory(CreateCategoryRequest{CategoryInput{Name: &name}}, newTestContext("/categories"))
	if apiErr != nil {
		t.Fatalf("CreateCategory() unexpected error = %v", apiErr)
	}
	if status, _, _ := result.ResultMeta(); status != http.StatusCreated {
		t.Errorf("CreateCategory() status = %v, want %v", status, http.StatusCreated)
	}

	if _, apiErr := handler.UpdateCategory(UpdateCategoryRequest{ID: "c-1", CategoryInput: CategoryInput{Name: &name}}, newTestContext("/categories/c-1")); apiErr != nil {
		t.Fatalf("UpdateCategory() unexpected error = %v", apiErr)
	}
	if _, apiErr := handler.DeleteCategory(DeleteCategoryRequest{ID: "c-1"}, newTestContext("/categories/c-1")); apiErr != nil {
		t.Fatalf("DeleteCategory() unexpected error = %v", apiErr)
	}

	if changes != 3 {
		t.Errorf("list invalidations = %v, want 3", changes)
	}
}

func TestFailedWritesKeepList(t *testing.T) {
	var changes int
	handler := newTestHandler(&mockService{
		createFunc: func(ctx context.Context, data crud.Attributes) (*domain.Category, error) {
			return nil, crud.ValidationErrors{"name": "name is a required field"}
		},
		destroyFunc: func(ctx context.Context, id string) error {
			return crud.ErrNotFound
		},
	}, &changes)

	_, apiErr := handler.CreateCategory(CreateCategoryRequest{}, newTestContext("/categories"))
	if apiErr == nil || apiErr.HTTPStatus() != http.StatusBadRequest {
		t.Errorf("CreateCategory() error = %v, want 400", apiErr)
	}

	_, apiErr = handler.DeleteCategory(DeleteCategoryRequest{ID: "missing"}, newTestContext("/categories/missing"))
	if apiErr == nil || apiErr.HTTPStatus() != http.StatusNotFound {
		t.Errorf("DeleteCategory() error = %v, want 404", apiErr)
	}

	if changes != 0 {
		t.Errorf("list invalidations = %v, want 0", changes)
	}
}

// TestCreateThroughCrudService runs a create through the real crud.Service,
// validator and SQL repository.
func TestCreateThroughCrudService(t *testing.T) {
	now := time.Now().UTC()
	db := dbtest.NewTestDB(dbtypes.PostgreSQL)
	db.ExpectTransaction().
		ExpectExec("INSERT INTO categories").WillReturnRowsAffected(1)
	db.ExpectQuery("FROM categories").
		WillReturnRows(
			dbtest.NewRowSet("id", "name", "active", "created_date", "updated_date").
				AddRow("c-1", "Tools", true, now, now),
		)

	engine, err := validation.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine() unexpected error = %v", err)
	}
	rules := validation.NewRuleSet(engine, map[string]string{"name": "required,notblank"})

	newService := func() CategoryService {
		svc := crud.NewService[domain.Category]()
		svc.SetRepository(repository.NewSQLCategoryRepository(func(ctx context.Context) (database.Interface, error) {
			return db, nil
		}))
		svc.SetValidator(rules.Validator())
		return svc
	}
	handler := NewCategoryHandler(newService, repository.SortableColumns, nil, newMockLogger())

	blank := " "
	if _, apiErr := handler.CreateCategory(CreateCategoryRequest{CategoryInput{Name: &blank}}, newTestContext("/categories")); apiErr == nil {
		t.Error("CreateCategory() with blank name expected error, got nil")
	}

	name := "Tools"
	result, apiErr := handler.CreateCategory(CreateCategoryRequest{CategoryInput{Name: &name}}, newTestContext("/categories"))
	if apiErr != nil {
		t.Fatalf("CreateCategory() unexpected error = %v", apiErr)
	}
	if status, _, _ := result.ResultMeta(); status != http.StatusCreated {
		t.Errorf("CreateCategory() status = %v, want %v", status, http.StatusCreated)
	}
	dbtest.AssertTransactionCommitted(t, db)
}
