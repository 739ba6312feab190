package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
)

// Searcher is a full-text product index kept alongside the database.
type Searcher interface {
	Search(ctx context.Context, q string, from, size int) (int64, []models.Product, error)
	Index(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uint) error
}

type ProductService struct {
	Repo   *repo.GormRepo
	Search Searcher
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	CategoryIDs []uint
}

type SearchResult struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

func (s *ProductService) List(ctx context.Context, categoryID uint, offset, limit int) ([]models.Product, error) {
	items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{CategoryID: categoryID, Offset: offset, Limit: limit})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: No products found", ErrNotFound)
	}
	return items, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product not found", "")
	}
	return p, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: No categories found", ErrNotFound)
	}
	return cats, nil
}

// Find runs a text search, through the search index when one is configured
// and falling back to the database otherwise.
func (s *ProductService) Find(ctx context.Context, q string, offset, limit int) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query parameter q is required", ErrValidation)
	}

	if s.Search != nil {
		total, items, err := s.Search.Search(ctx, q, offset, limit)
		if err == nil {
			return &SearchResult{Total: total, Items: items}, nil
		}
		logging.FromContext(ctx).Warn("search_index_unavailable", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Total: total, Items: items}, nil
}

func (s *ProductService) validate(ctx context.Context, in ProductInput) ([]models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !in.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	if !in.Price.Equal(in.Price.Truncate(2)) {
		return nil, fmt.Errorf("%w: price must have at most two decimal places", ErrValidation)
	}
	cats, err := s.Repo.GetCategoriesByID(ctx, in.CategoryIDs)
	if err != nil {
		return nil, err
	}
	if len(cats) != len(uniqueIDs(in.CategoryIDs)) {
		return nil, fmt.Errorf("%w: unknown category", ErrValidation)
	}
	return cats, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	cats, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	p := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		Categories:  cats,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.reindex(ctx, p)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	cats, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []models.Category{}
	}
	p := &models.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
	}
	if err := s.Repo.UpdateProduct(ctx, p, cats); err != nil {
		return nil, storeErr(err, "Product not found", "")
	}
	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, updated)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "Product not found", "")
	}
	if s.Search != nil {
		if err := s.Search.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}
	return nil
}

// Reindex pushes every product into the search index.
func (s *ProductService) Reindex(ctx context.Context) (int, error) {
	if s.Search == nil {
		return 0, nil
	}
	items, err := s.Repo.ListProducts(ctx, repo.ProductFilter{})
	if err != nil {
		return 0, err
	}
	for i := range items {
		if err := s.Search.Index(ctx, &items[i]); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func (s *ProductService) reindex(ctx context.Context, p *models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
