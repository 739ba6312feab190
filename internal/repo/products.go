package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
)

type ProductFilter struct {
	CategoryID uint
	Offset     int
	Limit      int
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Preload("Categories").Order("products.id ASC")
	if f.CategoryID != 0 {
		q = q.Where("products.id IN (?)",
			r.DB.Table("product_categories").Select("product_id").Where("category_id = ?", f.CategoryID))
	}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}

	var items []models.Product
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Categories").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SearchProducts is a case-insensitive substring match over name and description.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	where := r.DB.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where(where).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where(where).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) GetCategoriesByID(ctx context.Context, ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) FirstOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	cat := models.Category{Name: name}
	if err := r.DB.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

// UpdateProduct saves scalar fields and, when cats is non-nil, replaces the
// product's categories.
func (r *GormRepo) UpdateProduct(ctx context.Context, prod *models.Product, cats []models.Category) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		res := tx.DB.Model(prod).Select("name", "description", "price", "image").Updates(prod)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if cats != nil {
			if err := tx.DB.Model(prod).Association("Categories").Replace(cats); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteProduct removes the product, its category links and any cart items
// still referencing it. Order history keeps the product id.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.DB.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.DB.Exec("DELETE FROM product_categories WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.DB.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
