package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
)

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) ([]models.User, error) {
	var users []models.User
	q := r.DB.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User) error {
	res := r.DB.WithContext(ctx).Model(u).Select("email", "password", "first_name", "last_name").Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SetUserRole(ctx context.Context, id uint, role models.Role) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteUser removes the user together with everything the user owns.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		db := tx.DB
		if err := db.Where("cart_id IN (?)", db.Model(&models.Cart{}).Select("id").Where("user_id = ?", id)).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := db.Where("user_id = ?", id).Delete(&models.Cart{}).Error; err != nil {
			return err
		}
		if err := db.Where("order_id IN (?)", db.Model(&models.Order{}).Select("id").Where("user_id = ?", id)).
			Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := db.Where("user_id = ?", id).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := db.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		res := db.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
