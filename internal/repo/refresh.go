package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
)

func (r *GormRepo) AddRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

func (r *GormRepo) FindRefreshByID(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("id = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeRefreshToken moves an active token to revoked. It returns
// gorm.ErrRecordNotFound if the token is absent or already revoked.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND state = ?", jti, models.TokenActive).
		Update("state", models.TokenRevoked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) RevokeRefreshByHash(ctx context.Context, hashed string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("hashed_token = ? AND state = ?", hashed, models.TokenActive).
		Update("state", models.TokenRevoked)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) RevokeAllRefreshTokens(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND state = ?", userID, models.TokenActive).
		Update("state", models.TokenRevoked)
	return res.RowsAffected, res.Error
}

// RotateRefreshToken revokes oldJTI and stores next in one transaction.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	return r.Transaction(ctx, func(tx *GormRepo) error {
		if err := tx.RevokeRefreshToken(ctx, oldJTI); err != nil {
			return err
		}
		return tx.AddRefreshToken(ctx, next)
	})
}
