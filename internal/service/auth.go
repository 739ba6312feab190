package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/tokens"
)

// AuthService owns the refresh-token lifecycle: issue, redeem with
// rotation, and revocation.
type AuthService struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
}

func (s *AuthService) Issue(ctx context.Context, user *models.User) (*tokens.Pair, error) {
	pair, err := s.Issuer.IssuePair(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, refreshRecord(user.ID, pair)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

// Redeem exchanges a refresh token for a new pair. The presented token is
// revoked, so each refresh token redeems at most once.
func (s *AuthService) Redeem(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	return s.redeem(ctx, refreshToken, 0)
}

// RedeemFor is Redeem restricted to tokens issued to userID.
func (s *AuthService) RedeemFor(ctx context.Context, userID uint, refreshToken string) (*tokens.Pair, error) {
	return s.redeem(ctx, refreshToken, userID)
}

func (s *AuthService) redeem(ctx context.Context, raw string, expectUser uint) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.redeem")

	if raw == "" {
		return nil, fmt.Errorf("%w: refreshToken is required", ErrValidation)
	}

	claims, err := s.Issuer.ParseRefresh(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	if expectUser != 0 && userID != expectUser {
		l.Warn("refresh_subject_mismatch", "token_user", userID, "caller", expectUser)
		return nil, fmt.Errorf("%w: token belongs to another user", ErrInvalidRefreshToken)
	}

	rec, err := s.Repo.FindRefreshByID(ctx, claims.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unknown token", ErrInvalidRefreshToken)
	}
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(tokens.HashToken(raw)), []byte(rec.HashedToken)) != 1 || rec.UserID != userID {
		l.Warn("refresh_hash_mismatch", "jti", rec.ID)
		return nil, fmt.Errorf("%w: token does not match record", ErrInvalidRefreshToken)
	}

	if !rec.State.Redeemable() {
		// A revoked token being presented again means it leaked or was
		// replayed; cut off every session of that user.
		n, rerr := s.Repo.RevokeAllRefreshTokens(ctx, rec.UserID)
		if rerr != nil {
			l.Error("refresh_reuse_revoke_failed", "user_id", rec.UserID, "error", rerr)
		}
		l.Warn("refresh_token_reuse", "jti", rec.ID, "user_id", rec.UserID, "revoked", n)
		return nil, fmt.Errorf("%w: token already used or revoked", ErrInvalidRefreshToken)
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidRefreshToken)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidRefreshToken)
	}
	if err != nil {
		return nil, err
	}

	pair, err := s.Issuer.IssuePair(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := s.Repo.RotateRefreshToken(ctx, rec.ID, refreshRecord(user.ID, pair)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: token already used or revoked", ErrInvalidRefreshToken)
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	l.Info("refresh_token_rotated", "user_id", user.ID, "old_jti", rec.ID, "new_jti", pair.JTI)
	return pair, nil
}

// Revoke revokes a single refresh token. Unknown or already revoked tokens
// are not an error.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: refreshToken is required", ErrValidation)
	}
	_, err := s.Repo.RevokeRefreshByHash(ctx, tokens.HashToken(refreshToken))
	return err
}

// RevokeAll revokes every active refresh token of the user.
func (s *AuthService) RevokeAll(ctx context.Context, userID uint) (int64, error) {
	if _, err := s.Repo.GetUserByID(ctx, userID); err != nil {
		return 0, storeErr(err, "User not found", "")
	}
	n, err := s.Repo.RevokeAllRefreshTokens(ctx, userID)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("refresh_tokens_revoked", "user_id", userID, "count", n)
	return n, nil
}

func refreshRecord(userID uint, pair *tokens.Pair) *models.RefreshToken {
	return &models.RefreshToken{
		ID:          pair.JTI,
		HashedToken: tokens.HashToken(pair.RefreshToken),
		UserID:      userID,
		State:       models.TokenActive,
		ExpiresAt:   pair.RefreshExp,
	}
}
