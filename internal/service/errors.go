package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/db"
)

var (
	ErrValidation          = errors.New("validation")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrProcessing          = errors.New("processing")
)

// storeErr maps persistence errors onto the service taxonomy.
func storeErr(err error, notFoundMsg, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, notFoundMsg)
	case conflictMsg != "" && db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrConflict, conflictMsg)
	}
	return err
}
