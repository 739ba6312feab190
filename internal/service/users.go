package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/hash"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/repo"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/tokens"
)

type UserService struct {
	Repo   *repo.GormRepo
	Hasher hash.Hasher
	Auth   *AuthService
}

type UserInput struct {
	Email     string `validate:"required,max=255,email,tld"`
	Password  string `validate:"required,min=8,bcrypt,password"`
	FirstName string `validate:"max=100"`
	LastName  string `validate:"max=100"`
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	users, err := s.Repo.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: No users found", ErrNotFound)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found", "")
	}
	return user, nil
}

func (s *UserService) Register(ctx context.Context, in UserInput) (*models.User, *tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, nil, fmt.Errorf("%w: You must provide an email and a password", ErrValidation)
	}
	in.Email = email
	if err := inputs.Validate(in); err != nil {
		return nil, nil, err
	}

	taken, err := s.Repo.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, fmt.Errorf("%w: Email already in use", ErrConflict)
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, nil, err
	}

	user := &models.User{
		Email:     email,
		Password:  pwHash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, nil, storeErr(err, "", "Email already in use")
	}

	pair, err := s.Auth.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	l.Info("user_registered", "user_id", user.ID)
	return user, pair, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "users.login")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: You must provide an email and a password", ErrValidation)
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: Invalid login credentials", ErrInvalidCredentials)
		}
		return nil, nil, err
	}

	ok, err := hash.Verify(user.Password, password)
	if err != nil {
		l.Error("login_error", "user_id", user.ID, "error", err)
	}
	if !ok {
		l.Warn("login_failed", "user_id", user.ID)
		return nil, nil, fmt.Errorf("%w: Invalid login credentials", ErrInvalidCredentials)
	}

	pair, err := s.Auth.Issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Update replaces the profile of targetID. Only the user may update their
// own account; that check runs before any input validation.
func (s *UserService) Update(ctx context.Context, actorID, targetID uint, in UserInput) (*models.User, error) {
	if actorID != targetID {
		return nil, fmt.Errorf("%w: Not authorized to update user information", ErrForbidden)
	}

	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("%w: User data is missing (email, password, first and last name are required)", ErrValidation)
	}
	in.Email = email
	if err := inputs.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.Repo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, storeErr(err, "User not found", "")
	}

	if user.Email != email {
		taken, err := s.Repo.EmailTaken(ctx, email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: Email already in use by another user", ErrConflict)
		}
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user.Email = email
	user.Password = pwHash
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	if err := s.Repo.UpdateUser(ctx, user); err != nil {
		return nil, storeErr(err, "User not found", "Email already in use by another user")
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actorID, targetID uint) error {
	if actorID != targetID {
		return fmt.Errorf("%w: Not authorized to delete user", ErrForbidden)
	}
	return storeErr(s.Repo.DeleteUser(ctx, targetID), "User not found", "")
}

// Promote grants the admin role to the user with the given email.
func (s *UserService) Promote(ctx context.Context, email string) error {
	user, err := s.Repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return storeErr(err, "User not found", "")
	}
	return s.Repo.SetUserRole(ctx, user.ID, models.RoleAdmin)
}
