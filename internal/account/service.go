package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// LoginRedirect is the client screen suggested after registering.
const LoginRedirect = "LoginScreen"

type Service struct {
	store  Store
	hasher PasswordHasher
}

func NewService(store Store, hasher PasswordHasher) *Service {
	return &Service{store: store, hasher: hasher}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	fields, err := global.FieldErrors(&req, "")
	if err != nil {
		return nil, fmt.Errorf("validate registration: %w", err)
	}
	if len(fields) > 0 {
		return nil, global.NewError(global.ErrValidation, "Fill all fields", fields...)
	}

	_, err = s.store.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, errEmailTaken()
	case !errors.Is(err, global.ErrNotFound):
		return nil, fmt.Errorf("find user: %w", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Age:      req.Age,
	}
	user.SetTimestamps()

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, global.ErrDuplicate) {
			return nil, errEmailTaken()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info().Str("userId", user.ID.Hex()).Msg("user registered")
	return &models.RegisterResult{Redirect: LoginRedirect}, nil
}

func errEmailTaken() error {
	return global.NewError(global.ErrDuplicate, "Email already registered", global.ValidationError{
		Field: "email", Message: "This email is already in use", Code: "duplicate_email",
	})
}

// Login checks credentials. Unknown emails and wrong passwords produce the
// same error.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	req.Email = normalizeEmail(req.Email)

	fields, err := global.FieldErrors(&req, "")
	if err != nil {
		return nil, fmt.Errorf("validate login: %w", err)
	}
	if len(fields) > 0 {
		return nil, global.NewError(global.ErrValidation, "Enter email and password", fields...)
	}

	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, global.ErrNotFound) {
			return nil, errBadCredentials()
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, errBadCredentials()
	}

	return &models.LoginResult{UserID: user.ID.Hex(), Email: user.Email}, nil
}

func errBadCredentials() error {
	return global.NewError(global.ErrInvalidCredentials, "Invalid email or password")
}
