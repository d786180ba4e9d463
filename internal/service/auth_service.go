package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/security"
)

// Sentinel errors used by handlers to map to HTTP status codes.
var (
	ErrBadCredentials  = fmt.Errorf("%w: incorrect phone or password", domain.ErrAuthentication)
	ErrAccountDisabled = errors.New("account is disabled")
)

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// AuthService handles registration and login.
type AuthService struct {
	users  domain.UserRepository
	tokens *security.TokenService
	hash   *security.PasswordHasher
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hash:   hash,
	}
}

type RegisterInput struct {
	Phone    string
	Password string
	RealName *string
}

type LoginInput struct {
	Phone    string
	Password string
}

type TokenResponse struct {
	AccessToken string
	TokenType   string
	User        *domain.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if !phonePattern.MatchString(in.Phone) {
		return nil, domain.ValidationError("invalid phone number")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.RealName != nil {
		if err := validateRealName(*in.RealName); err != nil {
			return nil, err
		}
	}

	// Check phone uniqueness
	_, err := s.users.GetByPhone(ctx, in.Phone)
	switch {
	case err == nil:
		return nil, domain.ErrConflict
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("check phone: %w", err)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Phone:          in.Phone,
		RealName:       in.RealName,
		HashedPassword: hashed,
		Rating:         5,
		Status:         domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	if in.Phone == "" || in.Password == "" {
		return nil, domain.ValidationError("phone and password are required")
	}

	user, err := s.users.GetByPhone(ctx, in.Phone)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, ErrBadCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountDisabled
	}
	if s.hash.NeedsRehash(user.HashedPassword) {
		hashed, err := s.hash.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("rehash password: %w", err)
		}
		if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
			return nil, fmt.Errorf("store rehashed password: %w", err)
		}
		user.HashedPassword = hashed
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}

	token, err := s.tokens.CreateForUser(user.ID, user.Phone)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

// ChangePassword replaces the password of userID after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if oldPassword == "" {
		return domain.ValidationError("old_password is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.hash.Verify(oldPassword, user.HashedPassword); err != nil {
		return domain.ValidationError("old password is incorrect")
	}

	hashed, err := s.hash.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hashed)
}

func validatePassword(p string) error {
	if n := utf8.RuneCountInString(p); n < 6 || n > 20 || len(p) > security.MaxPasswordBytes {
		return domain.ValidationError("password must be 6 to 20 characters")
	}
	return nil
}

func validateRealName(name string) error {
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return domain.ValidationError("real name must be 2 to 50 characters")
	}
	return nil
}
