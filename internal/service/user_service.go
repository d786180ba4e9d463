package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/security"
)

// Mainland resident ID: region, birth date, sequence and check digit.
var idCardPattern = regexp.MustCompile(`^[1-9]\d{5}(18|19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{3}[\dXx]$`)

// UserService provides user-related operations.
type UserService struct {
	users     domain.UserRepository
	encryptor *security.Encryptor
}

func NewUserService(users domain.UserRepository, encryptor *security.Encryptor) *UserService {
	return &UserService{users: users, encryptor: encryptor}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ProfileInput holds the editable profile fields. Nil fields are left
// unchanged.
type ProfileInput struct {
	RealName  *string
	AvatarURL *string
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (*domain.User, error) {
	if in.RealName != nil {
		if err := validateRealName(*in.RealName); err != nil {
			return nil, err
		}
	}
	if in.AvatarURL != nil && !isAbsoluteURL(*in.AvatarURL) {
		return nil, domain.ValidationError("avatar_url must be an absolute URL")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.RealName != nil {
		user.RealName = in.RealName
	}
	if in.AvatarURL != nil {
		user.AvatarURL = in.AvatarURL
	}
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyInput is a real-name verification request.
type VerifyInput struct {
	RealName string `json:"real_name"`
	IDCard   string `json:"id_card"`
}

// Verify records the real name and the encrypted ID card number of id and
// marks the account verified.
func (s *UserService) Verify(ctx context.Context, id int64, in VerifyInput) (*domain.User, error) {
	if err := validateRealName(in.RealName); err != nil {
		return nil, err
	}
	if !idCardPattern.MatchString(in.IDCard) {
		return nil, domain.ValidationError("invalid id card number")
	}

	sealed, err := s.encryptor.Encrypt(strings.ToUpper(in.IDCard))
	if err != nil {
		return nil, fmt.Errorf("encrypt id card: %w", err)
	}
	if err := s.users.SetVerified(ctx, id, in.RealName, sealed); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func isAbsoluteURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
