package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rideshare_go/internal/domain"
	"rideshare_go/internal/security"
	"rideshare_go/internal/service"
)

// Mock mocks
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 7
	}
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetBriefs(ctx context.Context, ids []int64) (map[int64]domain.UserBrief, error) {
	return nil, nil // Not used in auth tests
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) TouchLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int64, hashed string) error {
	args := m.Called(ctx, id, hashed)
	return args.Error(0)
}

func (m *MockUserRepo) SetVerified(ctx context.Context, id int64, realName, idCard string) error {
	args := m.Called(ctx, id, realName, idCard)
	return args.Error(0)
}

func newAuthService(repo *MockUserRepo) (*service.AuthService, *security.TokenService) {
	tokenSvc := security.NewTokenService("secret", time.Hour)
	hasher := security.NewPasswordHasher(bcrypt.MinCost) // low cost for tests
	return service.NewAuthService(repo, tokenSvc, hasher), tokenSvc
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		mockRepo.On("GetByPhone", mock.Anything, "13800000001").Return(nil, domain.ErrNotFound)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.Phone == "13800000001" && u.Status == domain.UserStatusActive && u.Rating == 5
		})).Return(nil)

		user, err := svc.Register(context.Background(), service.RegisterInput{
			Phone:    "13800000001",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.NotEqual(t, "secret1", user.HashedPassword)
		mockRepo.AssertExpectations(t)
	})

	t.Run("PhoneTaken", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		existing := &domain.User{ID: 1, Phone: "13800000002"}
		mockRepo.On("GetByPhone", mock.Anything, "13800000002").Return(existing, nil)

		user, err := svc.Register(context.Background(), service.RegisterInput{
			Phone:    "13800000002",
			Password: "secret1",
		})
		assert.Nil(t, user)
		assert.ErrorIs(t, err, domain.ErrConflict)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Validation", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)
		short := "A"

		for name, in := range map[string]service.RegisterInput{
			"bad phone":      {Phone: "12345", Password: "secret1"},
			"short password": {Phone: "13800000003", Password: "123"},
			"long password":  {Phone: "13800000003", Password: "123456789012345678901"},
			"short name":     {Phone: "13800000003", Password: "secret1", RealName: &short},
		} {
			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrValidation, name)
		}
		mockRepo.AssertNotCalled(t, "GetByPhone", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hashed, err := hasher.Hash("secret1")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, tokens := newAuthService(mockRepo)

		user := &domain.User{ID: 3, Phone: "13800000001", HashedPassword: hashed, Status: domain.UserStatusActive}
		mockRepo.On("GetByPhone", mock.Anything, "13800000001").Return(user, nil)
		mockRepo.On("TouchLastLogin", mock.Anything, int64(3)).Return(nil)

		res, err := svc.Login(context.Background(), service.LoginInput{Phone: "13800000001", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "bearer", res.TokenType)

		id, err := tokens.Verify(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		user := &domain.User{ID: 3, Phone: "13800000001", HashedPassword: hashed, Status: domain.UserStatusActive}
		mockRepo.On("GetByPhone", mock.Anything, "13800000001").Return(user, nil)

		_, err := svc.Login(context.Background(), service.LoginInput{Phone: "13800000001", Password: "nope!!"})
		assert.ErrorIs(t, err, domain.ErrAuthentication)
		mockRepo.AssertNotCalled(t, "TouchLastLogin", mock.Anything, mock.Anything)
	})

	t.Run("UnknownPhone", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		mockRepo.On("GetByPhone", mock.Anything, "13800000009").Return(nil, domain.ErrNotFound)

		_, err := svc.Login(context.Background(), service.LoginInput{Phone: "13800000009", Password: "secret1"})
		assert.ErrorIs(t, err, service.ErrBadCredentials)
	})

	t.Run("Disabled", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		user := &domain.User{ID: 4, Phone: "13800000004", HashedPassword: hashed, Status: domain.UserStatusDisabled}
		mockRepo.On("GetByPhone", mock.Anything, "13800000004").Return(user, nil)

		_, err := svc.Login(context.Background(), service.LoginInput{Phone: "13800000004", Password: "secret1"})
		assert.ErrorIs(t, err, service.ErrAccountDisabled)
	})

	t.Run("RehashesOnCostChange", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		stronger := security.NewPasswordHasher(bcrypt.MinCost + 1)
		svc := service.NewAuthService(mockRepo, security.NewTokenService("secret", time.Hour), stronger)

		user := &domain.User{ID: 3, Phone: "13800000001", HashedPassword: hashed, Status: domain.UserStatusActive}
		mockRepo.On("GetByPhone", mock.Anything, "13800000001").Return(user, nil)
		mockRepo.On("UpdatePassword", mock.Anything, int64(3), mock.MatchedBy(func(h string) bool {
			cost, err := bcrypt.Cost([]byte(h))
			return err == nil && cost == bcrypt.MinCost+1
		})).Return(nil)
		mockRepo.On("TouchLastLogin", mock.Anything, int64(3)).Return(nil)

		_, err := svc.Login(context.Background(), service.LoginInput{Phone: "13800000001", Password: "secret1"})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestChangePassword(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	hashed, err := hasher.Hash("secret1")
	require.NoError(t, err)
	user := &domain.User{ID: 3, HashedPassword: hashed, Status: domain.UserStatusActive}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		mockRepo.On("GetByID", mock.Anything, int64(3)).Return(user, nil)
		mockRepo.On("UpdatePassword", mock.Anything, int64(3), mock.MatchedBy(func(h string) bool {
			return hasher.Verify("secret2", h) == nil
		})).Return(nil)

		require.NoError(t, svc.ChangePassword(context.Background(), 3, "secret1", "secret2"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongOldPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		mockRepo.On("GetByID", mock.Anything, int64(3)).Return(user, nil)

		err := svc.ChangePassword(context.Background(), 3, "guess!!", "secret2")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.EqualError(t, err, "old password is incorrect")
		mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidNewPassword", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc, _ := newAuthService(mockRepo)

		for _, p := range []string{"short", "this-password-is-too-long", strings.Repeat("🚗", 19)} {
			err := svc.ChangePassword(context.Background(), 3, "secret1", p)
			assert.ErrorIs(t, err, domain.ErrValidation, p)
		}
		mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewUserService(mockRepo, newEncryptor(t))

		mockRepo.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5}, nil)
		mockRepo.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == 5 && *u.RealName == "Driver Li" && *u.AvatarURL == "https://cdn.example.com/a.png"
		})).Return(nil)

		name, avatar := "Driver Li", "https://cdn.example.com/a.png"
		user, err := svc.UpdateProfile(context.Background(), 5, service.ProfileInput{RealName: &name, AvatarURL: &avatar})
		require.NoError(t, err)
		assert.Equal(t, "Driver Li", *user.RealName)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RelativeAvatar", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewUserService(mockRepo, newEncryptor(t))

		avatar := "/uploads/a.png"
		_, err := svc.UpdateProfile(context.Background(), 5, service.ProfileInput{AvatarURL: &avatar})
		assert.ErrorIs(t, err, domain.ErrValidation)
		mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func newEncryptor(t *testing.T) *security.Encryptor {
	t.Helper()
	enc, err := security.NewEncryptor([]byte("user-test-key"), nil)
	require.NoError(t, err)
	return enc
}

func TestVerify(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		enc := newEncryptor(t)
		svc := service.NewUserService(mockRepo, enc)

		mockRepo.On("SetVerified", mock.Anything, int64(5), "Li Wei", mock.MatchedBy(func(sealed string) bool {
			plain, err := enc.Decrypt(sealed)
			return err == nil && plain == "11010519491231002X"
		})).Return(nil)
		mockRepo.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, IDCardVerified: true}, nil)

		user, err := svc.Verify(context.Background(), 5, service.VerifyInput{RealName: "Li Wei", IDCard: "11010519491231002x"})
		require.NoError(t, err)
		assert.True(t, user.IDCardVerified)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Invalid", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		svc := service.NewUserService(mockRepo, newEncryptor(t))

		for name, in := range map[string]service.VerifyInput{
			"short name":   {RealName: "L", IDCard: "11010519491231002X"},
			"bad card":     {RealName: "Li Wei", IDCard: "123"},
			"bad month":    {RealName: "Li Wei", IDCard: "110105194913310020"},
			"leading zero": {RealName: "Li Wei", IDCard: "010105194912310020"},
		} {
			_, err := svc.Verify(context.Background(), 5, in)
			assert.ErrorIs(t, err, domain.ErrValidation, name)
		}
		mockRepo.AssertNotCalled(t, "SetVerified", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
