package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"srsevents/internal/users"
)

type mockUserRepo struct {
	createFn        func(ctx context.Context, user *users.User) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*users.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*users.User, error)
	getByMemberIDFn func(ctx context.Context, memberID string) (*users.User, error)
	updateFn        func(ctx context.Context, user *users.User) error
	emailExistsFn   func(ctx context.Context, email string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *users.User) error {
	return m.createFn(ctx, user)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return m.getByEmailFn(ctx, email)
}
func (m *mockUserRepo) GetByMemberID(ctx context.Context, memberID string) (*users.User, error) {
	return m.getByMemberIDFn(ctx, memberID)
}
func (m *mockUserRepo) Update(ctx context.Context, user *users.User) error {
	return m.updateFn(ctx, user)
}
func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return m.emailExistsFn(ctx, email)
}

func testConfig() Config {
	return Config{
		Secret:             "test-secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
	}
}

func activeUser(password string) *users.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	memberID := "M-1001"
	return &users.User{
		ID:        uuid.New(),
		FirstName: "Priya",
		LastName:  "Shah",
		Email:     "priya@example.com",
		Password:  string(hash),
		Role:      users.RoleMember,
		MemberID:  &memberID,
		IsActive:  true,
	}
}

func TestRegister(t *testing.T) {
	t.Run("hashes password and defaults to user role", func(t *testing.T) {
		var created *users.User
		repo := &mockUserRepo{
			emailExistsFn: func(ctx context.Context, email string) (bool, error) { return false, nil },
			createFn: func(ctx context.Context, user *users.User) error {
				user.ID = uuid.New()
				created = user
				return nil
			},
		}
		svc := NewService(repo, testConfig())

		resp, err := svc.Register(context.Background(), &RegisterRequest{
			FirstName: "Arun", LastName: "Mehta",
			Email: "arun@example.com", Password: "s3cret-pass",
		})
		require.NoError(t, err)

		assert.Equal(t, users.RoleUser, created.Role)
		assert.NotEqual(t, "s3cret-pass", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("s3cret-pass")))
		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.NotEmpty(t, resp.Tokens.RefreshToken)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		repo := &mockUserRepo{
			emailExistsFn: func(ctx context.Context, email string) (bool, error) { return true, nil },
		}
		svc := NewService(repo, testConfig())

		_, err := svc.Register(context.Background(), &RegisterRequest{
			FirstName: "Arun", LastName: "Mehta",
			Email: "taken@example.com", Password: "s3cret-pass",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials issue tokens", func(t *testing.T) {
		user := activeUser("correct-horse")
		repo := &mockUserRepo{
			getByEmailFn: func(ctx context.Context, email string) (*users.User, error) { return user, nil },
			updateFn:     func(ctx context.Context, u *users.User) error { return nil },
		}
		svc := NewService(repo, testConfig())

		resp, err := svc.Login(context.Background(), &LoginRequest{
			Email: user.Email, Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.Equal(t, "MEMBER", resp.User.Role)
		assert.Equal(t, "M-1001", resp.User.MemberID)
		assert.NotNil(t, user.LastLogin)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		user := activeUser("correct-horse")
		repo := &mockUserRepo{
			getByEmailFn: func(ctx context.Context, email string) (*users.User, error) { return user, nil },
		}
		svc := NewService(repo, testConfig())

		_, err := svc.Login(context.Background(), &LoginRequest{
			Email: user.Email, Password: "wrong",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email fails the same way", func(t *testing.T) {
		repo := &mockUserRepo{
			getByEmailFn: func(ctx context.Context, email string) (*users.User, error) {
				return nil, users.ErrUserNotFound
			},
		}
		svc := NewService(repo, testConfig())

		_, err := svc.Login(context.Background(), &LoginRequest{
			Email: "nobody@example.com", Password: "whatever",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account is refused", func(t *testing.T) {
		user := activeUser("correct-horse")
		user.IsActive = false
		repo := &mockUserRepo{
			getByEmailFn: func(ctx context.Context, email string) (*users.User, error) { return user, nil },
		}
		svc := NewService(repo, testConfig())

		_, err := svc.Login(context.Background(), &LoginRequest{
			Email: user.Email, Password: "correct-horse",
		})
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})

	t.Run("member login resolves by membership number", func(t *testing.T) {
		user := activeUser("correct-horse")
		repo := &mockUserRepo{
			getByMemberIDFn: func(ctx context.Context, memberID string) (*users.User, error) {
				require.Equal(t, "M-1001", memberID)
				return user, nil
			},
			updateFn: func(ctx context.Context, u *users.User) error { return nil },
		}
		svc := NewService(repo, testConfig())

		resp, err := svc.MemberLogin(context.Background(), &MemberLoginRequest{
			MemberID: "M-1001", Password: "correct-horse",
		})
		require.NoError(t, err)
		assert.Equal(t, user.Email, resp.User.Email)
	})
}

func TestRefresh(t *testing.T) {
	user := activeUser("pw")
	repo := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*users.User, error) { return user, nil },
		getByIDFn:    func(ctx context.Context, id uuid.UUID) (*users.User, error) { return user, nil },
		updateFn:     func(ctx context.Context, u *users.User) error { return nil },
	}
	svc := NewService(repo, testConfig())

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: user.Email, Password: "pw"})
	require.NoError(t, err)

	t.Run("refresh token mints a new pair", func(t *testing.T) {
		tokens, err := svc.Refresh(context.Background(), resp.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
	})

	t.Run("access token cannot be used as refresh", func(t *testing.T) {
		_, err := svc.Refresh(context.Background(), resp.Tokens.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.Refresh(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestGetProfile(t *testing.T) {
	t.Run("member profile carries the member id", func(t *testing.T) {
		user := activeUser("pw")
		repo := &mockUserRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*users.User, error) { return user, nil },
		}
		svc := NewService(repo, testConfig())

		profile, err := svc.GetProfile(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "M-1001", profile.MemberID)
		assert.Equal(t, user.Email, profile.Email)
	})

	t.Run("regular user has no member id", func(t *testing.T) {
		user := activeUser("pw")
		user.Role = users.RoleUser
		user.MemberID = nil
		repo := &mockUserRepo{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*users.User, error) { return user, nil },
		}
		svc := NewService(repo, testConfig())

		profile, err := svc.GetProfile(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Empty(t, profile.MemberID)
	})
}
