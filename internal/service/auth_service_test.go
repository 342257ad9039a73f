package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edudesk/edudesk-api/internal/models"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
)

type mockAuthUserRepo struct {
	byEmail map[string]models.User
	byID    map[string]models.User
	created []models.User
}

func (m *mockAuthUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "generated"
	}
	m.created = append(m.created, *user)
	return nil
}

func (m *mockAuthUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if u, ok := m.byID[id]; ok {
		u.PasswordHash = passwordHash
		m.byID[id] = u
	}
	return nil
}

type mockAuthParentRepo struct {
	created []models.Parent
}

func (m *mockAuthParentRepo) Create(ctx context.Context, parent *models.Parent) error {
	if parent.ID == "" {
		parent.ID = "parent-generated"
	}
	m.created = append(m.created, *parent)
	return nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthFixture(users *mockAuthUserRepo) (*AuthService, *mockAuthParentRepo) {
	parents := &mockAuthParentRepo{}
	svc := NewAuthService(users, parents, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "edudesk-test",
	})
	return svc, parents
}

func TestAuthLogin(t *testing.T) {
	users := &mockAuthUserRepo{byEmail: map[string]models.User{
		"dana@example.com": {ID: "u-1", Email: "dana@example.com", FullName: "Dana", Role: models.RoleMinistry, PasswordHash: hashFor(t, "secret1"), Active: true},
	}}
	svc, _ := newAuthFixture(users)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "dana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleMinistry, claims.Role)
}

func TestAuthLoginGenericFailures(t *testing.T) {
	users := &mockAuthUserRepo{byEmail: map[string]models.User{
		"dana@example.com": {ID: "u-1", Email: "dana@example.com", PasswordHash: hashFor(t, "secret1"), Active: true, Role: models.RoleMinistry},
	}}
	svc, _ := newAuthFixture(users)

	// Unknown email and wrong password are indistinguishable to the caller.
	_, errUnknown := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	require.Error(t, errUnknown)
	_, errWrongPass := svc.Login(context.Background(), models.LoginRequest{Email: "dana@example.com", Password: "wrong"})
	require.Error(t, errWrongPass)
	assert.Equal(t, appErrors.FromError(errUnknown).Code, appErrors.FromError(errWrongPass).Code)
	assert.Equal(t, appErrors.FromError(errUnknown).Message, appErrors.FromError(errWrongPass).Message)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	users := &mockAuthUserRepo{byEmail: map[string]models.User{
		"old@example.com": {ID: "u-2", Email: "old@example.com", PasswordHash: hashFor(t, "secret1"), Active: false, Role: models.RoleTeacher},
	}}
	svc, _ := newAuthFixture(users)

	// Even with the right password, the caller gets the same answer as
	// for a wrong one.
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "old@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Message, appErrors.FromError(err).Message)
}

func TestAuthRegisterCreatesPendingParent(t *testing.T) {
	users := &mockAuthUserRepo{}
	svc, parents := newAuthFixture(users)

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:           "priya@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FullName:        "Priya Raman",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, info.Role)
	require.Len(t, users.created, 1)
	require.Len(t, parents.created, 1)
	assert.False(t, parents.created[0].Approved)
	assert.Equal(t, users.created[0].ID, parents.created[0].UserID)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	users := &mockAuthUserRepo{byEmail: map[string]models.User{
		"priya@example.com": {ID: "u-3", Email: "priya@example.com"},
	}}
	svc, _ := newAuthFixture(users)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:           "priya@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FullName:        "Priya Raman",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthRegisterPasswordMismatch(t *testing.T) {
	svc, _ := newAuthFixture(&mockAuthUserRepo{})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:           "priya@example.com",
		Password:        "secret1",
		ConfirmPassword: "different",
		FullName:        "Priya Raman",
	})
	require.Error(t, err)
}

func TestAuthChangePassword(t *testing.T) {
	users := &mockAuthUserRepo{byID: map[string]models.User{
		"u-1": {ID: "u-1", PasswordHash: hashFor(t, "oldpass")},
	}}
	svc, _ := newAuthFixture(users)

	err := svc.ChangePassword(context.Background(), "u-1", models.ChangePasswordRequest{OldPassword: "oldpass", NewPassword: "newpass"})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.byID["u-1"].PasswordHash), []byte("newpass")))

	err = svc.ChangePassword(context.Background(), "u-1", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "another"})
	require.Error(t, err)
}

func TestAuthValidateTokenRejectsForgery(t *testing.T) {
	users := &mockAuthUserRepo{byEmail: map[string]models.User{
		"dana@example.com": {ID: "u-1", Email: "dana@example.com", PasswordHash: hashFor(t, "secret1"), Active: true, Role: models.RoleMinistry},
	}}
	svc, _ := newAuthFixture(users)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "dana@example.com", Password: "secret1"})
	require.NoError(t, err)

	other := NewAuthService(users, &mockAuthParentRepo{}, validator.New(), zap.NewNop(), AuthConfig{TokenSecret: "other-secret", TokenExpiry: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
}
