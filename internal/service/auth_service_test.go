package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

type mockAuthRepo struct {
	members map[string]*models.Member
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	for _, member := range m.members {
		if member.Email == email {
			return member, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Member, error) {
	if member, ok := m.members[id]; ok {
		return member, nil
	}
	return nil, sql.ErrNoRows
}

func newAuthFixture(t *testing.T, approved bool) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockAuthRepo{members: map[string]*models.Member{
		"mem-1": {
			ID:           "mem-1",
			Email:        "ana@example.com",
			PasswordHash: string(hash),
			FullName:     "Ana García",
			Role:         models.RoleStudent,
			Approved:     approved,
		},
	}}
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "portal-api",
	})
}

func TestAuthServiceLogin(t *testing.T) {
	svc := newAuthFixture(t, true)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "mem-1", res.Member.ID)
	assert.Equal(t, models.RoleStudent, res.Member.Role)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "mem-1", claims.MemberID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginPendingApproval(t *testing.T) {
	svc := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPendingApproval.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthFixture(t, true)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
}
