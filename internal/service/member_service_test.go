package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

type mockMemberRepo struct {
	members map[string]*models.Member
	deleted []string
}

func (m *mockMemberRepo) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	for _, member := range m.members {
		if member.Email == email {
			return member, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockMemberRepo) FindByID(ctx context.Context, id string) (*models.Member, error) {
	if member, ok := m.members[id]; ok {
		return member, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMemberRepo) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error) {
	var result []models.Member
	for _, member := range m.members {
		result = append(result, *member)
	}
	return result, len(result), nil
}

func (m *mockMemberRepo) Create(ctx context.Context, member *models.Member) error {
	if m.members == nil {
		m.members = make(map[string]*models.Member)
	}
	member.ID = "mem-" + member.Email
	m.members[member.ID] = member
	return nil
}

func (m *mockMemberRepo) Update(ctx context.Context, member *models.Member) error {
	m.members[member.ID] = member
	return nil
}

func (m *mockMemberRepo) UpdateApproval(ctx context.Context, id string, approved bool) error {
	if member, ok := m.members[id]; ok {
		member.Approved = approved
	}
	return nil
}

func (m *mockMemberRepo) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	if member, ok := m.members[id]; ok {
		member.AvatarURL = &avatarURL
	}
	return nil
}

func (m *mockMemberRepo) Delete(ctx context.Context, id string) error {
	delete(m.members, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAvatarStore struct {
	saved   map[string]string
	deleted []string
}

func (m *mockAvatarStore) Save(memberID, ext string, r io.Reader) (string, error) {
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	url := "http://localhost/static/avatars/" + memberID + ext
	m.saved[memberID] = url
	return url, nil
}

func (m *mockAvatarStore) Delete(memberID string) error {
	m.deleted = append(m.deleted, memberID)
	return nil
}

func TestMemberServiceRegister(t *testing.T) {
	repo := &mockMemberRepo{members: make(map[string]*models.Member)}
	svc := NewMemberService(repo, &mockAvatarStore{}, nil, nil)

	member, err := svc.Register(context.Background(), RegisterMemberRequest{
		Email:    "ana@example.com",
		Password: "secret123",
		FullName: "Ana García",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, member.Role)
	assert.True(t, member.Approved)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte("secret123")))
}

func TestMemberServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockMemberRepo{members: map[string]*models.Member{
		"mem-1": {ID: "mem-1", Email: "ana@example.com"},
	}}
	svc := NewMemberService(repo, &mockAvatarStore{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterMemberRequest{
		Email:    "ana@example.com",
		Password: "secret123",
		FullName: "Ana García",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestMemberServiceRegisterRejectsShortPassword(t *testing.T) {
	svc := NewMemberService(&mockMemberRepo{members: make(map[string]*models.Member)}, &mockAvatarStore{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterMemberRequest{
		Email:    "ana@example.com",
		Password: "abc",
		FullName: "Ana García",
	})
	require.Error(t, err)
}

func TestMemberServiceUpdateProfile(t *testing.T) {
	repo := &mockMemberRepo{members: map[string]*models.Member{
		"mem-1": {ID: "mem-1", Email: "ana@example.com", FullName: "Ana"},
	}}
	svc := NewMemberService(repo, &mockAvatarStore{}, nil, nil)

	member, err := svc.UpdateProfile(context.Background(), "mem-1", UpdateProfileRequest{
		FullName: "Ana García",
		Phone:    "555-1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana García", member.FullName)
	assert.Equal(t, "555-1234", member.Phone)
}

func TestMemberServiceSetApproval(t *testing.T) {
	repo := &mockMemberRepo{members: map[string]*models.Member{
		"mem-1": {ID: "mem-1", Approved: true},
	}}
	svc := NewMemberService(repo, &mockAvatarStore{}, nil, nil)

	member, err := svc.SetApproval(context.Background(), "mem-1", false)
	require.NoError(t, err)
	assert.False(t, member.Approved)
}

func TestMemberServiceDeleteCleansAvatar(t *testing.T) {
	repo := &mockMemberRepo{members: map[string]*models.Member{
		"mem-1": {ID: "mem-1"},
	}}
	avatars := &mockAvatarStore{}
	svc := NewMemberService(repo, avatars, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "mem-1"))
	assert.Equal(t, []string{"mem-1"}, repo.deleted)
	assert.Equal(t, []string{"mem-1"}, avatars.deleted)
}

func TestMemberServiceDeleteUnknown(t *testing.T) {
	svc := NewMemberService(&mockMemberRepo{}, &mockAvatarStore{}, nil, nil)
	require.Error(t, svc.Delete(context.Background(), "missing"))
}

func TestMemberServiceUploadAvatar(t *testing.T) {
	repo := &mockMemberRepo{members: map[string]*models.Member{
		"mem-1": {ID: "mem-1"},
	}}
	avatars := &mockAvatarStore{}
	svc := NewMemberService(repo, avatars, nil, nil)

	url, err := svc.UploadAvatar(context.Background(), "mem-1", ".png", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/static/avatars/mem-1.png", url)
	require.NotNil(t, repo.members["mem-1"].AvatarURL)
	assert.Equal(t, url, *repo.members["mem-1"].AvatarURL)
}
