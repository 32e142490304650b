package service

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

type memberRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Member, error)
	FindByID(ctx context.Context, id string) (*models.Member, error)
	List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error)
	Create(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, member *models.Member) error
	UpdateApproval(ctx context.Context, id string, approved bool) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	Delete(ctx context.Context, id string) error
}

type avatarStore interface {
	Save(memberID, ext string, r io.Reader) (string, error)
	Delete(memberID string) error
}

// RegisterMemberRequest creates the identity and profile in one step. The
// coordinator registers people at the desk, so accounts arrive approved.
type RegisterMemberRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	BirthDate      string `json:"birth_date"`
	PreviousChurch string `json:"previous_church"`
	BaptismDate    string `json:"baptism_date"`
	HolySpiritDate string `json:"holy_spirit_date"`
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	FullName       string `json:"full_name" validate:"required"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	BirthDate      string `json:"birth_date"`
	PreviousChurch string `json:"previous_church"`
	BaptismDate    string `json:"baptism_date"`
	HolySpiritDate string `json:"holy_spirit_date"`
}

// MemberService provides directory management use cases.
type MemberService struct {
	repo      memberRepository
	avatars   avatarStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMemberService constructs a MemberService instance.
func NewMemberService(repo memberRepository, avatars avatarStore, validate *validator.Validate, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MemberService{repo: repo, avatars: avatars, validator: validate, logger: logger}
}

// List returns the member directory with pagination.
func (s *MemberService) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, *models.Pagination, error) {
	members, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return members, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a single member by ID.
func (s *MemberService) Get(ctx context.Context, id string) (*models.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	return member, nil
}

// Register creates an approved student account with its profile in one step.
func (s *MemberService) Register(ctx context.Context, req RegisterMemberRequest) (*models.Member, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if existing, err := s.repo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	member := &models.Member{
		Email:          req.Email,
		PasswordHash:   string(hash),
		FullName:       req.FullName,
		Phone:          req.Phone,
		Address:        req.Address,
		BirthDate:      req.BirthDate,
		PreviousChurch: req.PreviousChurch,
		BaptismDate:    req.BaptismDate,
		HolySpiritDate: req.HolySpiritDate,
		Role:           models.RoleStudent,
		Approved:       true,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to register member")
	}

	s.logger.Info("member registered", zap.String("member_id", member.ID))
	return member, nil
}

// UpdateProfile updates the editable fields of a member.
func (s *MemberService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*models.Member, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	member.FullName = req.FullName
	member.Phone = req.Phone
	member.Address = req.Address
	member.BirthDate = req.BirthDate
	member.PreviousChurch = req.PreviousChurch
	member.BaptismDate = req.BaptismDate
	member.HolySpiritDate = req.HolySpiritDate

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update member")
	}

	return member, nil
}

// SetApproval flips a member's approval flag.
func (s *MemberService) SetApproval(ctx context.Context, id string, approved bool) (*models.Member, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateApproval(ctx, id, approved); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update approval")
	}
	return s.Get(ctx, id)
}

// Delete removes a member and every enrollment that hangs off the account.
func (s *MemberService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "member id is required")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete member")
	}
	if s.avatars != nil {
		if err := s.avatars.Delete(id); err != nil {
			s.logger.Warn("failed to delete member avatar", zap.String("member_id", id), zap.Error(err))
		}
	}
	s.logger.Info("member deleted", zap.String("member_id", id))
	return nil
}

// UploadAvatar stores the member photo and records its public URL.
func (s *MemberService) UploadAvatar(ctx context.Context, id, ext string, r io.Reader) (string, error) {
	if s.avatars == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "avatar storage is not configured")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}

	url, err := s.avatars.Save(id, ext, r)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store avatar")
	}

	if err := s.repo.UpdateAvatar(ctx, id, url); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record avatar url")
	}

	return url, nil
}
