package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"github.com/cropcareapp/cropcare-backend/pkg/db"
	"github.com/cropcareapp/cropcare-backend/pkg/db/models"
	"github.com/cropcareapp/cropcare-backend/pkg/enums"
	pkgerrors "github.com/cropcareapp/cropcare-backend/pkg/errors"
	"github.com/cropcareapp/cropcare-backend/pkg/pagination"
	"github.com/cropcareapp/cropcare-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies the authenticated caller performing an operation.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     enums.Role
}

// CanModify reports whether the actor may change the target account.
// Admins may touch any account, everyone else only their own.
func (a Actor) CanModify(targetID uuid.UUID) bool {
	return a.Role.IsAdmin() || a.UserID == targetID
}

// Service defines the profile operations exposed to the controllers.
type Service interface {
	GetByUsername(ctx context.Context, username string) (*UserDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context) ([]UserDTO, error)
	ListPage(ctx context.Context, params pagination.Params) (*UserPage, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type repository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.User, error)
	UpdateByID(ctx context.Context, id uuid.UUID, patch UpdateUserDTO) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        repository
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           repository
	PasswordConfig config.PasswordConfig
}

// NewService constructs a profile service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: params.Repo, passwordCfg: params.PasswordConfig}, nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (*UserDTO, error) {
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, lookupError(err, "user not found")
	}
	return FromModel(user), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out, nil
}

// UserPage is one cursor page of profiles.
type UserPage struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func (s *service) ListPage(ctx context.Context, params pagination.Params) (*UserPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	// Fetch one extra row to learn whether another page exists.
	list, err := s.repo.ListPage(ctx, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	page := &UserPage{Users: make([]UserDTO, 0, limit)}
	if len(list) > limit {
		last := list[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		list = list[:limit]
	}
	for i := range list {
		page.Users = append(page.Users, *FromModel(&list[i]))
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	if !actor.CanModify(id) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot modify another user's account")
	}

	patch := UpdateUserDTO{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mobile:    req.Mobile,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Profile:   req.Profile,
	}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		patch.PasswordHash = &hash
	}

	if err := s.repo.UpdateByID(ctx, id, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, conflictOrInternal(err, "update user")
	}

	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.CanModify(id) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete another user's account")
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func lookupError(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
}

func conflictOrInternal(err error, op string) error {
	if db.IsUniqueViolation(err, "idx_users_email") {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
	}
	if db.IsUniqueViolation(err, "idx_users_username") {
		return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
