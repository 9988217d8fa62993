package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/cropcareapp/cropcare-backend/pkg/db/models"
	"github.com/cropcareapp/cropcare-backend/pkg/enums"
)

// UserDTO is the transport shape that omits the password hash.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Mobile    *string    `json:"mobile,omitempty"`
	Address   *string    `json:"address,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Profile   *string    `json:"profile,omitempty"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Mobile       *string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	Profile      *string
	Role         enums.Role
}

// UpdateUserDTO carries a partial profile update. Nil fields are left
// untouched; PasswordHash, when set, must already be hashed.
type UpdateUserDTO struct {
	Email        *string
	FirstName    *string
	LastName     *string
	Mobile       *string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	Profile      *string
	PasswordHash *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Mobile:    u.Mobile,
		Address:   u.Address,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		Profile:   u.Profile,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleUser
	}

	return &models.User{
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Mobile:       c.Mobile,
		Address:      c.Address,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		Profile:      c.Profile,
		Role:         role,
	}
}

// Changes translates the patch into a gorm update map. An empty map means
// there is nothing to persist.
func (u UpdateUserDTO) Changes() map[string]any {
	changes := map[string]any{}
	if u.Email != nil {
		changes["email"] = *u.Email
	}
	if u.FirstName != nil {
		changes["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		changes["last_name"] = *u.LastName
	}
	if u.Mobile != nil {
		changes["mobile"] = *u.Mobile
	}
	if u.Address != nil {
		changes["address"] = *u.Address
	}
	if u.Latitude != nil {
		changes["latitude"] = *u.Latitude
	}
	if u.Longitude != nil {
		changes["longitude"] = *u.Longitude
	}
	if u.Profile != nil {
		changes["profile"] = *u.Profile
	}
	if u.PasswordHash != nil {
		changes["password_hash"] = *u.PasswordHash
	}
	return changes
}
