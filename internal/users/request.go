package users

// UpdateUserRequest is the profile patch accepted over the wire. Every
// field is optional; absent fields are left as stored.
type UpdateUserRequest struct {
	Email     *string  `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string  `json:"password,omitempty" validate:"omitempty,min=4"`
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Mobile    *string  `json:"mobile,omitempty"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Profile   *string  `json:"profile,omitempty"`
}
