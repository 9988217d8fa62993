package auth

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	Username  string   `json:"username" validate:"required,min=3"`
	Password  string   `json:"password" validate:"required,min=4"`
	Email     string   `json:"email" validate:"required,email"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Mobile    *string  `json:"mobile,omitempty"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Profile   *string  `json:"profile,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token plus the login instant the client
// anchors its own session countdown on. LoginTime is Unix milliseconds.
type LoginResponse struct {
	Msg       string `json:"msg"`
	Username  string `json:"username"`
	Token     string `json:"token"`
	LoginTime int64  `json:"loginTime"`
}
