package auth

import "time"

const (
	RoleUser   = "USER"
	RoleVendor = "VENDOR"
	RoleAdmin  = "ADMIN"

	AccountActive = "ACTIVE"
)

type User struct {
	ID                       string
	Email                    string
	Username                 *string
	Name                     string
	PasswordHash             *string
	ProfilePicture           *string
	Roles                    []string
	AccountStatus            string
	IsVerified               bool
	VerificationCode         *string
	VerificationCodeExpireAt *time.Time
	VerificationHash         *string
	IncorrectAttempt         int
	RetryTimestamp           *time.Time
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Profile is the projection of a user exposed over HTTP. Credential,
// verification and lockout fields are deliberately absent.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       *string   `json:"username"`
	Name           string    `json:"name"`
	ProfilePicture *string   `json:"profile_picture"`
	Roles          []string  `json:"roles"`
	AccountStatus  string    `json:"account_status"`
	IsVerified     bool      `json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		Roles:          u.Roles,
		AccountStatus:  u.AccountStatus,
		IsVerified:     u.IsVerified,
		CreatedAt:      u.CreatedAt,
	}
}
