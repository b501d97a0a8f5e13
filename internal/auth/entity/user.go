package entity

import "time"

// User is the identity record returned by the identity provider. The web
// tier holds a transient copy and never writes it back.
type User struct {
	ID               string         `json:"id"`
	Audience         string         `json:"aud,omitempty"`
	Role             string         `json:"role,omitempty"`
	Email            string         `json:"email,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at,omitempty"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// DisplayName prefers user_metadata.name, then the email, then the id.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if n, ok := u.UserMetadata["name"].(string); ok && n != "" {
		return n
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// Grant is the outcome of a successful password sign-in.
type Grant struct {
	User         *User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
