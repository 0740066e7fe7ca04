package auth

import "time"

// Account tier tags stored on the user row. The tag alone does not grant
// anything; access tiers are derived per request by Classify.
const (
	UserTypeNormal  = "normal"
	UserTypeDomain  = "domain"
	UserTypePremium = "premium"
)

// User represents an account. Emails are unique and lower-cased for
// comparison. Accounts are never hard-deleted; Active=false soft-deactivates
// and must fail authorization even when a technically valid session exists.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	UserType     string    `json:"user_type"`
	Verified     bool      `json:"is_verified"`
	Active       bool      `json:"is_active"`
	DomainID     *string   `json:"domain_id,omitempty"`
	HRID         *string   `json:"hr_id,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
