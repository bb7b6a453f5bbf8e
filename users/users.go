package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MembershipType string

const (
	MEMBERSHIP_FREE MembershipType = "free"
	MEMBERSHIP_PAID MembershipType = "paid"
)

type Role string

const (
	ROLE_MEMBER Role = "member"
	ROLE_ADMIN  Role = "admin"
)

// User is an association account. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID               uuid.UUID
	Email            string
	FullName         string
	Mobile           string
	Role             Role
	MembershipType   MembershipType
	MembershipExpiry *time.Time
	PasswordHash     string
	CreatedAt        time.Time
}

// IsPaidMember reports whether the user qualifies for member pricing.
func (u User) IsPaidMember() bool {
	return u.MembershipType == MEMBERSHIP_PAID
}

func (u User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	CreateUser(ctx context.Context, user User) error
}
