package accounts

import "github.com/aula-lms/aula-lms/internal/shared"

// Account is the root identity record. The role is immutable after
// creation; there is no role-change operation.
type Account struct {
	ID           int64       `json:"account_id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         shared.Role `json:"account_type"`
	Name         string      `json:"name"`
	ContactInfo  *string     `json:"contact_info"`
}

// NewAccount captures everything needed to create an account together with
// its role-scoped details row.
type NewAccount struct {
	Email        string
	PasswordHash string
	Name         string
	Role         shared.Role
	ContactInfo  *string
	Department   *string // lecturers
	Major        *string // students
}
