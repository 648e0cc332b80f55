package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/volatiletech/null"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID        int       `json:"id" db:"u_id"`
	FirstName string    `json:"firstName" db:"u_fname"`
	LastName  string    `json:"lastName" db:"u_lname"`
	Email     string    `json:"email" db:"u_email"`
	Password  string    `json:"-" db:"u_password"`
	Role      UserRole  `json:"role" db:"u_role"`
	Active    bool      `json:"active" db:"u_active"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// SessionUser is the slice of a user kept inside the server-side session.
type SessionUser struct {
	ID        int      `json:"u_id"`
	FirstName string   `json:"u_fname"`
	LastName  string   `json:"u_lname"`
	Email     string   `json:"u_email"`
	Role      UserRole `json:"u_role"`
}

func (u *SessionUser) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

func (u *SessionUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type JWTClaims struct {
	UserID int      `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.StandardClaims
}

type UserListEntry struct {
	ID         int       `json:"id" db:"u_id"`
	FirstName  string    `json:"firstName" db:"u_fname"`
	LastName   string    `json:"lastName" db:"u_lname"`
	Email      string    `json:"email" db:"u_email"`
	Role       UserRole  `json:"role" db:"u_role"`
	Active     bool      `json:"active" db:"u_active"`
	OpenLoans  int       `json:"openLoans" db:"open_loans"`
	TotalLoans int       `json:"totalLoans" db:"total_loans"`
	LastLoanAt null.Time `json:"lastLoanAt" db:"last_loan_at"`
}
