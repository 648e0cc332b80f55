package models

import (
	"time"

	"github.com/volatiletech/null"
)

// MaxContactMessageLength caps the free-text message of a contact ticket.
const MaxContactMessageLength = 5000

// ContactTicket is a support message, optionally attributed to a logged-in
// user. Anonymous submissions leave UserID null.
type ContactTicket struct {
	ID        int         `json:"id" db:"ct_id"`
	UserID    null.Int    `json:"userId" db:"user_id"`
	FirstName null.String `json:"firstName" db:"c_fname"`
	LastName  null.String `json:"lastName" db:"c_lname"`
	Email     string      `json:"email" db:"c_email"`
	Subject   null.String `json:"subject" db:"subject"`
	Message   string      `json:"message" db:"message"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}
