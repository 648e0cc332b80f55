package dbHelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null"
)

// InsertContactTicket stores a contact ticket, with a null user id for
// anonymous submissions.
func InsertContactTicket(db *sqlx.DB, userID null.Int, fname, lname null.String, email string, subject null.String, message string) (int, error) {
	SQL := `INSERT INTO contact_tickets(user_id, c_fname, c_lname, c_email, subject, message)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING ct_id`
	var ticketID int
	err := db.Get(&ticketID, SQL, userID, fname, lname, email, subject, message)
	return ticketID, err
}
