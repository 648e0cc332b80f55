package dbHelpers

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/models"
)

// IsEmailRegistered checks if a user exists with the given email, returning
// the user id or 0.
func IsEmailRegistered(db *sqlx.DB, email string) (int, error) {
	SQL := `SELECT u_id FROM users WHERE u_email = $1`
	var id int
	err := db.Get(&id, SQL, email)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return id, nil
}

// InsertUser creates a new user entry
func InsertUser(db *sqlx.DB, fname, lname, email, passwordHash string, role models.UserRole) (int, error) {
	SQL := `INSERT INTO users(u_fname, u_lname, u_email, u_password, u_role, u_active)
			VALUES ($1, $2, $3, $4, $5, TRUE) RETURNING u_id`
	var userID int
	err := db.Get(&userID, SQL, fname, lname, email, passwordHash, role)
	return userID, err
}

// GetUserByEmail returns the full user row including the password hash,
// for login verification.
func GetUserByEmail(db *sqlx.DB, email string) (*models.User, error) {
	SQL := `SELECT
				u_id,
				u_fname,
				u_lname,
				u_email,
				u_password,
				u_role,
				u_active,
				created_at
			FROM users
			WHERE u_email = $1`

	var user models.User
	err := db.Get(&user, SQL, email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserById returns the user details for a given id
func GetUserById(db *sqlx.DB, userID int) (*models.User, error) {
	SQL := `SELECT
				u_id,
				u_fname,
				u_lname,
				u_email,
				u_password,
				u_role,
				u_active,
				created_at
			FROM users
			WHERE u_id = $1`

	var user models.User
	err := db.Get(&user, SQL, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword stores a new password hash for the user
func UpdatePassword(db *sqlx.DB, userID int, passwordHash string) error {
	SQL := `UPDATE users SET u_password = $1 WHERE u_id = $2`
	_, err := db.Exec(SQL, passwordHash, userID)
	return err
}

// GetAllUsers returns all users with their loan counts, newest first
func GetAllUsers(db *sqlx.DB, offset, limit int) ([]models.UserListEntry, error) {
	SQL := `SELECT u.u_id,
				   u.u_fname,
				   u.u_lname,
				   u.u_email,
				   u.u_role,
				   u.u_active,
				   COUNT(l.l_id) FILTER (WHERE l.l_status IN ($3, $4, $5)) AS open_loans,
				   COUNT(l.l_id)                                           AS total_loans,
				   MAX(l.created_at)                                       AS last_loan_at
			FROM users u
					 LEFT JOIN loans l ON l.u_id = u.u_id
			GROUP BY u.u_id
			ORDER BY u.created_at DESC
			OFFSET $1 LIMIT $2`

	users := make([]models.UserListEntry, 0)
	err := db.Select(&users, SQL, offset, limit, models.LoanPending, models.LoanActive, models.LoanOverdue)
	return users, err
}

// SetUserActive flips the active flag for a user account
func SetUserActive(db *sqlx.DB, userID int, active bool) error {
	SQL := `UPDATE users SET u_active = $1 WHERE u_id = $2`
	result, err := db.Exec(SQL, active, userID)
	if err != nil {
		return err
	}
	affectedCount, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affectedCount == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteUser removes a user row. Users referenced by loans fail the foreign
// key and the handler maps that to a "cannot delete" message.
func DeleteUser(db *sqlx.DB, userID int) error {
	return database.Tx(db, func(tx *sqlx.Tx) error {
		SQL := `DELETE FROM users WHERE u_id = $1`
		result, err := tx.Exec(SQL, userID)
		if err != nil {
			return err
		}
		affectedCount, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affectedCount == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
