package dbHelpers

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/sirupsen/logrus"
)

// ErrLoanWrongState reports a lifecycle action against a loan that is not
// in an allowed source state. Retrying an already-applied transition lands
// here, which keeps approve/reject/check-in idempotent.
var ErrLoanWrongState = errors.New("loan is not in a state that allows this action")

// CreateLoanWithAllocation converts cart lines into one pending loan inside
// a single transaction. Candidate assets are claimed with FOR UPDATE SKIP
// LOCKED, so two concurrent checkouts can never reserve the same asset.
// When an item has fewer available assets than requested the loan proceeds
// with what was found and the shortfall is reported, not failed.
func CreateLoanWithAllocation(db *sqlx.DB, userID int, dueAt time.Time, lines []models.LoanRequestLine) (int, []models.AllocationShortfall, error) {
	var loanID int
	shortfalls := make([]models.AllocationShortfall, 0)

	txError := database.Tx(db, func(tx *sqlx.Tx) error {
		SQL := `INSERT INTO loans(u_id, l_status, l_checked_out_at, l_due_at)
				VALUES ($1, $2, NULL, $3) RETURNING l_id`
		if err := tx.Get(&loanID, SQL, userID, models.LoanPending, dueAt); err != nil {
			return errors.Wrap(err, "failed to create loan")
		}

		for _, line := range lines {
			assetIDs := make([]int, 0, line.Quantity)
			SQL = `SELECT a_id
				   FROM assets
				   WHERE it_id = $1
					 AND a_status = $2
				   LIMIT $3 FOR UPDATE SKIP LOCKED`
			if err := tx.Select(&assetIDs, SQL, line.ItemID, models.AssetAvailable, line.Quantity); err != nil {
				return errors.Wrapf(err, "failed to find assets for item %d", line.ItemID)
			}

			if len(assetIDs) < line.Quantity {
				logrus.Warnf("not enough assets for item %d. requested: %d, found: %d",
					line.ItemID, line.Quantity, len(assetIDs))
				shortfalls = append(shortfalls, models.AllocationShortfall{
					ItemID:    line.ItemID,
					Requested: line.Quantity,
					Allocated: len(assetIDs),
				})
			}
			if len(assetIDs) == 0 {
				continue
			}

			for _, assetID := range assetIDs {
				SQL = `INSERT INTO loan_details(l_id, a_id) VALUES ($1, $2)`
				if _, err := tx.Exec(SQL, loanID, assetID); err != nil {
					return errors.Wrapf(err, "failed to link asset %d to loan %d", assetID, loanID)
				}
			}

			SQL = `UPDATE assets SET a_status = $1 WHERE a_id = ANY($2) AND a_status = $3`
			result, err := tx.Exec(SQL, models.AssetLoaned, pq.Array(assetIDs), models.AssetAvailable)
			if err != nil {
				return errors.Wrapf(err, "failed to reserve assets for item %d", line.ItemID)
			}
			affectedCount, err := result.RowsAffected()
			if err != nil {
				return err
			}
			if affectedCount != int64(len(assetIDs)) {
				// the row locks make this unreachable, treat it as fatal
				return errors.Errorf("reserved %d of %d assets for item %d", affectedCount, len(assetIDs), line.ItemID)
			}
		}
		return nil
	})
	if txError != nil {
		return 0, nil, txError
	}
	return loanID, shortfalls, nil
}

// transitionLoan performs one conditional status transition and, when asked,
// releases the loan's assets. The asset lookup is scoped strictly to this
// loan's detail rows, so re-running against a finished loan can never free
// another loan's reservations.
func transitionLoan(db *sqlx.DB, loanID int, to models.LoanStatus, stamp string, releaseAssets bool) error {
	return database.Tx(db, func(tx *sqlx.Tx) error {
		from := pq.Array(loanStatusStrings(models.TransitionSources(to)))
		SQL := `UPDATE loans SET l_status = $1` + stamp + ` WHERE l_id = $2 AND l_status = ANY($3)`
		result, err := tx.Exec(SQL, to, loanID, from)
		if err != nil {
			return err
		}
		affectedCount, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affectedCount == 0 {
			var exists bool
			if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM loans WHERE l_id = $1)`, loanID); err != nil {
				return err
			}
			if !exists {
				return sql.ErrNoRows
			}
			return ErrLoanWrongState
		}

		if releaseAssets {
			SQL = `UPDATE assets
				   SET a_status = $1
				   WHERE a_status = $2
					 AND a_id IN (SELECT a_id FROM loan_details WHERE l_id = $3)`
			if _, err := tx.Exec(SQL, models.AssetAvailable, models.AssetLoaned, loanID); err != nil {
				return errors.Wrapf(err, "failed to release assets of loan %d", loanID)
			}
		}
		return nil
	})
}

func loanStatusStrings(statuses []models.LoanStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// ApproveLoan moves a pending loan to active and stamps the checkout time.
// The assets stay loaned, reservation happened at checkout.
func ApproveLoan(db *sqlx.DB, loanID int) error {
	return transitionLoan(db, loanID, models.LoanActive, `, l_checked_out_at = NOW()`, false)
}

// RejectLoan moves a pending loan to rejected and frees its reserved assets.
func RejectLoan(db *sqlx.DB, loanID int) error {
	return transitionLoan(db, loanID, models.LoanRejected, ``, true)
}

// CheckInLoan closes an active or overdue loan, stamps the check-in time
// and frees its assets.
func CheckInLoan(db *sqlx.DB, loanID int) error {
	return transitionLoan(db, loanID, models.LoanClosed, `, l_checked_in_at = NOW()`, true)
}

// MarkOverdueLoans flips active loans past their due date to overdue and
// returns how many were affected.
func MarkOverdueLoans(db *sqlx.DB) (int64, error) {
	SQL := `UPDATE loans SET l_status = $1 WHERE l_status = $2 AND l_due_at < NOW()`
	result, err := db.Exec(SQL, models.LoanOverdue, models.LoanActive)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetPendingLoans returns pending loans with borrower identity and item
// count, oldest first, for the staff dashboard.
func GetPendingLoans(db *sqlx.DB) ([]models.LoanSummary, error) {
	SQL := `SELECT l.l_id,
				   l.l_status,
				   l.l_checked_out_at,
				   l.l_due_at,
				   l.created_at,
				   u.u_fname,
				   u.u_lname,
				   u.u_email,
				   COUNT(ld.a_id)  AS item_count,
				   FALSE           AS is_overdue
			FROM loans l
					 JOIN users u ON l.u_id = u.u_id
					 LEFT JOIN loan_details ld ON l.l_id = ld.l_id
			WHERE l.l_status = $1
			GROUP BY l.l_id, u.u_fname, u.u_lname, u.u_email
			ORDER BY l.created_at ASC`

	loans := make([]models.LoanSummary, 0)
	err := db.Select(&loans, SQL, models.LoanPending)
	return loans, err
}

// GetCurrentLoans returns open (active/overdue) loans with an is_overdue
// flag, due date ascending.
func GetCurrentLoans(db *sqlx.DB) ([]models.LoanSummary, error) {
	SQL := `SELECT l.l_id,
				   l.l_status,
				   l.l_checked_out_at,
				   l.l_due_at,
				   l.created_at,
				   u.u_fname,
				   u.u_lname,
				   u.u_email,
				   COUNT(ld.a_id)            AS item_count,
				   (l.l_due_at < NOW())      AS is_overdue
			FROM loans l
					 JOIN users u ON l.u_id = u.u_id
					 LEFT JOIN loan_details ld ON l.l_id = ld.l_id
			WHERE l.l_status IN ($1, $2)
			GROUP BY l.l_id, u.u_fname, u.u_lname, u.u_email
			ORDER BY l.l_due_at ASC`

	loans := make([]models.LoanSummary, 0)
	err := db.Select(&loans, SQL, models.LoanActive, models.LoanOverdue)
	return loans, err
}

// GetLoanWithLines returns one loan with borrower identity and its reserved
// asset lines. A non-nil userID scopes the lookup to that borrower.
func GetLoanWithLines(db *sqlx.DB, loanID int, userID *int) (*models.Loan, error) {
	SQL := `SELECT l.l_id,
				   l.u_id,
				   l.l_status,
				   l.l_checked_out_at,
				   l.l_due_at,
				   l.l_checked_in_at,
				   l.created_at,
				   u.u_fname,
				   u.u_lname,
				   u.u_email
			FROM loans l
					 JOIN users u ON l.u_id = u.u_id
			WHERE l.l_id = $1`

	args := []interface{}{loanID}
	if userID != nil {
		SQL += ` AND l.u_id = $2`
		args = append(args, *userID)
	}

	var loan models.Loan
	if err := db.Get(&loan, SQL, args...); err != nil {
		return nil, err
	}

	SQL = `SELECT ld.l_id,
				  a.a_id,
				  a.a_condition,
				  i.it_id,
				  i.it_name,
				  i.it_sku
		   FROM loan_details ld
					JOIN assets a ON ld.a_id = a.a_id
					JOIN items i ON a.it_id = i.it_id
		   WHERE ld.l_id = $1
		   ORDER BY a.a_id ASC`

	loan.Lines = make([]models.LoanLine, 0)
	if err := db.Select(&loan.Lines, SQL, loanID); err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetLoansForUser returns the borrower's own loans, newest first, each with
// its asset lines.
func GetLoansForUser(db *sqlx.DB, userID, offset, limit int) ([]models.Loan, error) {
	SQL := `SELECT l.l_id,
				   l.u_id,
				   l.l_status,
				   l.l_checked_out_at,
				   l.l_due_at,
				   l.l_checked_in_at,
				   l.created_at
			FROM loans l
			WHERE l.u_id = $1
			ORDER BY l.created_at DESC
			OFFSET $2 LIMIT $3`

	loans := make([]models.Loan, 0)
	if err := db.Select(&loans, SQL, userID, offset, limit); err != nil {
		return nil, err
	}

	for i := range loans {
		SQL = `SELECT ld.l_id,
					  a.a_id,
					  a.a_condition,
					  i.it_id,
					  i.it_name,
					  i.it_sku
			   FROM loan_details ld
						JOIN assets a ON ld.a_id = a.a_id
						JOIN items i ON a.it_id = i.it_id
			   WHERE ld.l_id = $1
			   ORDER BY a.a_id ASC`
		loans[i].Lines = make([]models.LoanLine, 0)
		if err := db.Select(&loans[i].Lines, SQL, loans[i].ID); err != nil {
			logrus.Errorf("failed to fetch loan lines for l_id: %d error: %v", loans[i].ID, err)
		}
	}
	return loans, nil
}
