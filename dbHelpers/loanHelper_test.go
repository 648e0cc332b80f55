package dbHelpers

import (
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestCreateLoanWithAllocationFullFulfillment(t *testing.T) {
	db, mock := mockDB(t)
	dueAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO loans").
		WithArgs(7, models.LoanPending, dueAt).
		WillReturnRows(sqlmock.NewRows([]string{"l_id"}).AddRow(41))
	mock.ExpectQuery("SELECT a_id").
		WithArgs(3, models.AssetAvailable, 2).
		WillReturnRows(sqlmock.NewRows([]string{"a_id"}).AddRow(101).AddRow(102))
	mock.ExpectExec("INSERT INTO loan_details").
		WithArgs(41, 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loan_details").
		WithArgs(41, 102).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE assets").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	loanID, shortfalls, err := CreateLoanWithAllocation(db, 7, dueAt,
		[]models.LoanRequestLine{{ItemID: 3, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 41, loanID)
	assert.Empty(t, shortfalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLoanWithAllocationShortfall(t *testing.T) {
	db, mock := mockDB(t)
	dueAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO loans").
		WillReturnRows(sqlmock.NewRows([]string{"l_id"}).AddRow(42))
	mock.ExpectQuery("SELECT a_id").
		WithArgs(3, models.AssetAvailable, 3).
		WillReturnRows(sqlmock.NewRows([]string{"a_id"}).AddRow(101))
	mock.ExpectExec("INSERT INTO loan_details").
		WithArgs(42, 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE assets").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	loanID, shortfalls, err := CreateLoanWithAllocation(db, 7, dueAt,
		[]models.LoanRequestLine{{ItemID: 3, Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, 42, loanID)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, models.AllocationShortfall{ItemID: 3, Requested: 3, Allocated: 1}, shortfalls[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLoanWithAllocationZeroAssetsStillCreatesLoan(t *testing.T) {
	db, mock := mockDB(t)
	dueAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO loans").
		WillReturnRows(sqlmock.NewRows([]string{"l_id"}).AddRow(43))
	mock.ExpectQuery("SELECT a_id").
		WithArgs(5, models.AssetAvailable, 2).
		WillReturnRows(sqlmock.NewRows([]string{"a_id"}))
	// no detail inserts and no asset update for an empty allocation
	mock.ExpectCommit()

	loanID, shortfalls, err := CreateLoanWithAllocation(db, 7, dueAt,
		[]models.LoanRequestLine{{ItemID: 5, Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 43, loanID)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, models.AllocationShortfall{ItemID: 5, Requested: 2, Allocated: 0}, shortfalls[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLoanWithAllocationReservationMismatchFails(t *testing.T) {
	db, mock := mockDB(t)
	dueAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO loans").
		WillReturnRows(sqlmock.NewRows([]string{"l_id"}).AddRow(44))
	mock.ExpectQuery("SELECT a_id").
		WithArgs(3, models.AssetAvailable, 2).
		WillReturnRows(sqlmock.NewRows([]string{"a_id"}).AddRow(101).AddRow(102))
	mock.ExpectExec("INSERT INTO loan_details").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO loan_details").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE assets").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, _, err := CreateLoanWithAllocation(db, 7, dueAt,
		[]models.LoanRequestLine{{ItemID: 3, Quantity: 2}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectLoanReleasesAssetsOnce(t *testing.T) {
	db, mock := mockDB(t)

	// first reject flips the loan and releases its assets
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loans").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE assets").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, RejectLoan(db, 41))

	// a retry finds no pending row, the release must not run again
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loans").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(41).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	assert.Equal(t, ErrLoanWrongState, RejectLoan(db, 41))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckInLoanRefusesRejectedLoan(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loans").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(55).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	assert.Equal(t, ErrLoanWrongState, CheckInLoan(db, 55))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionUnknownLoanIsNotFound(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loans").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	assert.Equal(t, sql.ErrNoRows, ApproveLoan(db, 999))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveLoanStampsCheckout(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE loans SET l_status = .., l_checked_out_at = NOW").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, ApproveLoan(db, 41))
	assert.NoError(t, mock.ExpectationsWereMet())
}
