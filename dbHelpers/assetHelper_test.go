package dbHelpers

import (
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"
)

func TestModifyAssetUpdatesNonLoanedAsset(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec("UPDATE assets").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ModifyAsset(db, 9, models.AssetDamaged, null.StringFrom("cracked lens"), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyAssetUnknownIdIsNotFound(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec("UPDATE assets").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := ModifyAsset(db, 999, models.AssetRetired, null.String{}, nil)
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModifyAssetRefusesLoanedAsset(t *testing.T) {
	db, mock := mockDB(t)

	mock.ExpectExec("UPDATE assets").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := ModifyAsset(db, 9, models.AssetRetired, null.String{}, nil)
	assert.Equal(t, ErrAssetLoaned, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
