package dbHelpers

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/volatiletech/null"
)

// ErrAssetLoaned reports an edit against an asset that is reserved by an
// open loan. Releasing it belongs to the loan lifecycle, not to asset
// administration.
var ErrAssetLoaned = errors.New("asset is currently loaned")

// GetAssetsByItem returns all physical assets of an item
func GetAssetsByItem(db *sqlx.DB, itemID int) ([]models.Asset, error) {
	SQL := `SELECT a_id,
				   it_id,
				   a_status,
				   a_condition,
				   loc_id,
				   created_at
			FROM assets
			WHERE it_id = $1
			ORDER BY a_id ASC`

	assets := make([]models.Asset, 0)
	err := db.Select(&assets, SQL, itemID)
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// InsertAssets creates count physical assets for an item in one transaction
func InsertAssets(db *sqlx.DB, itemID, count int, condition null.String, locationID *int) ([]int, error) {
	assetIDs := make([]int, 0, count)
	txError := database.Tx(db, func(tx *sqlx.Tx) error {
		SQL := `INSERT INTO assets(it_id, a_status, a_condition, loc_id)
				VALUES ($1, $2, $3, $4) RETURNING a_id`
		for i := 0; i < count; i++ {
			var assetID int
			if err := tx.Get(&assetID, SQL, itemID, models.AssetAvailable, condition, locationID); err != nil {
				return err
			}
			assetIDs = append(assetIDs, assetID)
		}
		return nil
	})
	if txError != nil {
		return nil, txError
	}
	return assetIDs, nil
}

// GetLocations returns all storage locations ordered by name
func GetLocations(db *sqlx.DB) ([]models.Location, error) {
	SQL := `SELECT loc_id, loc_name FROM locations ORDER BY loc_name ASC`

	locations := make([]models.Location, 0)
	err := db.Select(&locations, SQL)
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// InsertLocation creates a new storage location
func InsertLocation(db *sqlx.DB, name string) (int, error) {
	SQL := `INSERT INTO locations(loc_name) VALUES ($1) RETURNING loc_id`
	var locationID int
	err := db.Get(&locationID, SQL, name)
	return locationID, err
}

// ModifyAsset updates an asset's condition, location and status. Status
// edits are for damaged/retired bookkeeping, loaned flips belong to the
// loan lifecycle and are refused so an open loan's reservation cannot be
// clobbered from the admin side.
func ModifyAsset(db *sqlx.DB, assetID int, status models.AssetStatus, condition null.String, locationID *int) error {
	SQL := `UPDATE assets
			SET a_status    = $1,
				a_condition = $2,
				loc_id      = $3
			WHERE a_id = $4
			  AND a_status <> $5
			  AND $1 <> $5`
	result, err := db.Exec(SQL, status, condition, locationID, assetID, models.AssetLoaned)
	if err != nil {
		return err
	}
	affectedCount, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affectedCount == 0 {
		var exists bool
		if err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM assets WHERE a_id = $1)`, assetID); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrAssetLoaned
	}
	return nil
}
