package dbHelpers

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/volatiletech/null"
)

// GetCatalog returns active items with their availability counts, filtered
// by free-text search and an optional category id set (the requested
// category plus its descendants). The available-only predicate must run
// after aggregation, so it lands in HAVING.
func GetCatalog(db *sqlx.DB, filter models.CatalogFilter, categoryIDs []int) ([]models.Item, error) {
	SQL := `SELECT i.it_id,
				   i.it_name,
				   i.it_sku,
				   i.it_description,
				   i.it_image_url,
				   i.it_max_time_out,
				   i.it_renewable,
				   i.it_active,
				   i.cat_id,
				   c.cat_name,
				   i.created_at,
				   COUNT(a.a_id) FILTER (WHERE a.a_status = $1) AS available_count,
				   COUNT(a.a_id)                                AS total_count
			FROM items i
					 LEFT JOIN categories c ON i.cat_id = c.cat_id
					 LEFT JOIN assets a ON i.it_id = a.it_id
			WHERE i.it_active = TRUE `

	args := []interface{}{models.AssetAvailable}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		SQL += fmt.Sprintf(`AND (i.it_name ILIKE $%d OR i.it_description ILIKE $%d OR i.it_sku ILIKE $%d) `, len(args), len(args), len(args))
	}

	if len(categoryIDs) > 0 {
		args = append(args, pq.Array(categoryIDs))
		SQL += fmt.Sprintf(`AND i.cat_id = ANY($%d) `, len(args))
	}

	SQL += `GROUP BY i.it_id, c.cat_name `

	if filter.OnlyAvailable {
		SQL += `HAVING COUNT(a.a_id) FILTER (WHERE a.a_status = $1) > 0 `
	}

	SQL += `ORDER BY i.it_name ASC`

	items := make([]models.Item, 0)
	err := db.Select(&items, SQL, args...)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemsByIds resolves a set of item ids against the catalog with their
// availability counts, used by the cart view. Inactive items drop out.
func GetItemsByIds(db *sqlx.DB, itemIDs []int) ([]models.Item, error) {
	SQL := `SELECT i.it_id,
				   i.it_name,
				   i.it_sku,
				   i.it_description,
				   i.it_image_url,
				   i.it_max_time_out,
				   i.it_renewable,
				   i.it_active,
				   i.cat_id,
				   c.cat_name,
				   i.created_at,
				   COUNT(a.a_id) FILTER (WHERE a.a_status = $1) AS available_count,
				   COUNT(a.a_id)                                AS total_count
			FROM items i
					 LEFT JOIN categories c ON i.cat_id = c.cat_id
					 LEFT JOIN assets a ON i.it_id = a.it_id
			WHERE i.it_active = TRUE
			  AND i.it_id = ANY($2)
			GROUP BY i.it_id, c.cat_name
			ORDER BY i.it_name ASC`

	items := make([]models.Item, 0)
	err := db.Select(&items, SQL, models.AssetAvailable, pq.Array(itemIDs))
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetItemById gets an active item with its counts for a given id
func GetItemById(db *sqlx.DB, itemID int) (*models.Item, error) {
	SQL := `SELECT i.it_id,
				   i.it_name,
				   i.it_sku,
				   i.it_description,
				   i.it_image_url,
				   i.it_max_time_out,
				   i.it_renewable,
				   i.it_active,
				   i.cat_id,
				   c.cat_name,
				   i.created_at,
				   COUNT(a.a_id) FILTER (WHERE a.a_status = $1) AS available_count,
				   COUNT(a.a_id)                                AS total_count
			FROM items i
					 LEFT JOIN categories c ON i.cat_id = c.cat_id
					 LEFT JOIN assets a ON i.it_id = a.it_id
			WHERE i.it_active = TRUE
			  AND i.it_id = $2
			GROUP BY i.it_id, c.cat_name`

	var item models.Item
	err := db.Get(&item, SQL, models.AssetAvailable, itemID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// InsertItem creates a new item entry in table
func InsertItem(db *sqlx.DB, name, sku string, description null.String, maxTimeOut int, renewable bool, categoryID *int) (int, error) {
	SQL := `INSERT INTO items(it_name, it_sku, it_description, it_max_time_out, it_renewable, it_active, cat_id)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6) RETURNING it_id`
	var itemID int
	err := db.Get(&itemID, SQL, name, sku, description, maxTimeOut, renewable, categoryID)
	return itemID, err
}

// ModifyItem updates a given item in table
func ModifyItem(db *sqlx.DB, itemID int, name, sku string, description, imageURL null.String, maxTimeOut int, renewable bool, categoryID *int) error {
	SQL := `UPDATE items
			SET it_name         = $1,
				it_sku          = $2,
				it_description  = $3,
				it_image_url    = $4,
				it_max_time_out = $5,
				it_renewable    = $6,
				cat_id          = $7
			WHERE it_id = $8`
	result, err := db.Exec(SQL, name, sku, description, imageURL, maxTimeOut, renewable, categoryID, itemID)
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

// GetItemForUpdate returns the raw item row regardless of active flag, so
// admin edits can fall back to prior values.
func GetItemForUpdate(db *sqlx.DB, itemID int) (*models.Item, error) {
	SQL := `SELECT it_id,
				   it_name,
				   it_sku,
				   it_description,
				   it_image_url,
				   it_max_time_out,
				   it_renewable,
				   it_active,
				   cat_id,
				   created_at
			FROM items
			WHERE it_id = $1`

	var item models.Item
	err := db.Get(&item, SQL, itemID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeactivateItem soft-deactivates a given item, the catalog stops listing
// it but nothing is physically deleted.
func DeactivateItem(db *sqlx.DB, itemID int) error {
	SQL := `UPDATE items
			SET it_active = FALSE
			WHERE it_active = TRUE
			AND it_id = $1`
	result, err := db.Exec(SQL, itemID)
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
