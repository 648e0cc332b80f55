package dbHelpers

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/sirupsen/logrus"
)

// GetCategories returns all categories ordered by name
func GetCategories(db *sqlx.DB) ([]models.Category, error) {
	SQL := `SELECT
				cat_id,
				cat_name,
				cat_parent_id
			FROM categories
			ORDER BY cat_name ASC`

	categories := make([]models.Category, 0)
	err := db.Select(&categories, SQL)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategoryById gets the category details for a given id
func GetCategoryById(db *sqlx.DB, categoryID int) (*models.Category, error) {
	SQL := `SELECT
				cat_id,
				cat_name,
				cat_parent_id
			FROM categories
			WHERE cat_id = $1`

	var category models.Category
	err := db.Get(&category, SQL, categoryID)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// InsertCategory creates a new category entry in table
func InsertCategory(db *sqlx.DB, name string, parentID *int) (int, error) {
	SQL := `INSERT INTO categories(cat_name, cat_parent_id) VALUES ($1, $2) RETURNING cat_id`
	var categoryID int
	err := db.Get(&categoryID, SQL, name, parentID)
	return categoryID, err
}

// ModifyCategory renames and/or reparents a given category
func ModifyCategory(db *sqlx.DB, categoryID int, name string, parentID *int) error {
	SQL := `UPDATE categories SET cat_name = $1, cat_parent_id = $2 WHERE cat_id = $3`
	result, err := db.Exec(SQL, name, parentID, categoryID)
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

// CascadeDeleteCategory deletes a category with all its descendants and
// reassigns the subtree's items to the deleted category's parent (or NULL),
// all inside one transaction.
func CascadeDeleteCategory(db *sqlx.DB, categoryID int) error {
	return database.Tx(db, func(tx *sqlx.Tx) error {
		var category models.Category
		SQL := `SELECT cat_id, cat_name, cat_parent_id FROM categories WHERE cat_id = $1`
		if err := tx.Get(&category, SQL, categoryID); err != nil {
			return err
		}

		all := make([]models.Category, 0)
		SQL = `SELECT cat_id, cat_name, cat_parent_id FROM categories`
		if err := tx.Select(&all, SQL); err != nil {
			return err
		}

		doomed := DescendantIDs(categoryID, all)
		doomed = append(doomed, categoryID)

		var newParent interface{}
		if category.ParentID.Valid {
			newParent = category.ParentID.Int
		}
		SQL = `UPDATE items SET cat_id = $1 WHERE cat_id = ANY($2)`
		if _, err := tx.Exec(SQL, newParent, pq.Array(doomed)); err != nil {
			return err
		}

		SQL = `DELETE FROM categories WHERE cat_id = ANY($1)`
		result, err := tx.Exec(SQL, pq.Array(doomed))
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

// DescendantIDs walks the flat parent-pointer rows and collects every
// descendant of the given category. The visited set bounds the walk, a
// cycle in the parent chain is a data-integrity error, not a hang.
func DescendantIDs(categoryID int, all []models.Category) []int {
	descendants := make([]int, 0)
	visited := map[int]bool{categoryID: true}

	var findChildren func(parentID int)
	findChildren = func(parentID int) {
		for _, cat := range all {
			if !cat.ParentID.Valid || cat.ParentID.Int != parentID {
				continue
			}
			if visited[cat.ID] {
				logrus.Errorf("category tree cycle detected at cat_id=%d", cat.ID)
				continue
			}
			visited[cat.ID] = true
			descendants = append(descendants, cat.ID)
			findChildren(cat.ID)
		}
	}

	findChildren(categoryID)
	return descendants
}

// BuildCategoryTree assembles the rooted forest from flat rows. Nodes whose
// parent is missing or already claimed (cycle) are treated as roots.
func BuildCategoryTree(categories []models.Category) []*models.CategoryNode {
	nodes := make(map[int]*models.CategoryNode, len(categories))
	for _, cat := range categories {
		nodes[cat.ID] = &models.CategoryNode{Category: cat, Children: []*models.CategoryNode{}}
	}

	tree := make([]*models.CategoryNode, 0)
	for _, cat := range categories {
		node := nodes[cat.ID]
		if !cat.ParentID.Valid {
			tree = append(tree, node)
			continue
		}
		parent, ok := nodes[cat.ParentID.Int]
		if !ok || cat.ParentID.Int == cat.ID {
			tree = append(tree, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	return tree
}

// FlattenTree produces the depth-annotated pre-order sequence of the forest
// for indented list display.
func FlattenTree(tree []*models.CategoryNode) []models.FlatCategory {
	flat := make([]models.FlatCategory, 0)
	seen := map[int]bool{}

	var walk func(nodes []*models.CategoryNode, depth int)
	walk = func(nodes []*models.CategoryNode, depth int) {
		for _, node := range nodes {
			if seen[node.ID] {
				logrus.Errorf("category tree cycle detected at cat_id=%d", node.ID)
				continue
			}
			seen[node.ID] = true
			flat = append(flat, models.FlatCategory{Category: node.Category, Depth: depth})
			walk(node.Children, depth+1)
		}
	}

	walk(tree, 0)
	return flat
}
