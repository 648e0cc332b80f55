package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/dbHelpers"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/simplymanage/simplymanage-server/utils"
)

// GetAllCategories returns the flattened, depth-annotated category list
// along with the nested tree for select menus.
func GetAllCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := dbHelpers.GetCategories(database.Pool(database.RoleStaff))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get category entries")
		return
	}

	tree := dbHelpers.BuildCategoryTree(categories)
	utils.RespondJSON(w, http.StatusOK, struct {
		Categories []models.FlatCategory  `json:"categories"`
		Tree       []*models.CategoryNode `json:"tree"`
	}{Categories: dbHelpers.FlattenTree(tree), Tree: tree})
}

func parseCategoryBody(r *http.Request) (string, *int, error) {
	reqBody := struct {
		Name     string `json:"name"`
		ParentID *int   `json:"parentId"`
	}{}
	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		return "", nil, err
	}
	if reqBody.Name == "" {
		return "", nil, errors.New("category name is required")
	}
	return reqBody.Name, reqBody.ParentID, nil
}

// CreateCategory creates a category, optionally under a parent
func CreateCategory(w http.ResponseWriter, r *http.Request) {
	name, parentID, err := parseCategoryBody(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}

	db := database.Pool(database.RoleStaff)

	categoryID, err := dbHelpers.InsertCategory(db, name, parentID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to store category entry")
		return
	}

	category, err := dbHelpers.GetCategoryById(db, categoryID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get category")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, category)
}

// ModifyCategory renames or reparents a category
func ModifyCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given categoryID to int")
		return
	}

	name, parentID, err := parseCategoryBody(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if parentID != nil && *parentID == categoryID {
		utils.RespondError(w, http.StatusBadRequest, errors.New("category cannot be its own parent"), "Category cannot be its own parent")
		return
	}

	db := database.Pool(database.RoleStaff)

	if err := dbHelpers.ModifyCategory(db, categoryID, name, parentID); err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "Category not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to update category entry")
		return
	}

	category, err := dbHelpers.GetCategoryById(db, categoryID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get category")
		return
	}
	utils.RespondJSON(w, http.StatusOK, category)
}

// DeleteCategory cascade-deletes a category subtree, reassigning its items
// to the deleted category's parent.
func DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given categoryID to int")
		return
	}

	if err := dbHelpers.CascadeDeleteCategory(database.Pool(database.RoleStaff), categoryID); err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "Category not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to delete category")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}
