package handlers

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/dbHelpers"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/simplymanage/simplymanage-server/utils"
)

// GetCatalog returns active items with availability counts, filtered by
// free-text search, category subtree and an available-only flag, plus the
// category tree for the filter menu.
func GetCatalog(w http.ResponseWriter, r *http.Request) {
	db := database.Pool(database.RoleUser)

	filter := models.CatalogFilter{
		Search:        r.URL.Query().Get("search"),
		OnlyAvailable: r.URL.Query().Get("showOnlyAvailable") == "true",
	}

	categories, err := dbHelpers.GetCategories(db)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get categories")
		return
	}

	var categoryIDs []int
	if raw := r.URL.Query().Get("category"); raw != "" {
		categoryID, err := utils.StringToInt(raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given category to int")
			return
		}
		filter.CategoryID = categoryID
		categoryIDs = append(dbHelpers.DescendantIDs(categoryID, categories), categoryID)
	}

	items, err := dbHelpers.GetCatalog(db, filter, categoryIDs)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get items")
		return
	}

	utils.RespondJSON(w, http.StatusOK, struct {
		Items      []models.Item          `json:"items"`
		Categories []*models.CategoryNode `json:"categories"`
	}{
		Items:      items,
		Categories: dbHelpers.BuildCategoryTree(categories),
	})
}

// GetItemInfo returns a single active item with its counts
func GetItemInfo(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given itemID to int")
		return
	}

	item, err := dbHelpers.GetItemById(database.Pool(database.RoleUser), itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "Item not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get item")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
