package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/lib/pq"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/dbHelpers"
	"github.com/simplymanage/simplymanage-server/middlewares"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/simplymanage/simplymanage-server/session"
	"github.com/simplymanage/simplymanage-server/utils"
	"github.com/sirupsen/logrus"
	"github.com/volatiletech/null"
)

const fkViolation = "23503"

// CreateItem creates a new catalog item
func CreateItem(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		Name        string      `json:"name"`
		SKU         string      `json:"sku"`
		Description null.String `json:"description"`
		MaxTimeOut  int         `json:"maxTimeOut"`
		Renewable   bool        `json:"renewable"`
		CategoryID  *int        `json:"categoryId"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.Name == "" || reqBody.SKU == "" || reqBody.MaxTimeOut < 1 {
		utils.RespondError(w, http.StatusBadRequest, errors.New("missing required field"), "Name, SKU and a positive loan period are required")
		return
	}

	db := database.Pool(database.RoleStaff)

	itemID, err := dbHelpers.InsertItem(db, reqBody.Name, reqBody.SKU, reqBody.Description, reqBody.MaxTimeOut, reqBody.Renewable, reqBody.CategoryID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to store item entry")
		return
	}

	item, err := dbHelpers.GetItemById(db, itemID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get item")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, item)
}

// UpdateItem updates an item from a multipart form, falling back to the
// stored values for fields the form leaves out. An uploaded image file
// replaces the image URL.
func UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given itemID to int")
		return
	}

	db := database.Pool(database.RoleStaff)

	oldItem, err := dbHelpers.GetItemForUpdate(db, itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "Item not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get item")
		return
	}

	name := oldItem.Name
	if v := r.FormValue("name"); v != "" {
		name = v
	}
	sku := oldItem.SKU
	if v := r.FormValue("sku"); v != "" {
		sku = v
	}
	description := oldItem.Description
	if v := r.FormValue("description"); v != "" {
		description = null.StringFrom(v)
	}
	maxTimeOut := oldItem.MaxTimeOut
	if v := r.FormValue("maxTimeOut"); v != "" {
		maxTimeOut, err = utils.StringToInt(v)
		if err != nil || maxTimeOut < 1 {
			utils.RespondError(w, http.StatusBadRequest, err, "Loan period must be a positive number of days")
			return
		}
	}
	renewable := oldItem.Renewable
	if v := r.FormValue("renewable"); v != "" {
		renewable = v == "1" || v == "true" || v == "yes" || v == "on"
	}
	var categoryID *int
	if oldItem.CategoryID.Valid {
		categoryID = &oldItem.CategoryID.Int
	}
	if v := r.FormValue("categoryId"); v != "" {
		parsed, err := utils.StringToInt(v)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given categoryId to int")
			return
		}
		categoryID = &parsed
	}

	imageURL := oldItem.ImageURL
	if v := r.FormValue("currentImageUrl"); v != "" {
		imageURL = null.StringFrom(v)
	}
	if uploaded, err := utils.SaveUploadedImage(r, "imageFile", itemID); err == nil {
		imageURL = null.StringFrom(uploaded)
	} else if err != http.ErrMissingFile {
		logrus.Errorf("failed to save uploaded image for item %d: %v", itemID, err)
	}

	if err := dbHelpers.ModifyItem(db, itemID, name, sku, description, imageURL, maxTimeOut, renewable, categoryID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to update item entry")
		return
	}

	item, err := dbHelpers.GetItemForUpdate(db, itemID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get item")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}

// DeactivateItem soft-deactivates an item so the catalog stops listing it
func DeactivateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given itemID to int")
		return
	}

	if err := dbHelpers.DeactivateItem(database.Pool(database.RoleStaff), itemID); err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "Item not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to deactivate item")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}

// GetItemAssets lists the physical assets of an item
func GetItemAssets(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given itemID to int")
		return
	}

	assets, err := dbHelpers.GetAssetsByItem(database.Pool(database.RoleStaff), itemID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get assets")
		return
	}
	utils.RespondJSON(w, http.StatusOK, assets)
}

// CreateAssets creates physical assets for an item
func CreateAssets(w http.ResponseWriter, r *http.Request) {
	itemID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given itemID to int")
		return
	}

	reqBody := struct {
		Count      int         `json:"count"`
		Condition  null.String `json:"condition"`
		LocationID *int        `json:"locationId"`
	}{Count: 1}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.Count < 1 || reqBody.Count > 100 {
		utils.RespondError(w, http.StatusBadRequest, errors.New("invalid count"), "Count must be between 1 and 100")
		return
	}

	assetIDs, err := dbHelpers.InsertAssets(database.Pool(database.RoleStaff), itemID, reqBody.Count, reqBody.Condition, reqBody.LocationID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to create assets")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, struct {
		AssetIDs []int `json:"assetIds"`
	}{AssetIDs: assetIDs})
}

// ModifyAsset updates an asset's condition, location or damaged/retired
// status. Loaned assets are owned by the loan lifecycle and refused here.
func ModifyAsset(w http.ResponseWriter, r *http.Request) {
	assetID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given assetID to int")
		return
	}

	reqBody := struct {
		Status     models.AssetStatus `json:"status"`
		Condition  null.String        `json:"condition"`
		LocationID *int               `json:"locationId"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	switch reqBody.Status {
	case models.AssetAvailable, models.AssetDamaged, models.AssetRetired:
	default:
		utils.RespondError(w, http.StatusBadRequest, errors.New("invalid status"), "Status must be available, damaged or retired")
		return
	}

	if err := dbHelpers.ModifyAsset(database.Pool(database.RoleStaff), assetID, reqBody.Status, reqBody.Condition, reqBody.LocationID); err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "Asset not found")
			return
		}
		if err == dbHelpers.ErrAssetLoaned {
			utils.RespondError(w, http.StatusConflict, err, "Asset is currently loaned")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to update asset")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}

// GetLocations lists the storage locations assets can be assigned to
func GetLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := dbHelpers.GetLocations(database.Pool(database.RoleStaff))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get locations")
		return
	}
	utils.RespondJSON(w, http.StatusOK, locations)
}

// CreateLocation creates a storage location
func CreateLocation(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		Name string `json:"name"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, errors.New("missing name"), "Location name is required")
		return
	}

	locationID, err := dbHelpers.InsertLocation(database.Pool(database.RoleStaff), reqBody.Name)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to store location entry")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, models.Location{ID: locationID, Name: reqBody.Name})
}

// GetAllUsers lists users with their loan counts
func GetAllUsers(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := utils.GetOffsetLimit(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to parse offset/limit")
		return
	}

	users, err := dbHelpers.GetAllUsers(database.Pool(database.RoleAdmin), offset, limit)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get users")
		return
	}
	utils.RespondJSON(w, http.StatusOK, users)
}

// SetUserActive activates or deactivates a user account. Deactivation
// revokes the user's sessions.
func SetUserActive(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given userID to int")
		return
	}

	reqBody := struct {
		Active bool `json:"active"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}

	admin := middlewares.UserContext(r)
	if userID == admin.ID && !reqBody.Active {
		utils.RespondError(w, http.StatusBadRequest, errors.New("self deactivation"), "You cannot deactivate your own account")
		return
	}

	if err := dbHelpers.SetUserActive(database.Pool(database.RoleAdmin), userID, reqBody.Active); err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "User not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to update user")
		return
	}

	if !reqBody.Active {
		if err := session.DefaultStore.RevokeAllForUser(r.Context(), userID); err != nil {
			logrus.Errorf("failed to revoke sessions for user %d: %v", userID, err)
		}
	}
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}

// DeleteUser removes a user account. Accounts referenced by loans cannot
// be deleted and get a clean conflict response instead of a raw database
// error.
func DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given userID to int")
		return
	}

	admin := middlewares.UserContext(r)
	if userID == admin.ID {
		utils.RespondError(w, http.StatusBadRequest, errors.New("self deletion"), "You cannot delete your own account")
		return
	}

	if err := dbHelpers.DeleteUser(database.Pool(database.RoleAdmin), userID); err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "User not found")
			return
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == fkViolation {
			utils.RespondError(w, http.StatusConflict, err, "Cannot delete a user with loan history, deactivate the account instead")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to delete user")
		return
	}

	if err := session.DefaultStore.RevokeAllForUser(r.Context(), userID); err != nil {
		logrus.Errorf("failed to revoke sessions for user %d: %v", userID, err)
	}
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}
