package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/dbHelpers"
	"github.com/simplymanage/simplymanage-server/middlewares"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/simplymanage/simplymanage-server/session"
	"github.com/simplymanage/simplymanage-server/utils"
)

const dateLayout = "2006-01-02"

// GetCart resolves the session cart against the catalog and computes the
// checkout date constraints.
func GetCart(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionContext(r)

	view := models.CartView{
		Items: make([]models.CartItem, 0),
		Today: time.Now().Format(dateLayout),
	}

	if len(sess.Cart) > 0 {
		itemIDs := make([]int, 0, len(sess.Cart))
		for _, line := range sess.Cart {
			itemIDs = append(itemIDs, line.ItemID)
		}

		items, err := dbHelpers.GetItemsByIds(database.Pool(database.RoleUser), itemIDs)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, err, "Failed to load cart")
			return
		}
		for _, item := range items {
			view.Items = append(view.Items, models.CartItem{
				Item:     item,
				Quantity: sess.Cart.Quantity(item.ID),
			})
		}
		view.MinMaxTimeOut, view.MaxReturnDate = models.CheckoutWindow(view.Items, time.Now())
	}

	utils.RespondJSON(w, http.StatusOK, view)
}

// AddToCart merges an (item, quantity) pair into the session cart
func AddToCart(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionContext(r)

	reqBody := struct {
		ItemID   int `json:"itemId"`
		Quantity int `json:"quantity"`
	}{Quantity: 1}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.ItemID <= 0 || reqBody.Quantity < 1 {
		utils.RespondError(w, http.StatusBadRequest, errors.New("invalid item or quantity"), "Item and a positive quantity are required")
		return
	}

	sess.Cart = sess.Cart.Add(reqBody.ItemID, reqBody.Quantity)
	if err := session.DefaultStore.Save(r.Context(), sess); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to save cart")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess.Cart)
}

// RemoveFromCart drops an item's line from the session cart, a no-op when
// the item is absent.
func RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionContext(r)

	reqBody := struct {
		ItemID int `json:"itemId"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}

	sess.Cart = sess.Cart.Remove(reqBody.ItemID)
	if err := session.DefaultStore.Save(r.Context(), sess); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to save cart")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess.Cart)
}

// Checkout converts the session cart into a pending loan. Allocation runs
// in one transaction, items short on available assets are fulfilled
// partially and reported back.
func Checkout(w http.ResponseWriter, r *http.Request) {
	sess := middlewares.SessionContext(r)

	if len(sess.Cart) == 0 {
		utils.RespondError(w, http.StatusBadRequest, errors.New("empty cart"), "Cart is empty")
		return
	}

	reqBody := struct {
		ReturnDate string `json:"returnDate"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.ReturnDate == "" {
		utils.RespondError(w, http.StatusBadRequest, errors.New("missing return date"), "Return date is required")
		return
	}
	dueAt, err := time.ParseInLocation(dateLayout, reqBody.ReturnDate, time.Local)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Return date must be YYYY-MM-DD")
		return
	}

	today, _ := time.ParseInLocation(dateLayout, time.Now().Format(dateLayout), time.Local)
	if dueAt.Before(today) {
		utils.RespondError(w, http.StatusBadRequest, errors.New("return date in the past"), "Return date cannot be in the past")
		return
	}

	itemIDs := make([]int, 0, len(sess.Cart))
	for _, line := range sess.Cart {
		itemIDs = append(itemIDs, line.ItemID)
	}
	items, err := dbHelpers.GetItemsByIds(database.Pool(database.RoleUser), itemIDs)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to load cart items")
		return
	}
	if len(items) == 0 {
		utils.RespondError(w, http.StatusBadRequest, errors.New("no active items in cart"), "None of the cart items are available anymore")
		return
	}

	// lines whose item was deactivated since it was added resolve to
	// nothing here and are excluded from allocation and the window check
	activeIDs := make([]int, 0, len(items))
	cartItems := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		activeIDs = append(activeIDs, item.ID)
		cartItems = append(cartItems, models.CartItem{Item: item})
	}
	if minWindow, _ := models.CheckoutWindow(cartItems, today); minWindow > 0 {
		if dueAt.After(today.AddDate(0, 0, minWindow)) {
			utils.RespondError(w, http.StatusBadRequest, errors.New("return date beyond loan window"),
				"Return date exceeds the shortest loan period in the cart")
			return
		}
	}

	user := middlewares.UserContext(r)

	// asset reservation is a system action triggered by the user's
	// checkout, so it runs on the staff pool
	loanID, shortfalls, err := dbHelpers.CreateLoanWithAllocation(
		database.Pool(database.RoleStaff), user.ID, dueAt, sess.Cart.RequestLinesFor(activeIDs))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to check out cart")
		return
	}

	sess.Cart = models.Cart{}
	if err := session.DefaultStore.Save(r.Context(), sess); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to clear cart")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, struct {
		LoanID     int                          `json:"loanId"`
		Shortfalls []models.AllocationShortfall `json:"shortfalls"`
	}{LoanID: loanID, Shortfalls: shortfalls})
}
