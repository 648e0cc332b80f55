package handlers

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/dbHelpers"
	"github.com/simplymanage/simplymanage-server/middlewares"
	"github.com/simplymanage/simplymanage-server/utils"
)

// GetMyLoans returns the borrower's own loans, newest first
func GetMyLoans(w http.ResponseWriter, r *http.Request) {
	user := middlewares.UserContext(r)

	offset, limit, err := utils.GetOffsetLimit(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to parse offset/limit")
		return
	}

	loans, err := dbHelpers.GetLoansForUser(database.Pool(database.RoleUser), user.ID, offset, limit)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get loans")
		return
	}
	utils.RespondJSON(w, http.StatusOK, loans)
}

// GetMyLoanInfo returns one of the borrower's own loans with its lines
func GetMyLoanInfo(w http.ResponseWriter, r *http.Request) {
	user := middlewares.UserContext(r)

	loanID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given loanID to int")
		return
	}

	loan, err := dbHelpers.GetLoanWithLines(database.Pool(database.RoleUser), loanID, &user.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "Loan not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get loan")
		return
	}
	utils.RespondJSON(w, http.StatusOK, loan)
}
