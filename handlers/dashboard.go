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

// GetDashboard returns the staff dashboard: pending loans oldest first and
// open loans with their overdue flag, due date ascending.
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	db := database.Pool(database.RoleStaff)

	pending, err := dbHelpers.GetPendingLoans(db)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get pending loans")
		return
	}

	current, err := dbHelpers.GetCurrentLoans(db)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get current loans")
		return
	}

	utils.RespondJSON(w, http.StatusOK, struct {
		PendingLoans []models.LoanSummary `json:"pendingLoans"`
		CurrentLoans []models.LoanSummary `json:"currentLoans"`
	}{PendingLoans: pending, CurrentLoans: current})
}

// GetLoanInfo returns any loan with borrower identity and asset lines
func GetLoanInfo(w http.ResponseWriter, r *http.Request) {
	loanID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given loanID to int")
		return
	}

	loan, err := dbHelpers.GetLoanWithLines(database.Pool(database.RoleStaff), loanID, nil)
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

func respondTransition(w http.ResponseWriter, err error, action string) {
	if err == nil {
		utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
		return
	}
	if err == sql.ErrNoRows {
		utils.RespondError(w, http.StatusNotFound, err, "Loan not found")
		return
	}
	if err == dbHelpers.ErrLoanWrongState {
		utils.RespondError(w, http.StatusConflict, err, "Loan state does not allow "+action)
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err, "Failed to "+action+" loan")
}

// ApproveLoan moves a pending loan to active
func ApproveLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given loanID to int")
		return
	}
	respondTransition(w, dbHelpers.ApproveLoan(database.Pool(database.RoleStaff), loanID), "approve")
}

// RejectLoan moves a pending loan to rejected and frees its assets
func RejectLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given loanID to int")
		return
	}
	respondTransition(w, dbHelpers.RejectLoan(database.Pool(database.RoleStaff), loanID), "reject")
}

// CheckInLoan closes an open loan and frees its assets
func CheckInLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := utils.StringToInt(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to convert given loanID to int")
		return
	}
	respondTransition(w, dbHelpers.CheckInLoan(database.Pool(database.RoleStaff), loanID), "check in")
}
