package handlers

import (
	"errors"
	"net/http"

	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/dbHelpers"
	"github.com/simplymanage/simplymanage-server/middlewares"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/simplymanage/simplymanage-server/session"
	"github.com/simplymanage/simplymanage-server/utils"
	"github.com/volatiletech/null"
)

// SubmitContact stores a contact ticket. The route is public; when a valid
// session cookie rides along the ticket is attributed to that user.
func SubmitContact(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		FirstName string `json:"fname"`
		LastName  string `json:"lname"`
		Email     string `json:"email"`
		Subject   string `json:"subject"`
		Message   string `json:"message"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.Email == "" || reqBody.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, errors.New("missing required field"), "Email and message are required")
		return
	}
	if len(reqBody.Message) > models.MaxContactMessageLength {
		utils.RespondError(w, http.StatusBadRequest, errors.New("message too long"), "Message is too long (max 5000 chars)")
		return
	}

	var userID null.Int
	if cookie, err := r.Cookie(middlewares.SessionCookie); err == nil && cookie.Value != "" {
		if sess, err := session.DefaultStore.Get(r.Context(), cookie.Value); err == nil && sess.User != nil {
			userID = null.IntFrom(sess.User.ID)
		}
	}

	ticketID, err := dbHelpers.InsertContactTicket(database.Pool(database.RoleUser), userID,
		nullIfEmpty(reqBody.FirstName), nullIfEmpty(reqBody.LastName),
		reqBody.Email, nullIfEmpty(reqBody.Subject), reqBody.Message)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to store contact ticket")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, struct {
		TicketID int `json:"ticketId"`
	}{TicketID: ticketID})
}

func nullIfEmpty(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
