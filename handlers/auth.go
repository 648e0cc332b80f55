package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/simplymanage/simplymanage-server/database"
	"github.com/simplymanage/simplymanage-server/dbHelpers"
	"github.com/simplymanage/simplymanage-server/middlewares"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/simplymanage/simplymanage-server/session"
	"github.com/simplymanage/simplymanage-server/utils"
	"github.com/sirupsen/logrus"
)

func setSessionCookie(w http.ResponseWriter, sessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func startSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sess, err := session.DefaultStore.Create(r.Context(), &models.SessionUser{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
	})
	if err != nil {
		return err
	}
	setSessionCookie(w, sess.ID, 0)
	return nil
}

// Register creates a new user account with role user and logs it in
func Register(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		FirstName       string `json:"fname"`
		LastName        string `json:"lname"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}

	if reqBody.FirstName == "" || reqBody.LastName == "" || reqBody.Email == "" || reqBody.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, errors.New("missing required field"), "All fields are required")
		return
	}
	if reqBody.Password != reqBody.ConfirmPassword {
		utils.RespondError(w, http.StatusBadRequest, errors.New("password mismatch"), "Passwords do not match")
		return
	}

	db := database.Pool(database.RoleUser)

	exist, err := dbHelpers.IsEmailRegistered(db, reqBody.Email)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to find user")
		return
	}
	if exist != 0 {
		utils.RespondError(w, http.StatusBadRequest, errors.New("email taken"), "Email already registered")
		return
	}

	passwordHash, err := utils.HashPassword(reqBody.Password)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to create user")
		return
	}

	userID, err := dbHelpers.InsertUser(db, reqBody.FirstName, reqBody.LastName, reqBody.Email, passwordHash, models.RoleUser)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to create user")
		return
	}

	user, err := dbHelpers.GetUserById(db, userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get user details")
		return
	}

	if err := startSession(w, r, user); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and opens a session
func Login(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.Email == "" || reqBody.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, errors.New("missing credentials"), "Email and password are required")
		return
	}

	db := database.Pool(database.RoleUser)

	user, err := dbHelpers.GetUserByEmail(db, reqBody.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusUnauthorized, err, "Invalid email or password")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to find user")
		return
	}
	if !user.Active {
		utils.RespondError(w, http.StatusForbidden, errors.New("account disabled"), "Account is disabled. Please contact support.")
		return
	}
	if !utils.CheckPassword(user.Password, reqBody.Password) {
		utils.RespondError(w, http.StatusUnauthorized, errors.New("wrong password"), "Invalid email or password")
		return
	}

	if err := startSession(w, r, user); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

// Logout destroys the current session and clears the cookie
func Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middlewares.SessionCookie)
	if err == nil && cookie.Value != "" {
		if err := session.DefaultStore.Delete(r.Context(), cookie.Value); err != nil {
			logrus.Errorf("failed to delete session: %v", err)
		}
	}
	setSessionCookie(w, "", -1)
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}

// StaffLogin issues a JWT for staff/admin API clients
func StaffLogin(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}

	db := database.Pool(database.RoleStaff)

	user, err := dbHelpers.GetUserByEmail(db, reqBody.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusUnauthorized, err, "Invalid email or password")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to find user")
		return
	}
	if user.Role != models.RoleStaff && user.Role != models.RoleAdmin {
		utils.RespondError(w, http.StatusUnauthorized, errors.New("given email does not belong to a staff account"), "Authentication failed!")
		return
	}
	if !user.Active {
		utils.RespondError(w, http.StatusForbidden, errors.New("account disabled"), "Account is disabled. Please contact support.")
		return
	}
	if !utils.CheckPassword(user.Password, reqBody.Password) {
		utils.RespondError(w, http.StatusUnauthorized, errors.New("wrong password"), "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to generate token")
		return
	}
	utils.RespondJSON(w, http.StatusOK, struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}{Token: token, User: user})
}

// GetProfile returns the logged-in user's details from the session
func GetProfile(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, middlewares.UserContext(r))
}

// ChangePassword verifies the current password and stores a new hash
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	userCtx := middlewares.UserContext(r)

	reqBody := struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}{}

	if err := utils.ParseBody(r.Body, &reqBody); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err, "Failed to decode request body")
		return
	}
	if reqBody.CurrentPassword == "" || reqBody.NewPassword == "" || reqBody.ConfirmPassword == "" {
		utils.RespondError(w, http.StatusBadRequest, errors.New("missing required field"), "All password fields are required")
		return
	}
	if reqBody.NewPassword != reqBody.ConfirmPassword {
		utils.RespondError(w, http.StatusBadRequest, errors.New("password mismatch"), "New passwords do not match")
		return
	}

	db := database.Pool(database.RoleUser)

	user, err := dbHelpers.GetUserById(db, userCtx.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, err, "User not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to get user details")
		return
	}
	if !utils.CheckPassword(user.Password, reqBody.CurrentPassword) {
		utils.RespondError(w, http.StatusUnauthorized, errors.New("wrong password"), "Current password is incorrect")
		return
	}

	passwordHash, err := utils.HashPassword(reqBody.NewPassword)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to update password")
		return
	}
	if err := dbHelpers.UpdatePassword(db, userCtx.ID, passwordHash); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to update password")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
}
