package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/chi"
	"github.com/rs/cors"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/simplymanage/simplymanage-server/session"
	"github.com/simplymanage/simplymanage-server/utils"
	"github.com/sirupsen/logrus"
)

type contextString string

const sessionContext contextString = "__sessionContext"
const jwtSigningMethod = "HS256"

// SessionCookie is the name of the opaque session cookie.
const SessionCookie = "sm_session"

// corsOptions setting up routes for cors
func corsOptions() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "Cache-Control", "Pragma"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})
}

// CommonMiddlewares middleware common for all routes
func CommonMiddlewares() chi.Middlewares {
	return chi.Chain(
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("Content-Type", "application/json")
				next.ServeHTTP(w, r)
			})
		},
		corsOptions().Handler,
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					err := recover()
					if err != nil {
						logrus.Errorf("Request Panic err: %v", err)
						jsonBody, _ := json.Marshal(map[string]string{
							"error": "There was an internal server error",
						})
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusInternalServerError)
						if _, err := w.Write(jsonBody); err != nil {
							logrus.Errorf("Failed to send response from middleware with error: %+v", err)
						}
					}
				}()
				next.ServeHTTP(w, r)
			})
		},
	)
}

// AuthMiddleware resolves the session cookie against the session store and
// rejects requests without a logged-in user.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromCookie(r)
		if sess == nil || sess.User == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContext, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StaffAuthMiddleware accepts a session cookie or a bearer JWT, so staff
// tooling can hit the dashboard API without a browser session.
func StaffAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFromCookie(r)
		if sess == nil || sess.User == nil {
			user, err := userFromBearer(r)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, err, "Authentication failed!")
				return
			}
			sess = &session.Session{User: user}
		}
		ctx := context.WithValue(r.Context(), sessionContext, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromCookie(r *http.Request) *session.Session {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := session.DefaultStore.Get(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}

func userFromBearer(r *http.Request) (*models.SessionUser, error) {
	jwtToken := r.Header.Get("Authorization")
	if jwtToken == "" {
		return nil, errors.New("empty authorization token")
	}

	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(jwtToken, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwtSigningMethod {
			return nil, fmt.Errorf("unexpected jwt signing method=%v", t.Header["alg"])
		}
		return []byte(os.Getenv("SECRET_KEY")), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return &models.SessionUser{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// SessionContext returns the request's session, nil when unauthenticated.
func SessionContext(r *http.Request) *session.Session {
	if sess, ok := r.Context().Value(sessionContext).(*session.Session); ok && sess != nil {
		return sess
	}
	return nil
}

// UserContext returns the logged-in user attached to the request.
func UserContext(r *http.Request) *models.SessionUser {
	if sess := SessionContext(r); sess != nil {
		return sess.User
	}
	return nil
}

// StaffPermission gates routes to staff and admin users.
func StaffPermission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserContext(r)
		if user == nil || !user.IsStaff() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminPermission gates routes to admin users.
func AdminPermission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserContext(r)
		if user == nil || !user.IsAdmin() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
