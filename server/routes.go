package server

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/simplymanage/simplymanage-server/handlers"
	"github.com/simplymanage/simplymanage-server/middlewares"
	"github.com/simplymanage/simplymanage-server/models"
	"github.com/simplymanage/simplymanage-server/utils"
)

type Server struct {
	chi.Router
}

// SetupRoutes provides all the routes that can be used
func SetupRoutes() *Server {
	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Use(middlewares.CommonMiddlewares()...)

		// health endpoint
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			utils.RespondJSON(w, http.StatusOK, models.Response{Success: true})
		})

		// public routes
		r.Post("/register", handlers.Register)
		r.Post("/login", handlers.Login)
		r.Post("/logout", handlers.Logout)
		r.Post("/staff-login", handlers.StaffLogin)
		r.Post("/contact", handlers.SubmitContact)

		// private routes - any logged-in user
		r.Route("/user", func(r chi.Router) {
			r.Group(userRoutes)
		})

		// private routes - staff and admin
		r.Route("/dashboard", func(r chi.Router) {
			r.Group(dashboardRoutes)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Group(categoryRoutes)
		})

		// private routes - admin only
		r.Route("/admin", func(r chi.Router) {
			r.Group(adminRoutes)
		})
	})

	// uploaded item images
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir("uploads"))))

	return &Server{Router: router}
}

func (svc *Server) Run(port string) error {
	return http.ListenAndServe(port, svc)
}
