package server

import (
	"github.com/go-chi/chi"
	"github.com/simplymanage/simplymanage-server/handlers"
	"github.com/simplymanage/simplymanage-server/middlewares"
)

func dashboardRoutes(r chi.Router) {
	r.Group(func(staff chi.Router) {
		staff.Use(middlewares.StaffAuthMiddleware, middlewares.StaffPermission)

		staff.Get("/", handlers.GetDashboard)

		staff.Route("/loans", func(loans chi.Router) {
			loans.Get("/{id}", handlers.GetLoanInfo)
			loans.Post("/{id}/approve", handlers.ApproveLoan)
			loans.Post("/{id}/reject", handlers.RejectLoan)
			loans.Post("/{id}/checkin", handlers.CheckInLoan)
		})

		// item & asset management
		staff.Post("/items", handlers.CreateItem)
		staff.Post("/items/{id}/update", handlers.UpdateItem)
		staff.Delete("/items/{id}", handlers.DeactivateItem)
		staff.Get("/items/{id}/assets", handlers.GetItemAssets)
		staff.Post("/items/{id}/assets", handlers.CreateAssets)
		staff.Put("/assets/{id}", handlers.ModifyAsset)

		// storage locations
		staff.Get("/locations", handlers.GetLocations)
		staff.Post("/locations", handlers.CreateLocation)
	})
}

func categoryRoutes(r chi.Router) {
	r.Group(func(staff chi.Router) {
		staff.Use(middlewares.StaffAuthMiddleware, middlewares.StaffPermission)

		staff.Get("/", handlers.GetAllCategories)
		staff.Post("/", handlers.CreateCategory)
		staff.Put("/{id}", handlers.ModifyCategory)
		staff.Delete("/{id}", handlers.DeleteCategory)
	})
}

func adminRoutes(r chi.Router) {
	r.Group(func(admin chi.Router) {
		admin.Use(middlewares.StaffAuthMiddleware, middlewares.AdminPermission)

		admin.Get("/users", handlers.GetAllUsers)
		admin.Put("/users/{id}/active", handlers.SetUserActive)
		admin.Delete("/users/{id}", handlers.DeleteUser)
	})
}
