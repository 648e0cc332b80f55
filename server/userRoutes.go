package server

import (
	"github.com/go-chi/chi"
	"github.com/simplymanage/simplymanage-server/handlers"
	"github.com/simplymanage/simplymanage-server/middlewares"
)

func userRoutes(r chi.Router) {
	r.Group(func(user chi.Router) {
		user.Use(middlewares.AuthMiddleware)

		// profile
		user.Get("/profile", handlers.GetProfile)
		user.Post("/profile/change-password", handlers.ChangePassword)

		// catalog
		user.Get("/items", handlers.GetCatalog)
		user.Get("/items/{id}", handlers.GetItemInfo)

		// cart
		user.Route("/cart", func(cart chi.Router) {
			cart.Get("/", handlers.GetCart)
			cart.Post("/add", handlers.AddToCart)
			cart.Post("/remove", handlers.RemoveFromCart)
			cart.Post("/checkout", handlers.Checkout)
		})

		// own loans
		user.Get("/loans", handlers.GetMyLoans)
		user.Get("/loans/{id}", handlers.GetMyLoanInfo)
	})
}
