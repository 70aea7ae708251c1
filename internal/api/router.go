package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/lendshare/internal/model"
	"github.com/erazemk/lendshare/internal/reservation"
	"github.com/erazemk/lendshare/internal/uploads"
)

// Options configures the API router.
type Options struct {
	DB            *sql.DB
	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool
	Engine        *reservation.Engine
	Uploads       *uploads.Store
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	mux := http.NewServeMux()
	db := opts.DB

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret, TokenTTL: opts.TokenTTL, SecureCookies: opts.SecureCookies}
	usersHandler := &UsersHandler{DB: db}
	categoriesHandler := &CategoriesHandler{DB: db}
	productsHandler := &ProductsHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db}
	reservationsHandler := &ReservationsHandler{DB: db, Engine: opts.Engine}
	uploadsHandler := &UploadsHandler{Store: opts.Uploads}

	authMW := AuthMiddleware(opts.JWTSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }
	member := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	mux.HandleFunc("GET /healthz", (&HealthHandler{DB: db}).Check)

	// Public: account and session.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/session", authHandler.Session)

	// Authenticated account routes.
	mux.Handle("PUT /api/auth/password", member(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", member(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Catalog: read (public), write (admin).
	mux.HandleFunc("GET /api/categories", categoriesHandler.List)
	mux.HandleFunc("GET /api/categories/{id}", categoriesHandler.Get)
	mux.Handle("POST /api/categories", admin(categoriesHandler.Create))

	mux.HandleFunc("GET /api/products", productsHandler.List)
	mux.HandleFunc("GET /api/products/{id}", productsHandler.Get)
	mux.Handle("POST /api/products", admin(productsHandler.Create))
	mux.Handle("PUT /api/products/{id}", admin(productsHandler.Update))
	mux.Handle("DELETE /api/products/{id}", admin(productsHandler.Delete))

	// Inventory corrections (admin).
	mux.Handle("PUT /api/products/{id}/quantities", admin(inventoryHandler.SetQuantities))
	mux.Handle("POST /api/products/reconcile", admin(inventoryHandler.Reconcile))

	// Reservations (members; status changes go through the configured policy).
	mux.Handle("GET /api/reservations", member(reservationsHandler.List))
	mux.Handle("GET /api/reservations/{id}", member(reservationsHandler.Get))
	mux.Handle("POST /api/reservations", member(reservationsHandler.Create))
	mux.Handle("PUT /api/reservations/{id}/status", member(reservationsHandler.UpdateStatus))

	// Images.
	mux.Handle("POST /api/uploads", admin(uploadsHandler.Create))
	if opts.Uploads != nil {
		mux.Handle("GET /uploads/{bucket}/{name}", opts.Uploads)
	}

	return mux
}
