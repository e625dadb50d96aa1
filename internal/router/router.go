package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/neoaplicacoes/customer-api/internal/api/address"
	"github.com/neoaplicacoes/customer-api/internal/api/auth"
	"github.com/neoaplicacoes/customer-api/internal/api/customer"
	"github.com/neoaplicacoes/customer-api/internal/api/user"
)

// Config carries the handlers and middleware the router wires together.
type Config struct {
	AuthHandler     *auth.AuthHandlerImpl
	UserHandler     user.Handler
	CustomerHandler customer.Handler
	AddressHandler  address.Handler

	// Authenticate resolves a bearer token into a request principal. It
	// never rejects; RequireAuth and RequireAdmin do.
	Authenticate func(http.Handler) http.Handler
	RequireAuth  func(http.Handler) http.Handler
	RequireAdmin func(http.Handler) http.Handler
}

// SetupRouter builds the API route tree. Server-wide middleware (request ID,
// logging, recoverer, timeouts) is applied in main before mounting this.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Every request gets a principal when it carries a valid token;
		// the groups below decide whether one is required.
		r.Use(cfg.Authenticate)

		// Public surface.
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/users/register", cfg.UserHandler.Register)
			r.Post("/customers", cfg.CustomerHandler.Create)
			r.Post("/addresses", cfg.AddressHandler.Create)
		})

		// Reads require a valid, active account.
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireAuth)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", cfg.CustomerHandler.GetAll)
				r.Get("/paged", cfg.CustomerHandler.GetAllPaged)
				r.Get("/search/name", cfg.CustomerHandler.GetByName)
				r.Get("/search/name/paged", cfg.CustomerHandler.GetByNamePaged)
				r.Get("/search/email", cfg.CustomerHandler.GetByEmail)
				r.Get("/search/email/paged", cfg.CustomerHandler.GetByEmailPaged)
				r.Get("/search/cpf", cfg.CustomerHandler.GetByCpf)
				r.Get("/search/cpf/paged", cfg.CustomerHandler.GetByCpfPaged)
				r.Get("/search/city", cfg.CustomerHandler.GetByCity)
				r.Get("/search/city/paged", cfg.CustomerHandler.GetByCityPaged)
				r.Get("/search/state", cfg.CustomerHandler.GetByState)
				r.Get("/search/state/paged", cfg.CustomerHandler.GetByStatePaged)
				r.Get("/search/city-neighborhood", cfg.CustomerHandler.GetByCityAndNeighborhood)
				r.Get("/search/city-neighborhood/paged", cfg.CustomerHandler.GetByCityAndNeighborhoodPaged)
				r.Get("/{id}", cfg.CustomerHandler.GetByID)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", cfg.AddressHandler.GetAll)
				r.Get("/paged", cfg.AddressHandler.GetAllPaged)
				r.Get("/search/cep", cfg.AddressHandler.GetByCep)
				r.Get("/search/cep/paged", cfg.AddressHandler.GetByCepPaged)
				r.Get("/search/city", cfg.AddressHandler.GetByCity)
				r.Get("/search/city/paged", cfg.AddressHandler.GetByCityPaged)
				r.Get("/search/state", cfg.AddressHandler.GetByState)
				r.Get("/search/state/paged", cfg.AddressHandler.GetByStatePaged)
				r.Get("/search/neighborhood", cfg.AddressHandler.GetByNeighborhood)
				r.Get("/search/neighborhood/paged", cfg.AddressHandler.GetByNeighborhoodPaged)
				r.Get("/search/street", cfg.AddressHandler.GetByStreet)
				r.Get("/search/street/paged", cfg.AddressHandler.GetByStreetPaged)
				r.Get("/search/city-neighborhood", cfg.AddressHandler.GetByCityAndNeighborhood)
				r.Get("/search/city-neighborhood/paged", cfg.AddressHandler.GetByCityAndNeighborhoodPaged)
				r.Get("/search/city-street", cfg.AddressHandler.GetByCityAndStreet)
				r.Get("/search/city-street/paged", cfg.AddressHandler.GetByCityAndStreetPaged)
				r.Get("/{id}", cfg.AddressHandler.GetByID)
			})
		})

		// Mutations on existing records and all user management are
		// restricted to administrators.
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireAdmin)

			r.Route("/users", func(r chi.Router) {
				r.Post("/", cfg.UserHandler.Create)
				r.Get("/", cfg.UserHandler.GetAll)
				r.Get("/paged", cfg.UserHandler.GetAllPaged)
				r.Get("/search/email", cfg.UserHandler.GetByEmail)
				r.Get("/search/email/paged", cfg.UserHandler.GetByEmailPaged)
				r.Get("/search/role", cfg.UserHandler.GetByRole)
				r.Get("/search/role/paged", cfg.UserHandler.GetByRolePaged)
				r.Get("/search/active", cfg.UserHandler.GetByActive)
				r.Get("/search/active/paged", cfg.UserHandler.GetByActivePaged)
				r.Get("/{id}", cfg.UserHandler.GetByID)
				r.Put("/{id}", cfg.UserHandler.Update)
				r.Patch("/{id}/admin", cfg.UserHandler.UpdateAdmin)
				r.Delete("/{id}", cfg.UserHandler.Delete)
			})

			r.Put("/customers/{id}", cfg.CustomerHandler.Update)
			r.Delete("/customers/{id}", cfg.CustomerHandler.Delete)
			r.Put("/addresses/{id}", cfg.AddressHandler.Update)
			r.Delete("/addresses/{id}", cfg.AddressHandler.Delete)
		})
	})

	return r
}
