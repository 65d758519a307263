package signup

import "github.com/go-chi/chi/v5"

// Routes returns the sign-up router, mounted at the site root.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleSubmit)
	r.Get("/thanks", h.ServeThanks)
	return r
}
