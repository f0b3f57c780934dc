package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ponto-app/registro/internal/middleware"
)

// NewRouter builds the HTTP handler serving the document store API.
//
// Routes:
//
//	GET    /{collection}               → filtered/sorted/paginated list
//	POST   /{collection}               → create
//	GET    /{collection}/{id}          → single document
//	PUT    /{collection}/{id}          → replace or create
//	PATCH  /{collection}/{id}          → shallow merge
//	DELETE /{collection}/{id}          → remove
//	POST   /{collection}/{id}/{action} → workflow notification ack
func NewRouter(docHandler *DocumentHandler, actionHandler *ActionHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/{collection}", func(r chi.Router) {
		r.Get("/", docHandler.List)
		r.Post("/", docHandler.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", docHandler.Get)
			r.Put("/", docHandler.Put)
			r.Patch("/", docHandler.Patch)
			r.Delete("/", docHandler.Delete)
			r.Post("/{action}", actionHandler.Notify)
		})
	})

	return r
}
