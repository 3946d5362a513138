package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	batchHandler "github.com/harvesttrail/harvesttrail/internal/http/batch"
	exportHandler "github.com/harvesttrail/harvesttrail/internal/http/export"
	importHandler "github.com/harvesttrail/harvesttrail/internal/http/importcsv"
	pricingHandler "github.com/harvesttrail/harvesttrail/internal/http/pricing"
)

func New(
	batchesV1 *batchHandler.Handler,
	pricingV1 *pricingHandler.Handler,
	importV1 *importHandler.Handler,
	exportV1 *exportHandler.Handler,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// The dashboards are a separate browser origin.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/batches", func(r chi.Router) {
			batchesV1.BatchRoutes(r)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			batchesV1.OrderRoutes(r)
		})

		r.Route("/pricing", func(r chi.Router) {
			pricingV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)

		r.Route("/export", exportV1.Routes)
	})

	return router
}
