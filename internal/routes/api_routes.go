package routes

import (
	"arlingtonfleet/fleetmaint/internal/api"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers) {

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/state", handlers.GetState())

		v1.Route("/selection", func(sel chi.Router) {
			sel.Post("/consistency", handlers.SelectConsistency())
			sel.Post("/vehicle", handlers.SelectVehicle())
			sel.Post("/back", handlers.Back())
		})

		v1.Route("/consistencies", func(cons chi.Router) {
			cons.Get("/", handlers.ListConsistencies())
			cons.Post("/", handlers.CreateConsistency())
			cons.Delete("/{name}", handlers.DeleteConsistency())

			cons.Route("/{name}/systems", func(sys chi.Router) {
				sys.Get("/", handlers.ListSystems())
				sys.Post("/", handlers.AddSystem())
				sys.Delete("/{systemID}", handlers.RemoveSystem())
				sys.Delete("/{systemID}/operations/{operationID}", handlers.RemoveOperation())
			})
		})

		v1.Route("/records", func(rec chi.Router) {
			rec.Get("/", handlers.ListRecords())
			rec.Post("/", handlers.SubmitRecord())
			rec.Get("/pending", handlers.PendingRecords())
			rec.Get("/done", handlers.DoneRecords())
			rec.Post("/form", handlers.OpenRecordForm())
			rec.Delete("/form", handlers.CloseRecordForm())
			rec.Delete("/{recordID}", handlers.DeleteRecord())
			rec.Put("/{recordID}/status", handlers.SetRecordStatus())

			rec.Route("/{recordID}/document", func(doc chi.Router) {
				doc.Post("/", handlers.OpenDocument())
				doc.Get("/", handlers.GetDocument())
				doc.Delete("/", handlers.CloseDocument())
				doc.Put("/fields", handlers.UpdateFields())
				doc.Post("/save", handlers.SaveDocument())
				doc.Post("/finish", handlers.FinishDocument())
			})
		})

		v1.Get("/operations/{operationID}/protocol", handlers.GetProtocol())

		v1.Post("/refresh", handlers.Refresh())

		v1.Get("/preferences", handlers.GetPreferences())
		v1.Put("/preferences", handlers.UpdatePreferences())
	})
}
