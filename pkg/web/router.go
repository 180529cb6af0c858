package web

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts every API endpoint on the app. The server binary
// and the handler tests share this wiring.
func RegisterRoutes(app *fiber.App, handlers *APIHandlers) {
	r := app.Group("/recordings")
	r.Post("/", handlers.CreateRecording)
	r.Get("/", handlers.GetRecordings)
	r.Get("/archived", handlers.GetArchivedRecordings)
	r.Get("/:id", handlers.GetRecording)
	r.Post("/:id/archive", handlers.ArchiveRecording)
	r.Delete("/:id", handlers.DeleteRecording)

	a := app.Group("/actions")
	a.Post("/", handlers.CreateAction)
	a.Get("/", handlers.GetActions)
	a.Post("/batch", handlers.BatchUpdateActions)
	a.Get("/:id", handlers.GetAction)
	a.Put("/:id", handlers.UpdateAction)
	a.Put("/:id/notes", handlers.SaveActionNotes)
	a.Post("/:id/archive", handlers.ArchiveAction)
	a.Post("/:id/reviewed", handlers.ReviewAction)
	a.Post("/:id/complete", handlers.CompleteAction)
	a.Post("/:id/reopen", handlers.ReopenAction)
	a.Delete("/:id", handlers.DeleteAction)

	app.Get("/changes", handlers.GetChanges)
	app.Get("/healthz", handlers.HealthCheck)
}
