package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Tasks
		r.Post("/tasks", h.CreateTask)
		r.Post("/tasks/query", h.QueryTasks)
		r.Post("/tasks/count", h.CountTasks)
		r.Get("/tasks/{id}", h.GetTask)
		r.Put("/tasks/{id}", h.UpdateTask)
		r.Delete("/tasks/{id}", h.DeleteTask)
		r.Get("/tasks/{id}/subtasks", h.ListSubtasks)

		// Task lifecycle
		r.Post("/tasks/{id}/claim", h.ClaimTask)
		r.Post("/tasks/{id}/unclaim", h.UnclaimTask)
		r.Post("/tasks/{id}/assignee", h.SetAssignee)
		r.Post("/tasks/{id}/delegate", h.DelegateTask)
		r.Post("/tasks/{id}/resolve", h.ResolveTask)
		r.Post("/tasks/{id}/complete", h.CompleteTask)
		r.Post("/tasks/{id}/suspend", h.SuspendTask)
		r.Post("/tasks/{id}/activate", h.ActivateTask)
		r.Post("/tasks/{id}/priority", h.SetPriority)

		// Variables
		r.Get("/tasks/{id}/variables", h.ListVariables)
		r.Get("/tasks/{id}/variables/{name}", h.GetVariable)
		r.Put("/tasks/{id}/variables/{name}", h.PutVariable)
		r.Delete("/tasks/{id}/variables/{name}", h.DeleteVariable)

		// Identity links
		r.Get("/tasks/{id}/identity-links", h.ListIdentityLinks)
		r.Post("/tasks/{id}/identity-links", h.AddIdentityLink)
		r.Post("/tasks/{id}/identity-links/delete", h.DeleteIdentityLink)

		// History
		r.Get("/tasks/{id}/events", h.ListEvents)
		r.Get("/tasks/{id}/comments", h.ListComments)
		r.Post("/tasks/{id}/comments", h.AddComment)
		r.Get("/tasks/{id}/attachments", h.ListAttachments)
		r.Post("/tasks/{id}/attachments", h.AddAttachment)
		r.Get("/attachments/{id}", h.GetAttachment)
		r.Delete("/attachments/{id}", h.DeleteAttachment)

		// Saved filters
		r.Post("/filters", h.CreateFilter)
		r.Get("/filters", h.ListFilters)
		r.Get("/filters/{id}", h.GetFilter)
		r.Put("/filters/{id}", h.UpdateFilter)
		r.Delete("/filters/{id}", h.DeleteFilter)
		r.Get("/filters/{id}/list", h.ExecuteFilter)
		r.Get("/filters/{id}/count", h.CountFilter)
		r.Get("/filters/{id}/single", h.SingleFilterResult)
	})
}
