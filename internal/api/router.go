package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/docservice"
	"github.com/starford/raido/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, is mounted at GET /events inside the auth group and
// receives domain events (task.captured) from the handlers.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, events *sse.Broker) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Capture.
	r.Post("/capture", h.Capture)

	// Projects.
	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)

	// Raw documents.
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	// Section mutations. The target path travels in the body because its
	// slashes would collide with the wildcard route parameter.
	r.Post("/actions", h.AddActions)
	r.Post("/discussion", h.AddDiscussion)
	r.Post("/references", h.AddReference)
	r.Post("/tags", h.UpdateTags)
	r.Patch("/tasks/status", h.SetTaskStatus)

	// Search.
	r.Get("/search", h.Search)

	// Pins and anchors.
	r.Get("/pins", h.ListPins)
	r.Post("/pins", h.CreatePin)
	r.Delete("/pins/{id}", h.DeletePin)
	r.Post("/pins/{id}/resolve", h.ResolvePin)
	r.Post("/resolve", h.ResolveAnchor)

	// SSE endpoint (protected by same auth middleware).
	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
