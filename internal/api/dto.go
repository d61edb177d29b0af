package api

import (
	"github.com/starford/raido/internal/anchor"
	"github.com/starford/raido/internal/docservice"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
)

// Request bodies are decoded straight into the domain layer's types so the
// service's validation rules stay the single source of truth. The aliases
// below exist for swag annotations and API consumers reading this package.

// CaptureRequest is the request body for classifying-and-filing an item.
type CaptureRequest = docservice.CaptureRequest

// CaptureResult reports where a captured item landed.
type CaptureResult = docservice.CaptureResult

// CreateProjectRequest is the request body for creating a project document.
type CreateProjectRequest = docservice.CreateProjectRequest

// CreateProjectResult reports the created project and anchors for its actions.
type CreateProjectResult = docservice.CreateProjectResult

// AddActionsRequest is the request body for appending actions to a document.
type AddActionsRequest = docservice.AddActionsRequest

// AddItemRequest is the request body for discussion and reference items.
type AddItemRequest = docservice.AddItemRequest

// UpdateTagsRequest is the request body for merging tags into a header.
type UpdateTagsRequest = docservice.UpdateTagsRequest

// SetStatusRequest is the request body for flipping an anchored task's status.
type SetStatusRequest = docservice.SetStatusRequest

// TaskStatusResult reports the rewritten task line and its fresh anchor.
type TaskStatusResult = docservice.TaskStatusResult

// MutationResult is the generic response for document mutations.
type MutationResult = docservice.MutationResult

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// PinRequest is the request body for creating a pin.
type PinRequest = docservice.PinRequest

// PinResolution pairs a pin with its latest resolution.
type PinResolution = docservice.PinResolution

// Anchor is a line reference into a document.
type Anchor = anchor.Anchor

// AnchorResolution is the outcome of resolving an anchor.
type AnchorResolution = anchor.Resolution

// UpdateDocumentRequest is the request body for replacing a document's content.
type UpdateDocumentRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// ProjectListResponse wraps paginated project listings.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects" validate:"required"`
	Total    int              `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// PinListResponse wraps pin listings.
type PinListResponse struct {
	Pins []models.Pin `json:"pins" validate:"required"`
}
