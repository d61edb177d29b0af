// Package models defines the domain types for Raido.
package models

import "time"

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project summarizes one project document as tracked by the index.
// Status and Priority come from the header block when present.
type Project struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Status    string    `json:"status,omitempty"`
	Priority  string    `json:"priority,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	OpenTasks int       `json:"open_tasks"`
	DoneTasks int       `json:"done_tasks"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pin revalidation states.
const (
	PinStateOK        = "ok"
	PinStateRelocated = "relocated"
	PinStateLost      = "lost"
)

// Pin is a saved line anchor with bookkeeping from background
// revalidation. Line is 1-indexed; Content is the exact line text the
// pin was minted against.
type Pin struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Line        int       `json:"line"`
	Content     string    `json:"content"`
	DisplayText string    `json:"display_text"`
	Label       string    `json:"label,omitempty"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	CheckedAt   time.Time `json:"checked_at"`
}

// Classification is the triage decision for one captured inbox item.
// Category selects the routing rule; SuggestedTargets are vault paths
// ordered best first.
type Classification struct {
	Category          string   `json:"category"`
	ActionText        string   `json:"action_text,omitempty"`
	Reasoning         string   `json:"reasoning,omitempty"`
	SuggestedTargets  []string `json:"suggested_targets,omitempty"`
	RecommendedAction string   `json:"recommended_action,omitempty"`
	RecommendedTags   []string `json:"recommended_tags,omitempty"`
	IsWaitingFor      bool     `json:"is_waiting_for,omitempty"`
	DueDate           string   `json:"due_date,omitempty"`
}
