// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Raido document engine as tools for LLM integration
// via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/anchor"
	"github.com/starford/raido/internal/docservice"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/taskline"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Raido tools registered. Every
// tool goes through the document engine, so the same validation and
// anchoring rules apply as on the REST API.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("capture_action",
		mcp.WithDescription("File one classified inbox item into the vault. "+
			"Category decides where it lands: action, project, reference or someday. "+
			"Read the contract first via the get_capture_contract tool or the "+
			"raido://document-format resource."),
		mcp.WithString("category", mcp.Required(), mcp.Description("One of: action, project, reference, someday")),
		mcp.WithString("action_text", mcp.Required(), mcp.Description("The concrete, verb-first item text")),
		mcp.WithString("target", mcp.Description("Optional explicit target document (e.g. Projects/Website.md)")),
		mcp.WithString("reasoning", mcp.Description("Why this category was chosen; becomes the project description for project captures")),
		mcp.WithString("recommended_action", mcp.Description("First next action to seed a project capture with")),
		mcp.WithString("due_date", mcp.Description("Due date, YYYY-MM-DD")),
		mcp.WithBoolean("is_waiting_for", mcp.Description("True when the item waits on someone else")),
		mcp.WithArray("tags", mcp.Description("Sphere tags to attach, e.g. sphere/work")),
	), s.captureAction)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a new project document from the project template."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Project title; also becomes the file name")),
		mcp.WithString("description", mcp.Description("Free-form description for the project body")),
		mcp.WithString("priority", mcp.Description("low, medium or high")),
		mcp.WithString("parent", mcp.Description("Path of the umbrella project, recorded in the header")),
		mcp.WithString("first_action", mcp.Description("Optional first next action")),
		mcp.WithArray("tags", mcp.Description("Sphere tags for the project header")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("add_next_action_to_project",
		mcp.WithDescription("Append one next action to a project's actions section."),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Relative path to the project (e.g. Projects/Website.md)")),
		mcp.WithString("action_text", mcp.Required(), mcp.Description("The action text")),
		mcp.WithString("due_date", mcp.Description("Due date, YYYY-MM-DD")),
		mcp.WithBoolean("waiting", mcp.Description("Mark the action waiting-for")),
		mcp.WithArray("tags", mcp.Description("Inline sphere tags for the action line")),
	), s.addNextAction)

	s.mcp.AddTool(mcp.NewTool("add_discussion_note",
		mcp.WithDescription("Prepend a note to a project's discussion section (newest first)."),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Relative path to the project")),
		mcp.WithString("note", mcp.Required(), mcp.Description("The discussion note text")),
	), s.addDiscussionNote)

	s.mcp.AddTool(mcp.NewTool("add_reference",
		mcp.WithDescription("Prepend an item to a references section. Without a path the "+
			"shared reference list is used and created on first use."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The reference text")),
		mcp.WithString("path", mcp.Description("Optional target document; empty for the shared list")),
	), s.addReference)

	s.mcp.AddTool(mcp.NewTool("update_project_tags",
		mcp.WithDescription("Merge tags into a project's header tag list. Sphere tags sort first."),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Relative path to the project")),
		mcp.WithArray("tags", mcp.Required(), mcp.Description("Tags to merge, e.g. sphere/work, urgent")),
	), s.updateProjectTags)

	s.mcp.AddTool(mcp.NewTool("set_task_status",
		mcp.WithDescription("Flip an anchored task line to todo, done or waiting. Pass the "+
			"path, line and content of an anchor a previous tool returned; the server "+
			"re-locates the line when the document has drifted."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document path from the anchor")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-indexed line number from the anchor")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Exact line content from the anchor")),
		mcp.WithString("status", mcp.Required(), mcp.Description("One of: todo, done, waiting")),
	), s.setTaskStatus)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List indexed projects with open/done task counts."),
		mcp.WithString("tag", mcp.Description("Filter by tag")),
		mcp.WithString("status", mcp.Description("Filter by project status")),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of a vault document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. Projects/Website.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("get_capture_contract",
		mcp.WithDescription("Returns the canonical Raido document format contract. "+
			"Call this before capturing items or editing documents to ensure correct structure."),
	), s.getCaptureContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://document-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical task-document format that all documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) captureAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("action_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.Capture(ctx, docservice.CaptureRequest{
		Classification: models.Classification{
			Category:          category,
			ActionText:        text,
			Reasoning:         req.GetString("reasoning", ""),
			RecommendedAction: req.GetString("recommended_action", ""),
			RecommendedTags:   req.GetStringSlice("tags", nil),
			IsWaitingFor:      req.GetBool("is_waiting_for", false),
			DueDate:           req.GetString("due_date", ""),
		},
		Target: req.GetString("target", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var actions []docservice.ActionInput
	if first := req.GetString("first_action", ""); first != "" {
		actions = append(actions, docservice.ActionInput{Text: first})
	}

	res, err := s.svc.CreateProject(ctx, docservice.CreateProjectRequest{
		Title:       title,
		Description: req.GetString("description", ""),
		Priority:    req.GetString("priority", ""),
		Tags:        req.GetStringSlice("tags", nil),
		Parent:      req.GetString("parent", ""),
		Actions:     actions,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) addNextAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("project_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("action_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.AddActions(ctx, docservice.AddActionsRequest{
		Path: path,
		Actions: []docservice.ActionInput{{
			Text:    text,
			Due:     req.GetString("due_date", ""),
			Waiting: req.GetBool("waiting", false),
			Tags:    req.GetStringSlice("tags", nil),
		}},
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) addDiscussionNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("project_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.AddDiscussionItem(ctx, docservice.AddItemRequest{Path: path, Text: note})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) addReference(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.AddReference(ctx, docservice.AddItemRequest{
		Path: req.GetString("path", ""),
		Text: text,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) updateProjectTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("project_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := req.GetStringSlice("tags", nil)

	res, err := s.svc.UpdateTags(ctx, docservice.UpdateTagsRequest{Path: path, Tags: tags})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) setTaskStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.SetTaskStatus(ctx, docservice.SetStatusRequest{
		Anchor: anchor.Anchor{Path: path, Line: line, Content: content},
		Status: taskline.Status(status),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, _, err := s.svc.ListProjects(ctx, index.ListOptions{
		Tag:    req.GetString("tag", ""),
		Status: req.GetString("status", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(projects)
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getCaptureContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}

// jsonResult renders a tool result as indented JSON.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
