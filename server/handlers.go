package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tailored-agentic-units/forge/builder"
	"github.com/tailored-agentic-units/forge/store"
	"github.com/tailored-agentic-units/forge/workspace"
)

// CreateRequest is the body for POST /apps.
type CreateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// EditRequest is the body for POST /apps/edit. Files carries the caller's
// current source set; the stored-app variant loads it from persistence
// instead.
type EditRequest struct {
	Prompt string            `json:"prompt" binding:"required"`
	Files  map[string]string `json:"files"`
}

// StoredEditRequest is the body for POST /apps/:id/edit.
type StoredEditRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// AppResponse is the wire shape shared by create and edit responses.
type AppResponse struct {
	AppID         string                    `json:"app_id,omitempty"`
	Summary       string                    `json:"summary"`
	Files         map[string]string         `json:"files"`
	CompiledFiles map[string]string         `json:"compiled_files"`
	Diffs         map[string]workspace.Diff `json:"diffs,omitempty"`
	Attempts      int                       `json:"attempts"`
}

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleCreate generates a new app from a prompt.
func (s *Server) HandleCreate(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	result, err := s.runner.Create(c.Request.Context(), req.Prompt)
	if err != nil {
		writeRunError(c, result, err)
		return
	}

	resp := s.respond(c, result, false)
	c.JSON(http.StatusOK, resp)
}

// HandleEdit edits an app whose files are supplied in the request body.
func (s *Server) HandleEdit(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}
	if len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "files are required"})
		return
	}

	result, err := s.runner.Edit(c.Request.Context(), req.Prompt, req.Files)
	if err != nil {
		writeRunError(c, result, err)
		return
	}

	resp := s.respond(c, result, true)
	c.JSON(http.StatusOK, resp)
}

// HandleGetApp returns a stored app's source files and metadata.
func (s *Server) HandleGetApp(c *gin.Context) {
	if s.apps == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "persistence is not configured"})
		return
	}

	files, meta, err := s.apps.LoadApp(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
			return
		}
		slog.Error("failed to load app", "app_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load app"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"app_id":  c.Param("id"),
		"summary": meta.Summary,
		"files":   files,
	})
}

// HandleEditStored edits a persisted app: loads its source files, runs the
// edit session, and saves the new revision under the same id.
func (s *Server) HandleEditStored(c *gin.Context) {
	if s.apps == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "persistence is not configured"})
		return
	}

	var req StoredEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	appID := c.Param("id")
	files, _, err := s.apps.LoadApp(c.Request.Context(), appID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
			return
		}
		slog.Error("failed to load app", "app_id", appID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load app"})
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}

	result, err := s.runner.Edit(c.Request.Context(), req.Prompt, files)
	if err != nil {
		writeRunError(c, result, err)
		return
	}

	if err := s.apps.SaveApp(c.Request.Context(), appID, result.Files, result.Artifacts, result.Summary); err != nil {
		slog.Warn("failed to persist app revision", "app_id", appID, "error", err)
	}

	c.JSON(http.StatusOK, AppResponse{
		AppID:         appID,
		Summary:       result.Summary,
		Files:         result.Files,
		CompiledFiles: result.Artifacts,
		Diffs:         result.Diffs,
		Attempts:      result.Attempts,
	})
}

// respond assembles the wire response and, when persistence is configured,
// saves the result under a fresh project id. Persistence failures are logged
// and do not fail the request.
func (s *Server) respond(c *gin.Context, result *builder.Result, includeDiffs bool) AppResponse {
	resp := AppResponse{
		Summary:       result.Summary,
		Files:         result.Files,
		CompiledFiles: result.Artifacts,
		Attempts:      result.Attempts,
	}
	if includeDiffs {
		resp.Diffs = result.Diffs
	}

	if s.apps != nil {
		appID := store.NewProjectID()
		if err := s.apps.SaveApp(c.Request.Context(), appID, result.Files, result.Artifacts, result.Summary); err != nil {
			slog.Warn("failed to persist app", "app_id", appID, "error", err)
		} else {
			resp.AppID = appID
		}
	}
	return resp
}

// writeRunError maps session errors to HTTP responses. Budget exhaustion is
// reported with the last build diagnostic so the caller sees what failed.
func writeRunError(c *gin.Context, result *builder.Result, err error) {
	if errors.Is(err, builder.ErrBudgetExhausted) {
		body := gin.H{"error": "build validation failed"}
		if result != nil {
			body["diagnostic"] = result.Diagnostic
			body["attempts"] = result.Attempts
		}
		c.JSON(http.StatusInternalServerError, body)
		return
	}

	slog.Error("generation session failed", "error", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed"})
}
