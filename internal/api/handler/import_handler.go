// Package handler contains the gin HTTP handlers for the ingestion pipeline.
package handler

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ErmoGarcia/expense-toolkit/internal/domain/importjob"
	"github.com/ErmoGarcia/expense-toolkit/internal/importer"
)

// allowedExtensions are the statement formats the registry can detect
var allowedExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
}

// ImportHandler handles HTTP requests for statement file imports
type ImportHandler struct {
	importService importer.Service
	logger        *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(logger *slog.Logger, importService importer.Service) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		logger:        logger,
	}
}

// Create accepts a multipart statement upload and runs the import pipeline.
// The response always carries the terminal job, completed or failed.
func (h *ImportHandler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondBadRequest(c, "Missing file field: "+err.Error())
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		RespondBadRequest(c, "Unsupported file extension: "+ext)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", "filename", fileHeader.Filename, "error", err)
		RespondInternalError(c)
		return
	}
	defer src.Close()

	job, err := h.importService.Import(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		var tooLarge importer.ErrUploadTooLarge
		if errors.As(err, &tooLarge) {
			RespondWithError(c, 413, "PAYLOAD_TOO_LARGE", tooLarge.Error())
			return
		}
		h.logger.Error("Import failed", "filename", fileHeader.Filename, "error", err)
		RespondInternalError(c)
		return
	}

	if job.Status == importjob.StatusFailed {
		RespondUnprocessable(c, job.ErrorMessage)
		return
	}

	RespondCreated(c, job)
}

// List returns the import history, newest first
func (h *ImportHandler) List(c *gin.Context) {
	jobs, err := h.importService.ListJobs(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list import jobs", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, jobs)
}

// GetByID returns one import job
func (h *ImportHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.importService.GetJob(c.Request.Context(), id)
	if err != nil {
		var notFound importjob.ErrJobNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, notFound.Error())
			return
		}
		h.logger.Error("Failed to get import job", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, job)
}
