// Package handlers exposes the validation engine over HTTP.
package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corerips-wq/rips-engine/internal/catalog"
	"github.com/corerips-wq/rips-engine/internal/config"
	"github.com/corerips-wq/rips-engine/internal/mapping"
	"github.com/corerips-wq/rips-engine/internal/metrics"
	"github.com/corerips-wq/rips-engine/internal/storage"
	"github.com/corerips-wq/rips-engine/internal/validation"
)

// ValidationHandler handles file upload and validation HTTP requests
type ValidationHandler struct {
	cfg       *config.Config
	engine    *validation.Engine
	catalogs  *catalog.Store
	loader    *catalog.Loader
	repo      *storage.Repository
	collector *metrics.Collector
	logger    *zap.Logger
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(
	cfg *config.Config,
	engine *validation.Engine,
	catalogs *catalog.Store,
	loader *catalog.Loader,
	repo *storage.Repository,
	collector *metrics.Collector,
	logger *zap.Logger,
) *ValidationHandler {
	return &ValidationHandler{
		cfg:       cfg,
		engine:    engine,
		catalogs:  catalogs,
		loader:    loader,
		repo:      repo,
		collector: collector,
		logger:    logger,
	}
}

// RegisterRoutes registers all validation-related routes
func (h *ValidationHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")

	api.POST("/files/upload", h.UploadFile)
	api.GET("/files", h.ListFiles)
	api.GET("/files/:file_id", h.GetFile)

	api.POST("/files/:file_id/validate", h.ValidateFile)
	api.GET("/files/:file_id/findings", h.GetFindings)
	api.GET("/files/:file_id/summary", h.GetSummary)

	api.GET("/rules", h.GetRules)
	api.POST("/catalogs/load", h.LoadCatalogs)
	api.GET("/catalogs/status", h.CatalogStatus)

	api.GET("/health", h.HealthCheck)
}

// UploadFile receives one RIPS file and registers it for validation.
// The record type comes from the form field or is inferred from the
// filename.
func (h *ValidationHandler) UploadFile(c *gin.Context) {
	upload, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if h.cfg.Uploads.MaxSizeBytes > 0 && upload.Size > h.cfg.Uploads.MaxSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file exceeds %d bytes", h.cfg.Uploads.MaxSizeBytes),
		})
		return
	}

	recordType := strings.ToUpper(c.PostForm("record_type"))
	if recordType == "" {
		recordType = mapping.RecordTypeFromFilename(upload.Filename)
	}

	if err := os.MkdirAll(h.cfg.Uploads.Directory, 0o755); err != nil {
		h.logger.Error("failed to create upload directory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	file := &storage.StoredFile{
		ID:         uuid.New(),
		Filename:   filepath.Base(upload.Filename),
		RecordType: recordType,
		SizeBytes:  upload.Size,
	}
	file.Path = filepath.Join(h.cfg.Uploads.Directory, file.ID.String()+filepath.Ext(upload.Filename))

	if err := c.SaveUploadedFile(upload, file.Path); err != nil {
		h.logger.Error("failed to save upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	if err := h.repo.CreateFile(file); err != nil {
		h.logger.Error("failed to register upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register file"})
		return
	}

	h.collector.RecordUpload(recordType)
	c.JSON(http.StatusCreated, file)
}

// ListFiles returns registered files, newest first
func (h *ValidationHandler) ListFiles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	files, err := h.repo.ListFiles(limit)
	if err != nil {
		h.logger.Error("failed to list files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files, "total": len(files)})
}

// GetFile returns one registered file
func (h *ValidationHandler) GetFile(c *gin.Context) {
	file, ok := h.loadFile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, file)
}

// ValidateFile runs the engine over a stored file and persists the
// findings. Findings are data, not request failures, so a file full of
// violations still answers 200.
func (h *ValidationHandler) ValidateFile(c *gin.Context) {
	file, ok := h.loadFile(c)
	if !ok {
		return
	}

	// Default runs both validator families. The body narrows the run,
	// mirroring the historical request shape.
	var req struct {
		ValidationTypes []string `json:"validation_types"`
	}
	modes := validation.FullModes()
	validatorTag := "full"
	if err := c.ShouldBindJSON(&req); err == nil && len(req.ValidationTypes) > 0 {
		parsed, err := validation.ParseModes(req.ValidationTypes)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		modes = parsed
		validatorTag = strings.Join(req.ValidationTypes, ",")
	}

	start := time.Now()
	findings, err := h.engine.ValidateFileModes(file.Path, file.RecordType, modes)
	format := strings.TrimPrefix(filepath.Ext(file.Path), ".")
	if err != nil {
		h.logger.Error("validation failed", zap.String("file_id", file.ID.String()), zap.Error(err))
		h.collector.RecordValidation(file.RecordType, format, "error", time.Since(start))
		_ = h.repo.UpdateFileStatus(file.ID, storage.StatusFailed, 0)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}

	summary := validation.Summarize(findings)
	h.collector.RecordValidation(file.RecordType, format, summary.Status, time.Since(start))
	for severity, count := range summary.SeverityDistribution {
		h.collector.RecordFindings(file.RecordType, severity, count)
	}
	for _, f := range findings {
		if f.Line == 0 && f.Field == validation.FieldFile {
			h.collector.RecordParseFailure(format)
			break
		}
	}

	records := make([]storage.ValidationRecord, 0, len(findings))
	for _, f := range findings {
		records = append(records, storage.ValidationRecord{
			Line:      f.Line,
			Field:     f.Field,
			Message:   f.Message,
			Severity:  string(f.Severity),
			Validator: validatorTag,
		})
	}
	if err := h.repo.SaveFindings(file.ID, records); err != nil {
		h.logger.Error("failed to persist findings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist findings"})
		return
	}
	if err := h.repo.UpdateFileStatus(file.ID, storage.StatusValidated, summary.TotalFindings); err != nil {
		h.logger.Error("failed to update file status", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"file_id":  file.ID,
		"errores":  findings,
		"resumen":  summary,
		"duracion": time.Since(start).String(),
	})
}

// GetFindings returns the persisted findings of one file
func (h *ValidationHandler) GetFindings(c *gin.Context) {
	file, ok := h.loadFile(c)
	if !ok {
		return
	}
	records, err := h.repo.ListFindings(file.ID)
	if err != nil {
		h.logger.Error("failed to list findings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list findings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"file_id": file.ID, "errores": records, "total": len(records)})
}

// GetSummary recomputes the severity summary from persisted findings
func (h *ValidationHandler) GetSummary(c *gin.Context) {
	file, ok := h.loadFile(c)
	if !ok {
		return
	}
	records, err := h.repo.ListFindings(file.ID)
	if err != nil {
		h.logger.Error("failed to list findings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list findings"})
		return
	}
	findings := make([]validation.Finding, 0, len(records))
	for _, r := range records {
		findings = append(findings, validation.Finding{
			Line:     r.Line,
			Field:    r.Field,
			Message:  r.Message,
			Severity: validation.Severity(r.Severity),
		})
	}
	c.JSON(http.StatusOK, gin.H{"file_id": file.ID, "resumen": validation.Summarize(findings)})
}

// GetRules returns the rule registry
func (h *ValidationHandler) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": validation.Rules, "total": len(validation.Rules)})
}

// LoadCatalogs loads catalog CSV exports into the store. Paths default
// to the configured ones; the request body may override them.
func (h *ValidationHandler) LoadCatalogs(c *gin.Context) {
	request := struct {
		CIE10Path          string `json:"cie10_path"`
		CIE11Path          string `json:"cie11_path"`
		CUPSPath           string `json:"cups_path"`
		CorrespondencePath string `json:"correspondence_path"`
	}{
		CIE10Path:          h.cfg.Catalogs.CIE10Path,
		CIE11Path:          h.cfg.Catalogs.CIE11Path,
		CUPSPath:           h.cfg.Catalogs.CUPSPath,
		CorrespondencePath: h.cfg.Catalogs.CorrespondencePath,
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	loaded := map[string]int{}
	var firstErr error
	load := func(name, path string, fn func(string) (int, error)) {
		if path == "" {
			return
		}
		count, err := fn(path)
		if err != nil {
			h.logger.Error("catalog load failed", zap.String("catalog", name), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		loaded[name] = count
	}
	load("cie10", request.CIE10Path, h.loader.LoadCIE10File)
	load("cie11", request.CIE11Path, h.loader.LoadCIE11File)
	load("cups", request.CUPSPath, h.loader.LoadCUPSFile)
	load("correspondence", request.CorrespondencePath, h.loader.LoadCorrespondenceFile)

	if firstErr != nil && len(loaded) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": firstErr.Error()})
		return
	}

	cie10, cie11, cups, correspondence := h.catalogs.Snapshot().Sizes()
	h.collector.SetCatalogSizes(cie10, cie11, cups, correspondence)
	c.JSON(http.StatusOK, gin.H{"loaded": loaded, "sizes": gin.H{
		"cie10": cie10, "cie11": cie11, "cups": cups, "correspondence": correspondence,
	}})
}

// CatalogStatus reports catalog sizes
func (h *ValidationHandler) CatalogStatus(c *gin.Context) {
	cie10, cie11, cups, correspondence := h.catalogs.Snapshot().Sizes()
	c.JSON(http.StatusOK, gin.H{
		"cie10": cie10, "cie11": cie11, "cups": cups, "correspondence": correspondence,
	})
}

// HealthCheck returns service health status
func (h *ValidationHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "rips-engine",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *ValidationHandler) loadFile(c *gin.Context) (*storage.StoredFile, bool) {
	id, err := uuid.Parse(c.Param("file_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return nil, false
	}
	file, err := h.repo.GetFile(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return nil, false
	}
	return file, true
}
