package importer

import (
	"errors"
	"net/http"

	"menuvo/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// --------------------------------------------------
// Merchant uploads a menu file
// --------------------------------------------------
func (h *Handler) Upload(c *gin.Context) {
	merchantID := c.GetString("merchantID")
	storeID := c.Param("store_id")

	file, header, err := c.Request.FormFile("menu_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "menu_file is required"})
		return
	}
	defer file.Close()

	if err := ValidateFileExtension(header.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.service.CreateJob(
		c.Request.Context(),
		merchantID,
		storeID,
		header.Filename,
		file,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"import_job_id": job.ID,
		"status":        job.Status,
		"message":       "Menu uploaded. Extraction and comparison will start automatically.",
	})
}

// --------------------------------------------------
// Status polling (frontend polls until READY / FAILED / COMPLETED)
// --------------------------------------------------
func (h *Handler) GetStatus(c *gin.Context) {
	merchantID := c.GetString("merchantID")
	storeID := c.Param("store_id")
	jobID := c.Param("job_id")

	job, err := h.service.GetJob(c.Request.Context(), merchantID, storeID, jobID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                job.ID,
		"status":            job.Status,
		"error_message":     job.ErrorMessage,
		"comparison_data":   job.ComparisonData,
		"original_filename": job.OriginalFilename,
		"file_type":         job.FileType,
		"created_at":        job.CreatedAt,
	})
}

func (h *Handler) List(c *gin.Context) {
	merchantID := c.GetString("merchantID")
	storeID := c.Param("store_id")

	jobs, err := h.service.ListJobs(c.Request.Context(), merchantID, storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"import_jobs": jobs})
}

// --------------------------------------------------
// Apply approved changes
// --------------------------------------------------
func (h *Handler) Apply(c *gin.Context) {
	merchantID := c.GetString("merchantID")
	storeID := c.Param("store_id")
	jobID := c.Param("job_id")

	var req struct {
		Selections []ImportSelection `json:"selections"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	warnings, err := h.service.Apply(
		c.Request.Context(),
		merchantID,
		storeID,
		jobID,
		req.Selections,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"status": StatusCompleted}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrJobNotFound), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotStoreOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmptySelections):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidJobState), errors.Is(err, ErrComparisonMissing):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
