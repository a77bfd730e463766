package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JustJay7/court-fetcher/internal/service"
	"github.com/JustJay7/court-fetcher/pkg/logger"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	svc    *service.Service
	logger *logger.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *service.Service, logger *logger.Logger) *Handlers {
	return &Handlers{
		svc:    svc,
		logger: logger,
	}
}

type searchRequest struct {
	Court      string     `json:"court" form:"court"`
	CaseType   string     `json:"caseType" form:"caseType"`
	CaseNumber flexString `json:"caseNumber" form:"caseNumber"`
	Year       flexString `json:"year" form:"year"`
}

type causeListRequest struct {
	Court string `json:"court" form:"court"`
	Date  string `json:"date" form:"date"`
}

// Search handles case searches
func (h *Handlers) Search(c *gin.Context) {
	var req searchRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.Search(c.Request.Context(), service.SearchRequest{
		Court:      req.Court,
		CaseType:   req.CaseType,
		CaseNumber: string(req.CaseNumber),
		Year:       string(req.Year),
	})
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			respondValidation(c, vErr)
			return
		}
		h.logger.Error("Search error", "error", err)
		respondOperational(c, "Failed to fetch case details", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"queryId":     result.QueryID,
		"caseDetails": result.CaseDetails,
		"documents":   result.Documents,
		"history":     result.History,
	})
}

// DownloadDocument serves a case document, fetching it on first use
func (h *Handlers) DownloadDocument(c *gin.Context) {
	id, ok := parseID(c, "documentId", "Invalid document ID")
	if !ok {
		return
	}

	path, err := h.svc.DownloadDocument(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Download error", "documentID", id, "error", err)
		respondOperational(c, "Failed to download document", err)
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

// CauseList produces the cause list of a court for one day
func (h *Handlers) CauseList(c *gin.Context) {
	var req causeListRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.CauseList(c.Request.Context(), service.CauseListRequest{
		Court: req.Court,
		Date:  req.Date,
	})
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			respondValidation(c, vErr)
			return
		}
		h.logger.Error("Cause list error", "court", req.Court, "error", err)
		respondOperational(c, "Failed to fetch cause list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"date":        result.Date,
		"court":       result.Court,
		"filePath":    result.FilePath,
		"downloadUrl": result.DownloadURL,
	})
}

// DownloadCauseList serves a stored cause list file by name
func (h *Handlers) DownloadCauseList(c *gin.Context) {
	name := c.Param("filename")

	path, err := h.svc.CauseListFile(name)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "File not found",
			})
			return
		}
		respondOperational(c, "Failed to read cause list", err)
		return
	}

	c.FileAttachment(path, name)
}

// History lists recent queries
func (h *Handlers) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	rows, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("History error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": rows,
	})
}

// QueryDetail returns one query with its parsed data and documents
func (h *Handlers) QueryDetail(c *gin.Context) {
	id, ok := parseID(c, "queryId", "Invalid query ID")
	if !ok {
		return
	}

	detail, err := h.svc.QueryDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Query not found",
			})
			return
		}
		h.logger.Error("Query detail error", "queryID", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    detail,
	})
}

// Courts lists the courts that can be searched
func (h *Handlers) Courts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"courts":  h.svc.Courts(),
	})
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": h.svc.Healthy(),
		"cache":    h.svc.CacheStats(),
		"time":     time.Now().Unix(),
	})
}

// CacheStats returns cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.svc.CacheStats(),
	})
}

// bind decodes the request body. An empty body decodes to the zero value so
// that field validation reports what is missing.
func (h *Handlers) bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return false
	}
	return true
}

func parseID(c *gin.Context, param, msg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   msg,
		})
		return 0, false
	}
	return uint(id), true
}
