package resumes

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-extractor/internal/shared/server/middleware"
	"resume-extractor/internal/shared/server/respond"
)

const (
	defaultMaxUploadBytes = 10 << 20 // 10MB
	defaultMaxBatchFiles  = 50
	multipartOverhead     = 1 << 20

	formatJSON = "json"
	formatCSV  = "csv"
	formatXLSX = "xlsx"

	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	exportBaseName = "resume_info"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
	MaxBatchFiles  int
}

// NewHandler constructs a Handler. Non-positive limits fall back to defaults.
func NewHandler(svc *Service, maxUploadBytes int64, maxBatchFiles int) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	if maxBatchFiles <= 0 {
		maxBatchFiles = defaultMaxBatchFiles
	}
	if svc != nil && svc.MaxFileBytes <= 0 {
		svc.MaxFileBytes = maxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes, MaxBatchFiles: maxBatchFiles}
}

// RegisterExtractRoutes attaches the batch extraction endpoints.
func (h *Handler) RegisterExtractRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/extract", h.extract)
	rg.POST("/resumes/extract/stream", h.extractStream)
}

// RegisterRoutes attaches the batch history endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/batches", h.list)
	rg.GET("/batches/:id", h.get)
	rg.GET("/batches/:id/export", h.export)
}

func (h *Handler) extract(c *gin.Context) {
	format, ok := parseFormat(c.DefaultQuery("format", formatJSON), true)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be json, csv or xlsx", nil)
		return
	}

	uploads, ok := h.readUploads(c)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(c)
	batch, err := h.Svc.ProcessBatch(c.Request.Context(), userID, uploads, nil)
	if err != nil {
		h.batchError(c, err)
		return
	}
	c.Set("batchId", batch.ID)

	if format == formatJSON {
		respond.JSON(c, http.StatusOK, toBatchResponse(batch))
		return
	}
	h.writeExport(c, batch, format)
}

func (h *Handler) extractStream(c *gin.Context) {
	uploads, ok := h.readUploads(c)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(c)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	batch, err := h.Svc.ProcessBatch(c.Request.Context(), userID, uploads, func(p Progress) {
		c.SSEvent("progress", toProgressResponse(p))
		c.Writer.Flush()
	})
	if err != nil {
		if c.Writer.Written() {
			c.SSEvent("error", gin.H{"message": err.Error()})
			return
		}
		h.batchError(c, err)
		return
	}
	c.Set("batchId", batch.ID)
	c.SSEvent("result", toBatchResponse(batch))
	c.Writer.Flush()
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.batchError(c, err)
		return
	}
	respond.OK(c, listResponse{Items: items, Limit: limit, Offset: offset})
}

func (h *Handler) get(c *gin.Context) {
	batch, ok := h.loadBatch(c)
	if !ok {
		return
	}
	respond.OK(c, toBatchResponse(batch))
}

func (h *Handler) export(c *gin.Context) {
	format, ok := parseFormat(c.DefaultQuery("format", formatCSV), false)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be csv or xlsx", nil)
		return
	}
	batch, ok := h.loadBatch(c)
	if !ok {
		return
	}
	h.writeExport(c, batch, format)
}

func (h *Handler) loadBatch(c *gin.Context) (Batch, bool) {
	userID := middleware.UserIDFromContext(c)
	batchID := strings.TrimSpace(c.Param("id"))
	c.Set("batchId", batchID)

	batch, err := h.Svc.Get(c.Request.Context(), userID, batchID)
	if err != nil {
		h.batchError(c, err)
		return Batch{}, false
	}
	return batch, true
}

func (h *Handler) readUploads(c *gin.Context) ([]Upload, bool) {
	limit := h.MaxUploadBytes*int64(h.MaxBatchFiles) + multipartOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "request exceeds upload limit", gin.H{"maxBytes": limit})
			return nil, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "files are required", nil)
		return nil, false
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "files are required", nil)
		return nil, false
	}
	if len(headers) > h.MaxBatchFiles {
		respond.Error(c, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("at most %d files per batch", h.MaxBatchFiles),
			gin.H{"maxFiles": h.MaxBatchFiles, "received": len(headers)})
		return nil, false
	}

	uploads := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		up := Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
		// Oversized and unreadable files stay in the batch and are reported per file.
		if fh.Size <= h.MaxUploadBytes {
			data, err := readFileHeader(fh)
			if err == nil {
				up.Data = data
			}
		}
		uploads = append(uploads, up)
	}
	return uploads, true
}

func (h *Handler) writeExport(c *gin.Context, batch Batch, format string) {
	var buf bytes.Buffer
	var contentType string
	var err error
	switch format {
	case formatXLSX:
		contentType = mimeXLSX
		err = WriteXLSX(&buf, batch.Records)
	default:
		contentType = mimeCSV
		err = WriteCSV(&buf, batch.Records, h.Svc.EmbedViewLinks && hasViewLinks(batch.Records))
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build export", nil)
		return
	}

	respond.Attachment(c, exportBaseName+"."+format, contentType, buf.Bytes())
}

func (h *Handler) batchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "batch not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process batch", nil)
	}
}

func parseFormat(raw string, allowJSON bool) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case formatCSV:
		return formatCSV, true
	case formatXLSX:
		return formatXLSX, true
	case formatJSON:
		return formatJSON, allowJSON
	default:
		return "", false
	}
}

func hasViewLinks(records []Record) bool {
	for _, rec := range records {
		if rec.ViewURL != "" {
			return true
		}
	}
	return false
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
