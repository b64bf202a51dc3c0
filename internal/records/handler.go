package records

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"records-backend/internal/shared/server/middleware"
	"records-backend/internal/shared/server/respond"
)

const maxBodySize = 1 << 20 // 1MB

// Error codes returned in API error bodies and batch rejections.
const (
	CodeInvalidInput = "invalid_input"
	CodeDuplicate    = "duplicate_record"
	CodeInternal     = "internal_error"
)

// ErrorCode maps a service error onto its API error code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRecord):
		return CodeInvalidInput
	case errors.Is(err, ErrDuplicateRecord):
		return CodeDuplicate
	default:
		return CodeInternal
	}
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	Exporter *Exporter
}

// NewHandler constructs a Handler. exporter may be nil, in which case the
// export route reports 503.
func NewHandler(svc *Service, exporter *Exporter) *Handler {
	return &Handler{Svc: svc, Exporter: exporter}
}

// RegisterRoutes attaches record routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/records", h.add)
	rg.POST("/records/batch", h.addBatch)
	rg.GET("/records", h.list)
	rg.POST("/records/export", h.export)
}

func (h *Handler) add(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, CodeInvalidInput, "invalid request body", nil)
		return
	}
	rec := req.toRecord()

	var add func(context.Context, Record) error
	shape := strings.ToLower(strings.TrimSpace(c.Query("shape")))
	switch shape {
	case "", "record":
		shape = "record"
		add = h.Svc.Add
	case "fields":
		add = h.Svc.AddWithComponent
	default:
		respond.Error(c, http.StatusBadRequest, CodeInvalidInput, "shape must be record or fields", nil)
		return
	}
	c.Set(middleware.RecordShapeKey, shape)

	if err := add(c.Request.Context(), rec); err != nil {
		c.Set(middleware.OutcomeKey, ErrorCode(err))
		writeError(c, err)
		return
	}
	c.Set(middleware.OutcomeKey, "admitted")
	respond.Created(c, toResponse(rec))
}

func (h *Handler) addBatch(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, CodeInvalidInput, "invalid request body", nil)
		return
	}
	recs := make([]Record, 0, len(req.Records))
	for _, r := range req.Records {
		recs = append(recs, r.toRecord())
	}
	c.Set(middleware.RecordShapeKey, "batch")

	res, err := h.Svc.AddAll(c.Request.Context(), recs)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toBatchResponse(res))
}

func (h *Handler) list(c *gin.Context) {
	var (
		recs []Record
		err  error
	)
	if name, ok := c.GetQuery("name"); ok {
		recs, err = h.Svc.AllWithName(c.Request.Context(), name)
	} else {
		recs, err = h.Svc.All(c.Request.Context())
	}
	if err != nil {
		writeError(c, err)
		return
	}

	switch strings.ToLower(strings.TrimSpace(c.Query("sort"))) {
	case "":
	case "name_age":
		SortByNameThenAge(recs)
	default:
		respond.Error(c, http.StatusBadRequest, CodeInvalidInput, "sort must be name_age", nil)
		return
	}
	respond.OK(c, toListResponse(recs))
}

func (h *Handler) export(c *gin.Context) {
	if h.Exporter == nil {
		respond.Error(c, http.StatusServiceUnavailable, "export_unavailable", "no object store configured", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, CodeInvalidInput, "invalid request body", nil)
		return
	}

	snap, err := h.Exporter.Export(c.Request.Context(), req.Label)
	if err != nil {
		if errors.Is(err, ErrInvalidLabel) {
			respond.Error(c, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
			return
		}
		writeError(c, err)
		return
	}
	respond.OK(c, snap)
}

func writeError(c *gin.Context, err error) {
	switch code := ErrorCode(err); code {
	case CodeInvalidInput:
		respond.Error(c, http.StatusBadRequest, code, err.Error(), nil)
	case CodeDuplicate:
		// The message is logged; the record goes only into the response.
		var dup *DuplicateError
		if errors.As(err, &dup) {
			respond.Error(c, http.StatusConflict, code, "record already exists", toResponse(dup.Record))
			return
		}
		respond.Error(c, http.StatusConflict, code, "record already exists", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, code, err.Error(), nil)
	}
}
