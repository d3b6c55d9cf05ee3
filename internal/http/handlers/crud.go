package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/services"
)

// maxBodyBytes caps create and update payloads.
const maxBodyBytes = 1 << 20

// CRUDHandler serves create, list, get, update and delete for one resource.
type CRUDHandler[T any] struct {
	svc   services.CRUDService[T]
	label string
}

// NewCRUDHandler returns a handler whose messages name the resource as label
// ("Course", "Quiz question").
func NewCRUDHandler[T any](svc services.CRUDService[T], label string) *CRUDHandler[T] {
	return &CRUDHandler[T]{svc: svc, label: label}
}

// POST /api/v1/<resource>
func (h *CRUDHandler[T]) Create(c *gin.Context) {
	row := new(T)
	if err := bindBody(c, h.op("create"), row); err != nil {
		response.RespondError(c, err)
		return
	}
	out, err := h.svc.Create(c.Request.Context(), row)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, h.label+" created successfully", out)
}

// GET /api/v1/<resource>
func (h *CRUDHandler[T]) List(c *gin.Context) {
	req := services.ParseListRequest(c.Request.URL.Query(), h.svc.Spec())
	out, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondPage(c, h.label+" list fetched successfully", out.Meta, out.Data)
}

// GET /api/v1/<resource>/:id
func (h *CRUDHandler[T]) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id", h.op("get"))
	if !ok {
		return
	}
	out, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, h.label+" fetched successfully", out)
}

// PATCH /api/v1/<resource>/:id
func (h *CRUDHandler[T]) Update(c *gin.Context) {
	op := h.op("update")
	id, ok := h.pathID(c, "id", op)
	if !ok {
		return
	}
	raw, err := readBody(c, op)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	patch, err := services.ParsePatch(op, raw)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	out, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, h.label+" updated successfully", out)
}

// DELETE /api/v1/<resource>/:id
func (h *CRUDHandler[T]) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", h.op("delete"))
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, h.label+" deleted successfully", gin.H{"id": id})
}

func (h *CRUDHandler[T]) op(name string) string { return "http." + h.svc.Resource() + "." + name }

func (h *CRUDHandler[T]) pathID(c *gin.Context, param, op string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.RespondError(c, domainagg.NewError(domainagg.CodeValidation, op, "invalid "+param, err))
		return uuid.Nil, false
	}
	return id, true
}

func limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
}

// readBody returns the raw payload for PATCH, where field presence matters.
func readBody(c *gin.Context, op string) ([]byte, error) {
	limitBody(c)
	raw, err := c.GetRawData()
	if err != nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "unreadable request body", err)
	}
	return raw, nil
}

func bindBody(c *gin.Context, op string, dst any) error {
	limitBody(c)
	if err := c.ShouldBindJSON(dst); err != nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "invalid json body", err)
	}
	return nil
}
