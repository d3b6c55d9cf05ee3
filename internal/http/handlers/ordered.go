package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/services"
)

// OrderedHandler adds group listing and explicit reordering to CRUDHandler.
type OrderedHandler[T any] struct {
	*CRUDHandler[T]
	svc services.OrderedService[T]
}

func NewOrderedHandler[T any](svc services.OrderedService[T], label string) *OrderedHandler[T] {
	return &OrderedHandler[T]{CRUDHandler: NewCRUDHandler[T](svc, label), svc: svc}
}

type reorderRequest struct {
	Order *int `json:"order"`
}

// GET /api/v1/lesson/module/:moduleId
func (h *OrderedHandler[T]) ListByGroup(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		group, ok := h.pathID(c, param, h.op("list_by_group"))
		if !ok {
			return
		}
		req := services.ParseListRequest(c.Request.URL.Query(), h.svc.Spec())
		out, err := h.svc.ListByGroup(c.Request.Context(), group, req)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondPage(c, h.label+" list fetched successfully", out.Meta, out.Data)
	}
}

// PATCH /api/v1/<resource>/:id/order
func (h *OrderedHandler[T]) Reorder(c *gin.Context) {
	op := h.op("reorder")
	id, ok := h.pathID(c, "id", op)
	if !ok {
		return
	}
	var body reorderRequest
	if err := bindBody(c, op, &body); err != nil {
		response.RespondError(c, err)
		return
	}
	if body.Order == nil {
		response.RespondError(c, domainagg.NewError(domainagg.CodeValidation, op, "order required", nil))
		return
	}
	out, err := h.svc.Reorder(c.Request.Context(), id, *body.Order)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, h.label+" order updated successfully", out)
}
