package handlers

import (
	"github.com/gin-gonic/gin"

	"transdoc/internal/core/apperror"
	"transdoc/internal/core/numerator"
	"transdoc/internal/domain/numbering"
	"transdoc/internal/infrastructure/http/v1/dto"
)

// NumbersHandler exposes raw number allocation and counter administration.
type NumbersHandler struct {
	*BaseHandler
	service *numbering.Service
}

// NewNumbersHandler creates a new numbers handler.
func NewNumbersHandler(base *BaseHandler, service *numbering.Service) *NumbersHandler {
	return &NumbersHandler{BaseHandler: base, service: service}
}

// Allocate reserves numbers without issuing documents.
// POST /api/v1/numbers
func (h *NumbersHandler) Allocate(c *gin.Context) {
	var req dto.AllocateNumbersRequest
	if !h.BindJSON(c, &req) {
		return
	}
	kind, err := numerator.ParseKind(req.Kind)
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()).WithDetail("field", "kind"))
		return
	}
	carrierID, err := dto.ParseID("carrierId", req.CarrierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	records, err := h.service.AllocateNumbers(c.Request.Context(), kind, carrierID, req.Origin, req.Destination, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NewNumbersResponse(kind, records))
}

// GetSequence reports the counter state.
// GET /api/v1/sequences/:kind/:carrierId
func (h *NumbersHandler) GetSequence(c *gin.Context) {
	kind, ok := h.paramKind(c)
	if !ok {
		return
	}
	carrierID, ok := h.ParamID(c, "carrierId")
	if !ok {
		return
	}

	state, err := h.service.Sequence(c.Request.Context(), kind, carrierID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, state)
}

// Rebase raises the counter; it never lowers it.
// POST /api/v1/sequences/:kind/:carrierId/rebase
func (h *NumbersHandler) Rebase(c *gin.Context) {
	kind, ok := h.paramKind(c)
	if !ok {
		return
	}
	carrierID, ok := h.ParamID(c, "carrierId")
	if !ok {
		return
	}
	var req dto.RebaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	state, err := h.service.Rebase(c.Request.Context(), kind, carrierID, req.Last)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, state)
}

func (h *NumbersHandler) paramKind(c *gin.Context) (numerator.DocumentKind, bool) {
	kind, err := numerator.ParseKind(c.Param("kind"))
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()).WithDetail("field", "kind"))
		return "", false
	}
	return kind, true
}
