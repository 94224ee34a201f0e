package handlers

import (
	"github.com/gin-gonic/gin"

	"transdoc/internal/domain/documents/crt"
	"transdoc/internal/domain/documents/manifest"
	"transdoc/internal/infrastructure/http/v1/dto"
)

// CRTHandler issues and reads waybills.
type CRTHandler struct {
	*BaseHandler
	service *crt.Service
}

// NewCRTHandler creates a new CRT handler.
func NewCRTHandler(base *BaseHandler, service *crt.Service) *CRTHandler {
	return &CRTHandler{BaseHandler: base, service: service}
}

// Issue handles POST /api/v1/crts
func (h *CRTHandler) Issue(c *gin.Context) {
	var req dto.IssueCRTRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	docs, err := h.service.Issue(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NewListResponse(docs))
}

// Get handles GET /api/v1/crts/:id
func (h *CRTHandler) Get(c *gin.Context) {
	crtID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetByID(c.Request.Context(), crtID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// ListByCarrier handles GET /api/v1/carriers/:id/crts?limit=
func (h *CRTHandler) ListByCarrier(c *gin.Context) {
	carrierID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	docs, err := h.service.ListByCarrier(c.Request.Context(), carrierID, h.ParseIntQuery(c, "limit", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(docs))
}

// ManifestHandler issues MIC/DTA manifests.
type ManifestHandler struct {
	*BaseHandler
	service *manifest.Service
}

// NewManifestHandler creates a new manifest handler.
func NewManifestHandler(base *BaseHandler, service *manifest.Service) *ManifestHandler {
	return &ManifestHandler{BaseHandler: base, service: service}
}

// IssueLoaded handles POST /api/v1/manifests/loaded
func (h *ManifestHandler) IssueLoaded(c *gin.Context) {
	var req dto.IssueLoadedManifestRequest
	if !h.BindJSON(c, &req) {
		return
	}
	carrierID, crtIDs, err := req.Parse()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.IssueLoaded(c.Request.Context(), carrierID, crtIDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// IssueEmptyLeg handles POST /api/v1/manifests/empty-leg
func (h *ManifestHandler) IssueEmptyLeg(c *gin.Context) {
	var req dto.IssueEmptyLegRequest
	if !h.BindJSON(c, &req) {
		return
	}
	carrierID, err := dto.ParseID("carrierId", req.CarrierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	docs, err := h.service.IssueEmptyLeg(c.Request.Context(), carrierID, req.Origin, req.Destination, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NewListResponse(docs))
}

// Get handles GET /api/v1/manifests/:id
func (h *ManifestHandler) Get(c *gin.Context) {
	manifestID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetByID(c.Request.Context(), manifestID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// ListCRTs handles GET /api/v1/manifests/:id/crts
func (h *ManifestHandler) ListCRTs(c *gin.Context) {
	manifestID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	docs, err := h.service.ListCRTs(c.Request.Context(), manifestID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(docs))
}

// LinkCRTs handles POST /api/v1/manifests/:id/crts
func (h *ManifestHandler) LinkCRTs(c *gin.Context) {
	manifestID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.LinkCRTsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	crtIDs, err := dto.ParseIDs("crtIds", req.CRTIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.LinkCRTs(c.Request.Context(), manifestID, crtIDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}
