package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
	"transdoc/internal/infrastructure/http/v1/dto"
)

// ReferenceHandler serves the read-only reference data: countries, carriers
// and license validity.
type ReferenceHandler struct {
	*BaseHandler
	countries *country.Registry
	carriers  carrier.Repository
	licenses  carrier.LicenseRepository
	now       func() time.Time
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(
	base *BaseHandler,
	countries *country.Registry,
	carriers carrier.Repository,
	licenses carrier.LicenseRepository,
) *ReferenceHandler {
	return &ReferenceHandler{
		BaseHandler: base,
		countries:   countries,
		carriers:    carriers,
		licenses:    licenses,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Countries handles GET /api/v1/countries
func (h *ReferenceHandler) Countries(c *gin.Context) {
	h.OK(c, dto.NewListResponse(h.countries.List()))
}

// Carriers handles GET /api/v1/carriers
func (h *ReferenceHandler) Carriers(c *gin.Context) {
	list, err := h.carriers.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list))
}

// CarrierLicenses handles GET /api/v1/carriers/:id/licenses
func (h *ReferenceHandler) CarrierLicenses(c *gin.Context) {
	carrierID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	cr, err := h.carriers.GetByID(c.Request.Context(), carrierID)
	if err != nil {
		h.Error(c, err)
		return
	}
	licenses, err := h.licenses.ListForCarrier(c.Request.Context(), carrierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	now := h.now()
	out := make([]carrier.LicenseStatus, 0, len(licenses))
	for _, l := range licenses {
		out = append(out, carrier.LicenseStatus{
			DestinationLicense: l,
			Validity:           carrier.ClassifyLicense(l, now),
			Carrier:            cr.Summary(),
		})
	}
	h.OK(c, dto.NewListResponse(out))
}

// LicenseValidity handles GET /api/v1/licenses/validity
func (h *ReferenceHandler) LicenseValidity(c *gin.Context) {
	report, err := carrier.BuildValidityReport(c.Request.Context(), h.carriers, h.licenses, h.now())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
