package dto

import (
	"transdoc/internal/core/id"
	"transdoc/internal/domain/documents/crt"
)

// IssueCRTRequest issues Quantity waybills sharing the commercial data.
type IssueCRTRequest struct {
	CarrierID         string `json:"carrierId" binding:"required"`
	Origin            string `json:"origin,omitempty"`
	Destination       string `json:"destination" binding:"required"`
	Quantity          int    `json:"quantity"`
	CommercialInvoice string `json:"commercialInvoice"`
	Exporter          string `json:"exporter"`
	Importer          string `json:"importer"`
}

// ToDomain converts the request into the issuer input.
func (r *IssueCRTRequest) ToDomain() (crt.IssueRequest, error) {
	carrierID, err := ParseID("carrierId", r.CarrierID)
	if err != nil {
		return crt.IssueRequest{}, err
	}
	return crt.IssueRequest{
		CarrierID:         carrierID,
		Origin:            r.Origin,
		Destination:       r.Destination,
		Quantity:          r.Quantity,
		CommercialInvoice: r.CommercialInvoice,
		Exporter:          r.Exporter,
		Importer:          r.Importer,
	}, nil
}

// IssueLoadedManifestRequest issues one manifest over existing CRTs.
type IssueLoadedManifestRequest struct {
	CarrierID string   `json:"carrierId" binding:"required"`
	CRTIDs    []string `json:"crtIds" binding:"required,min=1"`
}

// Parse returns the carrier and CRT ids.
func (r *IssueLoadedManifestRequest) Parse() (id.ID, []id.ID, error) {
	carrierID, err := ParseID("carrierId", r.CarrierID)
	if err != nil {
		return id.ID{}, nil, err
	}
	crtIDs, err := ParseIDs("crtIds", r.CRTIDs)
	if err != nil {
		return id.ID{}, nil, err
	}
	return carrierID, crtIDs, nil
}

// IssueEmptyLegRequest issues manifests for movements without cargo.
type IssueEmptyLegRequest struct {
	CarrierID   string `json:"carrierId" binding:"required"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Quantity    int    `json:"quantity"`
}

// LinkCRTsRequest attaches more CRTs to a loaded manifest.
type LinkCRTsRequest struct {
	CRTIDs []string `json:"crtIds" binding:"required,min=1"`
}
