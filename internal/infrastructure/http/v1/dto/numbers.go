package dto

import (
	"transdoc/internal/core/numerator"
	"transdoc/internal/domain/numbering"
)

// AllocateNumbersRequest asks for quantity numbers on a route.
type AllocateNumbersRequest struct {
	Kind        string `json:"kind" binding:"required"`
	CarrierID   string `json:"carrierId" binding:"required"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Quantity    int    `json:"quantity"`
}

// NumbersResponse lists the allocated numbers in ascending order.
type NumbersResponse struct {
	Kind    numerator.DocumentKind   `json:"kind"`
	Label   string                   `json:"label"`
	Numbers []numbering.NumberRecord `json:"numbers"`
}

// NewNumbersResponse builds the response for kind.
func NewNumbersResponse(kind numerator.DocumentKind, records []numbering.NumberRecord) NumbersResponse {
	return NumbersResponse{Kind: kind, Label: kind.Label(), Numbers: records}
}

// RebaseRequest raises a counter to Last.
type RebaseRequest struct {
	Last int64 `json:"last"`
}
