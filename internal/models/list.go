package models

import "flowcrm-data/internal/domain"

// ListRequest is the wire shape of a list-view query, as posted by the
// front-end list pages.
type ListRequest struct {
	EntityType    string   `json:"entity_type"`
	PrimaryFilter string   `json:"primary_filter,omitempty"`
	BoolFilters   []string `json:"bool_filters,omitempty"`
	Page          int      `json:"page"`
	Size          int      `json:"size"`
}

// Pagination mirrors the front-end pagination contract.
type Pagination struct {
	Size  int `json:"size"`
	Page  int `json:"page"`
	Count int `json:"count"`
}

// ListResponse is the page of records plus pagination metadata.
type ListResponse struct {
	Items      []domain.Record `json:"items"`
	Pagination Pagination      `json:"pagination"`
}
