package dto

import "go-sahay/internal/locations/models"

type ListLocationsInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	Type          string `query:"type" doc:"Filter by hierarchy level: state, district, area, unit"`
	ParentID      string `query:"parent_id" doc:"Filter by direct parent"`
}

type GetLocationInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Location ID"`
}

type CreateLocationInput struct {
	Authorization string                `header:"Authorization"`
	Cookie        string                `header:"Cookie"`
	Body          CreateLocationRequest `json:"body"`
}

type CreateLocationRequest struct {
	Name     string `json:"name" doc:"Location name"`
	Type     string `json:"type" doc:"Hierarchy level: state, district, area, unit"`
	ParentID string `json:"parent_id,omitempty" doc:"Parent location; empty for state"`
	Code     string `json:"code,omitempty" doc:"Optional short code, unique when set"`
}

type UpdateLocationInput struct {
	Authorization string                `header:"Authorization"`
	Cookie        string                `header:"Cookie"`
	ID            string                `path:"id" doc:"Location ID"`
	Body          UpdateLocationRequest `json:"body"`
}

type UpdateLocationRequest struct {
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

type DeactivateLocationInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Location ID"`
}

type LocationOutput struct {
	Body models.Location `json:"body"`
}

type LocationListOutput struct {
	Body LocationListResponse `json:"body"`
}

type LocationListResponse struct {
	Locations []models.Location `json:"locations"`
	Total     int               `json:"total"`
}

type MessageOutput struct {
	Body MessageResponse `json:"body"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
