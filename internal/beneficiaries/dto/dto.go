package dto

import "go-sahay/internal/beneficiaries/models"

type ListBeneficiariesInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	LocationID    string `query:"location_id" doc:"Filter by unit"`
	Mine          bool   `query:"mine" doc:"Only records registered by the caller"`
}

type GetBeneficiaryInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Beneficiary ID"`
}

type RegisterBeneficiaryInput struct {
	Authorization string                     `header:"Authorization"`
	Cookie        string                     `header:"Cookie"`
	Body          RegisterBeneficiaryRequest `json:"body"`
}

type RegisterBeneficiaryRequest struct {
	Name       string `json:"name" doc:"Full name"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	LocationID string `json:"location_id" doc:"Unit the beneficiary belongs to"`
	Notes      string `json:"notes,omitempty"`
}

type UpdateBeneficiaryInput struct {
	Authorization string                   `header:"Authorization"`
	Cookie        string                   `header:"Cookie"`
	ID            string                   `path:"id" doc:"Beneficiary ID"`
	Body          UpdateBeneficiaryRequest `json:"body"`
}

type UpdateBeneficiaryRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
	Status  *string `json:"status,omitempty" doc:"active or inactive"`
}

type DeleteBeneficiaryInput struct {
	Authorization string `header:"Authorization"`
	Cookie        string `header:"Cookie"`
	ID            string `path:"id" doc:"Beneficiary ID"`
}

type BeneficiaryOutput struct {
	Body models.Beneficiary `json:"body"`
}

type BeneficiaryListOutput struct {
	Body BeneficiaryListResponse `json:"body"`
}

type BeneficiaryListResponse struct {
	Beneficiaries []models.Beneficiary `json:"beneficiaries"`
	Total         int                  `json:"total"`
}

type MessageOutput struct {
	Body MessageResponse `json:"body"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
