package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"go-sahay/internal/beneficiaries/models"
)

// Store is the persistence surface the beneficiary service needs
type Store interface {
	Insert(ctx context.Context, beneficiary *models.Beneficiary) error
	Get(ctx context.Context, id string) (*models.Beneficiary, error)
	List(ctx context.Context, locationID, registeredBy string) ([]models.Beneficiary, error)
	Update(ctx context.Context, beneficiary *models.Beneficiary) error
	Delete(ctx context.Context, id string) (bool, error)
}

// BeneficiaryService manages beneficiary records. Access control lives
// in the route layer; the service trusts its callers.
type BeneficiaryService struct {
	repository Store
}

// NewBeneficiaryService creates a new beneficiary service
func NewBeneficiaryService(repository Store) *BeneficiaryService {
	return &BeneficiaryService{repository: repository}
}

// Register creates a beneficiary record at the registrar's location
func (s *BeneficiaryService) Register(ctx context.Context, beneficiary *models.Beneficiary) error {
	if beneficiary.Name == "" {
		return fmt.Errorf("beneficiary name cannot be empty")
	}
	if beneficiary.LocationID == "" {
		return fmt.Errorf("location is required")
	}
	if beneficiary.RegisteredBy == "" {
		return fmt.Errorf("registrar is required")
	}

	if beneficiary.ID == "" {
		beneficiary.ID = uuid.New().String()
	}
	if err := s.repository.Insert(ctx, beneficiary); err != nil {
		return err
	}

	slog.Info("[Beneficiaries] Beneficiary registered",
		"id", beneficiary.ID,
		"location_id", beneficiary.LocationID,
		"registered_by", beneficiary.RegisteredBy)
	return nil
}

// Get returns a beneficiary by id, or nil
func (s *BeneficiaryService) Get(ctx context.Context, id string) (*models.Beneficiary, error) {
	return s.repository.Get(ctx, id)
}

// List returns active beneficiaries filtered by location and registrar
func (s *BeneficiaryService) List(ctx context.Context, locationID, registeredBy string) ([]models.Beneficiary, error) {
	return s.repository.List(ctx, locationID, registeredBy)
}

// BeneficiaryPatch carries updatable fields; nil means "leave as is"
type BeneficiaryPatch struct {
	Name    *string
	Phone   *string
	Address *string
	Notes   *string
	Status  *models.BeneficiaryStatus
}

// Update applies a patch to an existing record
func (s *BeneficiaryService) Update(ctx context.Context, id string, patch BeneficiaryPatch) (*models.Beneficiary, error) {
	beneficiary, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if beneficiary == nil {
		return nil, fmt.Errorf("beneficiary not found: %s", id)
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("beneficiary name cannot be empty")
		}
		beneficiary.Name = *patch.Name
	}
	if patch.Phone != nil {
		beneficiary.Phone = *patch.Phone
	}
	if patch.Address != nil {
		beneficiary.Address = *patch.Address
	}
	if patch.Notes != nil {
		beneficiary.Notes = *patch.Notes
	}
	if patch.Status != nil {
		if *patch.Status != models.StatusActive && *patch.Status != models.StatusInactive {
			return nil, fmt.Errorf("invalid status: %s", *patch.Status)
		}
		beneficiary.Status = *patch.Status
	}

	if err := s.repository.Update(ctx, beneficiary); err != nil {
		return nil, err
	}
	return beneficiary, nil
}

// Delete removes a beneficiary record permanently
func (s *BeneficiaryService) Delete(ctx context.Context, id string) error {
	removed, err := s.repository.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("beneficiary not found: %s", id)
	}
	slog.Info("[Beneficiaries] Beneficiary deleted", "id", id)
	return nil
}
