package models

import "time"

// BeneficiaryStatus tracks a record through its lifecycle
type BeneficiaryStatus string

const (
	StatusActive   BeneficiaryStatus = "active"
	StatusInactive BeneficiaryStatus = "inactive"
)

// Beneficiary is a person receiving support, registered at a unit by a
// staff user. LocationID and RegisteredBy drive the RBAC scope checks
// on every access.
type Beneficiary struct {
	ID           string            `bson:"_id" json:"id"`
	Name         string            `bson:"name" json:"name"`
	Phone        string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      string            `bson:"address,omitempty" json:"address,omitempty"`
	LocationID   string            `bson:"location_id" json:"location_id"`
	RegisteredBy string            `bson:"registered_by" json:"registered_by"`
	Status       BeneficiaryStatus `bson:"status" json:"status"`
	Notes        string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updated_at"`
}

// BeneficiariesCollection is the MongoDB collection name
const BeneficiariesCollection = "beneficiaries"
