package models

import "time"

// LocationType is a node's level in the administrative hierarchy
type LocationType string

const (
	LocationTypeState    LocationType = "state"
	LocationTypeDistrict LocationType = "district"
	LocationTypeArea     LocationType = "area"
	LocationTypeUnit     LocationType = "unit"
)

// ValidLocationType reports whether t is one of the hierarchy levels
func ValidLocationType(t LocationType) bool {
	switch t {
	case LocationTypeState, LocationTypeDistrict, LocationTypeArea, LocationTypeUnit:
		return true
	}
	return false
}

// childTypes maps each level to the one below it
var childTypes = map[LocationType]LocationType{
	LocationTypeState:    LocationTypeDistrict,
	LocationTypeDistrict: LocationTypeArea,
	LocationTypeArea:     LocationTypeUnit,
}

// ChildType returns the level expected under t, or "" for leaf units
func (t LocationType) ChildType() LocationType {
	return childTypes[t]
}

// Location is a node in the state > district > area > unit tree
type Location struct {
	ID        string       `bson:"_id" json:"id"`
	Name      string       `bson:"name" json:"name"`
	Type      LocationType `bson:"type" json:"type"`
	ParentID  string       `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	Code      string       `bson:"code,omitempty" json:"code,omitempty"`
	IsActive  bool         `bson:"is_active" json:"is_active"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at" json:"updated_at"`
}

// LocationsCollection is the MongoDB collection name
const LocationsCollection = "locations"

// MaxHierarchyDepth bounds ancestor walks
const MaxHierarchyDepth = 8
