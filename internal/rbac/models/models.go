package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PermissionScope is the breadth of records a permission applies to
type PermissionScope string

const (
	ScopeOwn      PermissionScope = "own"      // records owned by the caller
	ScopeRegional PermissionScope = "regional" // records inside the caller's admin scope
	ScopeAll      PermissionScope = "all"      // every record
)

// scopeRank orders scopes from narrowest to widest
var scopeRank = map[PermissionScope]int{
	ScopeOwn:      1,
	ScopeRegional: 2,
	ScopeAll:      3,
}

// Wider reports whether a is a more permissive scope than b
func (a PermissionScope) Wider(b PermissionScope) bool {
	return scopeRank[a] > scopeRank[b]
}

// Valid reports whether the scope is one of the enumerated values
func (a PermissionScope) Valid() bool {
	_, ok := scopeRank[a]
	return ok
}

// TimeWindow restricts a permission to hours of the day; Start is
// inclusive, End exclusive.
type TimeWindow struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// PermissionConditions are the optional time restrictions on a permission
type PermissionConditions struct {
	AllowedHours *TimeWindow `bson:"allowed_hours,omitempty" json:"allowed_hours,omitempty"`
	AllowedDays  []string    `bson:"allowed_days,omitempty" json:"allowed_days,omitempty"` // weekday names, e.g. "Tuesday"
}

// PermissionDependencies lists permissions that must also be held for
// this one to be usable.
type PermissionDependencies struct {
	Requires []string `bson:"requires" json:"requires"`
}

// Permission is a named capability, e.g. "beneficiaries.read.regional"
type Permission struct {
	Name         string                  `bson:"_id" json:"name"`
	Module       string                  `bson:"module" json:"module"`
	Category     string                  `bson:"category,omitempty" json:"category,omitempty"`
	Resource     string                  `bson:"resource" json:"resource"`
	Action       string                  `bson:"action" json:"action"`
	Scope        PermissionScope         `bson:"scope" json:"scope"`
	Description  string                  `bson:"description,omitempty" json:"description,omitempty"`
	Conditions   *PermissionConditions   `bson:"conditions,omitempty" json:"conditions,omitempty"`
	Dependencies *PermissionDependencies `bson:"dependencies,omitempty" json:"dependencies,omitempty"`
	IsSystem     bool                    `bson:"is_system" json:"is_system"`
	CreatedAt    time.Time               `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time               `bson:"updated_at" json:"updated_at"`
}

// SameAction reports whether two permissions cover the same operation,
// possibly at different scopes.
func (p Permission) SameAction(other Permission) bool {
	return p.Module == other.Module && p.Resource == other.Resource && p.Action == other.Action
}

// RoleCategory groups roles for administration
type RoleCategory string

const (
	RoleCategorySystem      RoleCategory = "system"
	RoleCategoryCoordinator RoleCategory = "coordinator"
	RoleCategoryStaff       RoleCategory = "staff"
	RoleCategoryCustom      RoleCategory = "custom"
)

// ValidRoleCategory reports whether c is one of the enumerated categories
func ValidRoleCategory(c RoleCategory) bool {
	switch c {
	case RoleCategorySystem, RoleCategoryCoordinator, RoleCategoryStaff, RoleCategoryCustom:
		return true
	}
	return false
}

// Role is a named bundle of permissions; roles inherit from an optional
// parent role.
type Role struct {
	Name        string       `bson:"_id" json:"name"`
	DisplayName string       `bson:"display_name" json:"display_name"`
	Description string       `bson:"description,omitempty" json:"description,omitempty"`
	Level       int          `bson:"level" json:"level"` // higher = more authority
	Category    RoleCategory `bson:"category" json:"category"`
	Permissions []string     `bson:"permissions" json:"permissions"`
	Parent      string       `bson:"parent,omitempty" json:"parent,omitempty"`
	IsSystem    bool         `bson:"is_system" json:"is_system"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// UserRoleAssignment links a user to a role. Assignments are soft
// deleted: RemoveRole and the expiry sweep flip IsActive, they never
// delete the record.
type UserRoleAssignment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	RoleName      string             `bson:"role_name" json:"role_name"`
	AssignedBy    string             `bson:"assigned_by" json:"assigned_by"`
	AssignedAt    time.Time          `bson:"assigned_at" json:"assigned_at"`
	Reason        string             `bson:"reason,omitempty" json:"reason,omitempty"`
	IsPrimary     bool               `bson:"is_primary" json:"is_primary"`
	ExpiresAt     *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	RemovedBy     string             `bson:"removed_by,omitempty" json:"removed_by,omitempty"`
	RemovedAt     *time.Time         `bson:"removed_at,omitempty" json:"removed_at,omitempty"`
	RemovalReason string             `bson:"removal_reason,omitempty" json:"removal_reason,omitempty"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// Expired reports whether the assignment's expiry has passed at the
// given instant.
func (a UserRoleAssignment) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

// ScopeLevel is a user's position in the location hierarchy
type ScopeLevel string

const (
	ScopeLevelState    ScopeLevel = "state"
	ScopeLevelDistrict ScopeLevel = "district"
	ScopeLevelArea     ScopeLevel = "area"
	ScopeLevelUnit     ScopeLevel = "unit"
)

// AdminScope constrains regional permission checks to the user's
// assigned slice of the location hierarchy.
type AdminScope struct {
	Level      ScopeLevel `bson:"level" json:"level"`
	DistrictID string     `bson:"district_id,omitempty" json:"district_id,omitempty"`
	AreaID     string     `bson:"area_id,omitempty" json:"area_id,omitempty"`
	UnitID     string     `bson:"unit_id,omitempty" json:"unit_id,omitempty"`
}

// LocationID returns the most specific location reference for the
// scope's level, or "" for state-wide scope.
func (s AdminScope) LocationID() string {
	switch s.Level {
	case ScopeLevelUnit:
		return s.UnitID
	case ScopeLevelArea:
		return s.AreaID
	case ScopeLevelDistrict:
		return s.DistrictID
	}
	return ""
}

// CheckContext carries the request context a permission is evaluated
// against. The zero Timestamp means "now".
type CheckContext struct {
	Timestamp        time.Time
	RecordLocationID string
	RecordOwnerID    string
}

// Statistics is the read-only aggregation returned by GetStatistics
type Statistics struct {
	Roles             int64 `json:"roles"`
	Permissions       int64 `json:"permissions"`
	ActiveAssignments int64 `json:"active_assignments"`
}

// RoleHierarchyNode describes a role's position in the inheritance tree
type RoleHierarchyNode struct {
	Level    int      `json:"level"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children"`
}

// Collection names
const (
	PermissionsCollection = "permissions"
	RolesCollection       = "roles"
	AssignmentsCollection = "user_roles"
)

// MaxRoleDepth bounds parent-chain walks
const MaxRoleDepth = 16
