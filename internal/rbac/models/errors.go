package models

import "fmt"

// ValidationError reports malformed input to a define/create operation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing role, permission or assignment
type NotFoundError struct {
	Kind string // "role", "permission", "assignment"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// DuplicateAssignmentError reports an attempt to create a second active
// assignment for the same (user, role) pair
type DuplicateAssignmentError struct {
	UserID   string
	RoleName string
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("user %s already has this role: %s", e.UserID, e.RoleName)
}

// ConflictError reports an operation blocked by live references, e.g.
// deleting a role that still has active assignments
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// CycleError reports a role parent chain that loops back on itself
type CycleError struct {
	RoleName string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("role hierarchy cycle detected at role: %s", e.RoleName)
}
