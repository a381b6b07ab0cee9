package models

import "time"

// Compartment is one OCI compartment in audit scope.
type Compartment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Policy is one IAM policy with its raw natural-language statements.
type Policy struct {
	ID          string
	Name        string
	Description string
	Statements  []string
}

// PolicyEntry ties a policy to the compartment it was collected from.
type PolicyEntry struct {
	Compartment Compartment
	Policy      Policy
}

// Group is an IAM group principal.
type Group struct {
	ID   string
	Name string
}

// DynamicGroup is an IAM dynamic group principal.
type DynamicGroup struct {
	ID   string
	Name string
}

// User is an IAM user principal.
type User struct {
	ID             string
	Name           string
	IsMFAActivated bool
}

// Membership is one user-to-group membership record.
type Membership struct {
	ID      string
	GroupID string
	UserID  string
}

// SkippedCompartment records a compartment the collection layer could not
// read; the run degrades per compartment instead of aborting.
type SkippedCompartment struct {
	CompartmentID string `json:"compartment_id"`
	Reason        string `json:"reason"`
}

// RawAuditEvent is the decoded form of a provider audit event. Optional
// fields are pointers. Data carries the provider payload under its
// original camelCase or snake_case keys, including the nested "identity"
// map; the collection layer is the only place that builds it.
type RawAuditEvent struct {
	EventID   *string
	EventType string
	Source    string
	EventTime *time.Time
	Data      map[string]any
}
