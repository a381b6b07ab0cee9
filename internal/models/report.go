package models

// RiskyPolicy is one policy statement that matched at least one risk
// rule. Reasons keeps catalog order; RiskLevel is the most severe among
// the matched rules. The group enrichment fields stay null when the
// statement references no group or the group cannot be resolved.
type RiskyPolicy struct {
	RiskLevel                  Severity `json:"risk_level"`
	Reasons                    []string `json:"reasons"`
	CompartmentID              string   `json:"compartment_id"`
	CompartmentName            string   `json:"compartment_name"`
	PolicyID                   string   `json:"policy_id"`
	PolicyName                 string   `json:"policy_name"`
	PolicyDescription          string   `json:"policy_description"`
	Statement                  string   `json:"statement"`
	ReferencedGroup            *string  `json:"referenced_group"`
	ReferencedGroupMemberCount *int     `json:"referenced_group_member_count"`
}

// NormalizedAuditEvent is the canonical projection of a raw audit event.
// EventTimeUTC is RFC3339 in UTC, or empty when the raw event carried no
// usable timestamp.
type NormalizedAuditEvent struct {
	EventID       *string `json:"event_id"`
	EventType     string  `json:"event_type"`
	EventSource   string  `json:"event_source"`
	EventTimeUTC  string  `json:"event_time_utc"`
	EventName     string  `json:"event_name"`
	CompartmentID string  `json:"compartment_id"`
	ResourceName  string  `json:"resource_name"`
	PrincipalName string  `json:"principal_name"`
	RequestAction string  `json:"request_action"`
}

// GroupSummary is one row of the group membership summary.
type GroupSummary struct {
	GroupID     string `json:"group_id"`
	GroupName   string `json:"group_name"`
	MemberCount int    `json:"member_count"`
}

// CompartmentRiskCount pairs a compartment name with its risky-statement
// count for the top-compartments ranking.
type CompartmentRiskCount struct {
	CompartmentName string `json:"compartment_name"`
	RiskyStatements int    `json:"risky_statements"`
}

// Metadata identifies a single audit run.
type Metadata struct {
	ReportName         string `json:"report_name"`
	GeneratedAtUTC     string `json:"generated_at_utc"`
	Region             string `json:"region"`
	TenancyOCID        string `json:"tenancy_ocid"`
	AuditLookbackHours int    `json:"audit_lookback_hours"`
}

// Summary holds the aggregate counters of a run.
type Summary struct {
	ScannedCompartmentCount       int                    `json:"scanned_compartment_count"`
	SkippedCompartmentCount       int                    `json:"skipped_compartment_count"`
	TotalPoliciesScanned          int                    `json:"total_policies_scanned"`
	RiskyStatementCount           int                    `json:"risky_statement_count"`
	RiskyStatementCountBySeverity map[Severity]int       `json:"risky_statement_count_by_severity"`
	IdentityAuditEventCount       int                    `json:"identity_audit_event_count"`
	PolicyChangeEventCount        int                    `json:"policy_change_event_count"`
	TenancyGroupCount             int                    `json:"tenancy_group_count"`
	TenancyDynamicGroupCount      int                    `json:"tenancy_dynamic_group_count"`
	TenancyUserCount              int                    `json:"tenancy_user_count"`
	TenancyUserMFAEnabledCount    int                    `json:"tenancy_user_mfa_enabled_count"`
	RiskyPolicyCompartmentsTop    []CompartmentRiskCount `json:"risky_policy_compartments_top"`
}

// Report is the sole artifact the analyzer produces. It serializes to a
// plain JSON document; the Markdown renderer reads it field by field.
type Report struct {
	Metadata                 Metadata               `json:"metadata"`
	Summary                  Summary                `json:"summary"`
	SkippedCompartments      []SkippedCompartment   `json:"skipped_compartments"`
	RiskyPolicies            []RiskyPolicy          `json:"risky_policies"`
	RecentPolicyChangeEvents []NormalizedAuditEvent `json:"recent_policy_change_events"`
	GroupMembershipSummary   []GroupSummary         `json:"group_membership_summary"`
}
