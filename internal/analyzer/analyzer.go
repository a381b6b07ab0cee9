package analyzer

import (
	"sort"
	"strings"
	"time"

	"driftaudit/internal/models"
	"driftaudit/internal/rules"
)

const (
	reportName          = "iam_policy_drift_audit"
	recentEventLimit    = 200
	topCompartmentLimit = 10
)

// Input carries everything a single audit run feeds the analyzer. The
// collection layer owns producing it; Analyze never mutates it, so the
// same Input may be analyzed concurrently.
type Input struct {
	GeneratedAt         time.Time
	Region              string
	TenancyOCID         string
	AuditLookbackHours  int
	Compartments        []models.Compartment
	PolicyInventory     []models.PolicyEntry
	Groups              []models.Group
	Users               []models.User
	Memberships         []models.Membership
	DynamicGroups       []models.DynamicGroup
	AuditEvents         []models.RawAuditEvent
	SkippedCompartments []models.SkippedCompartment
}

// Analyze evaluates every policy statement against the catalog,
// normalizes and classifies the audit events, and assembles the report.
// Pure: no I/O, no clock reads beyond Input.GeneratedAt, no side effects.
// Partially populated inputs (empty groups, no events) aggregate to zero
// counts and empty lists, never an error.
func Analyze(catalog rules.Catalog, in Input) *models.Report {
	groupNameByID := make(map[string]string, len(in.Groups))
	for _, group := range in.Groups {
		groupNameByID[group.ID] = group.Name
	}

	memberCounts := make(map[string]int, len(in.Groups))
	for _, membership := range in.Memberships {
		memberCounts[membership.GroupID]++
	}

	riskyPolicies := []models.RiskyPolicy{}
	for _, entry := range in.PolicyInventory {
		for _, statement := range entry.Policy.Statements {
			match := EvaluateStatement(catalog, statement)
			if match == nil {
				continue
			}

			record := models.RiskyPolicy{
				RiskLevel:         match.Severity,
				Reasons:           match.Reasons,
				CompartmentID:     entry.Compartment.ID,
				CompartmentName:   entry.Compartment.Name,
				PolicyID:          entry.Policy.ID,
				PolicyName:        entry.Policy.Name,
				PolicyDescription: entry.Policy.Description,
				Statement:         statement,
			}

			if name := ExtractGroupName(statement); name != "" {
				record.ReferencedGroup = &name
				if id, ok := findGroupIDByName(in.Groups, name); ok {
					count := memberCounts[id]
					record.ReferencedGroupMemberCount = &count
				}
			}

			riskyPolicies = append(riskyPolicies, record)
		}
	}

	sort.SliceStable(riskyPolicies, func(i, j int) bool {
		a, b := riskyPolicies[i], riskyPolicies[j]
		if a.RiskLevel.Rank() != b.RiskLevel.Rank() {
			return a.RiskLevel.Rank() < b.RiskLevel.Rank()
		}
		aName, bName := strings.ToLower(a.CompartmentName), strings.ToLower(b.CompartmentName)
		if aName != bName {
			return aName < bName
		}
		return strings.ToLower(a.PolicyName) < strings.ToLower(b.PolicyName)
	})

	identityEvents := []models.NormalizedAuditEvent{}
	policyChangeEvents := []models.NormalizedAuditEvent{}
	for _, raw := range in.AuditEvents {
		event := NormalizeAuditEvent(raw)
		if !IsIdentityEvent(event) {
			continue
		}
		identityEvents = append(identityEvents, event)
		if IsPolicyChangeEvent(event) {
			policyChangeEvents = append(policyChangeEvents, event)
		}
	}

	sort.SliceStable(policyChangeEvents, func(i, j int) bool {
		return policyChangeEvents[i].EventTimeUTC > policyChangeEvents[j].EventTimeUTC
	})

	recentEvents := policyChangeEvents
	if len(recentEvents) > recentEventLimit {
		recentEvents = recentEvents[:recentEventLimit]
	}

	bySeverity := make(map[models.Severity]int)
	compartmentCounts := make(map[string]int)
	var compartmentOrder []string
	for _, record := range riskyPolicies {
		bySeverity[record.RiskLevel]++
		if _, seen := compartmentCounts[record.CompartmentName]; !seen {
			compartmentOrder = append(compartmentOrder, record.CompartmentName)
		}
		compartmentCounts[record.CompartmentName]++
	}

	topCompartments := []models.CompartmentRiskCount{}
	for _, name := range compartmentOrder {
		topCompartments = append(topCompartments, models.CompartmentRiskCount{
			CompartmentName: name,
			RiskyStatements: compartmentCounts[name],
		})
	}
	sort.SliceStable(topCompartments, func(i, j int) bool {
		return topCompartments[i].RiskyStatements > topCompartments[j].RiskyStatements
	})
	if len(topCompartments) > topCompartmentLimit {
		topCompartments = topCompartments[:topCompartmentLimit]
	}

	mfaEnabled := 0
	for _, user := range in.Users {
		if user.IsMFAActivated {
			mfaEnabled++
		}
	}

	skipped := in.SkippedCompartments
	if skipped == nil {
		skipped = []models.SkippedCompartment{}
	}

	return &models.Report{
		Metadata: models.Metadata{
			ReportName:         reportName,
			GeneratedAtUTC:     in.GeneratedAt.UTC().Format(time.RFC3339),
			Region:             in.Region,
			TenancyOCID:        in.TenancyOCID,
			AuditLookbackHours: in.AuditLookbackHours,
		},
		Summary: models.Summary{
			ScannedCompartmentCount:       len(in.Compartments),
			SkippedCompartmentCount:       len(in.SkippedCompartments),
			TotalPoliciesScanned:          len(in.PolicyInventory),
			RiskyStatementCount:           len(riskyPolicies),
			RiskyStatementCountBySeverity: bySeverity,
			IdentityAuditEventCount:       len(identityEvents),
			PolicyChangeEventCount:        len(policyChangeEvents),
			TenancyGroupCount:             len(in.Groups),
			TenancyDynamicGroupCount:      len(in.DynamicGroups),
			TenancyUserCount:              len(in.Users),
			TenancyUserMFAEnabledCount:    mfaEnabled,
			RiskyPolicyCompartmentsTop:    topCompartments,
		},
		SkippedCompartments:      skipped,
		RiskyPolicies:            riskyPolicies,
		RecentPolicyChangeEvents: recentEvents,
		GroupMembershipSummary:   buildGroupSummary(in.Groups, groupNameByID, memberCounts),
	}
}

// buildGroupSummary lists every tenancy group with its live member
// count, sorted by member count descending; ties keep inventory order.
func buildGroupSummary(groups []models.Group, names map[string]string, counts map[string]int) []models.GroupSummary {
	summary := make([]models.GroupSummary, 0, len(groups))
	for _, group := range groups {
		name := names[group.ID]
		if name == "" {
			name = group.ID
		}
		summary = append(summary, models.GroupSummary{
			GroupID:     group.ID,
			GroupName:   name,
			MemberCount: counts[group.ID],
		})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].MemberCount > summary[j].MemberCount
	})
	return summary
}
