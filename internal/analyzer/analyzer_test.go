package analyzer

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftaudit/internal/models"
	"driftaudit/internal/rules"
)

var generatedAt = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

func baseInput() Input {
	return Input{
		GeneratedAt:        generatedAt,
		Region:             "eu-frankfurt-1",
		TenancyOCID:        "ocid1.tenancy.oc1..root",
		AuditLookbackHours: 24,
	}
}

func rawPolicyEvent(id string, eventTime time.Time) models.RawAuditEvent {
	eventID := id
	t := eventTime
	return models.RawAuditEvent{
		EventID:   &eventID,
		EventType: "com.oraclecloud.identitycontrolplane.updatepolicy",
		Source:    "IdentityControlPlane",
		EventTime: &t,
		Data:      map[string]any{"eventName": "UpdatePolicy"},
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	in := baseInput()
	in.Compartments = []models.Compartment{
		{ID: "c1", Name: "prod"},
		{ID: "c2", Name: "dev"},
	}
	in.PolicyInventory = []models.PolicyEntry{
		{
			Compartment: models.Compartment{ID: "c1", Name: "prod"},
			Policy: models.Policy{
				ID:   "p1",
				Name: "admin-policy",
				Statements: []string{
					"Allow group Admins to manage all-resources in tenancy",
					"Allow group Readers to read buckets in compartment prod",
				},
			},
		},
		{
			Compartment: models.Compartment{ID: "c2", Name: "dev"},
			Policy: models.Policy{
				ID:   "p2",
				Name: "open-policy",
				Statements: []string{
					"Allow any-group to use all-resources in compartment dev",
				},
			},
		},
	}
	in.Groups = []models.Group{
		{ID: "g1", Name: "admins"},
		{ID: "g2", Name: "readers"},
	}
	in.Users = []models.User{
		{ID: "u1", IsMFAActivated: true},
		{ID: "u2"},
		{ID: "u3", IsMFAActivated: true},
	}
	in.Memberships = []models.Membership{
		{ID: "m1", GroupID: "g1", UserID: "u1"},
		{ID: "m2", GroupID: "g1", UserID: "u2"},
		{ID: "m3", GroupID: "g2", UserID: "u3"},
	}
	in.DynamicGroups = []models.DynamicGroup{{ID: "d1", Name: "instances"}}
	in.AuditEvents = []models.RawAuditEvent{
		rawPolicyEvent("e1", generatedAt.Add(-2*time.Hour)),
		rawPolicyEvent("e2", generatedAt.Add(-1*time.Hour)),
		{
			EventType: "com.oraclecloud.objectstorage.putobject",
			Data:      map[string]any{},
		},
	}
	in.SkippedCompartments = []models.SkippedCompartment{
		{CompartmentID: "c9", Reason: "identity.list_policies failed: 404 NotAuthorizedOrNotFound"},
	}

	report := Analyze(rules.Default(), in)

	assert.Equal(t, "iam_policy_drift_audit", report.Metadata.ReportName)
	assert.Equal(t, "2026-08-25T10:00:00Z", report.Metadata.GeneratedAtUTC)
	assert.Equal(t, "eu-frankfurt-1", report.Metadata.Region)
	assert.Equal(t, 24, report.Metadata.AuditLookbackHours)

	require.Len(t, report.RiskyPolicies, 2)

	// CRITICAL record first, enriched with the admins group membership.
	critical := report.RiskyPolicies[0]
	assert.Equal(t, models.Critical, critical.RiskLevel)
	assert.Equal(t, "prod", critical.CompartmentName)
	require.NotNil(t, critical.ReferencedGroup)
	assert.Equal(t, "Admins", *critical.ReferencedGroup)
	require.NotNil(t, critical.ReferencedGroupMemberCount)
	assert.Equal(t, 2, *critical.ReferencedGroupMemberCount)
	assert.Equal(t, []string{"Statement allows tenancy-wide management of all resources."}, critical.Reasons)

	// Wildcard-group statement references no group by name.
	high := report.RiskyPolicies[1]
	assert.Equal(t, models.High, high.RiskLevel)
	assert.Nil(t, high.ReferencedGroup)
	assert.Nil(t, high.ReferencedGroupMemberCount)
	assert.Len(t, high.Reasons, 2)

	summary := report.Summary
	assert.Equal(t, 2, summary.ScannedCompartmentCount)
	assert.Equal(t, 1, summary.SkippedCompartmentCount)
	assert.Equal(t, 2, summary.TotalPoliciesScanned)
	assert.Equal(t, 2, summary.RiskyStatementCount)
	assert.Equal(t, map[models.Severity]int{models.Critical: 1, models.High: 1}, summary.RiskyStatementCountBySeverity)
	assert.Equal(t, 2, summary.IdentityAuditEventCount)
	assert.Equal(t, 2, summary.PolicyChangeEventCount)
	assert.Equal(t, 2, summary.TenancyGroupCount)
	assert.Equal(t, 1, summary.TenancyDynamicGroupCount)
	assert.Equal(t, 3, summary.TenancyUserCount)
	assert.Equal(t, 2, summary.TenancyUserMFAEnabledCount)
	assert.Equal(t, []models.CompartmentRiskCount{
		{CompartmentName: "prod", RiskyStatements: 1},
		{CompartmentName: "dev", RiskyStatements: 1},
	}, summary.RiskyPolicyCompartmentsTop)

	// Events sort descending by time.
	require.Len(t, report.RecentPolicyChangeEvents, 2)
	assert.Equal(t, "e2", *report.RecentPolicyChangeEvents[0].EventID)
	assert.Equal(t, "e1", *report.RecentPolicyChangeEvents[1].EventID)

	// Group summary sorts descending by member count.
	require.Len(t, report.GroupMembershipSummary, 2)
	assert.Equal(t, models.GroupSummary{GroupID: "g1", GroupName: "admins", MemberCount: 2}, report.GroupMembershipSummary[0])
	assert.Equal(t, models.GroupSummary{GroupID: "g2", GroupName: "readers", MemberCount: 1}, report.GroupMembershipSummary[1])
}

func TestAnalyzeRiskyOrdering(t *testing.T) {
	entry := func(compartment, policy, statement string) models.PolicyEntry {
		return models.PolicyEntry{
			Compartment: models.Compartment{ID: compartment, Name: compartment},
			Policy:      models.Policy{ID: policy, Name: policy, Statements: []string{statement}},
		}
	}

	in := baseInput()
	in.PolicyInventory = []models.PolicyEntry{
		entry("zeta", "a-policy", "Allow group Ops to use all-resources in compartment zeta"),
		entry("Alpha", "B-policy", "Allow group Ops to use all-resources in compartment alpha"),
		entry("alpha", "a-policy", "Allow group Ops to use all-resources in compartment alpha"),
		entry("beta", "x-policy", "Allow group Ops to manage all-resources in tenancy"),
	}

	report := Analyze(rules.Default(), in)
	require.Len(t, report.RiskyPolicies, 4)

	// Severity rank first, then compartment and policy case-insensitively.
	assert.Equal(t, models.Critical, report.RiskyPolicies[0].RiskLevel)
	assert.Equal(t, "beta", report.RiskyPolicies[0].CompartmentName)
	assert.Equal(t, "a-policy", report.RiskyPolicies[1].PolicyName)
	assert.Equal(t, "B-policy", report.RiskyPolicies[2].PolicyName)
	assert.Equal(t, "zeta", report.RiskyPolicies[3].CompartmentName)
}

func TestAnalyzeUnresolvedGroupReference(t *testing.T) {
	in := baseInput()
	in.Groups = []models.Group{{ID: "g1", Name: "admins-team"}}
	in.PolicyInventory = []models.PolicyEntry{{
		Compartment: models.Compartment{ID: "c1", Name: "prod"},
		Policy: models.Policy{
			ID:         "p1",
			Name:       "p1",
			Statements: []string{"Allow group Admins to manage policies in tenancy"},
		},
	}}

	report := Analyze(rules.Default(), in)
	require.Len(t, report.RiskyPolicies, 1)

	record := report.RiskyPolicies[0]
	require.NotNil(t, record.ReferencedGroup)
	assert.Equal(t, "Admins", *record.ReferencedGroup)
	// "admins-team" is not an exact match, so the count stays null to
	// distinguish "group not found" from "no members".
	assert.Nil(t, record.ReferencedGroupMemberCount)
}

func TestAnalyzeResolvedGroupWithNoMembers(t *testing.T) {
	in := baseInput()
	in.Groups = []models.Group{{ID: "g1", Name: "admins"}}
	in.PolicyInventory = []models.PolicyEntry{{
		Compartment: models.Compartment{ID: "c1", Name: "prod"},
		Policy: models.Policy{
			ID:         "p1",
			Name:       "p1",
			Statements: []string{"Allow group admins to manage groups in tenancy"},
		},
	}}

	report := Analyze(rules.Default(), in)
	require.Len(t, report.RiskyPolicies, 1)
	require.NotNil(t, report.RiskyPolicies[0].ReferencedGroupMemberCount)
	assert.Equal(t, 0, *report.RiskyPolicies[0].ReferencedGroupMemberCount)
}

func TestAnalyzeRecentEventsCapAndUncappedCount(t *testing.T) {
	in := baseInput()
	for i := 0; i < 250; i++ {
		in.AuditEvents = append(in.AuditEvents,
			rawPolicyEvent(fmt.Sprintf("e%03d", i), generatedAt.Add(-time.Duration(i)*time.Minute)))
	}

	report := Analyze(rules.Default(), in)

	assert.Len(t, report.RecentPolicyChangeEvents, 200)
	assert.Equal(t, 250, report.Summary.PolicyChangeEventCount)
	assert.Equal(t, 250, report.Summary.IdentityAuditEventCount)

	// Most recent first.
	assert.Equal(t, "e000", *report.RecentPolicyChangeEvents[0].EventID)
	assert.Equal(t, "e199", *report.RecentPolicyChangeEvents[199].EventID)
}

func TestAnalyzeEventsWithoutTimestampSortLast(t *testing.T) {
	noTime := models.RawAuditEvent{
		EventType: "com.oraclecloud.identitycontrolplane.deletegroup",
		Data:      map[string]any{"eventName": "DeleteGroup"},
	}

	in := baseInput()
	in.AuditEvents = []models.RawAuditEvent{
		noTime,
		rawPolicyEvent("e1", generatedAt.Add(-time.Hour)),
	}

	report := Analyze(rules.Default(), in)
	require.Len(t, report.RecentPolicyChangeEvents, 2)
	assert.NotEmpty(t, report.RecentPolicyChangeEvents[0].EventTimeUTC)
	assert.Empty(t, report.RecentPolicyChangeEvents[1].EventTimeUTC)
}

func TestAnalyzeTopCompartmentsTiesKeepFirstSeenOrder(t *testing.T) {
	entry := func(compartment, policy string) models.PolicyEntry {
		return models.PolicyEntry{
			Compartment: models.Compartment{ID: compartment, Name: compartment},
			Policy: models.Policy{
				ID:         policy,
				Name:       policy,
				Statements: []string{"Allow group Ops to use all-resources in tenancy"},
			},
		}
	}

	in := baseInput()
	// After sorting, records group by compartment name alphabetically;
	// equal counts keep that first-seen order.
	in.PolicyInventory = []models.PolicyEntry{
		entry("delta", "p1"),
		entry("alpha", "p2"),
		entry("bravo", "p3"),
		entry("bravo", "p4"),
	}

	report := Analyze(rules.Default(), in)
	assert.Equal(t, []models.CompartmentRiskCount{
		{CompartmentName: "bravo", RiskyStatements: 2},
		{CompartmentName: "alpha", RiskyStatements: 1},
		{CompartmentName: "delta", RiskyStatements: 1},
	}, report.Summary.RiskyPolicyCompartmentsTop)
}

func TestAnalyzeEmptyInputs(t *testing.T) {
	report := Analyze(rules.Default(), baseInput())

	assert.Empty(t, report.RiskyPolicies)
	assert.Empty(t, report.RecentPolicyChangeEvents)
	assert.Empty(t, report.GroupMembershipSummary)
	assert.Empty(t, report.SkippedCompartments)
	assert.Zero(t, report.Summary.RiskyStatementCount)
	assert.Zero(t, report.Summary.TenancyUserMFAEnabledCount)

	// The JSON document keeps empty lists as [], not null.
	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"risky_policies":null`)
	assert.NotContains(t, string(data), `"skipped_compartments":null`)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	in := baseInput()
	in.Compartments = []models.Compartment{{ID: "c1", Name: "prod"}}
	in.PolicyInventory = []models.PolicyEntry{{
		Compartment: models.Compartment{ID: "c1", Name: "prod"},
		Policy: models.Policy{
			ID:         "p1",
			Name:       "p1",
			Statements: []string{"Allow group Admins to manage users in tenancy"},
		},
	}}
	in.Groups = []models.Group{{ID: "g1", Name: "admins"}}
	in.Memberships = []models.Membership{{ID: "m1", GroupID: "g1", UserID: "u1"}}
	in.AuditEvents = []models.RawAuditEvent{rawPolicyEvent("e1", generatedAt.Add(-time.Hour))}

	first, err := json.Marshal(Analyze(rules.Default(), in))
	require.NoError(t, err)
	second, err := json.Marshal(Analyze(rules.Default(), in))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}
