package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"driftaudit/internal/models"
)

const markdownRowLimit = 50

// WriteJSON writes the report as indented JSON, creating parent
// directories as needed.
func WriteJSON(report *models.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteMarkdown writes the human-readable rendering of the report.
func WriteMarkdown(report *models.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Markdown(report)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown renders the report document. The severity table always lists
// CRITICAL through LOW in that order, independent of the report's own
// sort; the risky-statement and event tables are capped at 50 rows.
func Markdown(report *models.Report) string {
	var b strings.Builder

	write := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	write("# OCI IAM Policy Drift Auditor Report")
	write("")
	write("- Generated (UTC): `%s`", report.Metadata.GeneratedAtUTC)
	write("- Region: `%s`", report.Metadata.Region)
	write("- Tenancy: `%s`", report.Metadata.TenancyOCID)
	write("- Audit Lookback (hours): `%d`", report.Metadata.AuditLookbackHours)
	write("")

	write("## Summary")
	write("")
	write("| Metric | Value |")
	write("|---|---:|")
	write("| Scanned Compartments | %d |", report.Summary.ScannedCompartmentCount)
	write("| Skipped Compartments | %d |", report.Summary.SkippedCompartmentCount)
	write("| Policies Scanned | %d |", report.Summary.TotalPoliciesScanned)
	write("| Risky Statements | %d |", report.Summary.RiskyStatementCount)
	write("| Identity Audit Events | %d |", report.Summary.IdentityAuditEventCount)
	write("| Policy Change Events | %d |", report.Summary.PolicyChangeEventCount)
	write("| Tenancy Users | %d |", report.Summary.TenancyUserCount)
	write("| Users with MFA Enabled | %d |", report.Summary.TenancyUserMFAEnabledCount)
	write("")

	write("## Risk Severity")
	write("")
	write("| Severity | Count |")
	write("|---|---:|")
	for _, severity := range models.SeverityOrder {
		write("| %s | %d |", severity, report.Summary.RiskyStatementCountBySeverity[severity])
	}
	write("")

	if len(report.SkippedCompartments) > 0 {
		write("## Skipped Compartments")
		write("")
		write("| Compartment OCID | Reason |")
		write("|---|---|")
		for _, skipped := range report.SkippedCompartments {
			write("| %s | %s |", skipped.CompartmentID, skipped.Reason)
		}
		write("")
	}

	write("## Top Risky Statements (Top %d)", markdownRowLimit)
	write("")
	write("| Severity | Compartment | Policy | Referenced Group | Group Members | Statement |")
	write("|---|---|---|---|---:|---|")
	for i, record := range report.RiskyPolicies {
		if i >= markdownRowLimit {
			break
		}
		groupName := "-"
		if record.ReferencedGroup != nil {
			groupName = *record.ReferencedGroup
		}
		groupMembers := "-"
		if record.ReferencedGroupMemberCount != nil {
			groupMembers = fmt.Sprintf("%d", *record.ReferencedGroupMemberCount)
		}
		statement := strings.ReplaceAll(record.Statement, "|", "\\|")
		write("| %s | %s | %s | %s | %s | %s |",
			record.RiskLevel, record.CompartmentName, record.PolicyName,
			groupName, groupMembers, statement)
	}
	if len(report.RiskyPolicies) == 0 {
		write("| - | - | - | - | - | No risky policy statements detected. |")
	}
	write("")

	write("## Recent IAM Policy Change Events (Top %d)", markdownRowLimit)
	write("")
	write("| Event Time (UTC) | Principal | Event Type | Event Name | Resource |")
	write("|---|---|---|---|---|")
	for i, event := range report.RecentPolicyChangeEvents {
		if i >= markdownRowLimit {
			break
		}
		write("| %s | %s | %s | %s | %s |",
			event.EventTimeUTC, event.PrincipalName, event.EventType,
			orDash(event.EventName), orDash(event.ResourceName))
	}
	if len(report.RecentPolicyChangeEvents) == 0 {
		write("| - | - | - | - | No recent IAM policy change events in audit window. |")
	}

	write("")
	write("## Full Data")
	write("")
	write("- Full machine-readable data is available in the JSON artifact.")

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
