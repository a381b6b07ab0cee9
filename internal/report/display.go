package report

import (
	"fmt"

	"github.com/fatih/color"

	"driftaudit/internal/models"
	"driftaudit/internal/rules"
)

func severityColor(severity models.Severity) *color.Color {
	switch severity {
	case models.Critical:
		return color.New(color.FgRed, color.Bold)
	case models.High:
		return color.New(color.FgRed)
	case models.Medium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

// Display prints a colorized run summary to stdout.
func Display(report *models.Report) {
	fmt.Println("============================================")
	fmt.Println("        IAM POLICY DRIFT AUDIT RESULTS      ")
	fmt.Println("============================================")
	fmt.Println()

	fmt.Printf("Compartments scanned: %d (skipped: %d)\n",
		report.Summary.ScannedCompartmentCount, report.Summary.SkippedCompartmentCount)
	fmt.Printf("Policies scanned: %d\n", report.Summary.TotalPoliciesScanned)
	fmt.Printf("Identity audit events: %d (policy changes: %d)\n",
		report.Summary.IdentityAuditEventCount, report.Summary.PolicyChangeEventCount)
	fmt.Printf("Users: %d (MFA enabled: %d), groups: %d, dynamic groups: %d\n",
		report.Summary.TenancyUserCount, report.Summary.TenancyUserMFAEnabledCount,
		report.Summary.TenancyGroupCount, report.Summary.TenancyDynamicGroupCount)
	fmt.Println()

	fmt.Printf("Risky statements found: %d\n", report.Summary.RiskyStatementCount)
	for _, severity := range models.SeverityOrder {
		severityColor(severity).Printf("%s: %d\n",
			severity, report.Summary.RiskyStatementCountBySeverity[severity])
	}
	fmt.Println()

	if report.Summary.RiskyStatementCount == 0 {
		color.Green("✅ No risky policy statements detected.")
		return
	}

	fmt.Println("Top risky statements:")
	for i, record := range report.RiskyPolicies {
		if i >= 10 {
			fmt.Printf("  ... and %d more (see report artifacts)\n", len(report.RiskyPolicies)-10)
			break
		}
		severityColor(record.RiskLevel).Printf("  [%s] ", record.RiskLevel)
		fmt.Printf("%s / %s: %s\n", record.CompartmentName, record.PolicyName, record.Statement)
	}
}

// DisplayCatalog prints the effective rule catalog, colorized by
// severity, in catalog order.
func DisplayCatalog(catalog rules.Catalog) {
	fmt.Println("Risk rule catalog (consulted top to bottom):")
	fmt.Println()
	for i, rule := range catalog {
		severityColor(rule.Severity).Printf("%2d. [%s] ", i+1, rule.Severity)
		fmt.Printf("%s\n    pattern: %s\n", rule.Reason, rule.Pattern)
	}
}
