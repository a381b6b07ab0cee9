package analyzer

import (
	"regexp"
	"strings"

	"driftaudit/internal/models"
	"driftaudit/internal/rules"
)

// RiskMatch is the verdict for one statement: the most severe matched
// severity and every matched rule's reason in catalog order.
type RiskMatch struct {
	Severity models.Severity
	Reasons  []string
}

// EvaluateStatement tests a statement against every rule in the catalog
// without short-circuiting; all matching rules contribute their reason.
// The reported severity is the most severe among them. Returns nil when
// no rule matches.
func EvaluateStatement(catalog rules.Catalog, statement string) *RiskMatch {
	var match *RiskMatch

	for _, rule := range catalog {
		if !rule.Matcher.Matches(statement) {
			continue
		}
		if match == nil {
			match = &RiskMatch{Severity: rule.Severity}
		} else if rule.Severity.Rank() < match.Severity.Rank() {
			match.Severity = rule.Severity
		}
		match.Reasons = append(match.Reasons, rule.Reason)
	}

	return match
}

var groupRef = regexp.MustCompile(`(?i)\ballow\s+group\s+([a-z0-9_.\-]+)\s+to\b`)

// ExtractGroupName returns the group name referenced by an
// "allow group <name> to" construct, or "" when the statement has none.
func ExtractGroupName(statement string) string {
	m := groupRef.FindStringSubmatch(statement)
	if m == nil {
		return ""
	}
	return m[1]
}

// findGroupIDByName resolves a referenced group name against the group
// inventory by case-insensitive exact match. First match in inventory
// order wins; tenancy group names are unique, so order only matters for
// malformed input.
func findGroupIDByName(groups []models.Group, name string) (string, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	for _, group := range groups {
		if strings.ToLower(group.Name) == target {
			return group.ID, true
		}
	}
	return "", false
}
