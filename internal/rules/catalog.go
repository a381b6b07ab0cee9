package rules

import "driftaudit/internal/models"

// Rule pairs a severity and human-readable reason with the matcher that
// detects the risky statement shape. Pattern keeps the source expression
// for display.
type Rule struct {
	Severity models.Severity
	Pattern  string
	Matcher  Matcher
	Reason   string
}

// Catalog is an ordered list of risk rules. It is consulted top to
// bottom for every statement; order determines the order reasons are
// reported in, not the severity verdict.
type Catalog []Rule

func phraseRule(severity models.Severity, phrase, reason string) Rule {
	return Rule{Severity: severity, Pattern: phrase, Matcher: Phrase(phrase), Reason: reason}
}

// defaultCatalog encodes the known risky policy statement shapes. Built
// once at init and never mutated.
var defaultCatalog = Catalog{
	phraseRule(models.Critical, "manage all-resources in tenancy",
		"Statement allows tenancy-wide management of all resources."),
	{
		Severity: models.High,
		Pattern:  "allow group * to / allow any-group to",
		Matcher:  AnyOf(Phrase("allow group * to"), Phrase("allow any-group to")),
		Reason:   "Statement uses wildcard group principal.",
	},
	phraseRule(models.High, "to manage policies",
		"Statement can manage IAM policies."),
	phraseRule(models.High, "to manage groups",
		"Statement can manage IAM groups."),
	phraseRule(models.High, "to manage users",
		"Statement can manage IAM users."),
	phraseRule(models.Medium, "manage all-resources in compartment",
		"Statement allows compartment-wide management of all resources."),
	phraseRule(models.Low, "to use all-resources",
		"Statement allows broad usage of all resources."),
}

// Default returns the built-in risk catalog.
func Default() Catalog {
	return defaultCatalog
}
