package models

// Severity classifies how dangerous a risky policy statement is.
type Severity string

const (
	Critical Severity = "CRITICAL"
	High     Severity = "HIGH"
	Medium   Severity = "MEDIUM"
	Low      Severity = "LOW"
)

// SeverityOrder lists severities from most to least severe. Renderers
// rely on this as fixed row order.
var SeverityOrder = []Severity{Critical, High, Medium, Low}

var severityRank = map[Severity]int{
	Critical: 0,
	High:     1,
	Medium:   2,
	Low:      3,
}

// Rank returns the sort rank of the severity; lower means more severe.
// Unknown severities rank after all known ones.
func (s Severity) Rank() int {
	if rank, ok := severityRank[s]; ok {
		return rank
	}
	return len(severityRank)
}

// Known reports whether s is one of the four catalog severities.
func (s Severity) Known() bool {
	_, ok := severityRank[s]
	return ok
}
