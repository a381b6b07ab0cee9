package rules

import (
	"fmt"
	"os"
	"strings"

	"driftaudit/internal/models"

	"gopkg.in/yaml.v3"
)

type ruleEntry struct {
	Severity string `yaml:"severity"`
	Pattern  string `yaml:"pattern"`
	Reason   string `yaml:"reason"`
}

type catalogFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

// LoadCatalogFromFile loads a catalog override from a YAML file. Entries
// are {severity, pattern, reason}; patterns are regular expressions
// applied case-insensitively. File order becomes catalog order.
func LoadCatalogFromFile(filePath string) (Catalog, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("rules file not found: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading rules file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing rules file: %w", err)
	}

	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", filePath)
	}

	catalog := make(Catalog, 0, len(file.Rules))
	for i, entry := range file.Rules {
		severity := models.Severity(strings.ToUpper(strings.TrimSpace(entry.Severity)))
		if !severity.Known() {
			return nil, fmt.Errorf("rule #%d: unknown severity %q", i+1, entry.Severity)
		}
		if entry.Pattern == "" {
			return nil, fmt.Errorf("rule #%d missing pattern", i+1)
		}
		if entry.Reason == "" {
			return nil, fmt.Errorf("rule #%d missing reason", i+1)
		}

		matcher, err := Pattern(entry.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule #%d: invalid pattern: %w", i+1, err)
		}

		catalog = append(catalog, Rule{
			Severity: severity,
			Pattern:  entry.Pattern,
			Matcher:  matcher,
			Reason:   entry.Reason,
		})
	}

	return catalog, nil
}
