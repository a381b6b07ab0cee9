package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftaudit/internal/models"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - severity: critical
    pattern: '\bmanage\s+all-resources\s+in\s+tenancy\b'
    reason: Tenancy-wide management grant.
  - severity: LOW
    pattern: '\bto\s+inspect\s+all-resources\b'
    reason: Broad inspection grant.
`)

	catalog, err := LoadCatalogFromFile(path)
	require.NoError(t, err)
	require.Len(t, catalog, 2)

	assert.Equal(t, models.Critical, catalog[0].Severity)
	assert.Equal(t, "Tenancy-wide management grant.", catalog[0].Reason)
	assert.True(t, catalog[0].Matcher.Matches("Allow group Admins to MANAGE all-resources in tenancy"))

	assert.Equal(t, models.Low, catalog[1].Severity)
	assert.True(t, catalog[1].Matcher.Matches("Allow group Auditors to inspect all-resources in tenancy"))
}

func TestLoadCatalogFromFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty rules list",
			content: "rules: []\n",
			wantErr: "defines no rules",
		},
		{
			name: "unknown severity",
			content: `
rules:
  - severity: EXTREME
    pattern: 'to manage users'
    reason: r
`,
			wantErr: "unknown severity",
		},
		{
			name: "missing pattern",
			content: `
rules:
  - severity: HIGH
    reason: r
`,
			wantErr: "missing pattern",
		},
		{
			name: "missing reason",
			content: `
rules:
  - severity: HIGH
    pattern: 'to manage users'
`,
			wantErr: "missing reason",
		},
		{
			name: "invalid pattern",
			content: `
rules:
  - severity: HIGH
    pattern: 'to manage (users'
    reason: r
`,
			wantErr: "invalid pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRulesFile(t, tt.content)
			_, err := LoadCatalogFromFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalogFromFile(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
