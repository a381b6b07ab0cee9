package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"driftaudit/internal/models"
)

func TestDefaultCatalogShape(t *testing.T) {
	catalog := Default()

	assert.Len(t, catalog, 7)
	assert.Equal(t, models.Critical, catalog[0].Severity)
	assert.Equal(t, models.Low, catalog[len(catalog)-1].Severity)
	for i, rule := range catalog {
		assert.True(t, rule.Severity.Known(), "rule #%d has unknown severity", i+1)
		assert.NotEmpty(t, rule.Reason, "rule #%d has no reason", i+1)
		assert.NotNil(t, rule.Matcher, "rule #%d has no matcher", i+1)
	}
}

func TestPhraseMatcher(t *testing.T) {
	tests := []struct {
		name      string
		phrase    string
		statement string
		want      bool
	}{
		{
			name:      "exact phrase",
			phrase:    "manage all-resources in tenancy",
			statement: "Allow group Admins to manage all-resources in tenancy",
			want:      true,
		},
		{
			name:      "case insensitive",
			phrase:    "manage all-resources in tenancy",
			statement: "ALLOW GROUP ADMINS TO MANAGE ALL-RESOURCES IN TENANCY",
			want:      true,
		},
		{
			name:      "extra whitespace between words",
			phrase:    "manage all-resources in tenancy",
			statement: "Allow group Admins to manage  all-resources   in\ttenancy",
			want:      true,
		},
		{
			name:      "whole word only",
			phrase:    "manage all-resources in tenancy",
			statement: "Allow group Admins to manage all-resources in tenancies",
			want:      false,
		},
		{
			name:      "no partial prefix match",
			phrase:    "to manage users",
			statement: "Allow group Ops to manage userpools in tenancy",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phrase(tt.phrase).Matches(tt.statement))
		})
	}
}

func TestWildcardGroupMatcher(t *testing.T) {
	matcher := AnyOf(Phrase("allow group * to"), Phrase("allow any-group to"))

	assert.True(t, matcher.Matches("Allow group * to read all-resources in tenancy"))
	assert.True(t, matcher.Matches("Allow any-group to use instances in compartment dev"))
	assert.False(t, matcher.Matches("Allow group Admins to read all-resources in tenancy"))
}

func TestPatternRejectsInvalidExpression(t *testing.T) {
	_, err := Pattern(`to manage (users`)
	assert.Error(t, err)
}
