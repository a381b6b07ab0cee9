package analyzer

import (
	"strings"
	"time"
	"unicode"

	"driftaudit/internal/models"
)

const unknownPrincipal = "UNKNOWN_PRINCIPAL"

// policyEventTerms flags identity events that create, update or delete
// policies, groups or dynamic groups.
var policyEventTerms = []string{
	"createpolicy", "updatepolicy", "deletepolicy",
	"creategroup", "updategroup", "deletegroup",
	"createdynamicgroup", "updatedynamicgroup", "deletedynamicgroup",
}

// NormalizeAuditEvent projects a raw provider event onto the canonical
// shape. Payload fields are read through their camelCase/snake_case
// alias pairs; missing or wrong-typed values normalize to empty strings,
// and a missing principal becomes UNKNOWN_PRINCIPAL. The raw event is
// never mutated.
func NormalizeAuditEvent(event models.RawAuditEvent) models.NormalizedAuditEvent {
	data := event.Data
	identity, _ := data["identity"].(map[string]any)

	var eventTime string
	if event.EventTime != nil {
		eventTime = event.EventTime.UTC().Format(time.RFC3339)
	}

	principal := firstString(identity, "principalName", "principal_name")
	if principal == "" {
		principal = unknownPrincipal
	}

	return models.NormalizedAuditEvent{
		EventID:       event.EventID,
		EventType:     event.EventType,
		EventSource:   event.Source,
		EventTimeUTC:  eventTime,
		EventName:     firstString(data, "eventName", "event_name"),
		CompartmentID: firstString(data, "compartmentId", "compartment_id"),
		ResourceName:  firstString(data, "resourceName", "resource_name"),
		PrincipalName: principal,
		RequestAction: firstString(data, "requestAction", "request_action"),
	}
}

// firstString returns the first non-empty string value among the aliased
// keys. A nil map yields "".
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// IsIdentityEvent reports whether the event pertains to the
// identity/access-control subsystem.
func IsIdentityEvent(event models.NormalizedAuditEvent) bool {
	return strings.Contains(strings.ToLower(event.EventType), "identity")
}

// IsPolicyChangeEvent reports whether an identity event records a change
// to policies, groups or dynamic groups. Event type and name are
// concatenated, lower-cased and stripped to alphanumerics before the
// term containment test.
func IsPolicyChangeEvent(event models.NormalizedAuditEvent) bool {
	candidate := strings.ToLower(event.EventType + " " + event.EventName)

	var normalized strings.Builder
	for _, r := range candidate {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			normalized.WriteRune(r)
		}
	}

	haystack := normalized.String()
	for _, term := range policyEventTerms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
