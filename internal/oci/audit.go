package oci

import (
	"context"
	"fmt"
	"time"

	"github.com/oracle/oci-go-sdk/v65/audit"
	"github.com/oracle/oci-go-sdk/v65/common"

	"driftaudit/internal/models"
)

// AuditCollector reads audit events from the Audit service.
type AuditCollector struct {
	client audit.AuditClient
}

func NewAuditCollector(client audit.AuditClient) *AuditCollector {
	return &AuditCollector{client: client}
}

// ListEvents returns the compartment's audit events in [start, end),
// decoded into plain records.
func (c *AuditCollector) ListEvents(
	ctx context.Context,
	compartmentOCID string,
	start, end time.Time,
) ([]models.RawAuditEvent, error) {
	var out []models.RawAuditEvent
	var page *string
	for {
		resp, err := c.client.ListEvents(ctx, audit.ListEventsRequest{
			CompartmentId: common.String(compartmentOCID),
			StartTime:     &common.SDKTime{Time: start},
			EndTime:       &common.SDKTime{Time: end},
			Page:          page,
		})
		if err != nil {
			return nil, fmt.Errorf("list audit events for %s: %w", compartmentOCID, err)
		}
		for _, item := range resp.Items {
			out = append(out, decodeEvent(item))
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

// decodeEvent is the single point where the provider's event shape is
// validated; everything downstream sees plain optional fields.
func decodeEvent(event audit.AuditEvent) models.RawAuditEvent {
	raw := models.RawAuditEvent{
		EventID:   event.EventId,
		EventType: deref(event.EventType),
		Source:    deref(event.Source),
	}
	if event.EventTime != nil {
		eventTime := event.EventTime.Time
		raw.EventTime = &eventTime
	}
	if event.Data == nil {
		return raw
	}

	data := map[string]any{
		"eventName":     deref(event.Data.EventName),
		"compartmentId": deref(event.Data.CompartmentId),
		"resourceName":  deref(event.Data.ResourceName),
	}
	if event.Data.Request != nil {
		data["requestAction"] = deref(event.Data.Request.Action)
	}
	if event.Data.Identity != nil {
		data["identity"] = map[string]any{
			"principalName": deref(event.Data.Identity.PrincipalName),
		}
	}
	raw.Data = data
	return raw
}
