package oci

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/rs/zerolog"

	"driftaudit/internal/models"
)

// IdentityCollector reads IAM inventory from the Identity service.
type IdentityCollector struct {
	client identity.IdentityClient
}

func NewIdentityCollector(client identity.IdentityClient) *IdentityCollector {
	return &IdentityCollector{client: client}
}

// ListCompartments returns the compartments in audit scope: the root
// (the tenancy itself or an explicit root compartment) plus, optionally,
// its accessible active subtree. Results are deduplicated by OCID and
// sorted by lower-cased name.
func (c *IdentityCollector) ListCompartments(
	ctx context.Context,
	tenancyOCID, rootOCID string,
	includeSubcompartments bool,
) ([]models.Compartment, error) {
	rootID := rootOCID
	if rootID == "" {
		rootID = tenancyOCID
	}

	var rootName string
	if rootOCID != "" {
		resp, err := c.client.GetCompartment(ctx, identity.GetCompartmentRequest{
			CompartmentId: common.String(rootID),
		})
		if err != nil {
			return nil, fmt.Errorf("get compartment %s: %w", rootID, err)
		}
		rootName = deref(resp.Name)
	} else {
		resp, err := c.client.GetTenancy(ctx, identity.GetTenancyRequest{
			TenancyId: common.String(tenancyOCID),
		})
		if err != nil {
			return nil, fmt.Errorf("get tenancy: %w", err)
		}
		rootName = deref(resp.Name)
	}

	compartments := []models.Compartment{{ID: rootID, Name: rootName}}

	switch {
	case !includeSubcompartments:
		children, err := c.listChildCompartments(ctx, rootID, false)
		if err != nil {
			return nil, err
		}
		compartments = append(compartments, children...)

	case rootID == tenancyOCID:
		children, err := c.listChildCompartments(ctx, rootID, true)
		if err != nil {
			return nil, err
		}
		compartments = append(compartments, children...)

	default:
		// Subtree listing is only valid from the tenancy root, so walk
		// the tree level by level from an explicit root compartment.
		queue := []string{rootID}
		visited := make(map[string]bool)
		for len(queue) > 0 {
			parentID := queue[0]
			queue = queue[1:]
			if visited[parentID] {
				continue
			}
			visited[parentID] = true

			children, err := c.listChildCompartments(ctx, parentID, false)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				compartments = append(compartments, child)
				queue = append(queue, child.ID)
			}
		}
	}

	seen := make(map[string]bool, len(compartments))
	unique := make([]models.Compartment, 0, len(compartments))
	for _, compartment := range compartments {
		if seen[compartment.ID] {
			continue
		}
		seen[compartment.ID] = true
		unique = append(unique, compartment)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return strings.ToLower(unique[i].Name) < strings.ToLower(unique[j].Name)
	})

	zerolog.Ctx(ctx).Debug().Int("count", len(unique)).Msg("compartment discovery complete")
	return unique, nil
}

func (c *IdentityCollector) listChildCompartments(
	ctx context.Context,
	parentID string,
	subtree bool,
) ([]models.Compartment, error) {
	var out []models.Compartment
	var page *string
	for {
		resp, err := c.client.ListCompartments(ctx, identity.ListCompartmentsRequest{
			CompartmentId:          common.String(parentID),
			CompartmentIdInSubtree: common.Bool(subtree),
			AccessLevel:            identity.ListCompartmentsAccessLevelAccessible,
			LifecycleState:         identity.CompartmentLifecycleStateActive,
			Page:                   page,
		})
		if err != nil {
			return nil, fmt.Errorf("list compartments under %s: %w", parentID, err)
		}
		for _, item := range resp.Items {
			out = append(out, models.Compartment{ID: deref(item.Id), Name: deref(item.Name)})
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

// ListPolicies returns every policy in the compartment.
func (c *IdentityCollector) ListPolicies(ctx context.Context, compartmentOCID string) ([]models.Policy, error) {
	var out []models.Policy
	var page *string
	for {
		resp, err := c.client.ListPolicies(ctx, identity.ListPoliciesRequest{
			CompartmentId: common.String(compartmentOCID),
			Page:          page,
		})
		if err != nil {
			return nil, fmt.Errorf("list policies in %s: %w", compartmentOCID, err)
		}
		for _, item := range resp.Items {
			out = append(out, models.Policy{
				ID:          deref(item.Id),
				Name:        deref(item.Name),
				Description: deref(item.Description),
				Statements:  item.Statements,
			})
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

// ListGroups returns every group in the tenancy.
func (c *IdentityCollector) ListGroups(ctx context.Context, tenancyOCID string) ([]models.Group, error) {
	var out []models.Group
	var page *string
	for {
		resp, err := c.client.ListGroups(ctx, identity.ListGroupsRequest{
			CompartmentId: common.String(tenancyOCID),
			Page:          page,
		})
		if err != nil {
			return nil, fmt.Errorf("list groups: %w", err)
		}
		for _, item := range resp.Items {
			out = append(out, models.Group{ID: deref(item.Id), Name: deref(item.Name)})
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

// ListUsers returns every user in the tenancy.
func (c *IdentityCollector) ListUsers(ctx context.Context, tenancyOCID string) ([]models.User, error) {
	var out []models.User
	var page *string
	for {
		resp, err := c.client.ListUsers(ctx, identity.ListUsersRequest{
			CompartmentId: common.String(tenancyOCID),
			Page:          page,
		})
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for _, item := range resp.Items {
			user := models.User{ID: deref(item.Id), Name: deref(item.Name)}
			if item.IsMfaActivated != nil {
				user.IsMFAActivated = *item.IsMfaActivated
			}
			out = append(out, user)
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}

// ListMembershipsForUsers returns the user-group memberships for the
// given users, deduplicated by membership id.
func (c *IdentityCollector) ListMembershipsForUsers(
	ctx context.Context,
	tenancyOCID string,
	userIDs []string,
) ([]models.Membership, error) {
	var out []models.Membership
	seen := make(map[string]bool)

	for _, userID := range userIDs {
		var page *string
		for {
			resp, err := c.client.ListUserGroupMemberships(ctx, identity.ListUserGroupMembershipsRequest{
				CompartmentId: common.String(tenancyOCID),
				UserId:        common.String(userID),
				Page:          page,
			})
			if err != nil {
				return nil, fmt.Errorf("list memberships for user %s: %w", userID, err)
			}
			for _, item := range resp.Items {
				id := deref(item.Id)
				if id != "" && seen[id] {
					continue
				}
				if id != "" {
					seen[id] = true
				}
				out = append(out, models.Membership{
					ID:      id,
					GroupID: deref(item.GroupId),
					UserID:  deref(item.UserId),
				})
			}
			if resp.OpcNextPage == nil {
				break
			}
			page = resp.OpcNextPage
		}
	}
	return out, nil
}

// ListDynamicGroups returns every dynamic group in the tenancy.
func (c *IdentityCollector) ListDynamicGroups(ctx context.Context, tenancyOCID string) ([]models.DynamicGroup, error) {
	var out []models.DynamicGroup
	var page *string
	for {
		resp, err := c.client.ListDynamicGroups(ctx, identity.ListDynamicGroupsRequest{
			CompartmentId: common.String(tenancyOCID),
			Page:          page,
		})
		if err != nil {
			return nil, fmt.Errorf("list dynamic groups: %w", err)
		}
		for _, item := range resp.Items {
			out = append(out, models.DynamicGroup{ID: deref(item.Id), Name: deref(item.Name)})
		}
		if resp.OpcNextPage == nil {
			break
		}
		page = resp.OpcNextPage
	}
	return out, nil
}
