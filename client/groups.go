package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
)

const schoolsBase = "/api/v3/schools"

func groupsPath(schoolID string) string {
	return schoolsBase + "/" + url.PathEscape(schoolID) + "/groups"
}

// ListGroups returns the school's groups, optionally narrowed by type.
func (c *Client) ListGroups(ctx context.Context, schoolID string, groupType models.GroupType) ([]models.SchoolGroup, error) {
	query := url.Values{}
	if groupType != "" {
		query.Set("type", string(groupType))
	}

	var resp dto.GroupsResponse
	if err := c.get(ctx, groupsPath(schoolID), query, &resp); err != nil {
		return nil, err
	}
	groups := make([]models.SchoolGroup, 0, len(resp.Groups))
	for _, g := range resp.Groups {
		groups = append(groups, g.Model(schoolID))
	}
	return groups, nil
}

// CreateGroup adds a named grouping to the school.
func (c *Client) CreateGroup(ctx context.Context, schoolID string, req dto.CreateGroupRequest) (*models.SchoolGroup, error) {
	var resp dto.GroupResponse
	if err := c.send(ctx, http.MethodPost, groupsPath(schoolID), req, &resp); err != nil {
		return nil, err
	}
	group := resp.Group.Model(schoolID)
	return &group, nil
}

// RenameGroup renames an existing grouping.
func (c *Client) RenameGroup(ctx context.Context, schoolID, groupID, name string) error {
	var resp dto.Envelope
	path := groupsPath(schoolID) + "/" + url.PathEscape(groupID)
	return c.send(ctx, http.MethodPut, path, dto.RenameGroupRequest{Name: name}, &resp)
}

// DeleteGroup removes a grouping.
func (c *Client) DeleteGroup(ctx context.Context, schoolID, groupID string) error {
	var resp dto.Envelope
	path := groupsPath(schoolID) + "/" + url.PathEscape(groupID)
	return c.send(ctx, http.MethodDelete, path, nil, &resp)
}

// GroupUsage reports how many accounts reference the grouping.
func (c *Client) GroupUsage(ctx context.Context, schoolID, groupID string) (int, error) {
	var resp dto.GroupUsageResponse
	path := groupsPath(schoolID) + "/" + url.PathEscape(groupID) + "/usage"
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
