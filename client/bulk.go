package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
)

// AssignRoles submits a role assignment for one staff account. The server
// applies it asynchronously and returns the job handle to poll.
func (c *Client) AssignRoles(ctx context.Context, staffEmail string, req dto.RoleAssignmentRequest) (string, error) {
	var resp dto.JobAcceptedResponse
	path := accountsBase + "/staff/" + url.PathEscape(staffEmail) + "/roles"
	if err := c.send(ctx, http.MethodPut, path, req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// SubmitBulk enqueues one batch operation over a selection.
func (c *Client) SubmitBulk(ctx context.Context, req dto.BulkSubmitRequest) (string, error) {
	var resp dto.JobAcceptedResponse
	if err := c.send(ctx, http.MethodPost, "/api/v3/bulk/submit", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// BulkStatus polls one queued job.
func (c *Client) BulkStatus(ctx context.Context, jobID string) (*models.JobProgress, error) {
	var resp dto.BulkStatusResponse
	if err := c.get(ctx, "/api/v3/bulk/status/"+url.PathEscape(jobID), nil, &resp); err != nil {
		return nil, err
	}
	progress := resp.Model()
	return &progress, nil
}

// BulkDelete enqueues a mass delete of the selection.
func (c *Client) BulkDelete(ctx context.Context, req dto.BulkDeleteRequest) (string, error) {
	var resp dto.JobAcceptedResponse
	if err := c.send(ctx, http.MethodPost, accountsBase+"/bulk-delete", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}
