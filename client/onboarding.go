package client

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
)

// The onboarding endpoints predate the v3 surface and keep their legacy
// paths.
func onboardingPath(kind models.UploadKind, stage string) string {
	if kind == models.UploadKindStaff {
		return "/api/staff/" + stage
	}
	return "/api/students/onboard/" + stage
}

// ValidateUpload submits parsed rows for server-side validation. The
// returned slice carries the server's row errors verbatim; empty means the
// batch passed. Validation rejections are data, not errors.
func (c *Client) ValidateUpload(ctx context.Context, kind models.UploadKind, req dto.UploadRequest) ([]string, error) {
	var resp dto.ValidateUploadResponse
	if err := c.do(ctx, http.MethodPost, onboardingPath(kind, "validate"), nil, req, &resp, false); err != nil {
		return nil, err
	}
	if resp.Valid() {
		return nil, nil
	}
	if len(resp.Errors) > 0 {
		return resp.Errors, nil
	}
	if resp.Message != "" {
		return []string{resp.Message}, nil
	}
	return []string{"upload rejected by validation"}, nil
}

// ProcessUpload enqueues validated rows for ingestion. The returned job id
// is empty when the server handled the batch inline; the message then
// carries the server's summary.
func (c *Client) ProcessUpload(ctx context.Context, kind models.UploadKind, req dto.UploadRequest) (string, string, error) {
	var resp dto.ProcessUploadResponse
	if err := c.send(ctx, http.MethodPost, onboardingPath(kind, "process"), req, &resp); err != nil {
		return "", "", err
	}
	return resp.JobID, resp.Message, nil
}
