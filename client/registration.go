package client

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
)

// GenerateRegistrationLink requests a self-registration URL for the school.
func (c *Client) GenerateRegistrationLink(ctx context.Context, kind models.RegistrationKind, req dto.GenerateLinkRequest) (*models.RegistrationLink, error) {
	path := "/api/self-registration/generate-link"
	if kind == models.RegistrationKindStaff {
		path = "/api/staff-registration/generate-link"
	}

	var resp dto.GenerateLinkResponse
	if err := c.send(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &models.RegistrationLink{
		URL:       resp.RegistrationURL,
		ExpiresAt: resp.ExpiresAt,
		LinkID:    resp.LinkID,
	}, nil
}
