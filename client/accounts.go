package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
)

const accountsBase = "/api/v3/accounts"

// CheckAuth performs the startup auth probe for the configured operator.
func (c *Client) CheckAuth(ctx context.Context) (*models.AuthStatus, error) {
	query := url.Values{}
	query.Set("userEmail", c.userEmail)
	query.Set("userId", c.userID)

	var resp dto.AuthCheckResponse
	if err := c.get(ctx, accountsBase+"/auth/check", query, &resp); err != nil {
		return nil, err
	}
	status := &models.AuthStatus{SuperUser: resp.IsSuperUser}
	if resp.SchoolContext != nil {
		status.Context = &models.SchoolContext{
			SchoolID:     resp.SchoolContext.SchoolID,
			CustomerName: resp.SchoolContext.CustomerName,
			CustomerID:   resp.SchoolContext.CustomerID,
		}
	}
	return status, nil
}

// ListSchools returns every school a super user may emulate.
func (c *Client) ListSchools(ctx context.Context) ([]models.School, error) {
	var resp dto.SchoolsResponse
	if err := c.get(ctx, accountsBase+"/schools", nil, &resp); err != nil {
		return nil, err
	}
	schools := make([]models.School, 0, len(resp.Schools))
	for _, s := range resp.Schools {
		schools = append(schools, models.School{ID: s.ID, Name: s.Name, SupabaseUUID: s.SupabaseUUID})
	}
	return schools, nil
}

// ListAccounts requests one page of the directory.
func (c *Client) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	query := url.Values{}
	query.Set("accountType", string(filter.Type))
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("limit", strconv.Itoa(filter.PageSize))
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.YearGroup != "" {
		query.Set("yearGroup", filter.YearGroup)
	}
	if filter.Group != "" {
		query.Set("group", filter.Group)
	}
	if filter.SchoolID != "" {
		query.Set("emulatedSchoolId", filter.SchoolID)
	}

	var resp dto.AccountsPageResponse
	if err := c.get(ctx, accountsBase, query, &resp); err != nil {
		return nil, 0, err
	}
	accounts := make([]models.Account, 0, len(resp.Accounts))
	for _, p := range resp.Accounts {
		accounts = append(accounts, p.Model())
	}
	return accounts, resp.Total, nil
}

// GetAccount fetches one account with its nested connections.
func (c *Client) GetAccount(ctx context.Context, email string, accountType models.AccountType, schoolID string) (*models.AccountDetail, error) {
	query := url.Values{}
	query.Set("accountType", string(accountType))
	if schoolID != "" {
		query.Set("emulatedSchoolId", schoolID)
	}

	var resp dto.AccountDetailResponse
	if err := c.get(ctx, accountsBase+"/"+url.PathEscape(email), query, &resp); err != nil {
		return nil, err
	}
	detail := resp.Account.Detail()
	return &detail, nil
}

// UpdateAccount submits the editable subset of one account.
func (c *Client) UpdateAccount(ctx context.Context, email string, req dto.UpdateAccountRequest) error {
	var resp dto.Envelope
	return c.send(ctx, http.MethodPut, accountsBase+"/"+url.PathEscape(email), req, &resp)
}

// DeleteAccount removes one account; the server cascades dependent records.
func (c *Client) DeleteAccount(ctx context.Context, email string, req dto.DeleteAccountRequest) error {
	var resp dto.Envelope
	return c.send(ctx, http.MethodDelete, accountsBase+"/"+url.PathEscape(email), req, &resp)
}

// MutateConnection adds or removes one staff-student connection.
func (c *Client) MutateConnection(ctx context.Context, studentEmail string, req dto.ConnectionMutationRequest) error {
	var resp dto.Envelope
	return c.send(ctx, http.MethodPut, accountsBase+"/"+url.PathEscape(studentEmail)+"/connections", req, &resp)
}

// ResetPassword triggers a server-side password reset for one account.
func (c *Client) ResetPassword(ctx context.Context, email string, req dto.AccountActionRequest) error {
	var resp dto.Envelope
	return c.send(ctx, http.MethodPost, accountsBase+"/"+url.PathEscape(email)+"/reset-password", req, &resp)
}

// ResendWelcome re-sends the welcome email for one account.
func (c *Client) ResendWelcome(ctx context.Context, email string, req dto.AccountActionRequest) error {
	var resp dto.Envelope
	return c.send(ctx, http.MethodPost, accountsBase+"/"+url.PathEscape(email)+"/resend-welcome", req, &resp)
}

// AvailableStaff lists staff eligible for a connection role at a school.
func (c *Client) AvailableStaff(ctx context.Context, schoolID string, roleType models.ConnectionType) ([]models.StaffRef, error) {
	query := url.Values{}
	query.Set("roleType", string(roleType))
	if schoolID != "" {
		query.Set("schoolId", schoolID)
	}

	var resp dto.AvailableStaffResponse
	if err := c.get(ctx, accountsBase+"/staff/available", query, &resp); err != nil {
		return nil, err
	}
	staff := make([]models.StaffRef, 0, len(resp.Staff))
	for _, p := range resp.Staff {
		staff = append(staff, p.Model())
	}
	return staff, nil
}
