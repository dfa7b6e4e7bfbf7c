package dto

import "github.com/noah-isme/sma-adp-console/models"

// RoleAssignmentRequest mirrors PUT /api/v3/accounts/staff/{email}/roles.
// Assignments maps a role to the group or subject names it applies to.
type RoleAssignmentRequest struct {
	Roles            []string            `json:"roles"`
	Assignments      map[string][]string `json:"assignments,omitempty"`
	EmulatedSchoolID string              `json:"emulatedSchoolId,omitempty"`
	UserEmail        string              `json:"userEmail"`
}

// JobAcceptedResponse is the envelope carrying a queued job handle.
type JobAcceptedResponse struct {
	Envelope
	JobID string `json:"jobId"`
}

// BulkSubmitRequest mirrors POST /api/v3/bulk/submit: one batch operation
// over a selection, applied server-side.
type BulkSubmitRequest struct {
	Operation        string                  `json:"operation"`
	AccountType      models.AccountType      `json:"accountType"`
	Emails           []string                `json:"emails"`
	ConnectionType   models.ConnectionType   `json:"connectionType,omitempty"`
	StaffEmail       string                  `json:"staffEmail,omitempty"`
	Action           models.ConnectionAction `json:"action,omitempty"`
	EmulatedSchoolID string                  `json:"emulatedSchoolId,omitempty"`
}

// BulkProgressPayload mirrors the progress block of a status poll.
type BulkProgressPayload struct {
	Current int    `json:"current"`
	Status  string `json:"status,omitempty"`
}

// BulkResultPayload mirrors the terminal result tallies.
type BulkResultPayload struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BulkStatusResponse mirrors GET /api/v3/bulk/status/{jobId}.
type BulkStatusResponse struct {
	Envelope
	Progress  BulkProgressPayload `json:"progress"`
	Completed bool                `json:"completed"`
	Failed    bool                `json:"failed"`
	Result    BulkResultPayload   `json:"result"`
}

// Model converts the wire shape into the view model.
func (r BulkStatusResponse) Model() models.JobProgress {
	return models.JobProgress{
		Current:          r.Progress.Current,
		Status:           r.Progress.Status,
		Completed:        r.Completed,
		Failed:           r.Failed,
		ResultSuccessful: r.Result.Successful,
		ResultFailed:     r.Result.Failed,
	}
}

// BulkDeleteRequest mirrors POST /api/v3/accounts/bulk-delete.
type BulkDeleteRequest struct {
	AccountType      models.AccountType `json:"accountType"`
	Emails           []string           `json:"emails"`
	EmulatedSchoolID string             `json:"emulatedSchoolId,omitempty"`
}
