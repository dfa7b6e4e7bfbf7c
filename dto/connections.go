package dto

import "github.com/noah-isme/sma-adp-console/models"

// ConnectionMutationRequest mirrors PUT /api/v3/accounts/{email}/connections.
type ConnectionMutationRequest struct {
	ConnectionType   models.ConnectionType   `json:"connectionType"`
	StaffEmail       string                  `json:"staffEmail"`
	Action           models.ConnectionAction `json:"action"`
	EmulatedSchoolID string                  `json:"emulatedSchoolId,omitempty"`
}

// AvailableStaffResponse mirrors GET /api/v3/accounts/staff/available.
type AvailableStaffResponse struct {
	Envelope
	Staff []StaffPayload `json:"staff"`
}
