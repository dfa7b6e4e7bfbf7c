package dto

// SchoolContextPayload mirrors the auth probe's school scope block.
type SchoolContextPayload struct {
	SchoolID     string `json:"schoolId"`
	CustomerName string `json:"customerName"`
	CustomerID   string `json:"customerId,omitempty"`
}

// AuthCheckResponse mirrors GET /api/v3/accounts/auth/check.
type AuthCheckResponse struct {
	Envelope
	IsSuperUser   bool                  `json:"isSuperUser"`
	SchoolContext *SchoolContextPayload `json:"schoolContext,omitempty"`
}

// SchoolPayload mirrors one selectable school.
type SchoolPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SupabaseUUID string `json:"supabaseUuid,omitempty"`
}

// SchoolsResponse mirrors GET /api/v3/accounts/schools.
type SchoolsResponse struct {
	Envelope
	Schools []SchoolPayload `json:"schools"`
}
