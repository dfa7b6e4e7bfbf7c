package dto

// UploadOptionsPayload mirrors the options block of the onboarding payload.
type UploadOptionsPayload struct {
	SendNotifications bool   `json:"sendNotifications"`
	NotificationEmail string `json:"notificationEmail,omitempty"`
	Percentile        string `json:"percentile"`
	ManualEntry       bool   `json:"manualEntry"`
}

// UploadContextPayload identifies the uploader, including uploads performed
// under an emulated school.
type UploadContextPayload struct {
	UserID           string `json:"userId"`
	UserEmail        string `json:"userEmail"`
	CustomerID       string `json:"customerId,omitempty"`
	EmulatedSchoolID string `json:"emulatedSchoolId,omitempty"`
}

// UploadRequest mirrors the onboarding validate and process bodies. Rows
// travel as header-keyed records exactly as parsed.
type UploadRequest struct {
	CSVData []map[string]string  `json:"csvData"`
	Options UploadOptionsPayload `json:"options"`
	Context UploadContextPayload `json:"context"`
}

// ValidateUploadResponse mirrors the validate endpoints. Older revisions of
// the pipeline signal through isValid rather than success.
type ValidateUploadResponse struct {
	Success bool     `json:"success"`
	IsValid *bool    `json:"isValid,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Valid merges the two acceptance signals.
func (r ValidateUploadResponse) Valid() bool {
	if r.IsValid != nil {
		return *r.IsValid
	}
	return r.Success
}

// ProcessUploadResponse mirrors the process endpoints. JobID is empty when
// the server handled the batch inline.
type ProcessUploadResponse struct {
	Envelope
	JobID string `json:"jobId,omitempty"`
}
