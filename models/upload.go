package models

// UploadKind selects the onboarding pipeline a row set is sent through.
type UploadKind string

const (
	UploadKindStudents UploadKind = "students"
	UploadKindStaff    UploadKind = "staff"
)

// RowSet is a parsed spreadsheet: the ordered header row plus one record per
// data row keyed by header.
type RowSet struct {
	Headers []string            `json:"headers"`
	Records []map[string]string `json:"records"`
}

// Len returns the number of data rows.
func (r *RowSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// UploadOptions carries the onboarding options forwarded with each batch.
type UploadOptions struct {
	SendNotifications bool
	NotificationEmail string
	Percentile        string
	ManualEntry       bool
}

// ManualEntry is the single-record form for adding one account by hand. It
// travels the same onboarding pipeline as a one-row upload.
type ManualEntry struct {
	FirstName  string `validate:"required"`
	LastName   string `validate:"required"`
	Email      string `validate:"required,email"`
	YearGroup  string
	TutorGroup string
	Gender     string
	UPN        string
	Subject    string
	Department string
}
