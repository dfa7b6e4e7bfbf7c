package dto

import "github.com/noah-isme/sma-adp-console/models"

// AccountPayload mirrors one listed account.
type AccountPayload struct {
	Email      string   `json:"email"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	YearGroup  string   `json:"yearGroup,omitempty"`
	TutorGroup string   `json:"tutorGroup,omitempty"`
	Gender     string   `json:"gender,omitempty"`
	UPN        string   `json:"upn,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Department string   `json:"department,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	SchoolID   string   `json:"schoolId,omitempty"`
}

// Model converts the wire shape into the view model.
func (p AccountPayload) Model() models.Account {
	return models.Account{
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		YearGroup:  p.YearGroup,
		TutorGroup: p.TutorGroup,
		Gender:     p.Gender,
		UPN:        p.UPN,
		Subject:    p.Subject,
		Department: p.Department,
		Roles:      p.Roles,
		SchoolID:   p.SchoolID,
	}
}

// AccountsPageResponse mirrors GET /api/v3/accounts.
type AccountsPageResponse struct {
	Envelope
	Accounts []AccountPayload `json:"accounts"`
	Total    int              `json:"total"`
}

// StaffPayload mirrors staff entries in connection lists and pickers.
type StaffPayload struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// Model converts the wire shape into the view model.
func (p StaffPayload) Model() models.StaffRef {
	return models.StaffRef{Email: p.Email, FullName: p.FullName}
}

// ConnectionsPayload mirrors the nested per-type connection lists.
type ConnectionsPayload struct {
	Tutors          []StaffPayload `json:"tutors"`
	HeadsOfYear     []StaffPayload `json:"headsOfYear"`
	SubjectTeachers []StaffPayload `json:"subjectTeachers"`
	StaffAdmins     []StaffPayload `json:"staffAdmins"`
}

// Model converts the wire shape into the view model.
func (c ConnectionsPayload) Model() models.ConnectionSet {
	return models.ConnectionSet{
		Tutors:          staffRefs(c.Tutors),
		HeadsOfYear:     staffRefs(c.HeadsOfYear),
		SubjectTeachers: staffRefs(c.SubjectTeachers),
		StaffAdmins:     staffRefs(c.StaffAdmins),
	}
}

func staffRefs(payloads []StaffPayload) []models.StaffRef {
	if len(payloads) == 0 {
		return nil
	}
	refs := make([]models.StaffRef, 0, len(payloads))
	for _, p := range payloads {
		refs = append(refs, p.Model())
	}
	return refs
}

// AccountDetailPayload mirrors the single-account response body.
type AccountDetailPayload struct {
	AccountPayload
	Connections ConnectionsPayload `json:"connections"`
}

// Detail converts the wire shape into the view model.
func (p AccountDetailPayload) Detail() models.AccountDetail {
	return models.AccountDetail{
		Account:     p.AccountPayload.Model(),
		Connections: p.Connections.Model(),
	}
}

// AccountDetailResponse mirrors GET /api/v3/accounts/{email}.
type AccountDetailResponse struct {
	Envelope
	Account AccountDetailPayload `json:"account"`
}

// UpdateAccountRequest mirrors PUT /api/v3/accounts/{email}. Only the
// editable subset travels; the server owns everything else.
type UpdateAccountRequest struct {
	AccountType      models.AccountType `json:"accountType"`
	EmulatedSchoolID string             `json:"emulatedSchoolId,omitempty"`
	FirstName        string             `json:"firstName"`
	LastName         string             `json:"lastName"`
	YearGroup        string             `json:"yearGroup,omitempty"`
	TutorGroup       string             `json:"tutorGroup,omitempty"`
	Gender           string             `json:"gender,omitempty"`
	UPN              string             `json:"upn,omitempty"`
	Subject          string             `json:"subject,omitempty"`
	Department       string             `json:"department,omitempty"`
}

// DeleteAccountRequest mirrors DELETE /api/v3/accounts/{email}.
type DeleteAccountRequest struct {
	AccountType      models.AccountType `json:"accountType"`
	EmulatedSchoolID string             `json:"emulatedSchoolId,omitempty"`
}

// AccountActionRequest is the shared body for reset-password and
// resend-welcome.
type AccountActionRequest struct {
	AccountType      models.AccountType `json:"accountType"`
	EmulatedSchoolID string             `json:"emulatedSchoolId,omitempty"`
}
