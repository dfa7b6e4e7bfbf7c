package models

// RegistrationKind selects which population a self-registration link enrolls.
type RegistrationKind string

const (
	RegistrationKindStudent RegistrationKind = "student"
	RegistrationKindStaff   RegistrationKind = "staff"
)

// RegistrationLink is a generated self-registration URL handed to operators.
// ExpiresAt is kept as the server sent it; the console never parses it.
type RegistrationLink struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at,omitempty"`
	LinkID    string `json:"link_id,omitempty"`
}
