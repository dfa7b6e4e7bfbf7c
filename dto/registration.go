package dto

// GenerateLinkRequest mirrors the registration link generation body.
type GenerateLinkRequest struct {
	SchoolID  string `json:"schoolId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

// GenerateLinkResponse mirrors the generated link payload. ExpiresAt is an
// opaque server-formatted timestamp.
type GenerateLinkResponse struct {
	Envelope
	RegistrationURL string `json:"registrationUrl"`
	ExpiresAt       string `json:"expiresAt,omitempty"`
	LinkID          string `json:"linkId,omitempty"`
}
