package models

// School is one selectable school for the super-user picker.
type School struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SupabaseUUID string `json:"supabase_uuid,omitempty"`
}

// SchoolContext scopes data requests to one school.
type SchoolContext struct {
	SchoolID     string `json:"school_id"`
	CustomerName string `json:"customer_name"`
	CustomerID   string `json:"customer_id,omitempty"`
}

// AuthStatus is the outcome of the startup auth probe.
type AuthStatus struct {
	SuperUser bool
	Context   *SchoolContext
}

// Session is the ambient identity state established at boot. Access control
// itself lives server-side; the session only scopes requests and display.
type Session struct {
	Checked            bool           `json:"checked"`
	SuperUser          bool           `json:"super_user"`
	Context            *SchoolContext `json:"context,omitempty"`
	SelectedSchoolID   string         `json:"selected_school_id,omitempty"`
	SelectedSchoolName string         `json:"selected_school_name,omitempty"`
}

// ResolvedSchoolID is the school id stamped on scoped requests. Super users
// scope by explicit selection, everyone else by probe context; empty means
// the server's own row-level security decides.
func (s Session) ResolvedSchoolID() string {
	if s.SuperUser {
		return s.SelectedSchoolID
	}
	if s.Context != nil {
		return s.Context.SchoolID
	}
	return ""
}

// Badge is the school name shown next to the session.
func (s Session) Badge() string {
	if s.SuperUser && s.SelectedSchoolName != "" {
		return s.SelectedSchoolName
	}
	if s.Context != nil {
		return s.Context.CustomerName
	}
	return ""
}
