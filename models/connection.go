package models

// ConnectionType names the staff-student relationship kinds.
type ConnectionType string

const (
	ConnectionTutor          ConnectionType = "tutor"
	ConnectionHeadOfYear     ConnectionType = "head_of_year"
	ConnectionSubjectTeacher ConnectionType = "subject_teacher"
	ConnectionStaffAdmin     ConnectionType = "staff_admin"
)

// ConnectionTypes lists every relationship kind in display order.
func ConnectionTypes() []ConnectionType {
	return []ConnectionType{
		ConnectionTutor,
		ConnectionHeadOfYear,
		ConnectionSubjectTeacher,
		ConnectionStaffAdmin,
	}
}

// ConnectionAction is the mutation direction for a connection change.
type ConnectionAction string

const (
	ConnectionActionAdd    ConnectionAction = "add"
	ConnectionActionRemove ConnectionAction = "remove"
)

// StaffRef identifies a staff member inside connection lists and pickers.
type StaffRef struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// ConnectionSet groups a student's connections by relationship kind.
type ConnectionSet struct {
	Tutors          []StaffRef `json:"tutors"`
	HeadsOfYear     []StaffRef `json:"heads_of_year"`
	SubjectTeachers []StaffRef `json:"subject_teachers"`
	StaffAdmins     []StaffRef `json:"staff_admins"`
}

// ByType returns the list backing the given relationship kind.
func (c ConnectionSet) ByType(t ConnectionType) []StaffRef {
	switch t {
	case ConnectionTutor:
		return c.Tutors
	case ConnectionHeadOfYear:
		return c.HeadsOfYear
	case ConnectionSubjectTeacher:
		return c.SubjectTeachers
	case ConnectionStaffAdmin:
		return c.StaffAdmins
	default:
		return nil
	}
}
