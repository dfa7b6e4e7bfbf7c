package models

// GroupType names the kinds of school grouping the console manages.
type GroupType string

const (
	GroupTypeTutorGroup GroupType = "tutor_group"
	GroupTypeYearGroup  GroupType = "year_group"
	GroupTypeDepartment GroupType = "department"
)

// GroupTypes lists every grouping kind in display order.
func GroupTypes() []GroupType {
	return []GroupType{GroupTypeTutorGroup, GroupTypeYearGroup, GroupTypeDepartment}
}

// SchoolGroup is a named grouping scoped to one school. Groups back the
// listing filter dropdowns and bulk reassignment targets.
type SchoolGroup struct {
	ID       string    `json:"id"`
	SchoolID string    `json:"school_id"`
	Name     string    `json:"name"`
	Type     GroupType `json:"type"`
}
