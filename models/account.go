package models

import "strings"

// AccountType distinguishes the two directory populations.
type AccountType string

const (
	AccountTypeStudent AccountType = "student"
	AccountTypeStaff   AccountType = "staff"
)

// Account is one student or staff record as the accounts API returns it.
// Email is the unique key across both populations.
type Account struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Student fields.
	YearGroup  string `json:"year_group,omitempty"`
	TutorGroup string `json:"tutor_group,omitempty"`
	Gender     string `json:"gender,omitempty"`
	UPN        string `json:"upn,omitempty"`

	// Staff fields.
	Subject    string   `json:"subject,omitempty"`
	Department string   `json:"department,omitempty"`
	Roles      []string `json:"roles,omitempty"`

	SchoolID string `json:"school_id,omitempty"`
}

// FullName joins the name parts for display and exports.
func (a Account) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// AccountDetail carries the single-account view including nested connections.
type AccountDetail struct {
	Account
	Connections ConnectionSet `json:"connections"`
}

// AccountFilter captures one listing query.
type AccountFilter struct {
	Type      AccountType
	Page      int
	PageSize  int
	Search    string
	YearGroup string
	Group     string
	SchoolID  string
}

// EditForm is the editable subset of an account submitted on save.
type EditForm struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	YearGroup  string `json:"year_group,omitempty"`
	TutorGroup string `json:"tutor_group,omitempty"`
	Gender     string `json:"gender,omitempty"`
	UPN        string `json:"upn,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Department string `json:"department,omitempty"`
}

// Pagination contains pagination metadata for the loaded page.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// TotalPages reports how many pages the total spans; an empty listing still
// has one page.
func (p Pagination) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount <= 0 {
		return 1
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages()
}

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}
