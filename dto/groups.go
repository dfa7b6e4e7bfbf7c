package dto

import "github.com/noah-isme/sma-adp-console/models"

// GroupPayload mirrors one school group.
type GroupPayload struct {
	ID   string           `json:"id"`
	Name string           `json:"name"`
	Type models.GroupType `json:"type"`
}

// Model converts the wire shape into the view model.
func (p GroupPayload) Model(schoolID string) models.SchoolGroup {
	return models.SchoolGroup{ID: p.ID, SchoolID: schoolID, Name: p.Name, Type: p.Type}
}

// GroupsResponse mirrors GET /api/v3/schools/{schoolId}/groups.
type GroupsResponse struct {
	Envelope
	Groups []GroupPayload `json:"groups"`
}

// GroupResponse mirrors the create and rename responses carrying one group.
type GroupResponse struct {
	Envelope
	Group GroupPayload `json:"group"`
}

// CreateGroupRequest mirrors POST /api/v3/schools/{schoolId}/groups.
type CreateGroupRequest struct {
	Name string           `json:"name"`
	Type models.GroupType `json:"type"`
}

// RenameGroupRequest mirrors PUT /api/v3/schools/{schoolId}/groups/{groupId}.
type RenameGroupRequest struct {
	Name string `json:"name"`
}

// GroupUsageResponse mirrors GET .../groups/{groupId}/usage.
type GroupUsageResponse struct {
	Envelope
	Count int `json:"count"`
}
