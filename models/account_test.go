package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginationTotalPages(t *testing.T) {
	tests := []struct {
		name       string
		pagination Pagination
		pages      int
		hasNext    bool
		hasPrev    bool
	}{
		{
			name:       "120 accounts over pages of 50",
			pagination: Pagination{Page: 2, PageSize: 50, TotalCount: 120},
			pages:      3,
			hasNext:    true,
			hasPrev:    true,
		},
		{
			name:       "last page disables next",
			pagination: Pagination{Page: 3, PageSize: 50, TotalCount: 120},
			pages:      3,
			hasNext:    false,
			hasPrev:    true,
		},
		{
			name:       "exact multiple",
			pagination: Pagination{Page: 1, PageSize: 50, TotalCount: 100},
			pages:      2,
			hasNext:    true,
			hasPrev:    false,
		},
		{
			name:       "empty listing still has one page",
			pagination: Pagination{Page: 1, PageSize: 50, TotalCount: 0},
			pages:      1,
			hasNext:    false,
			hasPrev:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pages, tt.pagination.TotalPages())
			assert.Equal(t, tt.hasNext, tt.pagination.HasNext())
			assert.Equal(t, tt.hasPrev, tt.pagination.HasPrev())
		})
	}
}

func TestSessionResolvedSchoolID(t *testing.T) {
	super := Session{SuperUser: true, SelectedSchoolID: "S2", Context: &SchoolContext{SchoolID: "S1"}}
	assert.Equal(t, "S2", super.ResolvedSchoolID())

	scoped := Session{Context: &SchoolContext{SchoolID: "S1", CustomerName: "Acme School"}}
	assert.Equal(t, "S1", scoped.ResolvedSchoolID())
	assert.Equal(t, "Acme School", scoped.Badge())

	assert.Empty(t, Session{SuperUser: true}.ResolvedSchoolID())
}
