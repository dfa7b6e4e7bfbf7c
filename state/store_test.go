package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/models"
)

func seedAccounts(t *testing.T, store *Store, emails ...string) {
	t.Helper()
	accounts := make([]models.Account, 0, len(emails))
	for _, email := range emails {
		accounts = append(accounts, models.Account{Email: email, FirstName: "First", LastName: "Last"})
	}
	gen := store.BeginLoad()
	require.True(t, store.ApplyAccounts(gen, accounts, len(accounts)))
}

func TestApplyAccountsDiscardsStaleGeneration(t *testing.T) {
	store := New(50)

	genOld := store.BeginLoad()
	genNew := store.BeginLoad()

	stale := []models.Account{{Email: "stale@school.org"}}
	fresh := []models.Account{{Email: "fresh@school.org"}}

	assert.True(t, store.ApplyAccounts(genNew, fresh, 1))
	assert.False(t, store.ApplyAccounts(genOld, stale, 1))

	snapshot := store.Snapshot()
	require.Len(t, snapshot.Accounts, 1)
	assert.Equal(t, "fresh@school.org", snapshot.Accounts[0].Email)
	assert.False(t, snapshot.Loading)
}

func TestApplyAccountsPrunesSelectionAndEditing(t *testing.T) {
	store := New(50)
	seedAccounts(t, store, "a@school.org", "b@school.org")

	store.ToggleSelect("a@school.org")
	store.ToggleSelect("b@school.org")
	_, ok := store.StartEdit("a@school.org")
	require.True(t, ok)

	gen := store.BeginLoad()
	require.True(t, store.ApplyAccounts(gen, []models.Account{{Email: "b@school.org"}}, 1))

	snapshot := store.Snapshot()
	assert.Equal(t, []string{"b@school.org"}, snapshot.Selection)
	assert.Nil(t, snapshot.Editing)
}

func TestStartEditIsExclusive(t *testing.T) {
	store := New(50)
	seedAccounts(t, store, "a@school.org", "b@school.org")

	_, ok := store.StartEdit("a@school.org")
	require.True(t, ok)
	_, ok = store.StartEdit("b@school.org")
	require.True(t, ok)

	editing := store.Editing()
	require.NotNil(t, editing)
	assert.Equal(t, "b@school.org", editing.Email)

	_, ok = store.StartEdit("missing@school.org")
	assert.False(t, ok)
	// A failed start leaves the previous session alone.
	assert.Equal(t, "b@school.org", store.Editing().Email)
}

func TestStartEditSeedsFormFromAccount(t *testing.T) {
	store := New(50)
	gen := store.BeginLoad()
	require.True(t, store.ApplyAccounts(gen, []models.Account{{
		Email:     "a@school.org",
		FirstName: "Ada",
		LastName:  "Lovelace",
		YearGroup: "7",
		UPN:       "U123",
	}}, 1))

	form, ok := store.StartEdit("a@school.org")
	require.True(t, ok)
	assert.Equal(t, "Ada", form.FirstName)
	assert.Equal(t, "7", form.YearGroup)
	assert.Equal(t, "U123", form.UPN)
}

func TestSetAccountTypeResetsView(t *testing.T) {
	store := New(50)
	seedAccounts(t, store, "a@school.org")
	store.SetSearch("smith")
	store.SetFilters("7", "7A")
	store.SetPage(4)
	store.ToggleSelect("a@school.org")
	_, _ = store.StartEdit("a@school.org")

	store.SetAccountType(models.AccountTypeStaff)

	snapshot := store.Snapshot()
	assert.Equal(t, models.AccountTypeStaff, snapshot.AccountType)
	assert.Equal(t, 1, snapshot.Page)
	assert.Empty(t, snapshot.Search)
	assert.Empty(t, snapshot.YearGroup)
	assert.Empty(t, snapshot.Selection)
	assert.Nil(t, snapshot.Editing)
}

func TestSearchAndFiltersRewindPage(t *testing.T) {
	store := New(50)
	store.SetPage(3)
	store.SetSearch("jones")
	assert.Equal(t, 1, store.Snapshot().Page)

	store.SetPage(2)
	store.SetFilters("8", "")
	assert.Equal(t, 1, store.Snapshot().Page)

	store.SetPage(0)
	assert.Equal(t, 1, store.Snapshot().Page)
}

func TestFilterCarriesResolvedSchool(t *testing.T) {
	store := New(25)
	store.MarkChecked(&models.AuthStatus{
		Context: &models.SchoolContext{SchoolID: "S1", CustomerName: "Acme School"},
	})
	store.SetSearch("ada")

	filter := store.Filter()
	assert.Equal(t, "S1", filter.SchoolID)
	assert.Equal(t, "ada", filter.Search)
	assert.Equal(t, 25, filter.PageSize)

	super := New(25)
	super.MarkChecked(&models.AuthStatus{SuperUser: true})
	assert.Empty(t, super.Filter().SchoolID)
	super.SelectSchool("S2", "Other School")
	assert.Equal(t, "S2", super.Filter().SchoolID)
}

func TestSelectionOrderAndToggle(t *testing.T) {
	store := New(50)
	seedAccounts(t, store, "a@school.org", "b@school.org", "c@school.org")

	store.ToggleSelect("b@school.org")
	store.ToggleSelect("a@school.org")
	assert.Equal(t, []string{"b@school.org", "a@school.org"}, store.SelectedEmails())

	store.ToggleSelect("b@school.org")
	assert.Equal(t, []string{"a@school.org"}, store.SelectedEmails())

	store.SelectAll()
	assert.Len(t, store.SelectedEmails(), 3)
	assert.Len(t, store.SelectedAccounts(), 3)

	store.ClearSelection()
	assert.Empty(t, store.SelectedEmails())
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	store := New(50)

	var last State
	var calls int
	unsubscribe := store.Subscribe(func(s State) {
		last = s
		calls++
	})

	store.SetSearch("ada")
	require.GreaterOrEqual(t, calls, 1)
	assert.Equal(t, "ada", last.Search)

	unsubscribe()
	before := calls
	store.SetSearch("grace")
	assert.Equal(t, before, calls)
}

func TestPaginationSnapshot(t *testing.T) {
	store := New(50)
	gen := store.BeginLoad()
	require.True(t, store.ApplyAccounts(gen, nil, 120))
	store.SetPage(2)

	pagination := store.Snapshot().Pagination()
	assert.Equal(t, 3, pagination.TotalPages())
	assert.True(t, pagination.HasNext())
}
