// Package state owns the console's view state. Every mutation flows through
// a Store method so transitions stay explicit and testable; readers observe
// immutable snapshots and never see a partially applied change.
package state

import (
	"sync"

	"github.com/noah-isme/sma-adp-console/models"
)

// EditSession is the single record allowed to be in the editing state.
type EditSession struct {
	Email string
	Form  models.EditForm
}

// State is one observable snapshot of the console.
type State struct {
	Session  models.Session
	Schools  []models.School
	Accounts []models.Account
	Total    int

	AccountType models.AccountType
	Page        int
	PageSize    int
	Search      string
	YearGroup   string
	Group       string

	Selection []string
	Editing   *EditSession
	Jobs      []models.TrackedJob

	Loading        bool
	LoadGeneration uint64
}

// Pagination derives page metadata from the loaded totals.
func (s State) Pagination() models.Pagination {
	return models.Pagination{Page: s.Page, PageSize: s.PageSize, TotalCount: s.Total}
}

// Selected reports whether the email is part of the selection.
func (s State) Selected(email string) bool {
	for _, e := range s.Selection {
		if e == email {
			return true
		}
	}
	return false
}

// Account returns the loaded account for the email.
func (s State) Account(email string) (models.Account, bool) {
	for _, a := range s.Accounts {
		if a.Email == email {
			return a, true
		}
	}
	return models.Account{}, false
}

func (s State) clone() State {
	out := s
	out.Schools = append([]models.School(nil), s.Schools...)
	out.Accounts = append([]models.Account(nil), s.Accounts...)
	out.Selection = append([]string(nil), s.Selection...)
	out.Jobs = append([]models.TrackedJob(nil), s.Jobs...)
	if s.Editing != nil {
		editing := *s.Editing
		out.Editing = &editing
	}
	if s.Session.Context != nil {
		ctx := *s.Session.Context
		out.Session.Context = &ctx
	}
	return out
}

// Store serialises all view-state transitions.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers map[int]func(State)
	nextSub     int
}

// New builds a store showing the first page of students.
func New(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Store{
		state: State{
			AccountType: models.AccountTypeStudent,
			Page:        1,
			PageSize:    pageSize,
		},
		subscribers: make(map[int]func(State)),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers an observer called with a snapshot after every
// transition. The returned function removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// mutate runs fn under the write lock, then notifies subscribers outside it
// so observers may call back into the store.
func (s *Store) mutate(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.clone()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub(snapshot)
	}
}

// MarkChecked records the auth probe outcome. The console unlocks whether
// or not the probe succeeded; enforcement is server-side.
func (s *Store) MarkChecked(status *models.AuthStatus) {
	s.mutate(func(st *State) {
		st.Session.Checked = true
		if status == nil {
			return
		}
		st.Session.SuperUser = status.SuperUser
		if status.Context != nil {
			ctx := *status.Context
			st.Session.Context = &ctx
		}
	})
}

// SetSchools stores the super-user school picker contents.
func (s *Store) SetSchools(schools []models.School) {
	s.mutate(func(st *State) {
		st.Schools = append([]models.School(nil), schools...)
	})
}

// SelectSchool records the emulated school context and resets per-school
// view state.
func (s *Store) SelectSchool(id, name string) {
	s.mutate(func(st *State) {
		st.Session.SelectedSchoolID = id
		st.Session.SelectedSchoolName = name
		st.Page = 1
		st.Selection = nil
		st.Editing = nil
	})
}

// BeginLoad bumps the load generation and returns the token the eventual
// response must present to be applied.
func (s *Store) BeginLoad() uint64 {
	var gen uint64
	s.mutate(func(st *State) {
		st.LoadGeneration++
		st.Loading = true
		gen = st.LoadGeneration
	})
	return gen
}

// ApplyAccounts replaces the listing wholesale when the generation is still
// current; stale responses are discarded. Selection and editing are pruned
// to emails that survived the reload.
func (s *Store) ApplyAccounts(gen uint64, accounts []models.Account, total int) bool {
	applied := false
	s.mutate(func(st *State) {
		if gen != st.LoadGeneration {
			return
		}
		st.Accounts = append([]models.Account(nil), accounts...)
		st.Total = total
		st.Loading = false
		applied = true

		if len(st.Selection) > 0 {
			keep := make(map[string]struct{}, len(accounts))
			for _, a := range accounts {
				keep[a.Email] = struct{}{}
			}
			selection := make([]string, 0, len(st.Selection))
			for _, email := range st.Selection {
				if _, ok := keep[email]; ok {
					selection = append(selection, email)
				}
			}
			st.Selection = selection
		}
		if st.Editing != nil {
			if _, ok := st.Account(st.Editing.Email); !ok {
				st.Editing = nil
			}
		}
	})
	return applied
}

// FailLoad clears the loading flag when the failed request is still current.
func (s *Store) FailLoad(gen uint64) {
	s.mutate(func(st *State) {
		if gen == st.LoadGeneration {
			st.Loading = false
		}
	})
}

// SetAccountType switches population and resets paging, search, filters,
// selection and editing.
func (s *Store) SetAccountType(t models.AccountType) {
	s.mutate(func(st *State) {
		if st.AccountType == t {
			return
		}
		st.AccountType = t
		st.Page = 1
		st.Search = ""
		st.YearGroup = ""
		st.Group = ""
		st.Selection = nil
		st.Editing = nil
	})
}

// SetSearch records the live search text and rewinds to the first page.
func (s *Store) SetSearch(query string) {
	s.mutate(func(st *State) {
		st.Search = query
		st.Page = 1
	})
}

// SetFilters records the year group and group filters and rewinds paging.
func (s *Store) SetFilters(yearGroup, group string) {
	s.mutate(func(st *State) {
		st.YearGroup = yearGroup
		st.Group = group
		st.Page = 1
	})
}

// SetPage records the requested page, clamped to at least 1.
func (s *Store) SetPage(page int) {
	s.mutate(func(st *State) {
		if page < 1 {
			page = 1
		}
		st.Page = page
	})
}

// Filter assembles the listing query for the current state.
func (s *Store) Filter() models.AccountFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.AccountFilter{
		Type:      s.state.AccountType,
		Page:      s.state.Page,
		PageSize:  s.state.PageSize,
		Search:    s.state.Search,
		YearGroup: s.state.YearGroup,
		Group:     s.state.Group,
		SchoolID:  s.state.Session.ResolvedSchoolID(),
	}
}

// ToggleSelect flips one row's membership in the selection, preserving
// first-selected order.
func (s *Store) ToggleSelect(email string) {
	s.mutate(func(st *State) {
		for i, e := range st.Selection {
			if e == email {
				st.Selection = append(st.Selection[:i], st.Selection[i+1:]...)
				return
			}
		}
		st.Selection = append(st.Selection, email)
	})
}

// SelectAll selects every loaded row.
func (s *Store) SelectAll() {
	s.mutate(func(st *State) {
		selection := make([]string, 0, len(st.Accounts))
		for _, a := range st.Accounts {
			selection = append(selection, a.Email)
		}
		st.Selection = selection
	})
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mutate(func(st *State) {
		st.Selection = nil
	})
}

// SelectedEmails returns the selection in order.
func (s *Store) SelectedEmails() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.state.Selection...)
}

// SelectedAccounts resolves the selection against the loaded page.
func (s *Store) SelectedAccounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]models.Account, 0, len(s.state.Selection))
	for _, email := range s.state.Selection {
		if a, ok := s.state.Account(email); ok {
			accounts = append(accounts, a)
		}
	}
	return accounts
}

// StartEdit puts the record into the editing state, seeding the form from
// the loaded account. Any other record's edit session ends implicitly: at
// most one row edits at a time.
func (s *Store) StartEdit(email string) (models.EditForm, bool) {
	var form models.EditForm
	ok := false
	s.mutate(func(st *State) {
		account, found := st.Account(email)
		if !found {
			return
		}
		form = models.EditForm{
			FirstName:  account.FirstName,
			LastName:   account.LastName,
			YearGroup:  account.YearGroup,
			TutorGroup: account.TutorGroup,
			Gender:     account.Gender,
			UPN:        account.UPN,
			Subject:    account.Subject,
			Department: account.Department,
		}
		st.Editing = &EditSession{Email: email, Form: form}
		ok = true
	})
	return form, ok
}

// UpdateEditForm replaces the in-progress form for the record being edited.
func (s *Store) UpdateEditForm(form models.EditForm) bool {
	updated := false
	s.mutate(func(st *State) {
		if st.Editing == nil {
			return
		}
		st.Editing.Form = form
		updated = true
	})
	return updated
}

// Editing returns a copy of the current edit session, if any.
func (s *Store) Editing() *EditSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Editing == nil {
		return nil
	}
	editing := *s.state.Editing
	return &editing
}

// EndEdit leaves the editing state.
func (s *Store) EndEdit() {
	s.mutate(func(st *State) {
		st.Editing = nil
	})
}

// SetJobs publishes the job tracker's active set.
func (s *Store) SetJobs(jobs []models.TrackedJob) {
	s.mutate(func(st *State) {
		st.Jobs = append([]models.TrackedJob(nil), jobs...)
	})
}

// Loading reports whether a listing request is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}
