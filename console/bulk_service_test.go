package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/workers"
	"github.com/noah-isme/sma-adp-console/state"
)

type bulkStub struct {
	mu       sync.Mutex
	resets   []string
	welcomes []string
	submits  []dto.BulkSubmitRequest
	roles    []string
	roleReq  dto.RoleAssignmentRequest
	deletes  []dto.BulkDeleteRequest
	failFor  map[string]error
	jobID    string
}

func newBulkStub() *bulkStub {
	return &bulkStub{failFor: make(map[string]error), jobID: "job-1"}
}

func (s *bulkStub) ResetPassword(ctx context.Context, email string, req dto.AccountActionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, email)
	return s.failFor[email]
}

func (s *bulkStub) ResendWelcome(ctx context.Context, email string, req dto.AccountActionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.welcomes = append(s.welcomes, email)
	return s.failFor[email]
}

func (s *bulkStub) SubmitBulk(ctx context.Context, req dto.BulkSubmitRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits = append(s.submits, req)
	return s.jobID, nil
}

func (s *bulkStub) AssignRoles(ctx context.Context, staffEmail string, req dto.RoleAssignmentRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = append(s.roles, staffEmail)
	s.roleReq = req
	return fmt.Sprintf("job-%d", len(s.roles)), nil
}

func (s *bulkStub) BulkDelete(ctx context.Context, req dto.BulkDeleteRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, req)
	return s.jobID, nil
}

func (s *bulkStub) deleteCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deletes)
}

func newBulkFixture(t *testing.T, stub *bulkStub, cfg BulkConfig) (*BulkService, *state.Store, *MessageCenter, *exportsStub, *Tracker) {
	t.Helper()
	store := state.New(50)
	msgs := NewMessageCenter(time.Minute)
	audit := NewAuditService("ops@school.org", 0, nil)
	exports := newExportsStub()
	tracker := NewTracker(newStatusStub(), store, msgs, NewMetricsService(), &reloaderStub{}, TrackerConfig{PollInterval: time.Hour}, nil)
	t.Cleanup(tracker.Stop)
	pool := workers.NewPool(workers.Config{Workers: 2})
	svc := NewBulkService(stub, store, msgs, audit, tracker, exports, pool, cfg, nil)
	return svc, store, msgs, exports, tracker
}

func selectAccounts(store *state.Store, accounts ...models.Account) {
	seedAccounts(store, accounts...)
	store.SelectAll()
}

func TestBulkServiceResetPasswordsReportsPartialFailure(t *testing.T) {
	stub := newBulkStub()
	stub.failFor["ben@school.org"] = appErrors.Clone(appErrors.ErrAPI, "mail service unavailable")
	svc, store, msgs, _, _ := newBulkFixture(t, stub, BulkConfig{})
	selectAccounts(store,
		models.Account{Email: "anna@school.org"},
		models.Account{Email: "ben@school.org"},
		models.Account{Email: "cora@school.org"},
	)

	summary, err := svc.ResetPasswords(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, stub.resets, 3)
	require.Equal(t, models.MessageWarning, msgs.Current().Kind)
	require.Equal(t, "Password reset emails sent for 2 of 3 accounts.", msgs.Current().Text)
}

func TestBulkServiceResendWelcomesAllSucceed(t *testing.T) {
	stub := newBulkStub()
	svc, store, msgs, _, _ := newBulkFixture(t, stub, BulkConfig{})
	selectAccounts(store,
		models.Account{Email: "anna@school.org"},
		models.Account{Email: "ben@school.org"},
	)

	summary, err := svc.ResendWelcomes(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, "Welcome emails resent for 2 accounts.", msgs.Current().Text)

	entries := svc.audit.Recent(1)
	require.Len(t, entries, 1)
	require.Equal(t, models.AuditActionWelcomeResend, entries[0].Action)
	require.Equal(t, "2 succeeded, 0 failed", entries[0].Detail)
}

func TestBulkServiceSequentialRequiresSelection(t *testing.T) {
	stub := newBulkStub()
	svc, _, _, _, _ := newBulkFixture(t, stub, BulkConfig{})

	_, err := svc.ResetPasswords(context.Background())
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Empty(t, stub.resets)
}

func TestBulkServiceSubmitConnectionsQueues(t *testing.T) {
	stub := newBulkStub()
	stub.jobID = "job-7"
	svc, store, msgs, _, tracker := newBulkFixture(t, stub, BulkConfig{})
	store.MarkChecked(&models.AuthStatus{Context: &models.SchoolContext{SchoolID: "S1"}})
	selectAccounts(store,
		models.Account{Email: "anna@school.org"},
		models.Account{Email: "ben@school.org"},
	)

	err := svc.SubmitConnections(context.Background(), models.ConnectionTutor, "tutor@school.org", models.ConnectionActionAdd)
	require.NoError(t, err)

	require.Len(t, stub.submits, 1)
	req := stub.submits[0]
	require.Equal(t, "connections", req.Operation)
	require.Equal(t, []string{"anna@school.org", "ben@school.org"}, req.Emails)
	require.Equal(t, models.ConnectionTutor, req.ConnectionType)
	require.Equal(t, "tutor@school.org", req.StaffEmail)
	require.Equal(t, models.ConnectionActionAdd, req.Action)
	require.Equal(t, "S1", req.EmulatedSchoolID)

	jobs := tracker.Jobs()
	require.Len(t, jobs, 1)
	require.Equal(t, "job-7", jobs[0].ID)
	require.Equal(t, models.JobTypeBulkConnections, jobs[0].Type)
	require.Equal(t, 2, jobs[0].Total)
	require.Equal(t, "Connection update queued for 2 accounts.", msgs.Current().Text)
}

func TestBulkServiceAssignRolesStaffOnly(t *testing.T) {
	stub := newBulkStub()
	svc, store, _, _, _ := newBulkFixture(t, stub, BulkConfig{})
	selectAccounts(store, models.Account{Email: "anna@school.org"})

	err := svc.AssignRoles(context.Background(), []string{"admin"}, nil)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Empty(t, stub.roles)
}

func TestBulkServiceAssignRolesQueuesPerStaff(t *testing.T) {
	stub := newBulkStub()
	svc, store, msgs, _, tracker := newBulkFixture(t, stub, BulkConfig{UserEmail: "ops@school.org"})
	store.SetAccountType(models.AccountTypeStaff)
	selectAccounts(store,
		models.Account{Email: "smith@school.org"},
		models.Account{Email: "jones@school.org"},
	)

	err := svc.AssignRoles(context.Background(), []string{"tutor"}, map[string][]string{"tutor": {"10A"}})
	require.NoError(t, err)

	require.Equal(t, []string{"smith@school.org", "jones@school.org"}, stub.roles)
	require.Equal(t, []string{"tutor"}, stub.roleReq.Roles)
	require.Equal(t, "ops@school.org", stub.roleReq.UserEmail)
	require.Len(t, tracker.Jobs(), 2)
	require.Equal(t, "Role assignment queued for 2 staff.", msgs.Current().Text)
}

func TestBulkServiceDeleteConfirmationPhrase(t *testing.T) {
	stub := newBulkStub()
	svc, store, _, _, _ := newBulkFixture(t, stub, BulkConfig{})
	selectAccounts(store,
		models.Account{Email: "anna@school.org"},
		models.Account{Email: "ben@school.org"},
	)
	require.Equal(t, "DELETE 2 STUDENTS", svc.DeleteConfirmation())

	store.SetAccountType(models.AccountTypeStaff)
	selectAccounts(store, models.Account{Email: "smith@school.org"})
	require.Equal(t, "DELETE 1 STAFF", svc.DeleteConfirmation())
}

func TestBulkServiceSubmitDeleteRejectsWrongConfirmation(t *testing.T) {
	stub := newBulkStub()
	svc, store, _, exports, _ := newBulkFixture(t, stub, BulkConfig{BackupsEnabled: true})
	selectAccounts(store,
		models.Account{Email: "anna@school.org"},
		models.Account{Email: "ben@school.org"},
	)

	err := svc.SubmitDelete(context.Background(), "DELETE 2 STAFF")
	require.ErrorIs(t, err, appErrors.ErrConfirmationMismatch)
	require.Zero(t, stub.deleteCalls())
	require.Empty(t, exports.files())
	require.Len(t, store.SelectedEmails(), 2)
}

func TestBulkServiceSubmitDeleteWritesBackupFirst(t *testing.T) {
	stub := newBulkStub()
	stub.jobID = "job-9"
	svc, store, msgs, exports, tracker := newBulkFixture(t, stub, BulkConfig{BackupsEnabled: true})
	store.MarkChecked(&models.AuthStatus{Context: &models.SchoolContext{SchoolID: "S1"}})
	selectAccounts(store,
		models.Account{Email: "anna@school.org", FirstName: "Anna", LastName: "Reed", YearGroup: "10"},
		models.Account{Email: "ben@school.org", FirstName: "Ben", LastName: "Ames", YearGroup: "11"},
	)

	err := svc.SubmitDelete(context.Background(), "DELETE 2 STUDENTS")
	require.NoError(t, err)

	files := exports.files()
	require.Len(t, files, 1)
	for name, data := range files {
		require.Contains(t, name, "backup_accounts")
		require.Contains(t, string(data), "account_type,email,first_name")
		require.Contains(t, string(data), "anna@school.org")
		require.Contains(t, string(data), "ben@school.org")
	}

	require.Equal(t, 1, stub.deleteCalls())
	require.Equal(t, []string{"anna@school.org", "ben@school.org"}, stub.deletes[0].Emails)
	require.Equal(t, "S1", stub.deletes[0].EmulatedSchoolID)

	require.Empty(t, store.SelectedEmails())
	jobs := tracker.Jobs()
	require.Len(t, jobs, 1)
	require.Equal(t, models.JobTypeBulkDelete, jobs[0].Type)
	require.Equal(t, "Deletion of 2 accounts queued.", msgs.Current().Text)
}

func TestBulkServiceBackupFailureCancelsDelete(t *testing.T) {
	stub := newBulkStub()
	svc, store, msgs, exports, _ := newBulkFixture(t, stub, BulkConfig{BackupsEnabled: true})
	exports.err = errors.New("disk full")
	selectAccounts(store, models.Account{Email: "anna@school.org"})

	err := svc.SubmitDelete(context.Background(), "DELETE 1 STUDENTS")
	require.Error(t, err)
	require.Zero(t, stub.deleteCalls())
	require.Equal(t, "Could not write the backup file. Deletion cancelled.", msgs.Current().Text)
	require.Len(t, store.SelectedEmails(), 1)
}
