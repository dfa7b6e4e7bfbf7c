package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/export"
	"github.com/noah-isme/sma-adp-console/pkg/storage"
	"github.com/noah-isme/sma-adp-console/pkg/workers"
	"github.com/noah-isme/sma-adp-console/state"
)

type bulkClient interface {
	ResetPassword(ctx context.Context, email string, req dto.AccountActionRequest) error
	ResendWelcome(ctx context.Context, email string, req dto.AccountActionRequest) error
	SubmitBulk(ctx context.Context, req dto.BulkSubmitRequest) (string, error)
	AssignRoles(ctx context.Context, staffEmail string, req dto.RoleAssignmentRequest) (string, error)
	BulkDelete(ctx context.Context, req dto.BulkDeleteRequest) (string, error)
}

// BulkConfig tunes dispatch behaviour for operations over the selection.
type BulkConfig struct {
	// BackupsEnabled writes a CSV of the selection before a bulk delete.
	BackupsEnabled bool
	// UserEmail identifies the operator on role assignment submissions.
	UserEmail string
}

// BulkService dispatches operations over the current selection. Cheap
// per-account actions run sequentially through a paced pool with independent
// outcomes; heavy operations go up as one queued batch tracked by the poller.
type BulkService struct {
	client  bulkClient
	store   *state.Store
	msgs    *MessageCenter
	audit   *AuditService
	tracker *Tracker
	pool    *workers.Pool
	exports fileStorage
	csv     *export.CSVExporter
	cfg     BulkConfig
	logger  *zap.Logger
}

// NewBulkService constructs the bulk dispatcher.
func NewBulkService(client bulkClient, store *state.Store, msgs *MessageCenter, audit *AuditService, tracker *Tracker, exports fileStorage, pool *workers.Pool, cfg BulkConfig, logger *zap.Logger) *BulkService {
	if pool == nil {
		pool = workers.NewPool(workers.Config{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkService{
		client:  client,
		store:   store,
		msgs:    msgs,
		audit:   audit,
		tracker: tracker,
		pool:    pool,
		exports: exports,
		csv:     export.NewCSVExporter(),
		cfg:     cfg,
		logger:  logger,
	}
}

// ResetPasswords sends a password reset to every selected account, one
// paced request each. Outcomes are independent; the summary reports both
// tallies.
func (s *BulkService) ResetPasswords(ctx context.Context) (workers.Summary, error) {
	return s.sequential(ctx, models.AuditActionPasswordReset, "Password reset emails sent", s.client.ResetPassword)
}

// ResendWelcomes resends the onboarding welcome email to every selected
// account.
func (s *BulkService) ResendWelcomes(ctx context.Context) (workers.Summary, error) {
	return s.sequential(ctx, models.AuditActionWelcomeResend, "Welcome emails resent", s.client.ResendWelcome)
}

func (s *BulkService) sequential(ctx context.Context, action, verb string, call func(ctx context.Context, email string, req dto.AccountActionRequest) error) (workers.Summary, error) {
	emails := s.store.SelectedEmails()
	if len(emails) == 0 {
		return workers.Summary{}, appErrors.Clone(appErrors.ErrValidation, "no accounts selected")
	}

	snapshot := s.store.Snapshot()
	req := dto.AccountActionRequest{
		AccountType:      snapshot.AccountType,
		EmulatedSchoolID: snapshot.Session.ResolvedSchoolID(),
	}

	tasks := make([]workers.Task, 0, len(emails))
	for _, email := range emails {
		email := email // pre-1.22 go directive: loop variable is shared and tasks run after the loop
		tasks = append(tasks, func(ctx context.Context) error {
			return call(ctx, email, req)
		})
	}

	summary := s.pool.Run(ctx, tasks)
	s.audit.Record(action, fmt.Sprintf("%d accounts", summary.Total), fmt.Sprintf("%d succeeded, %d failed", summary.Succeeded, summary.Failed+summary.Skipped))
	if summary.Succeeded == summary.Total {
		s.msgs.Success(fmt.Sprintf("%s for %d accounts.", verb, summary.Succeeded))
	} else {
		s.msgs.Warning(fmt.Sprintf("%s for %d of %d accounts.", verb, summary.Succeeded, summary.Total))
	}
	return summary, nil
}

// SubmitConnections queues one batch connection change across the selection.
func (s *BulkService) SubmitConnections(ctx context.Context, connectionType models.ConnectionType, staffEmail string, action models.ConnectionAction) error {
	emails := s.store.SelectedEmails()
	if len(emails) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no accounts selected")
	}

	snapshot := s.store.Snapshot()
	req := dto.BulkSubmitRequest{
		Operation:        "connections",
		AccountType:      snapshot.AccountType,
		Emails:           emails,
		ConnectionType:   connectionType,
		StaffEmail:       staffEmail,
		Action:           action,
		EmulatedSchoolID: snapshot.Session.ResolvedSchoolID(),
	}
	jobID, err := s.client.SubmitBulk(ctx, req)
	if err != nil {
		s.msgs.Error(surfaceText(err))
		return err
	}

	s.tracker.Register(models.JobTypeBulkConnections, jobID, len(emails))
	s.audit.Record(models.AuditActionBulkSubmit, fmt.Sprintf("%d accounts", len(emails)), fmt.Sprintf("%s %s %s", action, connectionType, staffEmail))
	s.msgs.Info(fmt.Sprintf("Connection update queued for %d accounts.", len(emails)))
	return nil
}

// AssignRoles queues a role assignment for every selected staff account, one
// job per account. Only the staff population carries roles.
func (s *BulkService) AssignRoles(ctx context.Context, roles []string, assignments map[string][]string) error {
	snapshot := s.store.Snapshot()
	if snapshot.AccountType != models.AccountTypeStaff {
		return appErrors.Clone(appErrors.ErrValidation, "role assignment applies to staff accounts only")
	}
	emails := s.store.SelectedEmails()
	if len(emails) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no accounts selected")
	}
	if len(roles) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one role is required")
	}

	req := dto.RoleAssignmentRequest{
		Roles:            roles,
		Assignments:      assignments,
		EmulatedSchoolID: snapshot.Session.ResolvedSchoolID(),
		UserEmail:        s.cfg.UserEmail,
	}

	queued := 0
	for _, email := range emails {
		jobID, err := s.client.AssignRoles(ctx, email, req)
		if err != nil {
			s.msgs.Error(surfaceText(err))
			return err
		}
		s.tracker.Register(models.JobTypeRoleAssignment, jobID, 1)
		queued++
	}

	s.audit.Record(models.AuditActionRoleAssign, fmt.Sprintf("%d staff", queued), fmt.Sprintf("roles %v", roles))
	s.msgs.Info(fmt.Sprintf("Role assignment queued for %d staff.", queued))
	return nil
}

// DeleteConfirmation returns the literal phrase the operator must type to
// release a bulk delete of the current selection.
func (s *BulkService) DeleteConfirmation() string {
	snapshot := s.store.Snapshot()
	noun := "STUDENTS"
	if snapshot.AccountType == models.AccountTypeStaff {
		noun = "STAFF"
	}
	return fmt.Sprintf("DELETE %d %s", len(snapshot.Selection), noun)
}

// SubmitDelete queues deletion of the selection. The confirmation phrase
// must match exactly or nothing is sent. When backups are enabled the
// selection is written to a CSV first and a backup failure cancels the
// submission, because the server-side delete cascades.
func (s *BulkService) SubmitDelete(ctx context.Context, confirmation string) error {
	accounts := s.store.SelectedAccounts()
	if len(accounts) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no accounts selected")
	}
	if expected := s.DeleteConfirmation(); confirmation != expected {
		return appErrors.Clone(appErrors.ErrConfirmationMismatch, fmt.Sprintf("confirmation must read %q", expected))
	}

	snapshot := s.store.Snapshot()
	backupPath := ""
	if s.cfg.BackupsEnabled {
		path, err := s.writeBackup(snapshot.AccountType, accounts)
		if err != nil {
			s.logger.Error("backup failed, delete cancelled", zap.Error(err))
			s.msgs.Error("Could not write the backup file. Deletion cancelled.")
			return err
		}
		backupPath = path
	}

	emails := make([]string, 0, len(accounts))
	for _, account := range accounts {
		emails = append(emails, account.Email)
	}
	req := dto.BulkDeleteRequest{
		AccountType:      snapshot.AccountType,
		Emails:           emails,
		EmulatedSchoolID: snapshot.Session.ResolvedSchoolID(),
	}
	jobID, err := s.client.BulkDelete(ctx, req)
	if err != nil {
		s.msgs.Error(surfaceText(err))
		return err
	}

	s.tracker.Register(models.JobTypeBulkDelete, jobID, len(emails))
	s.store.ClearSelection()
	detail := fmt.Sprintf("%d accounts", len(emails))
	if backupPath != "" {
		detail = fmt.Sprintf("%s, backup %s", detail, backupPath)
	}
	s.audit.Record(models.AuditActionBulkDelete, string(snapshot.AccountType), detail)
	s.msgs.Info(fmt.Sprintf("Deletion of %d accounts queued.", len(emails)))
	return nil
}

func (s *BulkService) writeBackup(t models.AccountType, accounts []models.Account) (string, error) {
	rows := make([]map[string]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, map[string]string{
			"account_type": string(t),
			"email":        a.Email,
			"first_name":   a.FirstName,
			"last_name":    a.LastName,
			"year_group":   a.YearGroup,
			"tutor_group":  a.TutorGroup,
			"subject":      a.Subject,
			"department":   a.Department,
			"school_id":    a.SchoolID,
		})
	}
	payload, err := s.csv.Render(export.Dataset{
		Headers: []string{"account_type", "email", "first_name", "last_name", "year_group", "tutor_group", "subject", "department", "school_id"},
		Rows:    rows,
	})
	if err != nil {
		return "", err
	}
	return s.exports.Save(storage.Filename("backup_accounts", "csv"), payload)
}
