package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/state"
)

type accountClient interface {
	UpdateAccount(ctx context.Context, email string, req dto.UpdateAccountRequest) error
	DeleteAccount(ctx context.Context, email string, req dto.DeleteAccountRequest) error
	ResetPassword(ctx context.Context, email string, req dto.AccountActionRequest) error
	ResendWelcome(ctx context.Context, email string, req dto.AccountActionRequest) error
}

// AccountService owns single-account mutations: the inline edit session,
// deletion, and the per-account action endpoints.
type AccountService struct {
	client    accountClient
	store     *state.Store
	msgs      *MessageCenter
	audit     *AuditService
	directory *DirectoryService
	logger    *zap.Logger
}

// NewAccountService constructs the account service.
func NewAccountService(client accountClient, store *state.Store, msgs *MessageCenter, audit *AuditService, directory *DirectoryService, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		client:    client,
		store:     store,
		msgs:      msgs,
		audit:     audit,
		directory: directory,
		logger:    logger,
	}
}

// StartEdit opens an edit session for the given row, seeded from the loaded
// account. Any session already open on another row is replaced.
func (s *AccountService) StartEdit(email string) (models.EditForm, bool) {
	return s.store.StartEdit(email)
}

// UpdateForm replaces the open session's working copy.
func (s *AccountService) UpdateForm(form models.EditForm) bool {
	return s.store.UpdateEditForm(form)
}

// CancelEdit discards the open session without saving.
func (s *AccountService) CancelEdit() {
	s.store.EndEdit()
}

// SaveEdit submits the open session's form. On success the listing is
// reloaded rather than patched in place; on failure the server message is
// surfaced first and the session closes either way.
func (s *AccountService) SaveEdit(ctx context.Context) error {
	editing := s.store.Editing()
	if editing == nil {
		return appErrors.Clone(appErrors.ErrValidation, "no edit in progress")
	}

	snapshot := s.store.Snapshot()
	req := dto.UpdateAccountRequest{
		AccountType:      snapshot.AccountType,
		EmulatedSchoolID: snapshot.Session.ResolvedSchoolID(),
		FirstName:        editing.Form.FirstName,
		LastName:         editing.Form.LastName,
	}
	switch snapshot.AccountType {
	case models.AccountTypeStaff:
		req.Subject = editing.Form.Subject
		req.Department = editing.Form.Department
	default:
		req.YearGroup = editing.Form.YearGroup
		req.TutorGroup = editing.Form.TutorGroup
		req.Gender = editing.Form.Gender
		req.UPN = editing.Form.UPN
	}

	if err := s.client.UpdateAccount(ctx, editing.Email, req); err != nil {
		s.msgs.Error(surfaceText(err))
		s.store.EndEdit()
		return err
	}
	s.store.EndEdit()
	s.audit.Record(models.AuditActionAccountUpdate, editing.Email, string(snapshot.AccountType))
	s.msgs.Success("Account updated.")
	return s.directory.Load(ctx)
}

// Delete removes one account and reloads the listing.
func (s *AccountService) Delete(ctx context.Context, email string) error {
	snapshot := s.store.Snapshot()
	req := dto.DeleteAccountRequest{
		AccountType:      snapshot.AccountType,
		EmulatedSchoolID: snapshot.Session.ResolvedSchoolID(),
	}
	if err := s.client.DeleteAccount(ctx, email, req); err != nil {
		s.msgs.Error(surfaceText(err))
		return err
	}
	s.audit.Record(models.AuditActionAccountDelete, email, string(snapshot.AccountType))
	s.msgs.Success("Account deleted.")
	return s.directory.Load(ctx)
}

// ResetPassword triggers a password reset email for one account.
func (s *AccountService) ResetPassword(ctx context.Context, email string) error {
	if err := s.client.ResetPassword(ctx, email, s.actionRequest()); err != nil {
		s.msgs.Error(surfaceText(err))
		return err
	}
	s.audit.Record(models.AuditActionPasswordReset, email, "")
	s.msgs.Success("Password reset email sent.")
	return nil
}

// ResendWelcome resends the onboarding welcome email for one account.
func (s *AccountService) ResendWelcome(ctx context.Context, email string) error {
	if err := s.client.ResendWelcome(ctx, email, s.actionRequest()); err != nil {
		s.msgs.Error(surfaceText(err))
		return err
	}
	s.audit.Record(models.AuditActionWelcomeResend, email, "")
	s.msgs.Success("Welcome email sent.")
	return nil
}

func (s *AccountService) actionRequest() dto.AccountActionRequest {
	snapshot := s.store.Snapshot()
	return dto.AccountActionRequest{
		AccountType:      snapshot.AccountType,
		EmulatedSchoolID: snapshot.Session.ResolvedSchoolID(),
	}
}
