package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	"github.com/noah-isme/sma-adp-console/state"
)

type connectionClient interface {
	GetAccount(ctx context.Context, email string, accountType models.AccountType, schoolID string) (*models.AccountDetail, error)
	AvailableStaff(ctx context.Context, schoolID string, roleType models.ConnectionType) ([]models.StaffRef, error)
	MutateConnection(ctx context.Context, studentEmail string, req dto.ConnectionMutationRequest) error
}

// ConnectionView is the connection editor's working set: the student with
// their current per-type connections plus the staff eligible for each role.
type ConnectionView struct {
	Student   *models.AccountDetail
	Available map[models.ConnectionType][]models.StaffRef
}

// ConnectionService manages staff-student connections for one student at a
// time. Mutations never merge locally; the detail is re-fetched so the view
// reflects server-side reciprocal updates.
type ConnectionService struct {
	client connectionClient
	store  *state.Store
	msgs   *MessageCenter
	audit  *AuditService
	cache  *CacheService
	logger *zap.Logger
}

// NewConnectionService constructs the connection service.
func NewConnectionService(client connectionClient, store *state.Store, msgs *MessageCenter, audit *AuditService, cache *CacheService, logger *zap.Logger) *ConnectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{
		client: client,
		store:  store,
		msgs:   msgs,
		audit:  audit,
		cache:  cache,
		logger: logger,
	}
}

// Open loads the connection editor for one student: account detail plus the
// available staff per role type. Staff lists are served from the per-school
// lookup cache when warm.
func (s *ConnectionService) Open(ctx context.Context, studentEmail string) (*ConnectionView, error) {
	schoolID := s.store.Snapshot().Session.ResolvedSchoolID()

	detail, err := s.client.GetAccount(ctx, studentEmail, models.AccountTypeStudent, schoolID)
	if err != nil {
		s.msgs.Error(surfaceText(err))
		return nil, err
	}

	available := make(map[models.ConnectionType][]models.StaffRef, len(models.ConnectionTypes()))
	for _, roleType := range models.ConnectionTypes() {
		staff, err := s.availableStaff(ctx, schoolID, roleType)
		if err != nil {
			s.msgs.Error(surfaceText(err))
			return nil, err
		}
		available[roleType] = staff
	}
	return &ConnectionView{Student: detail, Available: available}, nil
}

// Add connects a staff member to the student under the given role.
func (s *ConnectionService) Add(ctx context.Context, studentEmail string, roleType models.ConnectionType, staffEmail string) (*ConnectionView, error) {
	return s.mutate(ctx, studentEmail, roleType, staffEmail, models.ConnectionActionAdd)
}

// Remove disconnects a staff member from the student under the given role.
func (s *ConnectionService) Remove(ctx context.Context, studentEmail string, roleType models.ConnectionType, staffEmail string) (*ConnectionView, error) {
	return s.mutate(ctx, studentEmail, roleType, staffEmail, models.ConnectionActionRemove)
}

func (s *ConnectionService) mutate(ctx context.Context, studentEmail string, roleType models.ConnectionType, staffEmail string, action models.ConnectionAction) (*ConnectionView, error) {
	req := dto.ConnectionMutationRequest{
		ConnectionType:   roleType,
		StaffEmail:       staffEmail,
		Action:           action,
		EmulatedSchoolID: s.store.Snapshot().Session.ResolvedSchoolID(),
	}
	if err := s.client.MutateConnection(ctx, studentEmail, req); err != nil {
		s.msgs.Error(surfaceText(err))
		return nil, err
	}

	s.audit.Record(models.AuditActionConnectionChange, studentEmail, fmt.Sprintf("%s %s %s", action, roleType, staffEmail))
	if action == models.ConnectionActionAdd {
		s.msgs.Success("Connection added.")
	} else {
		s.msgs.Success("Connection removed.")
	}
	return s.Open(ctx, studentEmail)
}

func (s *ConnectionService) availableStaff(ctx context.Context, schoolID string, roleType models.ConnectionType) ([]models.StaffRef, error) {
	key := staffCacheKey(schoolID, roleType)

	var cached []models.StaffRef
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	staff, err := s.client.AvailableStaff(ctx, schoolID, roleType)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, staff)
	return staff, nil
}

func staffCacheKey(schoolID string, roleType models.ConnectionType) string {
	return fmt.Sprintf("staff:%s:%s", schoolID, roleType)
}
