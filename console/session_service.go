package console

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/state"
)

type sessionClient interface {
	CheckAuth(ctx context.Context) (*models.AuthStatus, error)
	ListSchools(ctx context.Context) ([]models.School, error)
}

// SessionService resolves the operator's identity and school context.
type SessionService struct {
	client    sessionClient
	store     *state.Store
	msgs      *MessageCenter
	cache     *CacheService
	directory *DirectoryService
	groups    *GroupService
	logger    *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(client sessionClient, store *state.Store, msgs *MessageCenter, cache *CacheService, directory *DirectoryService, groups *GroupService, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		client:    client,
		store:     store,
		msgs:      msgs,
		cache:     cache,
		directory: directory,
		groups:    groups,
		logger:    logger,
	}
}

// Check runs the auth probe. Failures surface a message but still mark the
// session checked: access control is enforced server-side, so the console
// fails open rather than locking the operator out of a view the server
// would have allowed.
func (s *SessionService) Check(ctx context.Context) {
	status, err := s.client.CheckAuth(ctx)
	if err != nil {
		s.logger.Warn("auth probe failed", zap.Error(err))
		s.msgs.Error("Could not verify your access. Some data may be unavailable.")
		s.store.MarkChecked(nil)
		return
	}
	s.store.MarkChecked(status)
}

// LoadSchools fills the super-user school picker.
func (s *SessionService) LoadSchools(ctx context.Context) error {
	schools, err := s.client.ListSchools(ctx)
	if err != nil {
		s.msgs.Error("Could not load the school list.")
		return err
	}
	s.store.SetSchools(schools)
	return nil
}

// SelectSchool establishes the emulated school context for a super user,
// flushes the per-school lookup caches, and reloads groups and the first
// directory page.
func (s *SessionService) SelectSchool(ctx context.Context, schoolID string) error {
	snapshot := s.store.Snapshot()
	if !snapshot.Session.SuperUser {
		return appErrors.Clone(appErrors.ErrValidation, "only super users can switch school context")
	}

	name := ""
	for _, school := range snapshot.Schools {
		if school.ID == schoolID {
			name = school.Name
			break
		}
	}
	s.store.SelectSchool(schoolID, name)
	s.cache.Invalidate(ctx, "groups:*", "staff:*")
	s.groups.Preload(ctx)
	return s.directory.Load(ctx)
}
