package console

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/state"
)

type groupClient interface {
	ListGroups(ctx context.Context, schoolID string, groupType models.GroupType) ([]models.SchoolGroup, error)
	CreateGroup(ctx context.Context, schoolID string, req dto.CreateGroupRequest) (*models.SchoolGroup, error)
	RenameGroup(ctx context.Context, schoolID, groupID, name string) error
	DeleteGroup(ctx context.Context, schoolID, groupID string) error
	GroupUsage(ctx context.Context, schoolID, groupID string) (int, error)
}

// GroupService manages the school's group catalogue backing the filter
// dropdowns. Lists are cached per school and flushed on any mutation.
type GroupService struct {
	client groupClient
	store  *state.Store
	msgs   *MessageCenter
	audit  *AuditService
	cache  *CacheService
	logger *zap.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(client groupClient, store *state.Store, msgs *MessageCenter, audit *AuditService, cache *CacheService, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{
		client: client,
		store:  store,
		msgs:   msgs,
		audit:  audit,
		cache:  cache,
		logger: logger,
	}
}

// List returns the groups of one type for the current school, served from
// the lookup cache when warm.
func (s *GroupService) List(ctx context.Context, groupType models.GroupType) ([]models.SchoolGroup, error) {
	schoolID := s.schoolID()
	key := groupCacheKey(schoolID, groupType)

	var cached []models.SchoolGroup
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	groups, err := s.client.ListGroups(ctx, schoolID, groupType)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, groups)
	return groups, nil
}

// Preload warms the cache for every group type. Load failures degrade to a
// single warning; the dropdowns simply stay empty.
func (s *GroupService) Preload(ctx context.Context) {
	warned := false
	for _, groupType := range models.GroupTypes() {
		if _, err := s.List(ctx, groupType); err != nil {
			s.logger.Warn("group preload failed",
				zap.String("group_type", string(groupType)),
				zap.Error(err))
			if !warned {
				warned = true
				s.msgs.Warning("Some group lists could not be loaded.")
			}
		}
	}
}

// Create adds a group to the catalogue.
func (s *GroupService) Create(ctx context.Context, groupType models.GroupType, name string) (*models.SchoolGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group name is required")
	}

	schoolID := s.schoolID()
	group, err := s.client.CreateGroup(ctx, schoolID, dto.CreateGroupRequest{Name: name, Type: groupType})
	if err != nil {
		s.msgs.Error(surfaceText(err))
		return nil, err
	}
	s.invalidate(ctx, schoolID)
	s.audit.Record(models.AuditActionGroupChange, group.ID, fmt.Sprintf("created %s %q", groupType, name))
	s.msgs.Success("Group created.")
	return group, nil
}

// Rename changes a group's display name.
func (s *GroupService) Rename(ctx context.Context, groupID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "group name is required")
	}

	schoolID := s.schoolID()
	if err := s.client.RenameGroup(ctx, schoolID, groupID, name); err != nil {
		s.msgs.Error(surfaceText(err))
		return err
	}
	s.invalidate(ctx, schoolID)
	s.audit.Record(models.AuditActionGroupChange, groupID, fmt.Sprintf("renamed to %q", name))
	s.msgs.Success("Group renamed.")
	return nil
}

// Delete removes a group. Groups still assigned to accounts are refused
// unless force is set.
func (s *GroupService) Delete(ctx context.Context, groupID string, force bool) error {
	schoolID := s.schoolID()

	if !force {
		count, err := s.client.GroupUsage(ctx, schoolID, groupID)
		if err != nil {
			s.msgs.Error(surfaceText(err))
			return err
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("group is still assigned to %d accounts", count))
		}
	}

	if err := s.client.DeleteGroup(ctx, schoolID, groupID); err != nil {
		s.msgs.Error(surfaceText(err))
		return err
	}
	s.invalidate(ctx, schoolID)
	s.audit.Record(models.AuditActionGroupChange, groupID, "deleted")
	s.msgs.Success("Group deleted.")
	return nil
}

// Usage reports how many accounts reference the group.
func (s *GroupService) Usage(ctx context.Context, groupID string) (int, error) {
	return s.client.GroupUsage(ctx, s.schoolID(), groupID)
}

func (s *GroupService) schoolID() string {
	return s.store.Snapshot().Session.ResolvedSchoolID()
}

func (s *GroupService) invalidate(ctx context.Context, schoolID string) {
	s.cache.Invalidate(ctx, fmt.Sprintf("groups:%s:*", schoolID))
}

func groupCacheKey(schoolID string, groupType models.GroupType) string {
	return fmt.Sprintf("groups:%s:%s", schoolID, groupType)
}
