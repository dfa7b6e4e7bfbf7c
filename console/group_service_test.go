package console

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/state"
)

type groupStub struct {
	groups []models.SchoolGroup
	usage  int

	listCalls   int
	created     []dto.CreateGroupRequest
	renamed     map[string]string
	deleted     []string
	usageCalls  int
	listErr     error
	mutationErr error
}

func newGroupStub() *groupStub {
	return &groupStub{renamed: make(map[string]string)}
}

func (s *groupStub) ListGroups(ctx context.Context, schoolID string, groupType models.GroupType) ([]models.SchoolGroup, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.SchoolGroup, 0, len(s.groups))
	for _, g := range s.groups {
		if g.Type == groupType {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *groupStub) CreateGroup(ctx context.Context, schoolID string, req dto.CreateGroupRequest) (*models.SchoolGroup, error) {
	if s.mutationErr != nil {
		return nil, s.mutationErr
	}
	s.created = append(s.created, req)
	group := models.SchoolGroup{
		ID:       fmt.Sprintf("g-%d", len(s.created)),
		SchoolID: schoolID,
		Name:     req.Name,
		Type:     req.Type,
	}
	s.groups = append(s.groups, group)
	return &group, nil
}

func (s *groupStub) RenameGroup(ctx context.Context, schoolID, groupID, name string) error {
	if s.mutationErr != nil {
		return s.mutationErr
	}
	s.renamed[groupID] = name
	return nil
}

func (s *groupStub) DeleteGroup(ctx context.Context, schoolID, groupID string) error {
	if s.mutationErr != nil {
		return s.mutationErr
	}
	s.deleted = append(s.deleted, groupID)
	return nil
}

func (s *groupStub) GroupUsage(ctx context.Context, schoolID, groupID string) (int, error) {
	s.usageCalls++
	return s.usage, nil
}

func newGroupFixture(stub *groupStub) (*GroupService, *state.Store, *MessageCenter) {
	store := state.New(50)
	msgs := NewMessageCenter(time.Minute)
	audit := NewAuditService("ops@school.org", 0, nil)
	lookups := NewCacheService(cache.NewStore(), nil, time.Minute, nil)
	svc := NewGroupService(stub, store, msgs, audit, lookups, nil)
	return svc, store, msgs
}

func TestGroupServiceListCaches(t *testing.T) {
	stub := newGroupStub()
	stub.groups = []models.SchoolGroup{{ID: "g-1", Name: "10B", Type: models.GroupTypeTutorGroup}}
	svc, _, _ := newGroupFixture(stub)
	ctx := context.Background()

	first, err := svc.List(ctx, models.GroupTypeTutorGroup)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(ctx, models.GroupTypeTutorGroup)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, stub.listCalls)
}

func TestGroupServiceCreateInvalidatesCache(t *testing.T) {
	stub := newGroupStub()
	svc, _, msgs := newGroupFixture(stub)
	ctx := context.Background()

	_, err := svc.List(ctx, models.GroupTypeTutorGroup)
	require.NoError(t, err)
	require.Equal(t, 1, stub.listCalls)

	group, err := svc.Create(ctx, models.GroupTypeTutorGroup, "  11C  ")
	require.NoError(t, err)
	require.Equal(t, "11C", group.Name)
	require.Equal(t, models.MessageSuccess, msgs.Current().Kind)

	listed, err := svc.List(ctx, models.GroupTypeTutorGroup)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, 2, stub.listCalls)
}

func TestGroupServiceCreateRequiresName(t *testing.T) {
	stub := newGroupStub()
	svc, _, _ := newGroupFixture(stub)

	_, err := svc.Create(context.Background(), models.GroupTypeTutorGroup, "   ")
	require.Error(t, err)
	require.True(t, appErrors.FromError(err).Is(appErrors.ErrValidation))
	require.Empty(t, stub.created)
}

func TestGroupServiceDeleteGuardsUsage(t *testing.T) {
	stub := newGroupStub()
	stub.usage = 3
	svc, _, _ := newGroupFixture(stub)
	ctx := context.Background()

	err := svc.Delete(ctx, "g-1", false)
	require.Error(t, err)
	require.True(t, appErrors.FromError(err).Is(appErrors.ErrValidation))
	require.Contains(t, err.Error(), "3 accounts")
	require.Empty(t, stub.deleted)

	require.NoError(t, svc.Delete(ctx, "g-1", true))
	require.Equal(t, []string{"g-1"}, stub.deleted)
}

func TestGroupServiceDeleteUnusedGroup(t *testing.T) {
	stub := newGroupStub()
	svc, _, msgs := newGroupFixture(stub)

	require.NoError(t, svc.Delete(context.Background(), "g-9", false))
	require.Equal(t, 1, stub.usageCalls)
	require.Equal(t, []string{"g-9"}, stub.deleted)
	require.Equal(t, "Group deleted.", msgs.Current().Text)
}

func TestGroupServiceRename(t *testing.T) {
	stub := newGroupStub()
	svc, _, _ := newGroupFixture(stub)

	require.NoError(t, svc.Rename(context.Background(), "g-1", "Year 11"))
	require.Equal(t, "Year 11", stub.renamed["g-1"])
}

func TestGroupServicePreloadWarnsOnce(t *testing.T) {
	stub := newGroupStub()
	stub.listErr = appErrors.Clone(appErrors.ErrTransport, "dial refused")
	svc, _, msgs := newGroupFixture(stub)

	svc.Preload(context.Background())
	require.Equal(t, len(models.GroupTypes()), stub.listCalls)

	msg := msgs.Current()
	require.NotNil(t, msg)
	require.Equal(t, models.MessageWarning, msg.Kind)
}
