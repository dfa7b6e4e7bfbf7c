package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/models"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/state"
)

type sessionStub struct {
	status  *models.AuthStatus
	authErr error
	schools []models.School
}

func (s *sessionStub) CheckAuth(ctx context.Context) (*models.AuthStatus, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return s.status, nil
}

func (s *sessionStub) ListSchools(ctx context.Context) ([]models.School, error) {
	return s.schools, nil
}

func newSessionFixture(stub *sessionStub) (*SessionService, *state.Store, *MessageCenter, *listStub, *groupStub, *CacheService) {
	store := state.New(50)
	msgs := NewMessageCenter(time.Minute)
	audit := NewAuditService("ops@school.org", 0, nil)
	lookups := NewCacheService(cache.NewStore(), nil, time.Minute, nil)

	lists := &listStub{}
	directory := NewDirectoryService(lists, store, msgs, audit, newExportsStub(), time.Hour, nil)

	groupLists := newGroupStub()
	groups := NewGroupService(groupLists, store, msgs, audit, lookups, nil)

	svc := NewSessionService(stub, store, msgs, lookups, directory, groups, nil)
	return svc, store, msgs, lists, groupLists, lookups
}

func TestSessionServiceCheckEstablishesContext(t *testing.T) {
	stub := &sessionStub{status: &models.AuthStatus{
		Context: &models.SchoolContext{SchoolID: "S1", CustomerName: "Acme School", CustomerID: "C1"},
	}}
	svc, store, _, _, _, _ := newSessionFixture(stub)

	svc.Check(context.Background())

	session := store.Snapshot().Session
	require.True(t, session.Checked)
	require.False(t, session.SuperUser)
	require.Equal(t, "S1", session.ResolvedSchoolID())
	require.Equal(t, "Acme School", session.Badge())
}

func TestSessionServiceCheckFailsOpen(t *testing.T) {
	stub := &sessionStub{authErr: appErrors.Clone(appErrors.ErrTransport, "dial refused")}
	svc, store, msgs, _, _, _ := newSessionFixture(stub)

	svc.Check(context.Background())

	session := store.Snapshot().Session
	require.True(t, session.Checked)
	require.False(t, session.SuperUser)
	require.Empty(t, session.ResolvedSchoolID())

	msg := msgs.Current()
	require.NotNil(t, msg)
	require.Equal(t, models.MessageError, msg.Kind)
}

func TestSessionServiceLoadSchools(t *testing.T) {
	stub := &sessionStub{schools: []models.School{{ID: "S1", Name: "Acme School"}, {ID: "S2", Name: "Borough High"}}}
	svc, store, _, _, _, _ := newSessionFixture(stub)

	require.NoError(t, svc.LoadSchools(context.Background()))
	require.Len(t, store.Snapshot().Schools, 2)
}

func TestSessionServiceSelectSchoolSuperOnly(t *testing.T) {
	stub := &sessionStub{status: &models.AuthStatus{
		Context: &models.SchoolContext{SchoolID: "S1", CustomerName: "Acme School"},
	}}
	svc, _, _, _, _, _ := newSessionFixture(stub)

	svc.Check(context.Background())
	err := svc.SelectSchool(context.Background(), "S2")
	require.Error(t, err)
	require.True(t, appErrors.FromError(err).Is(appErrors.ErrValidation))
}

func TestSessionServiceSelectSchool(t *testing.T) {
	stub := &sessionStub{
		status:  &models.AuthStatus{SuperUser: true},
		schools: []models.School{{ID: "S1", Name: "Acme School"}, {ID: "S2", Name: "Borough High"}},
	}
	svc, store, _, lists, groupLists, lookups := newSessionFixture(stub)
	ctx := context.Background()

	svc.Check(ctx)
	require.NoError(t, svc.LoadSchools(ctx))
	lookups.Set(ctx, "staff:S1:tutor", []models.StaffRef{{Email: "t@school.org"}})

	require.NoError(t, svc.SelectSchool(ctx, "S2"))

	session := store.Snapshot().Session
	require.Equal(t, "S2", session.ResolvedSchoolID())
	require.Equal(t, "Borough High", session.Badge())

	var staff []models.StaffRef
	require.False(t, lookups.Get(ctx, "staff:S1:tutor", &staff))

	require.Equal(t, len(models.GroupTypes()), groupLists.listCalls)
	require.Equal(t, 1, lists.calls())
	require.Equal(t, "S2", lists.lastFilter().SchoolID)
}
