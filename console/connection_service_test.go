package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/dto"
	"github.com/noah-isme/sma-adp-console/models"
	"github.com/noah-isme/sma-adp-console/pkg/cache"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/state"
)

type connectionStub struct {
	detail      *models.AccountDetail
	staff       map[models.ConnectionType][]models.StaffRef
	detailCalls int
	staffCalls  int
	mutations   []dto.ConnectionMutationRequest
	mutationErr error
}

func newConnectionStub() *connectionStub {
	return &connectionStub{
		detail: &models.AccountDetail{
			Account: models.Account{Email: "anna@school.org", FirstName: "Anna"},
			Connections: models.ConnectionSet{
				Tutors: []models.StaffRef{{Email: "tutor@school.org", FullName: "Tina Tutor"}},
			},
		},
		staff: map[models.ConnectionType][]models.StaffRef{
			models.ConnectionTutor: {{Email: "tutor@school.org", FullName: "Tina Tutor"}},
		},
	}
}

func (s *connectionStub) GetAccount(ctx context.Context, email string, accountType models.AccountType, schoolID string) (*models.AccountDetail, error) {
	s.detailCalls++
	detail := *s.detail
	return &detail, nil
}

func (s *connectionStub) AvailableStaff(ctx context.Context, schoolID string, roleType models.ConnectionType) ([]models.StaffRef, error) {
	s.staffCalls++
	return s.staff[roleType], nil
}

func (s *connectionStub) MutateConnection(ctx context.Context, studentEmail string, req dto.ConnectionMutationRequest) error {
	if s.mutationErr != nil {
		return s.mutationErr
	}
	s.mutations = append(s.mutations, req)
	return nil
}

func newConnectionFixture(stub *connectionStub) (*ConnectionService, *state.Store, *MessageCenter) {
	store := state.New(50)
	msgs := NewMessageCenter(time.Minute)
	audit := NewAuditService("ops@school.org", 0, nil)
	lookups := NewCacheService(cache.NewStore(), nil, time.Minute, nil)
	svc := NewConnectionService(stub, store, msgs, audit, lookups, nil)
	return svc, store, msgs
}

func TestConnectionServiceOpenCachesStaffLookups(t *testing.T) {
	stub := newConnectionStub()
	svc, _, _ := newConnectionFixture(stub)
	ctx := context.Background()

	view, err := svc.Open(ctx, "anna@school.org")
	require.NoError(t, err)
	require.Equal(t, "anna@school.org", view.Student.Email)
	require.Len(t, view.Available, len(models.ConnectionTypes()))
	require.Len(t, view.Available[models.ConnectionTutor], 1)
	require.Equal(t, len(models.ConnectionTypes()), stub.staffCalls)

	_, err = svc.Open(ctx, "anna@school.org")
	require.NoError(t, err)
	require.Equal(t, len(models.ConnectionTypes()), stub.staffCalls)
	require.Equal(t, 2, stub.detailCalls)
}

func TestConnectionServiceAddRefetchesDetail(t *testing.T) {
	stub := newConnectionStub()
	svc, store, msgs := newConnectionFixture(stub)
	store.MarkChecked(&models.AuthStatus{Context: &models.SchoolContext{SchoolID: "S1"}})

	view, err := svc.Add(context.Background(), "anna@school.org", models.ConnectionTutor, "tutor@school.org")
	require.NoError(t, err)
	require.NotNil(t, view)

	require.Len(t, stub.mutations, 1)
	req := stub.mutations[0]
	require.Equal(t, models.ConnectionTutor, req.ConnectionType)
	require.Equal(t, "tutor@school.org", req.StaffEmail)
	require.Equal(t, models.ConnectionActionAdd, req.Action)
	require.Equal(t, "S1", req.EmulatedSchoolID)

	require.Equal(t, 1, stub.detailCalls)
	require.Equal(t, "Connection added.", msgs.Current().Text)
}

func TestConnectionServiceRemove(t *testing.T) {
	stub := newConnectionStub()
	svc, _, msgs := newConnectionFixture(stub)

	_, err := svc.Remove(context.Background(), "anna@school.org", models.ConnectionTutor, "tutor@school.org")
	require.NoError(t, err)
	require.Equal(t, models.ConnectionActionRemove, stub.mutations[0].Action)
	require.Equal(t, "Connection removed.", msgs.Current().Text)
}

func TestConnectionServiceMutationFailureSurfaces(t *testing.T) {
	stub := newConnectionStub()
	stub.mutationErr = appErrors.Clone(appErrors.ErrRequestRejected, "staff member is not eligible for this role")
	svc, _, msgs := newConnectionFixture(stub)

	_, err := svc.Add(context.Background(), "anna@school.org", models.ConnectionTutor, "tutor@school.org")
	require.Error(t, err)
	require.Equal(t, "staff member is not eligible for this role", msgs.Current().Text)
	require.Zero(t, stub.detailCalls)
}
