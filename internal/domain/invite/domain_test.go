package invite

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/romitgit/tc-project-service/internal/infra/events"
	"github.com/romitgit/tc-project-service/internal/infra/task"
	"github.com/romitgit/tc-project-service/internal/model"
	"github.com/romitgit/tc-project-service/internal/port/inbound"
	"github.com/romitgit/tc-project-service/internal/utils/requestctx"
)

// Mock implementations

type mockInviteDB struct {
	mock.Mock
}

func (m *mockInviteDB) ListOpenByProject(ctx context.Context, projectID int64) ([]*model.ProjectMemberInvite, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ProjectMemberInvite), args.Error(1)
}

func (m *mockInviteDB) Create(ctx context.Context, invite *model.ProjectMemberInvite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

type mockMemberDB struct {
	mock.Mock
}

func (m *mockMemberDB) ListByProject(ctx context.Context, projectID int64) ([]*model.ProjectMember, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ProjectMember), args.Error(1)
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) LookupUserRoles(ctx context.Context, userID int64) ([]model.UserRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserRole), args.Error(1)
}

func (m *mockIdentity) LookupUsersByEmail(ctx context.Context, emails []string) ([]*model.IdentityUser, error) {
	args := m.Called(ctx, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.IdentityUser), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, payload any, correlationID string) error {
	args := m.Called(ctx, topic, payload, correlationID)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendInvitation(ctx context.Context, projectID int64, invite *model.ProjectMemberInvite) error {
	args := m.Called(ctx, projectID, invite)
	return args.Error(0)
}

// inlineRunner runs tasks synchronously so tests can observe them.
type inlineRunner struct {
	mu    sync.Mutex
	names []string
	errs  []error
}

func (r *inlineRunner) Go(name string, decorate func(context.Context) context.Context, fn task.Func) bool {
	ctx := context.Background()
	if decorate != nil {
		ctx = decorate(ctx)
	}
	err := fn(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.errs = append(r.errs, err)
	return true
}

// Test helpers

const testProjectID int64 = 100

type testDeps struct {
	inviteDB  *mockInviteDB
	memberDB  *mockMemberDB
	identity  *mockIdentity
	publisher *mockPublisher
	mailer    *mockMailer
	runner    *inlineRunner
	bus       *events.Bus
}

func newTestDomain(t *testing.T, cfg *Config) (*Domain, *testDeps) {
	t.Helper()
	deps := &testDeps{
		inviteDB:  new(mockInviteDB),
		memberDB:  new(mockMemberDB),
		identity:  new(mockIdentity),
		publisher: new(mockPublisher),
		mailer:    new(mockMailer),
		runner:    &inlineRunner{},
		bus:       events.NewBus(zap.NewNop()),
	}
	d := NewDomain(deps.inviteDB, deps.memberDB, deps.identity, deps.publisher, deps.mailer,
		deps.runner, deps.bus, cfg, zap.NewNop())
	return d, deps
}

func (deps *testDeps) expectSnapshot(members []*model.ProjectMember, invites []*model.ProjectMemberInvite) {
	if members == nil {
		members = []*model.ProjectMember{}
	}
	if invites == nil {
		invites = []*model.ProjectMemberInvite{}
	}
	deps.memberDB.On("ListByProject", mock.Anything, testProjectID).Return(members, nil)
	deps.inviteDB.On("ListOpenByProject", mock.Anything, testProjectID).Return(invites, nil)
}

func (deps *testDeps) expectCreate() {
	var seq int64
	deps.inviteDB.On("Create", mock.Anything, mock.AnythingOfType("*model.ProjectMemberInvite")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.ProjectMemberInvite).ID = atomic.AddInt64(&seq, 1)
		}).
		Return(nil)
}

func (deps *testDeps) expectPublish() {
	deps.publisher.On("Publish", mock.Anything, TopicInviteCreated, mock.Anything, mock.Anything).Return(nil)
}

func caller(id int64, roles ...model.UserRole) *model.Caller {
	return &model.Caller{UserID: id, Roles: roles}
}

func invitedUserIDs(out *inbound.CreateInvitesOutput) []int64 {
	var ids []int64
	for _, inv := range out.Success {
		if inv.UserID != nil {
			ids = append(ids, *inv.UserID)
		}
	}
	return ids
}

// Tests

func TestDomain_CreateInvites_SingleCustomer(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.expectCreate()
	deps.expectPublish()

	ctx := requestctx.WithRequestID(context.Background(), "req-1")
	out, err := d.CreateInvites(ctx, caller(40051333, model.UserRoleTopcoderUser), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{7},
		Role:    model.ProjectMemberRoleCustomer,
	})

	require.NoError(t, err)
	require.Len(t, out.Success, 1)
	assert.False(t, out.HasFailures())

	inv := out.Success[0]
	assert.Equal(t, int64(1), inv.ID)
	assert.Equal(t, testProjectID, inv.ProjectID)
	require.NotNil(t, inv.UserID)
	assert.Equal(t, int64(7), *inv.UserID)
	assert.Nil(t, inv.Email)
	assert.Equal(t, model.ProjectMemberRoleCustomer, inv.Role)
	assert.Equal(t, model.InviteStatusPending, inv.Status)
	assert.Equal(t, int64(40051333), inv.CreatedBy)
	assert.Equal(t, int64(40051333), inv.UpdatedBy)

	deps.publisher.AssertCalled(t, "Publish", mock.Anything, TopicInviteCreated, inv, "req-1")
	deps.mailer.AssertNotCalled(t, "SendInvitation", mock.Anything, mock.Anything, mock.Anything)
	deps.identity.AssertNotCalled(t, "LookupUserRoles", mock.Anything, mock.Anything)
}

func TestDomain_CreateInvites_Idempotent(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(
		[]*model.ProjectMember{{ProjectID: testProjectID, UserID: 8}},
		[]*model.ProjectMemberInvite{
			{ProjectID: testProjectID, UserID: ptr(int64(7)), Status: model.InviteStatusPending},
			{ProjectID: testProjectID, Email: ptr("first.last@gmail.com"), Status: model.InviteStatusPending},
		},
	)
	deps.identity.On("LookupUsersByEmail", mock.Anything, []string{"firstlast@gmail.com"}).
		Return([]*model.IdentityUser{}, nil)

	out, err := d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{7, 8},
		Emails:  []string{"firstlast@gmail.com"},
		Role:    model.ProjectMemberRoleCustomer,
	})

	require.NoError(t, err)
	assert.Empty(t, out.Success)
	assert.Empty(t, out.Failed)
	deps.inviteDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	deps.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDomain_CreateInvites_ForbiddenRole(t *testing.T) {
	d, deps := newTestDomain(t, nil)

	_, err := d.CreateInvites(context.Background(), caller(1, model.UserRoleTopcoderUser), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{7},
		Role:    model.ProjectMemberRoleManager,
	})

	require.ErrorIs(t, err, ErrForbiddenRole)
	assert.Equal(t, "you are not allowed to invite user as manager", err.Error())
	deps.memberDB.AssertNotCalled(t, "ListByProject", mock.Anything, mock.Anything)
	deps.identity.AssertNotCalled(t, "LookupUserRoles", mock.Anything, mock.Anything)
	deps.inviteDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDomain_CreateInvites_ManagerGate(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.expectCreate()
	deps.expectPublish()
	deps.identity.On("LookupUserRoles", mock.Anything, int64(11)).
		Return([]model.UserRole{model.UserRoleTopcoderUser, model.UserRoleConnectManager}, nil)
	deps.identity.On("LookupUserRoles", mock.Anything, int64(12)).
		Return([]model.UserRole{model.UserRoleTopcoderUser}, nil)

	var rejected []string
	deps.bus.Register(events.NewHandlerFunc([]string{InviteRejectedType}, func(_ context.Context, e events.Event) error {
		rejected = append(rejected, FailureReason(e.(*InviteRejectedEvent).Failure))
		return nil
	}))

	out, err := d.CreateInvites(context.Background(), caller(1, model.UserRoleConnectManager), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{11, 12},
		Role:    model.ProjectMemberRoleManager,
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{11}, invitedUserIDs(out))
	require.Len(t, out.Failed, 1)
	assert.Equal(t, int64(12), *out.Failed[0].UserID)
	assert.Equal(t, "cannot be added with a manager role to the project", out.Failed[0].Message)
	assert.Equal(t, []string{ReasonNotManager}, rejected)
}

func TestDomain_CreateInvites_ManagerGateOutOfOrder(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.expectCreate()
	deps.expectPublish()

	// Later candidates answer first; only odd ids hold a manager role.
	ids := []int64{1, 2, 3, 4}
	for i, id := range ids {
		roles := []model.UserRole{model.UserRoleTopcoderUser}
		if id%2 == 1 {
			roles = append(roles, model.UserRoleConnectManager)
		}
		deps.identity.On("LookupUserRoles", mock.Anything, id).
			After(time.Duration(len(ids)-i)*15*time.Millisecond).
			Return(roles, nil)
	}

	out, err := d.CreateInvites(context.Background(), caller(99, model.UserRoleConnectAdmin), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: ids,
		Role:    model.ProjectMemberRoleManager,
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, invitedUserIDs(out))
	require.Len(t, out.Failed, 2)
	var failedIDs []int64
	for _, f := range out.Failed {
		failedIDs = append(failedIDs, *f.UserID)
	}
	assert.ElementsMatch(t, []int64{2, 4}, failedIDs)
}

func TestDomain_CreateInvites_RoleLookupFailureIsFatal(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.identity.On("LookupUserRoles", mock.Anything, int64(11)).
		Return([]model.UserRole{model.UserRoleConnectManager}, nil).Maybe()
	deps.identity.On("LookupUserRoles", mock.Anything, int64(12)).
		Return(nil, errors.New("identity unavailable"))

	out, err := d.CreateInvites(context.Background(), caller(1, model.UserRoleConnectAdmin), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{11, 12},
		Role:    model.ProjectMemberRoleAccountManager,
	})

	require.ErrorIs(t, err, ErrRoleLookupFailed)
	assert.Contains(t, err.Error(), "identity unavailable")
	assert.Nil(t, out)
	deps.inviteDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDomain_CreateInvites_EmailsOnlyForCustomer(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.expectCreate()
	deps.expectPublish()

	out, err := d.CreateInvites(context.Background(), caller(1, model.UserRoleConnectAdmin), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{5},
		Emails:  []string{"someone@example.com"},
		Role:    model.ProjectMemberRoleCopilot,
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, invitedUserIDs(out))
	require.Len(t, out.Failed, 1)
	assert.Equal(t, "someone@example.com", *out.Failed[0].Email)
	assert.Equal(t, "emails can only be used for customer", out.Failed[0].Message)
	deps.identity.AssertNotCalled(t, "LookupUsersByEmail", mock.Anything, mock.Anything)
}

func TestDomain_CreateInvites_CopilotStatus(t *testing.T) {
	tests := []struct {
		name   string
		roles  []model.UserRole
		status model.InviteStatus
	}{
		{"admin invites directly", []model.UserRole{model.UserRoleAdministrator}, model.InviteStatusPending},
		{"connect admin invites directly", []model.UserRole{model.UserRoleConnectAdmin}, model.InviteStatusPending},
		{"manager with copilot manager invites directly", []model.UserRole{model.UserRoleConnectManager, model.UserRoleConnectCopilotManager}, model.InviteStatusPending},
		{"manager needs approval", []model.UserRole{model.UserRoleConnectManager}, model.InviteStatusRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, deps := newTestDomain(t, nil)
			deps.expectSnapshot(nil, nil)
			deps.expectCreate()
			deps.expectPublish()

			out, err := d.CreateInvites(context.Background(), caller(1, tt.roles...), testProjectID, &inbound.CreateInvitesInput{
				UserIDs: []int64{5},
				Role:    model.ProjectMemberRoleCopilot,
			})

			require.NoError(t, err)
			require.Len(t, out.Success, 1)
			assert.Equal(t, tt.status, out.Success[0].Status)
		})
	}
}

func TestDomain_CreateInvites_Emails(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(
		[]*model.ProjectMember{{ProjectID: testProjectID, UserID: 30}},
		[]*model.ProjectMemberInvite{
			{ProjectID: testProjectID, Email: ptr("already.invited@gmail.com"), Status: model.InviteStatusPending},
		},
	)
	deps.expectCreate()
	deps.expectPublish()

	emails := []string{"Known@Example.com", "member@example.com", "alreadyinvited@gmail.com", "new.person@example.com"}
	deps.identity.On("LookupUsersByEmail", mock.Anything, emails).Return([]*model.IdentityUser{
		{ID: 20, Email: "known@example.com", Handle: "known"},
		{ID: 30, Email: "member@example.com", Handle: "member"},
	}, nil)
	deps.mailer.On("SendInvitation", mock.MatchedBy(func(ctx context.Context) bool {
		return requestctx.RequestID(ctx) == "req-9"
	}), testProjectID, mock.AnythingOfType("*model.ProjectMemberInvite")).Return(nil)

	ctx := requestctx.WithRequestID(context.Background(), "req-9")
	out, err := d.CreateInvites(ctx, caller(1), testProjectID, &inbound.CreateInvitesInput{
		Emails: emails,
		Role:   model.ProjectMemberRoleCustomer,
	})

	require.NoError(t, err)
	assert.Empty(t, out.Failed)
	require.Len(t, out.Success, 2)

	registered := out.Success[0]
	require.NotNil(t, registered.UserID)
	assert.Equal(t, int64(20), *registered.UserID)
	assert.Equal(t, "known@example.com", *registered.Email)

	unregistered := out.Success[1]
	assert.Nil(t, unregistered.UserID)
	assert.Equal(t, "new.person@example.com", *unregistered.Email)

	// Only the unregistered pending invite gets an invitation email
	deps.mailer.AssertNumberOfCalls(t, "SendInvitation", 1)
	deps.mailer.AssertCalled(t, "SendInvitation", mock.Anything, testProjectID, unregistered)
	assert.Equal(t, []string{taskInvitationEmailName}, deps.runner.names)
}

func TestDomain_CreateInvites_RegisteredAliasFlag(t *testing.T) {
	existing := []*model.ProjectMemberInvite{
		{ProjectID: testProjectID, Email: ptr("first.last@gmail.com"), Status: model.InviteStatusPending},
	}
	account := []*model.IdentityUser{{ID: 20, Email: "firstlast@gmail.com"}}

	run := func(t *testing.T, cfg *Config) *inbound.CreateInvitesOutput {
		d, deps := newTestDomain(t, cfg)
		deps.expectSnapshot(nil, existing)
		deps.expectCreate()
		deps.expectPublish()
		deps.identity.On("LookupUsersByEmail", mock.Anything, []string{"firstlast@gmail.com"}).Return(account, nil)

		out, err := d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{
			Emails: []string{"firstlast@gmail.com"},
			Role:   model.ProjectMemberRoleCustomer,
		})
		require.NoError(t, err)
		return out
	}

	t.Run("baseline by default", func(t *testing.T) {
		assert.Len(t, run(t, nil).Success, 1)
	})

	t.Run("aliases when enabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CanonicalizeRegisteredEmailAliases = true
		assert.Empty(t, run(t, cfg).Success)
	})
}

func TestDomain_CreateInvites_UnregisteredAliasFlag(t *testing.T) {
	existing := []*model.ProjectMemberInvite{
		{ProjectID: testProjectID, Email: ptr("first.last@gmail.com"), Status: model.InviteStatusPending},
	}

	run := func(t *testing.T, cfg *Config) *inbound.CreateInvitesOutput {
		d, deps := newTestDomain(t, cfg)
		deps.expectSnapshot(nil, existing)
		deps.expectCreate()
		deps.expectPublish()
		deps.identity.On("LookupUsersByEmail", mock.Anything, []string{"firstlast@gmail.com"}).
			Return([]*model.IdentityUser{}, nil)
		deps.mailer.On("SendInvitation", mock.Anything, testProjectID, mock.Anything).Return(nil)

		out, err := d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{
			Emails: []string{"firstlast@gmail.com"},
			Role:   model.ProjectMemberRoleCustomer,
		})
		require.NoError(t, err)
		return out
	}

	t.Run("aliases by default", func(t *testing.T) {
		assert.Empty(t, run(t, nil).Success)
	})

	t.Run("baseline when disabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CanonicalizeUnregisteredEmailAliases = false
		assert.Len(t, run(t, cfg).Success, 1)
	})
}

func TestDomain_CreateInvites_RegisteredAccountAliasInSameRequest(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.expectCreate()
	deps.expectPublish()

	emails := []string{"john@gmail.com", "j.ohn@gmail.com"}
	deps.identity.On("LookupUsersByEmail", mock.Anything, emails).Return([]*model.IdentityUser{
		{ID: 50, Email: "john@gmail.com", Handle: "john"},
	}, nil)

	out, err := d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{
		Emails: emails,
		Role:   model.ProjectMemberRoleCustomer,
	})

	require.NoError(t, err)
	assert.Empty(t, out.Failed)
	require.Len(t, out.Success, 1)
	require.NotNil(t, out.Success[0].UserID)
	assert.Equal(t, int64(50), *out.Success[0].UserID)
	deps.mailer.AssertNotCalled(t, "SendInvitation", mock.Anything, mock.Anything, mock.Anything)
}

func TestDomain_CreateInvites_EmailLookupFailureIsItemized(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.expectCreate()
	deps.expectPublish()
	deps.identity.On("LookupUsersByEmail", mock.Anything, []string{"a@x.io", "b@x.io"}).
		Return(nil, errors.New("identity timeout"))

	out, err := d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{7},
		Emails:  []string{"a@x.io", "b@x.io"},
		Role:    model.ProjectMemberRoleCustomer,
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{7}, invitedUserIDs(out))
	require.Len(t, out.Failed, 2)
	for _, f := range out.Failed {
		assert.Equal(t, "identity timeout", f.Message)
	}
	deps.mailer.AssertNotCalled(t, "SendInvitation", mock.Anything, mock.Anything, mock.Anything)
}

func TestDomain_CreateInvites_PersistFailureIsFatal(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.inviteDB.On("Create", mock.Anything, mock.Anything).Return(errors.New("unique violation"))

	out, err := d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{7, 8},
		Role:    model.ProjectMemberRoleCustomer,
	})

	require.ErrorIs(t, err, ErrPersistFailed)
	assert.Nil(t, out)
	deps.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDomain_CreateInvites_SnapshotFailure(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.memberDB.On("ListByProject", mock.Anything, testProjectID).Return(nil, errors.New("db down"))

	_, err := d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{7},
		Role:    model.ProjectMemberRoleCustomer,
	})

	assert.ErrorIs(t, err, ErrSnapshotFailed)
}

func TestDomain_CreateInvites_NotificationFailuresAreIsolated(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.expectCreate()
	deps.publisher.On("Publish", mock.Anything, TopicInviteCreated, mock.Anything, mock.Anything).
		Return(errors.New("nats: no servers"))
	deps.identity.On("LookupUsersByEmail", mock.Anything, []string{"new@x.io"}).Return([]*model.IdentityUser{}, nil)
	deps.mailer.On("SendInvitation", mock.Anything, testProjectID, mock.Anything).Return(errors.New("mailer down"))

	var created int
	deps.bus.Register(events.NewHandlerFunc([]string{InviteCreatedType}, func(context.Context, events.Event) error {
		created++
		return errors.New("handler broken")
	}))

	out, err := d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{
		Emails: []string{"new@x.io"},
		Role:   model.ProjectMemberRoleCustomer,
	})

	require.NoError(t, err)
	assert.Len(t, out.Success, 1)
	assert.Equal(t, 1, created)
	require.Len(t, deps.runner.errs, 1)
	assert.EqualError(t, deps.runner.errs[0], "mailer down")
}

func TestDomain_CreateInvites_PublishesAfterClientDisconnect(t *testing.T) {
	d, deps := newTestDomain(t, nil)
	deps.expectSnapshot(nil, nil)
	deps.expectCreate()
	deps.publisher.On("Publish", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil && requestctx.RequestID(ctx) == "req-7"
	}), TopicInviteCreated, mock.Anything, "req-7").Return(nil)

	ctx, cancel := context.WithCancel(requestctx.WithRequestID(context.Background(), "req-7"))
	cancel()

	out, err := d.CreateInvites(ctx, caller(1), testProjectID, &inbound.CreateInvitesInput{
		UserIDs: []int64{7},
		Role:    model.ProjectMemberRoleCustomer,
	})

	require.NoError(t, err)
	assert.Len(t, out.Success, 1)
	deps.publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestDomain_CreateInvites_RequestValidation(t *testing.T) {
	d, _ := newTestDomain(t, nil)
	in := &inbound.CreateInvitesInput{UserIDs: []int64{7}, Role: model.ProjectMemberRoleCustomer}

	_, err := d.CreateInvites(context.Background(), nil, testProjectID, in)
	assert.ErrorIs(t, err, ErrMissingCaller)

	_, err = d.CreateInvites(context.Background(), caller(1), 0, in)
	assert.ErrorIs(t, err, ErrInvalidProjectID)

	_, err = d.CreateInvites(context.Background(), caller(1), testProjectID, &inbound.CreateInvitesInput{Role: model.ProjectMemberRoleCustomer})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestDomain_ListOpenInvites(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		d, deps := newTestDomain(t, nil)
		invites := []*model.ProjectMemberInvite{{ID: 3, ProjectID: testProjectID, Status: model.InviteStatusRequested}}
		deps.inviteDB.On("ListOpenByProject", mock.Anything, testProjectID).Return(invites, nil)

		out, err := d.ListOpenInvites(context.Background(), testProjectID)
		require.NoError(t, err)
		assert.Equal(t, invites, out.Invites)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		d, deps := newTestDomain(t, nil)
		deps.inviteDB.On("ListOpenByProject", mock.Anything, testProjectID).Return(nil, nil)

		out, err := d.ListOpenInvites(context.Background(), testProjectID)
		require.NoError(t, err)
		assert.NotNil(t, out.Invites)
	})

	t.Run("invalid project", func(t *testing.T) {
		d, _ := newTestDomain(t, nil)
		_, err := d.ListOpenInvites(context.Background(), -1)
		assert.ErrorIs(t, err, ErrInvalidProjectID)
	})
}
